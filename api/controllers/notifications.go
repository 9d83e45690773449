package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/mikakort/IAPserver/api/responses"
	"github.com/mikakort/IAPserver/internal/ingest"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/mikakort/IAPserver/pkg/logger"
)

// IngestService is the pipeline surface the controller depends on.
type IngestService interface {
	Process(ctx context.Context, rawPayload []byte) (*ingest.Result, error)
}

// IngestNotification receives one server-to-server notification and runs it
// through the pipeline. Accepted notifications return 202 with the event id;
// rejected ones return a generic client error.
func IngestNotification(svc IngestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ingest service unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		result, err := svc.Process(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, result)
	}
}
