package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/mikakort/IAPserver/api/responses"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/mikakort/IAPserver/pkg/logger"
)

// ReceiptValidator proxies a receipt payload to the external validation
// endpoint.
type ReceiptValidator interface {
	Validate(ctx context.Context, body []byte) (int, []byte, error)
}

// ValidateReceipt is a pure pass-through: the upstream status and body are
// returned verbatim.
func ValidateReceipt(client ReceiptValidator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receipt client unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		status, respBody, err := client.Validate(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if _, err := w.Write(respBody); err != nil && logg != nil {
			logg.Error(ctx, "failed to write validation response", err)
		}
	}
}
