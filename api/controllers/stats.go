package controllers

import (
	"net/http"

	"github.com/mikakort/IAPserver/api/responses"
	"github.com/mikakort/IAPserver/internal/stats"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/mikakort/IAPserver/pkg/logger"
)

// Stats exposes the read-only aggregator counts.
func Stats(svc stats.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stats service unavailable"))
			return
		}

		summary, err := svc.Summary(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
