package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mikakort/IAPserver/api/responses"
	"github.com/mikakort/IAPserver/internal/subscriptions"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/mikakort/IAPserver/pkg/logger"
)

// SubscriptionLookup returns the current snapshot for one user, or 404 when
// the user has never produced a notification.
func SubscriptionLookup(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions service unavailable"))
			return
		}

		userID := chi.URLParam(r, "userID")
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id required"))
			return
		}

		snapshot, err := svc.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
