package middleware

import (
	"fmt"
	"net/http"

	"github.com/mikakort/IAPserver/api/responses"
	pkgerrors "github.com/mikakort/IAPserver/pkg/errors"
	"github.com/mikakort/IAPserver/pkg/logger"
)

// Recoverer turns a handler panic into a logged 500 envelope instead of a
// dropped connection. A hostile notification body must never take the
// listener down mid-request.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{"panic": rec})
						logg.Error(ctx, "panic.recovered", err)
					}
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
