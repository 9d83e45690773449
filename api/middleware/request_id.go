package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mikakort/IAPserver/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags the request with the inbound X-Request-Id, or a fresh uuid
// when the sender omits one, and threads it through the context logger so
// every pipeline log line for one notification carries the same id.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
