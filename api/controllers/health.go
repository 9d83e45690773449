package controllers

import (
	"net/http"

	"github.com/mikakort/IAPserver/api/responses"
	"github.com/mikakort/IAPserver/internal/stats"
	"github.com/mikakort/IAPserver/pkg/config"
	"github.com/mikakort/IAPserver/pkg/db"
	"github.com/mikakort/IAPserver/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-IAPServer-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports storage connectivity plus the aggregator counts. A
// storage failure degrades the response to 503 but still reports the boolean.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, statsSvc stats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-IAPServer-Env", cfg.App.Env)

		payload := map[string]any{
			"status":   "ready",
			"database": true,
		}

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, "database ping failed", err)
				}
				payload["status"] = "degraded"
				payload["database"] = false
				responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
				return
			}
		}

		if statsSvc != nil {
			summary, err := statsSvc.Summary(ctx)
			if err != nil {
				if logg != nil {
					logg.Error(ctx, "stats summary failed", err)
				}
			} else {
				payload["stats"] = summary
			}
		}

		responses.WriteSuccess(w, payload)
	}
}
