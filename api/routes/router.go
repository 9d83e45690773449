package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikakort/IAPserver/api/controllers"
	"github.com/mikakort/IAPserver/api/middleware"
	"github.com/mikakort/IAPserver/internal/stats"
	subscriptionsvc "github.com/mikakort/IAPserver/internal/subscriptions"
	"github.com/mikakort/IAPserver/pkg/config"
	"github.com/mikakort/IAPserver/pkg/db"
	"github.com/mikakort/IAPserver/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	ingestService controllers.IngestService,
	subscriptionsService subscriptionsvc.Service,
	statsService stats.Service,
	receiptClient controllers.ReceiptValidator,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, statsService))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Get("/ping", controllers.Ping())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/notifications", controllers.IngestNotification(ingestService, logg))
		r.Get("/subscriptions/{userID}", controllers.SubscriptionLookup(subscriptionsService, logg))
		r.Get("/stats", controllers.Stats(statsService, logg))
		r.Post("/receipts/validate", controllers.ValidateReceipt(receiptClient, logg))
	})

	return r
}
