package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boutiquenoire/storefront-backend/api/controllers"
	"github.com/boutiquenoire/storefront-backend/api/middleware"
	"github.com/boutiquenoire/storefront-backend/internal/orders"
	"github.com/boutiquenoire/storefront-backend/internal/reservations"
	"github.com/boutiquenoire/storefront-backend/pkg/config"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
	"github.com/boutiquenoire/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers. Redis is optional;
// leave both Redis fields nil when it is not configured.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	RedisPinger  controllers.Pinger
	Idempotency  redis.IdempotencyStore
	Gatherer     prometheus.Gatherer
	Reservations reservations.Service
	Orders       orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.RedisPinger))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Idempotency, logg))
		r.Post("/reserve", controllers.Reserve(deps.Reservations, logg))
		r.Delete("/reserve/{reservationId}", controllers.Release(deps.Reservations, logg))
		r.Post("/orders", controllers.CreateOrder(deps.Orders, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.Admin.APIKey, logg))
		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/", controllers.AdminGetOrder(deps.Orders, logg))
			r.Put("/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			r.Delete("/", controllers.AdminDeleteOrder(deps.Orders, logg))
		})
	})

	return r
}
