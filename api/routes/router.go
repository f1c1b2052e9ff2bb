package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/engagehq/engage-backend/api/controllers"
	"github.com/engagehq/engage-backend/api/middleware"
	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/awards"
	"github.com/engagehq/engage-backend/internal/leaderboard"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/internal/notifications"
	"github.com/engagehq/engage-backend/internal/store"
	"github.com/engagehq/engage-backend/pkg/auth/session"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/db"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/redis"
)

// Services bundles the domain services the API exposes.
type Services struct {
	Accounts      accounts.Service
	Ledger        ledger.Service
	Store         store.Service
	Awards        awards.Service
	Leaderboard   leaderboard.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	idempotencyStore redis.IdempotencyStore,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/v1/points", func(r chi.Router) {
			r.Get("/me", controllers.PointsMe(svcs.Accounts, logg))
			r.Get("/me/history", controllers.PointsHistory(svcs.Ledger, logg))
			r.With(middleware.RequireAwarder(logg)).Post("/award", controllers.AwardPoints(svcs.Awards, svcs.Accounts, logg))
		})

		r.Route("/v1/store", func(r chi.Router) {
			r.Get("/items", controllers.StoreItems(svcs.Store, logg))
			r.Post("/purchase", controllers.StorePurchase(svcs.Store, logg))
		})

		r.Get("/v1/leaderboard", controllers.Leaderboard(svcs.Leaderboard, logg))

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
