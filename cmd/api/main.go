package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/engagehq/engage-backend/api/routes"
	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/avatars"
	"github.com/engagehq/engage-backend/internal/awards"
	"github.com/engagehq/engage-backend/internal/badges"
	"github.com/engagehq/engage-backend/internal/leaderboard"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/internal/notifications"
	"github.com/engagehq/engage-backend/internal/store"
	"github.com/engagehq/engage-backend/pkg/auth/session"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/db"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/metrics"
	"github.com/engagehq/engage-backend/pkg/migrate"
	"github.com/engagehq/engage-backend/pkg/outbox"
	"github.com/engagehq/engage-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, redisClient, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	accountsRepo := accounts.NewRepository(gormDB)
	accountsSvc, err := accounts.NewService(accountsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gormDB), accountsRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	badgeSvc, err := badges.NewService(badges.NewRepository(gormDB), ledgerSvc, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}

	avatarSvc, err := avatars.NewService(avatars.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)

	storeSvc, err := store.NewService(store.NewRepository(gormDB), accountsRepo, ledgerSvc, avatarSvc, outboxSvc, dbClient, engineMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	awardsSvc, err := awards.NewService(awards.NewRepository(gormDB), ledgerSvc, badgeSvc, outboxSvc, dbClient, cfg.Awards, engineMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	leaderboardSvc, err := leaderboard.NewService(accountsRepo, cfg.Leaderboard)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Accounts:      accountsSvc,
		Ledger:        ledgerSvc,
		Store:         storeSvc,
		Awards:        awardsSvc,
		Leaderboard:   leaderboardSvc,
		Notifications: notificationsSvc,
	}, nil
}
