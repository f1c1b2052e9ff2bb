package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/engagehq/engage-backend/internal/accounts"
	"github.com/engagehq/engage-backend/internal/avatars"
	"github.com/engagehq/engage-backend/internal/cron"
	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/internal/notifications"
	"github.com/engagehq/engage-backend/internal/store"
	"github.com/engagehq/engage-backend/pkg/config"
	"github.com/engagehq/engage-backend/pkg/db"
	"github.com/engagehq/engage-backend/pkg/logger"
	"github.com/engagehq/engage-backend/pkg/metrics"
	"github.com/engagehq/engage-backend/pkg/migrate"
	"github.com/engagehq/engage-backend/pkg/outbox"
	"github.com/engagehq/engage-backend/pkg/outbox/idempotency"
	"github.com/engagehq/engage-backend/pkg/pubsub"
	"github.com/engagehq/engage-backend/pkg/redis"
)

const lockKeyFormat = "engage:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	errCh := make(chan error, 2)
	go func() {
		errCh <- service.Run(ctx)
	}()

	if cfg.PubSub.NotificationsSubscription != "" {
		consumer, closeConsumer, err := buildNotificationConsumer(ctx, cfg, logg, dbClient, redisClient)
		if err != nil {
			logg.Error(ctx, "failed to build notification consumer", err)
			os.Exit(1)
		}
		defer closeConsumer()
		go func() {
			errCh <- consumer.Run(ctx)
		}()
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildNotificationConsumer(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*notifications.Consumer, func(), error) {
	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub client", err)
		}
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		closeClient()
		return nil, nil, err
	}

	consumer, err := notifications.NewConsumer(
		notifications.NewRepository(dbClient.DB()),
		pubsubClient.NotificationsSubscription(),
		manager,
		logg,
	)
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	return consumer, closeClient, nil
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Registry, error) {
	gormDB := dbClient.DB()

	accountsRepo := accounts.NewRepository(gormDB)
	rollover, err := cron.NewCounterRolloverJob(cron.CounterRolloverJobParams{
		Logger:     logg,
		Repository: accountsRepo,
		Store:      redisClient,
	})
	if err != nil {
		return nil, err
	}

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gormDB), accountsRepo, dbClient)
	if err != nil {
		return nil, err
	}
	avatarSvc, err := avatars.NewService(avatars.NewRepository(gormDB))
	if err != nil {
		return nil, err
	}
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)
	storeSvc, err := store.NewService(store.NewRepository(gormDB), accountsRepo, ledgerSvc, avatarSvc, outboxSvc, dbClient, nil)
	if err != nil {
		return nil, err
	}
	powerUpExpiry, err := cron.NewPowerUpExpiryJob(cron.PowerUpExpiryJobParams{
		Logger:    logg,
		Inventory: storeSvc,
		Avatars:   avatarSvc,
	})
	if err != nil {
		return nil, err
	}

	notificationCleanup, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notifications.NewRepository(gormDB),
		Retention:  cfg.Cron.NotificationRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	outboxRetention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(gormDB),
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(rollover, powerUpExpiry, notificationCleanup, outboxRetention), nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
