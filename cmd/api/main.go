// Package main is the entry point for the social-insights-service API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/config"
	"social-insights-service/internal/domain"
	"social-insights-service/internal/infra/nats"
	"social-insights-service/internal/infra/postgres"
	"social-insights-service/internal/infra/postgres/migrations"
	"social-insights-service/internal/infra/provider/chat"
	"social-insights-service/internal/infra/provider/registry"
	rediscache "social-insights-service/internal/infra/redis"
	"social-insights-service/internal/job"
	"social-insights-service/internal/logger"
	"social-insights-service/internal/metrics"
	"social-insights-service/internal/transport/httpserver"
	"social-insights-service/internal/transport/httpserver/middleware"
	"social-insights-service/internal/validator"
	"social-insights-service/pkg/auth"
	"social-insights-service/pkg/locker"
)

const (
	bodyLimit       = 1024 * 1024 // 1MB
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Logger, cfg.Sentry)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting social-insights-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("change_driver", cfg.Changes.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewConnection(cfg.Database, cfg.App.Debug, log.Logger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db, cfg.Changes.Channel); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	posts := postgres.NewPostRepository(db)
	users := postgres.NewUserRepository(db)
	m := metrics.New()

	var redisClient *goredis.Client
	if cfg.Cache.Enabled || cfg.Sync.Enabled {
		redisClient, err = rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("snapshot cache enabled",
			zap.Duration("ttl", cfg.Cache.SnapshotTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("snapshot cache disabled")
	}

	feed, closeFeed, err := newChangeFeed(cfg, db, log.Logger)
	if err != nil {
		log.Fatal("failed to set up change feed", zap.Error(err))
	}
	defer closeFeed()

	jitter, err := domain.ParseJitterMode(cfg.Scoring.Jitter)
	if err != nil {
		log.Fatal("invalid scoring config", zap.Error(err))
	}
	loc, err := cfg.Scoring.Location()
	if err != nil {
		log.Fatal("invalid scoring config", zap.Error(err))
	}

	analytics := service.NewAnalyticsService(posts, cache, service.AnalyticsConfig{
		Options: domain.AggregateOptions{
			Policy:   domain.ScoringPolicy{Multipliers: cfg.Scoring.Multipliers, Jitter: jitter},
			Location: loc,
		},
		FetchTimeout:  cfg.Source.Timeout,
		Retries:       cfg.Source.Retries,
		RetryDelay:    cfg.Source.RetryDelay,
		MaxRetryDelay: cfg.Source.MaxRetryDelay,
		CacheTTL:      cfg.Cache.SnapshotTTL,
	}, m, log.Named("analytics"))

	assistant := service.NewAssistantService(
		chat.New(cfg.Assistant, log.Named("assistant")),
		analytics, m, log.Logger,
	)

	sources, err := registry.NewSources(ctx, cfg.YouTube, log.Logger)
	if err != nil {
		log.Fatal("failed to create import sources", zap.Error(err))
	}
	syncSvc := service.NewSyncService(posts, sources, feed, m, log.Named("sync"))

	sessions := service.NewSessionService(users, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), service.SessionConfig{
		AllowSignup: cfg.Auth.AllowSignup,
		BcryptCost:  cfg.Auth.BcryptCost,
	}, log.Logger)

	watcher := service.NewChangeWatcher(feed, analytics, cfg.Changes.Debounce, m, log.Named("watcher"))
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("change watcher stopped", zap.Error(err))
		}
	}()

	// Warm the snapshot so the first page load is served from memory.
	if _, err := analytics.Refresh(ctx); err != nil {
		log.Warn("initial snapshot skipped", zap.Error(err))
	}

	readiness := []middleware.ReadinessProbe{
		func(ctx context.Context) error { return postgres.HealthCheck(ctx, db) },
	}
	if redisClient != nil {
		readiness = append(readiness, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	done := make(chan struct{})
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:         cfg.App.Port,
			BodyLimit:    bodyLimit,
			Debug:        cfg.App.Debug,
			AppName:      cfg.App.Name,
			CORSOrigins:  cfg.App.CORSOrigins,
			CookieName:   cfg.Auth.CookieName,
			CookieSecure: cfg.Auth.CookieSecure,
			AllowSignup:  cfg.Auth.AllowSignup,
		},
		httpserver.Deps{
			Analytics: analytics,
			Assistant: assistant,
			Sync:      syncSvc,
			Sessions:  sessions,
			Watcher:   watcher,
			Metrics:   m,
			Validator: validator.New(),
			Readiness: readiness,
			Done:      done,
		},
		log.Logger,
	)

	var scheduler *job.SyncScheduler
	if cfg.Sync.Enabled && len(sources) > 0 {
		scheduler = job.NewSyncScheduler(syncSvc, job.SyncConfig{
			Interval:  cfg.Sync.Interval,
			Timeout:   cfg.Sync.Timeout,
			OnStartup: cfg.Sync.OnStartup,
		}, locker.NewRedisLocker(redisClient, cfg.Cache.KeyPrefix, log.Logger), log.Named("scheduler"))
		scheduler.Start()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}
		// Event streams never end on their own.
		close(done)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.App.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

// newChangeFeed builds the configured change feed and a func releasing it.
func newChangeFeed(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (domain.ChangeFeed, func(), error) {
	switch cfg.Changes.Driver {
	case config.ChangesDriverNATS:
		conn, err := nats.Connect(cfg.NATS, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("change feed on nats", zap.String("subject", cfg.NATS.Subject))

		return nats.NewNotifier(conn, cfg.NATS.Subject, logger.Named("nats")), conn.Close, nil
	default:
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		logger.Info("change feed on postgres", zap.String("channel", cfg.Changes.Channel))

		return postgres.NewNotifier(sqlDB, cfg.Database.DSN(), cfg.Changes.Channel, logger.Named("notify")), func() {}, nil
	}
}
