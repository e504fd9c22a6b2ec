package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = repository.NewMemoryStore()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var revocations auth.Revocations = auth.NewMemoryRevocations()
	if redis.Enabled() {
		revocations = auth.NewRedisRevocations(redis.Client)
	}

	credentials, err := auth.NewCredentialStore(cfg.Auth.Users, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to load credentials", zap.Error(err))
	}
	logger.Info("credentials loaded", zap.Int("users", credentials.Len()))
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())

	metrics := observability.NewMetrics()
	eventDispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(eventDispatcher, logger))

	helpdesk := service.NewHelpdeskService(service.HelpdeskDependencies{
		Store:      store,
		Dispatcher: eventDispatcher,
	})
	ops := dispatch.New(helpdesk, logger, metrics)

	authService := service.NewAuthService(service.AuthDependencies{
		Credentials: credentials,
		Tokens:      tokens,
		Revocations: revocations,
	})

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.CookieName, cfg.App.Env == "production"),
		Tickets:        handlers.NewTicketsHandler(ops),
		Comments:       handlers.NewCommentsHandler(ops),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, revocations, cfg.Auth.CookieName),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
