package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/cli"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/dispatch"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

func main() {
	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	cli.Execute(cli.Backend{
		Open: func(ctx context.Context, dsn string) (dispatch.Handlers, func(), error) {
			pg, err := connect(ctx, dsn, logger)
			if err != nil {
				return nil, nil, err
			}
			svc := service.NewHelpdeskService(service.HelpdeskDependencies{
				Store: repository.NewPostgresStore(pg.PoolHandle()),
			})
			return dispatch.New(svc, logger, nil), pg.Close, nil
		},
		Migrate: func(ctx context.Context, dsn string) (int, error) {
			pg, err := connect(ctx, dsn, logger)
			if err != nil {
				return 0, err
			}
			defer pg.Close()

			names, err := persistence.MigrationNames()
			if err != nil {
				return 0, err
			}
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return 0, err
			}
			return len(names), nil
		},
	})
}

func connect(ctx context.Context, dsn string, logger *zap.Logger) (*persistence.Postgres, error) {
	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{DSN: dsn, MaxConns: 2}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pg, nil
}

// newLogger writes warnings to stderr so command output stays parseable.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
