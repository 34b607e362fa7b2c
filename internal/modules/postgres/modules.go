package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"safeloop_bot/internal/modules/config"
	"safeloop_bot/pkg/db"
)

// Module отдаёт tx-менеджер поверх пула к мастеру.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
	)
}
