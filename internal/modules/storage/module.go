package storage

import (
	"context"

	"go.uber.org/fx"

	"safeloop_bot/internal/modules/config"
	"safeloop_bot/internal/modules/storage/service"
	"safeloop_bot/pkg/db"
)

func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(
			func(cfg *config.Config, m *db.PgTxManager) *service.Store {
				return service.NewStore(m, cfg.Strategy.PriceWindow)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, s *service.Store) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return s.Migrate(ctx)
				},
			})
		}),
	)
}
