package chain

import (
	"context"

	"go.uber.org/fx"

	"safeloop_bot/internal/modules/chain/service"
	"safeloop_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("chain",
		fx.Provide(
			func(t *notify.Telegram) service.ServiceNotifier { return t },
			service.NewClient,
		),

		// Sync-вотчер пула живёт своей горутиной весь аптайм процесса.
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go c.WatchReserves(ctx)
					return nil
				},
			})
		}),
	)
}
