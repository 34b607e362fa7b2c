package runner

import (
	"context"

	"go.uber.org/fx"

	bootstrap "safeloop_bot/internal/modules/bootstrap/service"
	chain "safeloop_bot/internal/modules/chain/service"
	storage "safeloop_bot/internal/modules/storage/service"
	"safeloop_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *chain.Client) Chain { return c },
			func(s *storage.Store) Store { return s },
			func(t *notify.Telegram) Notifier { return t },
			NewRunner,
		),

		fx.Invoke(func(lc fx.Lifecycle, r *Runner, w *bootstrap.Warmuper, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(startCtx context.Context) error {
					// без прогретого стейта не стартуем вовсе
					state, err := w.Warmup(startCtx)
					if err != nil {
						return err
					}
					r.Bind(state)
					go r.Run(ctx)
					return nil
				},
			})
		}),
	)
}
