package telegram

import (
	"context"

	"go.uber.org/fx"

	"safeloop_bot/internal/notify"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(notify.NewTelegram),

		// long-poll команд оператора; без токена горутина сразу выходит
		fx.Invoke(func(lc fx.Lifecycle, t *notify.Telegram, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go t.Start(ctx)
					return nil
				},
			})
		}),
	)
}
