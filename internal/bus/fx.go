package bus

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("bus",
	fx.Provide(New),
	fx.Invoke(runBus),
)

func runBus(lc fx.Lifecycle, b *Bus) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			b.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			b.Stop()
			return nil
		},
	})
}
