package entitycache

import "go.uber.org/fx"

var Module = fx.Module("entitycache",
	fx.Provide(New),
)
