package ung

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/bus"
	"github.com/Andriiklymiuk/ung-sub008/internal/config"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/cli"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/remote"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/service"
)

var Module = fx.Module("ung",
	fx.Provide(newGateway),
	fx.Provide(service.NewService),
)

// newGateway selects the backend: the local CLI through the command
// bus by default, or the hosted HTTP API when configured.
func newGateway(cfg config.Config, b *bus.Bus, log *zap.Logger) domain.Gateway {
	if cfg.IsRemote() {
		return remote.New(remote.Params{
			Config: remote.Config{
				BaseURL: cfg.Remote.BaseURL,
				Token:   cfg.Remote.Token,
				Timeout: cfg.Remote.Timeout,
			},
			Log: log,
		})
	}
	return cli.New(cli.Params{Bus: b, Log: log})
}
