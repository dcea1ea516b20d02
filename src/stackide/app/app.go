package app

import (
	"context"
	"time"

	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/gateway"
	"github.com/uber/stackide-proxy/src/stackide/handler"
	"github.com/uber/stackide-proxy/src/stackide/internal/clock"
	"github.com/uber/stackide-proxy/src/stackide/internal/core"
	"github.com/uber/stackide-proxy/src/stackide/internal/dispatch"
	"github.com/uber/stackide-proxy/src/stackide/internal/executor"
	"github.com/uber/stackide-proxy/src/stackide/internal/fs"
	"github.com/uber/stackide-proxy/src/stackide/internal/jsonrpcfx"
	"github.com/uber/stackide-proxy/src/stackide/internal/logfilewriter"
	"github.com/uber/stackide-proxy/src/stackide/internal/serverinfofile"
	"github.com/uber/stackide-proxy/src/stackide/internal/settings"
	"go.uber.org/fx"
)

// Module defines the stackide-proxy application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	clock.Module,
	dispatch.Module,
	settings.Module,
	logfilewriter.Module,
	serverinfofile.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "stackide-proxy",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        EnvLocal,
			RuntimeEnvironment: EnvLocal,
		}
	}),
)
