package app

import (
	"context"
	"time"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/gateway"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/handler"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/core"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/executor"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/jsonrpcfx"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/outputpanel"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/rekitproject"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/serverinfofile"
	workspaceutils "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/workspace-utils"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/fx"
)

// Module defines the rekit-lsp application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	serverinfofile.Module,
	workspaceutils.Module,
	rekitproject.Module,
	scriptrunner.Module,
	outputpanel.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "rekit-lsp",
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
