package controller

import (
	rekitdaemon "github.com/rekit/rekit-lsp/src/rekit-lsp/controller/rekit-daemon"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/controller/sidebar"
	"go.uber.org/fx"
)

// Module provides the daemon controller and the sidebar it delegates to.
var Module = fx.Options(
	fx.Provide(rekitdaemon.New),
	fx.Provide(sidebar.New),
)
