package handler

import (
	controller "github.com/rekit/rekit-lsp/src/rekit-lsp/controller"
	rekitdaemon "github.com/rekit/rekit-lsp/src/rekit-lsp/controller/rekit-daemon"
	handler "github.com/rekit/rekit-lsp/src/rekit-lsp/handler/rekit-daemon"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/repository/session"
	"go.uber.org/fx"
)

// Module provides the rekit-lsp daemon into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(session.New),
	fx.Provide(handler.New),
	fx.Invoke(outputProcessInfo),
	fx.Invoke(func(m handler.Handler) {}),
	fx.Invoke(func(m rekitdaemon.Controller) {}),
)
