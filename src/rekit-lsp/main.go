package main

import (
	"github.com/rekit/rekit-lsp/src/rekit-lsp/app"
	"go.uber.org/fx"
)

func opts() fx.Option {
	return fx.Options(
		app.Module,
	)
}

func main() {
	fx.New(opts()).Run()
}
