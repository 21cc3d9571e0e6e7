// Package gateway holds the outbound clients of the server.
package gateway

import (
	ideclient "github.com/rekit/rekit-lsp/src/rekit-lsp/gateway/ide-client"
	"go.uber.org/fx"
)

// Module provides the outbound gateways.
var Module = fx.Provide(ideclient.New)
