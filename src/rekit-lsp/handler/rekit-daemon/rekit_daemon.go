// Package rekitdaemon accepts editor connections and routes their JSON-RPC requests to the daemon controller.
package rekitdaemon

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	controller "github.com/rekit/rekit-lsp/src/rekit-lsp/controller/rekit-daemon"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/entity"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/jsonrpcfx"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// Handler manages the JSON-RPC connections of the rekit-lsp daemon.
type Handler interface {
	jsonrpcfx.ConnectionManager
}

// New constructs a new rekit-lsp Handler and registers it as the connection manager of jsonrpcmod.
func New(ctrl controller.Controller, jsonrpcmod jsonrpcfx.JSONRPCModule, logger *zap.SugaredLogger, stats tally.Scope) (Handler, error) {
	c := &jsonRPCConnectionManager{
		ctrl:   ctrl,
		logger: logger,
		stats:  stats.SubScope("json_rpc"),
	}
	if err := jsonrpcmod.RegisterConnectionManager(c); err != nil {
		return nil, fmt.Errorf("registering connection manager: %w", err)
	}
	return c, nil
}

type jsonRPCConnectionManager struct {
	ctrl   controller.Controller
	logger *zap.SugaredLogger
	stats  tally.Scope
}

// NewConnection will store a new connection and return a router that includes its UUID.
func (c *jsonRPCConnectionManager) NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router jsonrpcfx.Router, err error) {
	id, err := c.ctrl.InitSession(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("error while creating new connection: %w", err)
	}
	c.stats.Counter("connections").Inc(1)

	r := jsonRPCRouter{
		rekitdaemon: c.ctrl,
		uuid:        id,
		stats:       c.stats,
	}

	return &r, nil
}

// RemoveConnection cleans up a closed connection.
func (c *jsonRPCConnectionManager) RemoveConnection(ctx context.Context, id uuid.UUID) {
	// Ensure session is removed even if no Exit call has been received.
	ctx = context.WithValue(ctx, entity.SessionContextKey, id)
	if err := c.ctrl.EndSession(ctx, id); err != nil {
		c.logger.Debugf("ending session %s: %v", id, err)
	}
}
