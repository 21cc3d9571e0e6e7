// Package rekitdaemon implements the rekit-lsp daemon business logic.
package rekitdaemon

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/controller/sidebar"
	ideclient "github.com/rekit/rekit-lsp/src/rekit-lsp/gateway/ide-client"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	workspaceutils "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/workspace-utils"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/repository/session"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_serverName = "Rekit Language Server"

	_idleTimeoutMinutesKey = "idleTimeoutMinutes"
)

// Controller orchestrates the business logic for each request.
type Controller interface {
	// LSP Methods defined per protocol.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	CodeAction(ctx context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error)
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error)

	// Custom methods for use within this service.
	RequestFullShutdown(ctx context.Context) error
	InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error)
	EndSession(ctx context.Context, id uuid.UUID) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Lifecycle      fx.Lifecycle
	Shutdowner     fx.Shutdowner
	Sessions       session.Repository
	IdeGateway     ideclient.Gateway
	Logger         *zap.SugaredLogger
	Config         config.Provider
	WorkspaceUtils workspaceutils.WorkspaceUtils
	Sidebar        sidebar.Controller
}

type controller struct {
	sessions       session.Repository
	shutdowner     fx.Shutdowner
	logger         *zap.SugaredLogger
	ideGateway     ideclient.Gateway
	workspaceUtils workspaceutils.WorkspaceUtils
	sidebar        sidebar.Controller

	// defaultSettings are the configured runner settings that client options are merged onto.
	defaultSettings scriptrunner.Settings

	fullShutdown atomic.Bool
	idleTimer    *time.Timer
	idleTimerMu  sync.Mutex
	idleTimeout  time.Duration
	stopIdle     chan struct{}
	stopIdleOnce sync.Once
}

// New constructs a new top-level controller for the service.
func New(p Params) (Controller, error) {
	var timeoutMinutesRaw int64
	if err := p.Config.Get(_idleTimeoutMinutesKey).Populate(&timeoutMinutesRaw); err != nil || timeoutMinutesRaw <= 0 {
		return nil, fmt.Errorf("unable to get idle timeout from config: %w", err)
	}
	defaults, err := scriptrunner.SettingsFromConfig(p.Config)
	if err != nil {
		return nil, err
	}

	c := &controller{
		sessions:        p.Sessions,
		shutdowner:      p.Shutdowner,
		logger:          p.Logger,
		ideGateway:      p.IdeGateway,
		workspaceUtils:  p.WorkspaceUtils,
		sidebar:         p.Sidebar,
		defaultSettings: defaults,
		idleTimeout:     time.Duration(timeoutMinutesRaw) * time.Minute,
		stopIdle:        make(chan struct{}),
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.refreshIdleTimer(ctx)
		},
		OnStop: func(ctx context.Context) error {
			c.stopIdleOnce.Do(func() { close(c.stopIdle) })
			return nil
		},
	})
	return c, nil
}

// refreshIdleTimer ensures that the service shuts down after a defined inactivity period with no connections.
func (c *controller) refreshIdleTimer(ctx context.Context) error {
	c.idleTimerMu.Lock()
	defer c.idleTimerMu.Unlock()

	// First call initializes new timer and leaves it running prior to first connection.
	if c.idleTimer == nil {
		c.idleTimer = time.NewTimer(c.idleTimeout)
		go c.awaitIdle(c.idleTimer)
		return nil
	}

	// Subsequent calls stop the timer and reset it only if no connections are active.
	currentSessions, err := c.sessions.SessionCount(ctx)
	if err != nil {
		return fmt.Errorf("error resetting timeout: %w", err)
	}

	c.idleTimer.Stop()
	if currentSessions == 0 {
		c.idleTimer.Reset(c.idleTimeout)
	}
	return nil
}

func (c *controller) awaitIdle(timer *time.Timer) {
	select {
	case <-timer.C:
	case <-c.stopIdle:
		return
	}

	c.logger.Info("Shutdown signal received.")
	if err := c.shutdowner.Shutdown(); err != nil {
		c.logger.Errorf("shutting down: %v", err)
		os.Exit(1)
	}
}
