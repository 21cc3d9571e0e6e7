package rekitdaemon

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/controller/sidebar"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Initialize stores information about a new connection and announces the Rekit commands.
func (c *controller) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting session from context: %w", err)
	}

	s.InitializeParams = params
	if s.WorkspaceRoot, err = c.workspaceUtils.GetWorkspaceRoot(ctx, params); err != nil {
		c.logger.Warnf("getting workspace root: %s", err)
	}

	overrides, err := mapper.InitializationOptionsToSettings(params.InitializationOptions)
	if err != nil {
		c.logger.Warnf("ignoring initialization options: %s", err)
		c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Type:    protocol.MessageTypeWarning,
			Message: fmt.Sprintf("Ignoring invalid initialization options: %v", err),
		})
	}
	s.Settings = c.defaultSettings.Merge(overrides)

	if err := c.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("setting updated session state: %w", err)
	}

	return mapper.CommandsToInitializeResult(_serverName, []protocol.CodeActionKind{sidebar.CodeActionKind}, c.sidebar.Commands()), nil
}

// Initialized starts the per-session work of the sidebar once the client is ready for requests.
func (c *controller) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session from context: %w", err)
	}

	if err := c.sidebar.StartSession(ctx); err != nil {
		c.logger.Errorf("starting sidebar session: %s", err)
	}

	if s.WorkspaceRoot != "" {
		c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Message: "Connection to Rekit Language Server is now initialized.",
			Type:    protocol.MessageTypeInfo,
		})
	} else {
		c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Message: "No workspace folder is open. Rekit commands are offered for files inside a Rekit project.",
			Type:    protocol.MessageTypeWarning,
		})
	}

	return nil
}

// Shutdown is sent just before Exit to indicate that the session will exit.
func (c *controller) Shutdown(ctx context.Context) error {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return err
	}
	c.logger.Infow("shutdown requested", "session", id.String(), "full", c.fullShutdown.Load())
	return nil
}

// Exit will be used to either clean up from an individual connection, or shutdown the whole server.
func (c *controller) Exit(ctx context.Context) error {
	if c.fullShutdown.Load() {
		// Zero out the timer to trigger immediate shutdown.
		c.idleTimerMu.Lock()
		if c.idleTimer != nil {
			c.idleTimer.Reset(0)
		}
		c.idleTimerMu.Unlock()
		return nil
	}
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("error during session exit: %w", err)
	}

	return c.EndSession(ctx, s.UUID)
}

// RequestFullShutdown will set the controller to treat subsequent Shutdown and Exit requests as requests to exit the entire process.
func (c *controller) RequestFullShutdown(ctx context.Context) error {
	c.fullShutdown.Store(true)
	return nil
}

// InitSession creates a new empty session and returns its UUID.
func (c *controller) InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error) {
	defer c.refreshIdleTimer(ctx)

	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	s := mapper.UUIDToSession(id, conn)
	if err := c.ideGateway.RegisterClient(ctx, id, conn); err != nil {
		return uuid.Nil, err
	}

	if err := c.sessions.Set(ctx, s); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// EndSession includes any cleanup at the end of the session, during or after the last JSON-RPC request.
func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	defer c.refreshIdleTimer(ctx)

	if err := c.sidebar.EndSession(ctx, id); err != nil {
		c.logger.Errorf("ending sidebar session: %s", err)
	}

	if err := c.ideGateway.DeregisterClient(ctx, id); err != nil {
		c.logger.Error(err)
	}

	return c.sessions.Delete(ctx, id)
}
