// Package sidebar implements the Rekit context menu: code actions for a selected path and the
// rekit.* commands they invoke.
package sidebar

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/entity"
	ideclient "github.com/rekit/rekit-lsp/src/rekit-lsp/gateway/ide-client"
	rerrors "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/outputpanel"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/rekitproject"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	workspaceutils "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/workspace-utils"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/mapper"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/repository/session"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_nameKey = "sidebar"

	// CommandPrefix namespaces every command id announced to the IDE.
	CommandPrefix = "rekit."
	// CodeActionKind is the kind of every code action offered for a selection.
	CodeActionKind = protocol.Source

	_coverageReportKey     = "rekit.coverageReport"
	_defaultCoverageReport = "coverage/lcov-report/index.html"
	_logMessagePrefix      = "rekit"
)

// Params defines the dependencies that will be available to this controller.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Sessions       session.Repository
	IdeGateway     ideclient.Gateway
	Classifier     *rekitproject.Classifier
	Runner         scriptrunner.Runner
	Panels         outputpanel.Manager
	WorkspaceUtils workspaceutils.WorkspaceUtils
	FS             fs.WorkspaceFS
	Logger         *zap.SugaredLogger
	Stats          tally.Scope
}

// Controller defines the methods that this controller provides.
type Controller interface {
	// Commands returns the ids of all commands, in menu order.
	Commands() []string
	// CodeActions returns one code action per command applicable to path.
	CodeActions(ctx context.Context, path string) ([]protocol.CodeAction, error)
	// ExecuteCommand validates the command against its selection and runs it in the background.
	// Failures after validation are reported to the IDE.
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) error
	// StartSession watches the features of the session's project and checks that the interpreter can be found.
	StartSession(ctx context.Context) error
	// EndSession releases everything held for the session.
	EndSession(ctx context.Context, id uuid.UUID) error
}

type controller struct {
	sessions       session.Repository
	ideGateway     ideclient.Gateway
	classifier     *rekitproject.Classifier
	runner         scriptrunner.Runner
	panels         outputpanel.Manager
	workspaceUtils workspaceutils.WorkspaceUtils
	fs             fs.WorkspaceFS
	logger         *zap.SugaredLogger
	stats          tally.Scope
	coverageReport string

	commands     []*command
	commandsByID map[string]*command

	watchersMu sync.Mutex
	watchers   map[uuid.UUID]*featureWatcher

	// pending tracks commands still running in the background.
	pending sync.WaitGroup
}

// New creates a new sidebar controller.
func New(p Params) (Controller, error) {
	coverageReport := _defaultCoverageReport
	if err := p.Config.Get(_coverageReportKey).Populate(&coverageReport); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _coverageReportKey, err)
	}

	c := &controller{
		sessions:       p.Sessions,
		ideGateway:     p.IdeGateway,
		classifier:     p.Classifier,
		runner:         p.Runner,
		panels:         p.Panels,
		workspaceUtils: p.WorkspaceUtils,
		fs:             p.FS,
		logger:         p.Logger.With("plugin", _nameKey),
		stats:          p.Stats.SubScope(_nameKey),
		coverageReport: filepath.FromSlash(coverageReport),
		watchers:       make(map[uuid.UUID]*featureWatcher),
	}
	c.commands = allCommands()
	c.commandsByID = make(map[string]*command, len(c.commands))
	for _, cmd := range c.commands {
		c.commandsByID[CommandPrefix+cmd.id] = cmd
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.closeWatchers()
		},
	})
	return c, nil
}

func (c *controller) Commands() []string {
	ids := make([]string, 0, len(c.commands))
	for _, cmd := range c.commands {
		ids = append(ids, CommandPrefix+cmd.id)
	}
	return ids
}

func (c *controller) CodeActions(ctx context.Context, path string) ([]protocol.CodeAction, error) {
	sel := c.classifier.Describe(path)
	if !sel.InProject {
		return []protocol.CodeAction{}, nil
	}

	args := entity.CommandArgs{Path: sel.Path}
	result := []protocol.CodeAction{}
	for _, cmd := range c.commands {
		if cmd.visible(sel) {
			result = append(result, mapper.NewCodeAction(cmd.title, CommandPrefix+cmd.id, CodeActionKind, args))
		}
	}
	return result, nil
}

func (c *controller) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) error {
	cmd, ok := c.commandsByID[params.Command]
	if !ok {
		return &rerrors.UnknownCommandError{Command: params.Command}
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session for command: %w", err)
	}

	args, err := mapper.ArgumentsToCommandArgs(params.Arguments)
	if err != nil {
		return fmt.Errorf("reading arguments of %s: %w", params.Command, err)
	}

	sel := c.classifier.Describe(args.Path)
	if !sel.InProject {
		return &rerrors.NotAProjectError{Path: sel.Path}
	}
	if !cmd.visible(sel) {
		return &rerrors.CommandNotApplicableError{Command: params.Command, Path: sel.Path}
	}

	panel, err := c.panel(ctx, s)
	if err != nil {
		return err
	}

	req := &request{
		session:  s,
		sel:      sel,
		args:     args,
		settings: c.workspaceUtils.GetSettings(ctx, sel.Root, s.Settings),
		panel:    panel,
	}
	c.stats.Tagged(map[string]string{"command": cmd.id}).Counter("executed").Inc(1)
	c.logger.Infow("executing command", "command", cmd.id, "path", sel.Path, "categories", sel.Categories.String())

	// Commands may wait for the user, so they must not block the connection that delivers the answer.
	bg := context.WithoutCancel(ctx)
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := cmd.run(c, bg, req); err != nil {
			c.logger.Warnw("command failed", "command", cmd.id, "error", err)
			c.showError(bg, fmt.Sprintf("%s failed: %v", cmd.title, err))
		}
	}()
	return nil
}

func (c *controller) StartSession(ctx context.Context) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("getting session: %w", err)
	}

	settings := c.workspaceUtils.GetSettings(ctx, s.WorkspaceRoot, s.Settings)
	c.probeInterpreter(ctx, s, settings)

	if !c.classifier.IsProjectRoot(s.WorkspaceRoot) {
		c.logger.Infof("%q is not a Rekit project root, features are not watched", s.WorkspaceRoot)
		return nil
	}

	panel, err := c.panel(ctx, s)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.WorkspaceRoot, filepath.FromSlash(c.classifier.Layout().FeaturesDir))
	w, err := newFeatureWatcher(c.fs, dir, panel, c.logger)
	if err != nil {
		return fmt.Errorf("watching features: %w", err)
	}

	c.watchersMu.Lock()
	old := c.watchers[s.UUID]
	c.watchers[s.UUID] = w
	c.watchersMu.Unlock()
	if old != nil {
		return old.Close()
	}
	return nil
}

func (c *controller) EndSession(ctx context.Context, id uuid.UUID) error {
	c.watchersMu.Lock()
	w := c.watchers[id]
	delete(c.watchers, id)
	c.watchersMu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	return multierr.Append(err, c.panels.Close(id))
}

// probeInterpreter warns early when generator scripts could not be launched.
func (c *controller) probeInterpreter(ctx context.Context, s *entity.Session, settings scriptrunner.Settings) {
	inv := scriptrunner.NewScriptInvocation(settings, os.Environ(), s.WorkspaceRoot, "", nil)
	if _, err := inv.LookPath(c.fs); err != nil {
		c.logger.Warnf("probing interpreter: %v", err)
		c.showMessage(ctx, protocol.MessageTypeWarning, err.Error())
	}
}

func (c *controller) closeWatchers() error {
	c.watchersMu.Lock()
	watchers := c.watchers
	c.watchers = make(map[uuid.UUID]*featureWatcher)
	c.watchersMu.Unlock()

	var err error
	for _, w := range watchers {
		err = multierr.Append(err, w.Close())
	}
	return err
}

// panel returns the output panel of s, mirrored to the IDE log.
func (c *controller) panel(ctx context.Context, s *entity.Session) (outputpanel.Panel, error) {
	var mirror io.Writer
	w, err := c.ideGateway.GetLogMessageWriter(context.WithoutCancel(ctx), _logMessagePrefix)
	if err != nil {
		c.logger.Warnf("output will not be mirrored to the IDE log: %v", err)
	} else {
		mirror = w
	}

	panel, err := c.panels.Panel(s.UUID, mirror)
	if err != nil {
		return nil, fmt.Errorf("getting output panel: %w", err)
	}
	return panel, nil
}

func (c *controller) showError(ctx context.Context, msg string) {
	c.showMessage(ctx, protocol.MessageTypeError, msg)
}

func (c *controller) showMessage(ctx context.Context, t protocol.MessageType, msg string) {
	if err := c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{Type: t, Message: msg}); err != nil {
		c.logger.Warnf("showing message %q: %v", msg, err)
	}
}

// confirm asks the user to pick action or Cancel. Dismissing the prompt counts as Cancel.
func (c *controller) confirm(ctx context.Context, msg string, action string) (bool, error) {
	item, err := c.ideGateway.ShowMessageRequest(ctx, &protocol.ShowMessageRequestParams{
		Type:    protocol.MessageTypeWarning,
		Message: msg,
		Actions: []protocol.MessageActionItem{{Title: action}, {Title: _actionCancel}},
	})
	if err != nil {
		return false, fmt.Errorf("asking for confirmation: %w", err)
	}
	return item != nil && item.Title == action, nil
}

// showDocument opens path in the IDE, or in the system default application when external is set.
func (c *controller) showDocument(ctx context.Context, path string, external bool) error {
	result, err := c.ideGateway.ShowDocument(ctx, &protocol.ShowDocumentParams{
		URI:       mapper.PathToURI(path),
		External:  external,
		TakeFocus: !external,
	})
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if !result.Success {
		c.logger.Warnf("IDE did not open %s", path)
	}
	return nil
}
