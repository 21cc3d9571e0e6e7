// Package workspaceutils resolves the directory and settings a session works with.
package workspaceutils

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	ideclient "github.com/rekit/rekit-lsp/src/rekit-lsp/gateway/ide-client"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/rekitproject"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/mapper"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a new WorkspaceUtils.
var Module = fx.Provide(New)

// WorkspaceUtils is a utility interface for getting workspace related information.
type WorkspaceUtils interface {
	// GetWorkspaceRoot returns the Rekit project root of the workspace, or the first workspace directory
	// when no folder belongs to a project. Workspace folders are consulted before rootUri and rootPath.
	GetWorkspaceRoot(ctx context.Context, params *protocol.InitializeParams) (string, error)
	// GetSettings returns base with the workspace settings file of root applied.
	// Invalid entries are reported to the IDE and skipped.
	GetSettings(ctx context.Context, root string, base scriptrunner.Settings) scriptrunner.Settings
}

// Params are the parameters required to create a new WorkspaceUtils.
type Params struct {
	fx.In

	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	FS         fs.WorkspaceFS
	Classifier *rekitproject.Classifier
}

type workspaceUtilsImpl struct {
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger
	fs         fs.WorkspaceFS
	classifier *rekitproject.Classifier
}

// New creates a new WorkspaceUtils.
func New(p Params) WorkspaceUtils {
	return &workspaceUtilsImpl{
		ideGateway: p.IdeGateway,
		logger:     p.Logger,
		fs:         p.FS,
		classifier: p.Classifier,
	}
}

func (c *workspaceUtilsImpl) GetWorkspaceRoot(ctx context.Context, params *protocol.InitializeParams) (string, error) {
	if params == nil {
		return "", fmt.Errorf("no initialize params provided")
	}
	dirs, searched := c.candidateDirs(params)
	if len(dirs) == 0 {
		if len(searched) == 0 {
			return "", fmt.Errorf("no workspace folders provided")
		}
		return "", fmt.Errorf("unable to determine a workspace root among the following searched folders: %v", strings.Join(searched, ", "))
	}

	// The first folder inside a project wins; other projects in the same workspace are reported.
	result := ""
	for _, dir := range dirs {
		root, ok := c.classifier.LocateRoot(dir)
		if !ok {
			continue
		}
		if result == "" {
			result = root
		} else if result != root {
			msg := fmt.Sprintf("Workspace root is %q, but the Rekit project %q is also included. Its features are not watched in this session.", result, root)
			if err := c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
				Type:    protocol.MessageTypeWarning,
				Message: msg,
			}); err != nil {
				c.logger.Warnf("showing workspace root warning: %v", err)
			}
			c.logger.Warn(msg)
			break
		}
	}

	if result == "" {
		c.logger.Infof("no Rekit project found in workspace, using %q", dirs[0])
		return dirs[0], nil
	}
	return result, nil
}

// candidateDirs returns the usable directories of params in order of preference, plus every value searched.
func (c *workspaceUtilsImpl) candidateDirs(params *protocol.InitializeParams) (dirs []string, searched []string) {
	addURI := func(u protocol.DocumentURI) {
		if u == "" {
			return
		}
		searched = append(searched, string(u))
		// Workspace files may contain improperly formatted or nonexistent folders.
		p, err := mapper.DocumentURIToPath(u)
		if err != nil {
			return
		}
		if ok, err := c.fs.DirExists(p); err == nil && ok {
			dirs = append(dirs, p)
		}
	}

	for _, folder := range params.WorkspaceFolders {
		addURI(protocol.DocumentURI(folder.URI))
	}
	addURI(params.RootURI)
	if params.RootPath != "" && filepath.IsAbs(params.RootPath) {
		addURI(mapper.PathToURI(params.RootPath))
	}
	return dirs, searched
}

func (c *workspaceUtilsImpl) GetSettings(ctx context.Context, root string, base scriptrunner.Settings) scriptrunner.Settings {
	if root == "" {
		return base
	}
	ws, err := scriptrunner.LoadWorkspaceSettings(c.fs, root)
	if err != nil {
		msg := fmt.Sprintf("Ignoring invalid workspace settings: %v", err)
		c.logger.Warn(msg)
		if err := c.ideGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
			Type:    protocol.MessageTypeWarning,
			Message: msg,
		}); err != nil {
			c.logger.Warnf("showing workspace settings warning: %v", err)
		}
	}
	return base.Merge(ws)
}
