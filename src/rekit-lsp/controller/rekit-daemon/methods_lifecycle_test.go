package rekitdaemon

import (
	"context"
	"errors"
	"testing"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/controller/sidebar"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/entity"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/factory"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var _commands = []string{"rekit.addFeature", "rekit.build"}

func TestInitialize(t *testing.T) {
	t.Run("initialize success", func(t *testing.T) {
		c, m := newTestController(t)
		s := &entity.Session{UUID: factory.UUID()}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)
		params := &protocol.InitializeParams{
			WorkspaceFolders:      []protocol.WorkspaceFolder{{URI: "file:///home/dev/shop", Name: "shop"}},
			InitializationOptions: map[string]interface{}{"interpreter": "/opt/node/bin/node"},
		}

		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.workspace.EXPECT().GetWorkspaceRoot(gomock.Any(), params).Return("/home/dev/shop", nil)
		m.sessions.EXPECT().Set(gomock.Any(), s).Return(nil)
		m.sidebar.EXPECT().Commands().Return(_commands)

		res, err := c.Initialize(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, "Rekit Language Server", res.ServerInfo.Name)
		assert.Equal(t, &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{sidebar.CodeActionKind},
		}, res.Capabilities.CodeActionProvider)
		require.NotNil(t, res.Capabilities.ExecuteCommandProvider)
		assert.Equal(t, _commands, res.Capabilities.ExecuteCommandProvider.Commands)

		assert.Equal(t, params, s.InitializeParams)
		assert.Equal(t, "/home/dev/shop", s.WorkspaceRoot)
		assert.Equal(t, "/opt/node/bin/node", s.Settings.Interpreter)
		assert.Equal(t, "npm", s.Settings.PackageManager)
	})

	t.Run("invalid initialization options fall back to defaults", func(t *testing.T) {
		c, m := newTestController(t)
		s := &entity.Session{UUID: factory.UUID()}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)
		params := &protocol.InitializeParams{InitializationOptions: "node"}

		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.workspace.EXPECT().GetWorkspaceRoot(gomock.Any(), params).Return("/home/dev/shop", nil)
		m.gateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *protocol.ShowMessageParams) error {
			assert.Equal(t, protocol.MessageTypeWarning, p.Type)
			assert.Contains(t, p.Message, "initialization options")
			return nil
		})
		m.sessions.EXPECT().Set(gomock.Any(), s).Return(nil)
		m.sidebar.EXPECT().Commands().Return(_commands)

		_, err := c.Initialize(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, scriptrunner.DefaultSettings(), s.Settings)
	})

	t.Run("get workspace root failure", func(t *testing.T) {
		c, m := newTestController(t)
		s := &entity.Session{UUID: factory.UUID()}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)
		params := &protocol.InitializeParams{}

		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.workspace.EXPECT().GetWorkspaceRoot(gomock.Any(), params).Return("", errors.New("no workspace folders provided"))
		m.sessions.EXPECT().Set(gomock.Any(), s).Return(nil)
		m.sidebar.EXPECT().Commands().Return(_commands)

		res, err := c.Initialize(ctx, params)
		require.NoError(t, err)
		assert.NotNil(t, res.Capabilities.ExecuteCommandProvider)
		assert.Empty(t, s.WorkspaceRoot)
	})

	t.Run("missing session uuid in context", func(t *testing.T) {
		c, m := newTestController(t)
		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(nil, errors.New("sample"))

		_, err := c.Initialize(context.Background(), &protocol.InitializeParams{})
		assert.Error(t, err)
	})

	t.Run("session update failure", func(t *testing.T) {
		c, m := newTestController(t)
		s := &entity.Session{UUID: factory.UUID()}
		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.workspace.EXPECT().GetWorkspaceRoot(gomock.Any(), gomock.Any()).Return("/home/dev/shop", nil)
		m.sessions.EXPECT().Set(gomock.Any(), s).Return(errors.New("sample"))

		_, err := c.Initialize(context.Background(), &protocol.InitializeParams{})
		assert.Error(t, err)
	})
}

func TestInitialized(t *testing.T) {
	t.Run("workspace open", func(t *testing.T) {
		c, m := newTestController(t)
		s := &entity.Session{UUID: factory.UUID(), WorkspaceRoot: "/home/dev/shop"}
		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.sidebar.EXPECT().StartSession(gomock.Any()).Return(nil)
		m.gateway.EXPECT().ShowMessage(gomock.Any(), &protocol.ShowMessageParams{
			Message: "Connection to Rekit Language Server is now initialized.",
			Type:    protocol.MessageTypeInfo,
		}).Return(nil)

		assert.NoError(t, c.Initialized(context.Background(), &protocol.InitializedParams{}))
	})

	t.Run("no workspace and sidebar failure", func(t *testing.T) {
		c, m := newTestController(t)
		core, recorded := observer.New(zap.ErrorLevel)
		c.logger = zap.New(core).Sugar()

		s := &entity.Session{UUID: factory.UUID()}
		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.sidebar.EXPECT().StartSession(gomock.Any()).Return(errors.New("too many open files"))
		m.gateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *protocol.ShowMessageParams) error {
			assert.Equal(t, protocol.MessageTypeWarning, p.Type)
			return nil
		})

		assert.NoError(t, c.Initialized(context.Background(), &protocol.InitializedParams{}))
		require.Equal(t, 1, recorded.Len())
		assert.Contains(t, recorded.All()[0].Message, "too many open files")
	})

	t.Run("missing session", func(t *testing.T) {
		c, m := newTestController(t)
		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(nil, errors.New("sample"))

		assert.Error(t, c.Initialized(context.Background(), &protocol.InitializedParams{}))
	})
}

func TestShutdown(t *testing.T) {
	c, _ := newTestController(t)

	ctx := context.WithValue(context.Background(), entity.SessionContextKey, factory.UUID())
	assert.NoError(t, c.Shutdown(ctx))
	assert.Error(t, c.Shutdown(context.Background()))
}

func TestExit(t *testing.T) {
	t.Run("session exit", func(t *testing.T) {
		c, m := newTestController(t)
		s := &entity.Session{UUID: factory.UUID()}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		m.sidebar.EXPECT().EndSession(gomock.Any(), s.UUID).Return(nil)
		m.gateway.EXPECT().DeregisterClient(gomock.Any(), s.UUID).Return(nil)
		m.sessions.EXPECT().Delete(gomock.Any(), s.UUID).Return(nil)
		m.sessions.EXPECT().SessionCount(gomock.Any()).Return(1, nil)

		assert.NoError(t, c.Exit(ctx))
	})

	t.Run("missing session", func(t *testing.T) {
		c, m := newTestController(t)
		m.sessions.EXPECT().GetFromContext(gomock.Any()).Return(nil, errors.New("sample"))

		assert.Error(t, c.Exit(context.Background()))
	})
}
