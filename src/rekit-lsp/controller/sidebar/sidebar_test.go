package sidebar

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/entity"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/factory"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/gateway/ide-client/ideclientmock"
	rerrors "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/outputpanel/outputpanelmock"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/rekitproject"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner/scriptrunnermock"
	workspaceutils "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/workspace-utils"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/mapper"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/repository/session/repositorymock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _sampleProject = map[string]string{
	"tools/feature_template/index.js":          "",
	"src/features/checkout/Cart.js":            "export class Cart extends Component {}\nexport default Cart;\n",
	"src/features/checkout/CheckoutPage.js":    "export class CheckoutPage extends Component {}\nexport default connect(mapStateToProps)(CheckoutPage);\n",
	"src/features/checkout/redux/actions.js":   "export { addItem } from './addItem';\nexport { fetchCart, dismissFetchCartError } from './fetchCart';\n",
	"src/features/checkout/redux/addItem.js":   "export function addItem(item) {}\n",
	"src/features/checkout/redux/fetchCart.js": "export function fetchCart(args = {}) {}\nexport function dismissFetchCartError() {}\n",
	"src/features/checkout/redux/reducer.js":   "export default function reducer(state, action) {}\n",
	"test/app/features/checkout/Cart.test.js":  "describe('checkout/Cart', () => {});\n",
	"coverage/lcov-report/index.html":          "<html></html>",
}

var _projectWide = []string{"rekit.runCliTests", "rekit.showOutput", "rekit.clearOutput", "rekit.openCoverage", "rekit.build"}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// fakePanel is an in-memory output panel.
type fakePanel struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	path     string
	clearErr error
}

func (p *fakePanel) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(data)
}

func (p *fakePanel) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clearErr != nil {
		return p.clearErr
	}
	p.buf.Reset()
	return nil
}

func (p *fakePanel) Path() string {
	return p.path
}

func (p *fakePanel) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.String()
}

type testEnv struct {
	c       *controller
	ctx     context.Context
	root    string
	session *entity.Session
	panel   *fakePanel
	scope   tally.TestScope

	gateway *ideclientmock.MockGateway
	runner  *scriptrunnermock.MockRunner
	panels  *outputpanelmock.MockManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	writeTree(t, root, _sampleProject)

	wfs := fs.New()
	classifier := rekitproject.New(wfs, rekitproject.DefaultLayout())
	gateway := ideclientmock.NewMockGateway(ctrl)
	gateway.EXPECT().GetLogMessageWriter(gomock.Any(), _logMessagePrefix).Return(io.Discard, nil).AnyTimes()

	panel := &fakePanel{path: filepath.Join(t.TempDir(), "output.log")}
	panels := outputpanelmock.NewMockManager(ctrl)
	panels.EXPECT().Panel(gomock.Any(), gomock.Any()).Return(panel, nil).AnyTimes()

	s := &entity.Session{
		UUID:          factory.UUID(),
		WorkspaceRoot: root,
		Settings:      scriptrunner.DefaultSettings(),
	}
	sessions := repositorymock.NewMockRepository(ctrl)
	sessions.EXPECT().GetFromContext(gomock.Any()).Return(s, nil).AnyTimes()

	cfg, err := config.NewYAML(config.Source(strings.NewReader("rekit:\n  coverageReport: coverage/lcov-report/index.html\n")))
	require.NoError(t, err)

	runner := scriptrunnermock.NewMockRunner(ctrl)
	scope := tally.NewTestScope("testing", nil)
	logger := zap.NewNop().Sugar()
	c, err := New(Params{
		Config:     cfg,
		Lifecycle:  fxtest.NewLifecycle(t),
		Sessions:   sessions,
		IdeGateway: gateway,
		Classifier: classifier,
		Runner:     runner,
		Panels:     panels,
		WorkspaceUtils: workspaceutils.New(workspaceutils.Params{
			IdeGateway: gateway,
			Logger:     logger,
			FS:         wfs,
			Classifier: classifier,
		}),
		FS:     wfs,
		Logger: logger,
		Stats:  scope,
	})
	require.NoError(t, err)

	return &testEnv{
		c:       c.(*controller),
		ctx:     context.WithValue(context.Background(), entity.SessionContextKey, s.UUID),
		root:    root,
		session: s,
		panel:   panel,
		scope:   scope,
		gateway: gateway,
		runner:  runner,
		panels:  panels,
	}
}

func (e *testEnv) path(rel string) string {
	return filepath.Join(e.root, filepath.FromSlash(rel))
}

// execute runs a command and waits until its background part finished.
func (e *testEnv) execute(id string, args entity.CommandArgs) error {
	err := e.c.ExecuteCommand(e.ctx, &protocol.ExecuteCommandParams{
		Command:   CommandPrefix + id,
		Arguments: []interface{}{args},
	})
	e.c.pending.Wait()
	return err
}

// expectScript lets the next RunScript call of script finish, calling onDone when it succeeds.
func (e *testEnv) expectScript(script string, args []string, result error) *gomock.Call {
	return e.runner.EXPECT().RunScript(gomock.Any(), e.root, script, args, e.panel, gomock.Any()).DoAndReturn(
		func(_ scriptrunner.Settings, _, _ string, _ []string, _ io.Writer, onDone func()) *scriptrunner.Task {
			return finishedTask(script, result, onDone)
		})
}

func (e *testEnv) expectMessage(t protocol.MessageType, msg string) {
	e.gateway.EXPECT().ShowMessage(gomock.Any(), &protocol.ShowMessageParams{Type: t, Message: msg}).Return(nil)
}

func (e *testEnv) expectConfirm(msg, action string, answer *protocol.MessageActionItem) {
	e.gateway.EXPECT().ShowMessageRequest(gomock.Any(), &protocol.ShowMessageRequestParams{
		Type:    protocol.MessageTypeWarning,
		Message: msg,
		Actions: []protocol.MessageActionItem{{Title: action}, {Title: _actionCancel}},
	}).Return(answer, nil)
}

func (e *testEnv) expectShowDocument(path string, external bool) {
	e.gateway.EXPECT().ShowDocument(gomock.Any(), &protocol.ShowDocumentParams{
		URI:       mapper.PathToURI(path),
		External:  external,
		TakeFocus: !external,
	}).Return(&protocol.ShowDocumentResult{Success: true}, nil)
}

func finishedTask(name string, err error, onDone func()) *scriptrunner.Task {
	inv := scriptrunner.Invocation{Name: name}
	if err != nil {
		return scriptrunner.NewFinishedTask(inv, scriptrunner.LaunchFailed, err)
	}
	if onDone != nil {
		onDone()
	}
	return scriptrunner.NewFinishedTask(inv, scriptrunner.Completed, nil)
}

func TestCommands(t *testing.T) {
	e := newTestEnv(t)
	ids := e.c.Commands()
	assert.Len(t, ids, 18)
	assert.Equal(t, "rekit.addFeature", ids[0])
	assert.Equal(t, "rekit.build", ids[len(ids)-1])
	for _, id := range ids {
		assert.True(t, strings.HasPrefix(id, CommandPrefix), id)
	}
}

func TestCodeActions(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		rel      string
		expected []string
	}{
		{
			name:     "features folder",
			rel:      "src/features",
			expected: []string{"rekit.addFeature"},
		},
		{
			name:     "feature",
			rel:      "src/features/checkout",
			expected: []string{"rekit.removeFeature", "rekit.addComponent", "rekit.addPage", "rekit.addAction", "rekit.addAsyncAction"},
		},
		{
			name:     "component",
			rel:      "src/features/checkout/Cart.js",
			expected: []string{"rekit.removeComponent", "rekit.unitTest"},
		},
		{
			name:     "page",
			rel:      "src/features/checkout/CheckoutPage.js",
			expected: []string{"rekit.removePage", "rekit.unitTest"},
		},
		{
			name:     "sync action",
			rel:      "src/features/checkout/redux/addItem.js",
			expected: []string{"rekit.addAction", "rekit.removeAction", "rekit.addAsyncAction", "rekit.unitTest"},
		},
		{
			name: "async action",
			rel:  "src/features/checkout/redux/fetchCart.js",
			expected: []string{
				"rekit.addAction", "rekit.removeAction", "rekit.addAsyncAction", "rekit.removeAsyncAction", "rekit.unitTest",
			},
		},
		{
			name: "action index",
			rel:  "src/features/checkout/redux/actions.js",
			expected: []string{
				"rekit.addAction", "rekit.removeAction", "rekit.addAsyncAction", "rekit.removeAsyncAction", "rekit.unitTest",
			},
		},
		{
			name:     "reducer",
			rel:      "src/features/checkout/redux/reducer.js",
			expected: []string{"rekit.unitTest"},
		},
		{
			name:     "test file",
			rel:      "test/app/features/checkout/Cart.test.js",
			expected: []string{"rekit.runTest"},
		},
		{
			name:     "test folder",
			rel:      "test/app/features/checkout",
			expected: []string{"rekit.runTestFolder"},
		},
		{
			name:     "other file",
			rel:      "coverage/lcov-report/index.html",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := e.path(tt.rel)
			actions, err := e.c.CodeActions(e.ctx, path)
			require.NoError(t, err)

			var commands []string
			for _, a := range actions {
				assert.Equal(t, CodeActionKind, a.Kind)
				require.NotNil(t, a.Command)
				assert.Equal(t, a.Title, a.Command.Title)
				require.Len(t, a.Command.Arguments, 1)
				assert.Equal(t, entity.CommandArgs{Path: path}, a.Command.Arguments[0])
				commands = append(commands, a.Command.Command)
			}
			assert.Equal(t, append(tt.expected, _projectWide...), commands)
		})
	}

	t.Run("outside a project", func(t *testing.T) {
		actions, err := e.c.CodeActions(e.ctx, t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, actions)
		assert.Empty(t, actions)
	})
}

func TestExecuteCommandValidation(t *testing.T) {
	e := newTestEnv(t)

	t.Run("unknown command", func(t *testing.T) {
		err := e.c.ExecuteCommand(e.ctx, &protocol.ExecuteCommandParams{Command: "rekit.deploy"})
		var unknown *rerrors.UnknownCommandError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "rekit.deploy", unknown.Command)
	})

	t.Run("missing path", func(t *testing.T) {
		err := e.c.ExecuteCommand(e.ctx, &protocol.ExecuteCommandParams{Command: "rekit.build"})
		require.ErrorIs(t, err, rerrors.MissingPathError)
	})

	t.Run("outside a project", func(t *testing.T) {
		outside := t.TempDir()
		err := e.execute("build", entity.CommandArgs{Path: outside})
		var notAProject *rerrors.NotAProjectError
		require.ErrorAs(t, err, &notAProject)
		assert.Equal(t, outside, notAProject.Path)
	})

	t.Run("not applicable to the selection", func(t *testing.T) {
		path := e.path("src/features/checkout/Cart.js")
		err := e.execute("removeFeature", entity.CommandArgs{Path: path})
		var notApplicable *rerrors.CommandNotApplicableError
		require.ErrorAs(t, err, &notApplicable)
		assert.Equal(t, "rekit.removeFeature", notApplicable.Command)
		assert.Equal(t, path, notApplicable.Path)
	})
}

func TestAddCommands(t *testing.T) {
	t.Run("add feature", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectScript("add_feature", []string{"payments"}, nil)

		require.NoError(t, e.execute("addFeature", entity.CommandArgs{Path: e.path("src/features"), Name: "payments"}))
		assert.Equal(t, "add_feature payments: done\n", e.panel.String())

		counters := e.scope.Snapshot().Counters()
		require.Contains(t, counters, "testing.sidebar.executed+command=addFeature")
		assert.Equal(t, int64(1), counters["testing.sidebar.executed+command=addFeature"].Value())
	})

	t.Run("missing name", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectMessage(protocol.MessageTypeError, "Feature name is required.")

		require.NoError(t, e.execute("addFeature", entity.CommandArgs{Path: e.path("src/features"), Name: "   "}))
		assert.Empty(t, e.panel.String())
	})

	t.Run("names are qualified with the selected feature", func(t *testing.T) {
		e := newTestEnv(t)
		feature := e.path("src/features/checkout")
		e.expectScript("add_component", []string{"checkout/Hello", "--connect"}, nil)
		e.expectScript("add_async_action", []string{"orders/fetchOrders"}, nil)

		require.NoError(t, e.execute("addComponent", entity.CommandArgs{Path: feature, Name: "Hello --connect"}))
		require.NoError(t, e.execute("addAsyncAction", entity.CommandArgs{Path: feature, Name: "orders/fetchOrders"}))
	})

	t.Run("add action from an action file", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectScript("add_action", []string{"checkout/removeItem"}, nil)

		require.NoError(t, e.execute("addAction", entity.CommandArgs{
			Path: e.path("src/features/checkout/redux/addItem.js"),
			Name: "removeItem",
		}))
	})
}

func TestRemoveCommands(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectConfirm("Remove Feature: checkout?", _actionRemove, &protocol.MessageActionItem{Title: _actionRemove})
		e.expectScript("rm_feature", []string{"checkout"}, nil)

		require.NoError(t, e.execute("removeFeature", entity.CommandArgs{Path: e.path("src/features/checkout")}))
		assert.Equal(t, "rm_feature checkout: done\n", e.panel.String())
	})

	t.Run("declined", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectConfirm("Remove Component: checkout/Cart?", _actionRemove, &protocol.MessageActionItem{Title: _actionCancel})

		require.NoError(t, e.execute("removeComponent", entity.CommandArgs{Path: e.path("src/features/checkout/Cart.js")}))
		assert.Empty(t, e.panel.String())
	})

	t.Run("dismissed", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectConfirm("Remove Page: checkout/CheckoutPage?", _actionRemove, nil)

		require.NoError(t, e.execute("removePage", entity.CommandArgs{Path: e.path("src/features/checkout/CheckoutPage.js")}))
	})

	t.Run("prompt failure is reported", func(t *testing.T) {
		e := newTestEnv(t)
		e.gateway.EXPECT().ShowMessageRequest(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection closed"))
		e.expectMessage(protocol.MessageTypeError, "Remove Feature failed: asking for confirmation: connection closed")

		require.NoError(t, e.execute("removeFeature", entity.CommandArgs{Path: e.path("src/features/checkout")}))
	})

	t.Run("action file without a name", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectConfirm("Remove Async Action: checkout/fetchCart?", _actionRemove, &protocol.MessageActionItem{Title: _actionRemove})
		e.expectScript("rm_async_action", []string{"checkout/fetchCart"}, nil)

		require.NoError(t, e.execute("removeAsyncAction", entity.CommandArgs{Path: e.path("src/features/checkout/redux/fetchCart.js")}))
	})

	t.Run("action index requires a name", func(t *testing.T) {
		e := newTestEnv(t)
		index := e.path("src/features/checkout/redux/actions.js")
		e.expectMessage(protocol.MessageTypeError, "Action name is required.")
		require.NoError(t, e.execute("removeAction", entity.CommandArgs{Path: index}))

		e.expectConfirm("Remove Action: checkout/addItem?", _actionRemove, &protocol.MessageActionItem{Title: _actionRemove})
		e.expectScript("rm_action", []string{"checkout/addItem"}, nil)
		require.NoError(t, e.execute("removeAction", entity.CommandArgs{Path: index, Name: "addItem"}))
	})
}

func TestUnitTest(t *testing.T) {
	t.Run("existing test is opened", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectShowDocument(e.path("test/app/features/checkout/Cart.test.js"), false)

		require.NoError(t, e.execute("unitTest", entity.CommandArgs{Path: e.path("src/features/checkout/Cart.js")}))
	})

	t.Run("missing test is created on request", func(t *testing.T) {
		e := newTestEnv(t)
		testPath := e.path("test/app/features/checkout/CheckoutPage.test.js")
		e.expectConfirm(_confirmCreateTest, _actionCreate, &protocol.MessageActionItem{Title: _actionCreate})
		e.expectShowDocument(testPath, false)

		require.NoError(t, e.execute("unitTest", entity.CommandArgs{Path: e.path("src/features/checkout/CheckoutPage.js")}))

		content, err := os.ReadFile(testPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "import * as subject from '../../../../src/features/checkout/CheckoutPage';\n")
		assert.Contains(t, string(content), "describe('checkout/CheckoutPage', () => {\n")
		assert.Equal(t, "created "+testPath+"\n", e.panel.String())
	})

	t.Run("missing test is left alone when declined", func(t *testing.T) {
		e := newTestEnv(t)
		testPath := e.path("test/app/features/checkout/reducer.test.js")
		e.expectConfirm(_confirmCreateTest, _actionCreate, &protocol.MessageActionItem{Title: _actionCancel})

		require.NoError(t, e.execute("unitTest", entity.CommandArgs{Path: e.path("src/features/checkout/redux/reducer.js")}))
		_, err := os.Stat(testPath)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestUnitTestSkeleton(t *testing.T) {
	sel := rekitproject.Selection{
		Path:    "/p/src/components/Button.js",
		Name:    "Button",
		Feature: "",
	}
	got := unitTestSkeleton("/p/test/app/components/Button.test.js", sel)
	assert.True(t, strings.HasPrefix(got, "import * as subject from '../../../src/components/Button';\n"), got)
	assert.Contains(t, got, "describe('Button', () => {")

	sel = rekitproject.Selection{Path: "/p/lib/Widget.js", Name: "Widget"}
	got = unitTestSkeleton("/p/lib/Widget.test.js", sel)
	assert.True(t, strings.HasPrefix(got, "import * as subject from './Widget';\n"), got)
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "home/Hello", qualify("home", "Hello"))
	assert.Equal(t, "other/Hello", qualify("home", "other/Hello"))
	assert.Equal(t, "Hello", qualify("", "Hello"))
}

func TestRunCommands(t *testing.T) {
	t.Run("run test passes the project relative path", func(t *testing.T) {
		e := newTestEnv(t)
		e.runner.EXPECT().RunScript(gomock.Any(), e.root, "run_test", []string{"test/app/features/checkout/Cart.test.js"}, e.panel, gomock.Nil()).
			Return(finishedTask("run_test", nil, nil))

		require.NoError(t, e.execute("runTest", entity.CommandArgs{Path: e.path("test/app/features/checkout/Cart.test.js")}))
		assert.Empty(t, e.panel.String())
	})

	t.Run("run tests in folder", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectScript("run_test", []string{"test/app/features/checkout"}, nil)

		require.NoError(t, e.execute("runTestFolder", entity.CommandArgs{Path: e.path("test/app/features/checkout")}))
	})

	t.Run("cli tests run the package script", func(t *testing.T) {
		e := newTestEnv(t)
		e.runner.EXPECT().RunPackageScript(gomock.Any(), e.root, _cliTestScript, e.panel, gomock.Nil()).
			Return(finishedTask(_cliTestScript, nil, nil))

		require.NoError(t, e.execute("runCliTests", entity.CommandArgs{Path: e.path("src")}))
	})

	t.Run("build", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectScript("build", nil, nil)

		require.NoError(t, e.execute("build", entity.CommandArgs{Path: e.root}))
	})

	t.Run("missing interpreter is shown", func(t *testing.T) {
		e := newTestEnv(t)
		nf := &rerrors.InterpreterNotFoundError{Interpreter: "node", SearchPath: "/usr/bin"}
		e.expectScript("build", nil, nf)
		e.expectMessage(protocol.MessageTypeError, nf.Error())

		require.NoError(t, e.execute("build", entity.CommandArgs{Path: e.root}))
	})

	t.Run("other failures stay in the panel", func(t *testing.T) {
		e := newTestEnv(t)
		e.runner.EXPECT().RunScript(gomock.Any(), e.root, "build", []string(nil), e.panel, gomock.Any()).
			Return(scriptrunner.NewFinishedTask(scriptrunner.Invocation{Name: "build"}, scriptrunner.RuntimeError, errors.New("build exited with code 1")))

		require.NoError(t, e.execute("build", entity.CommandArgs{Path: e.root}))
	})
}

func TestOutputCommands(t *testing.T) {
	t.Run("show output", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectShowDocument(e.panel.Path(), false)

		require.NoError(t, e.execute("showOutput", entity.CommandArgs{Path: e.root}))
	})

	t.Run("clear output", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.panel.Write([]byte("old output\n"))
		require.NoError(t, err)

		require.NoError(t, e.execute("clearOutput", entity.CommandArgs{Path: e.root}))
		assert.Empty(t, e.panel.String())
	})

	t.Run("clear failure is shown", func(t *testing.T) {
		e := newTestEnv(t)
		e.panel.clearErr = errors.New("read-only file system")
		e.expectMessage(protocol.MessageTypeError, "Clear Output failed: read-only file system")

		require.NoError(t, e.execute("clearOutput", entity.CommandArgs{Path: e.root}))
	})
}

func TestOpenCoverage(t *testing.T) {
	t.Run("report is opened externally", func(t *testing.T) {
		e := newTestEnv(t)
		e.expectShowDocument(e.path("coverage/lcov-report/index.html"), true)

		require.NoError(t, e.execute("openCoverage", entity.CommandArgs{Path: e.root}))
	})

	t.Run("missing report", func(t *testing.T) {
		e := newTestEnv(t)
		report := e.path("coverage/lcov-report/index.html")
		require.NoError(t, os.Remove(report))
		e.expectMessage(protocol.MessageTypeWarning, "No coverage report at "+report+". Run the tests with coverage first.")

		require.NoError(t, e.execute("openCoverage", entity.CommandArgs{Path: e.root}))
	})
}

func TestNewInvalidConfig(t *testing.T) {
	cfg, err := config.NewYAML(config.Source(strings.NewReader("rekit:\n  coverageReport: [a, b]\n")))
	require.NoError(t, err)

	_, err = New(Params{
		Config:    cfg,
		Lifecycle: fxtest.NewLifecycle(t),
		Logger:    zap.NewNop().Sugar(),
		Stats:     tally.NoopScope,
	})
	assert.Error(t, err)
}

func writeExecutable(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "node")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755))
	return p
}

func TestSession(t *testing.T) {
	t.Run("features are watched until the session ends", func(t *testing.T) {
		e := newTestEnv(t)
		e.session.Settings.Interpreter = writeExecutable(t)

		require.NoError(t, e.c.StartSession(e.ctx))

		feature := e.path("src/features/payments")
		require.NoError(t, os.Mkdir(feature, 0o755))
		require.Eventually(t, func() bool {
			return strings.Contains(e.panel.String(), "feature added: payments\n")
		}, 5*time.Second, 10*time.Millisecond)

		require.NoError(t, os.Remove(feature))
		require.Eventually(t, func() bool {
			return strings.Contains(e.panel.String(), "feature removed: payments\n")
		}, 5*time.Second, 10*time.Millisecond)
		assert.NotContains(t, e.panel.String(), "checkout")

		e.panels.EXPECT().Close(e.session.UUID).Return(nil)
		require.NoError(t, e.c.EndSession(e.ctx, e.session.UUID))
		assert.Empty(t, e.c.watchers)
	})

	t.Run("restarting replaces the watcher", func(t *testing.T) {
		e := newTestEnv(t)
		e.session.Settings.Interpreter = writeExecutable(t)

		require.NoError(t, e.c.StartSession(e.ctx))
		require.NoError(t, e.c.StartSession(e.ctx))
		assert.Len(t, e.c.watchers, 1)
		require.NoError(t, e.c.closeWatchers())
	})

	t.Run("missing interpreter is reported", func(t *testing.T) {
		e := newTestEnv(t)
		e.session.Settings.Interpreter = filepath.Join(t.TempDir(), "missing", "node")
		e.gateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params *protocol.ShowMessageParams) error {
				assert.Equal(t, protocol.MessageTypeWarning, params.Type)
				assert.Contains(t, params.Message, e.session.Settings.Interpreter)
				return nil
			})

		require.NoError(t, e.c.StartSession(e.ctx))
		require.NoError(t, e.c.closeWatchers())
	})

	t.Run("workspace outside a project is not watched", func(t *testing.T) {
		e := newTestEnv(t)
		e.session.WorkspaceRoot = t.TempDir()
		e.session.Settings.Interpreter = writeExecutable(t)

		require.NoError(t, e.c.StartSession(e.ctx))
		assert.Empty(t, e.c.watchers)

		e.panels.EXPECT().Close(e.session.UUID).Return(errors.New("busy"))
		assert.EqualError(t, e.c.EndSession(e.ctx, e.session.UUID), "busy")
	})
}
