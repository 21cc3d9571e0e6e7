package sidebar

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/entity"
	rerrors "github.com/rekit/rekit-lsp/src/rekit-lsp/internal/errors"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/outputpanel"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/rekitproject"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/scriptrunner"
	"go.lsp.dev/protocol"
)

const (
	_actionRemove = "Remove"
	_actionCreate = "Create"
	_actionCancel = "Cancel"

	_cliTestScript = "test:cli"
)

// request is one validated command invocation.
type request struct {
	session  *entity.Session
	sel      rekitproject.Selection
	args     entity.CommandArgs
	settings scriptrunner.Settings
	panel    outputpanel.Panel
}

type command struct {
	id    string
	title string
	// visible reports whether the command is offered for a selection inside a project.
	visible func(sel rekitproject.Selection) bool
	run     func(c *controller, ctx context.Context, req *request) error
}

func allCommands() []*command {
	return []*command{
		{id: "addFeature", title: "Add Feature", visible: on(rekitproject.FeaturesFolder), run: add("add_feature", "Feature", false)},
		{id: "removeFeature", title: "Remove Feature", visible: on(rekitproject.Feature), run: remove("rm_feature", "Feature", featureTarget)},
		{id: "addComponent", title: "Add Component", visible: on(rekitproject.Feature), run: add("add_component", "Component", true)},
		{id: "removeComponent", title: "Remove Component", visible: on(rekitproject.Component), run: remove("rm_component", "Component", elementTarget)},
		{id: "addPage", title: "Add Page", visible: on(rekitproject.Feature), run: add("add_page", "Page", true)},
		{id: "removePage", title: "Remove Page", visible: on(rekitproject.Page), run: remove("rm_page", "Page", elementTarget)},
		{id: "addAction", title: "Add Action", visible: onActions, run: add("add_action", "Action", true)},
		{
			id:      "removeAction",
			title:   "Remove Action",
			visible: onActionIndexOr(rekitproject.Action),
			run:     remove("rm_action", "Action", actionTarget(rekitproject.Action)),
		},
		{id: "addAsyncAction", title: "Add Async Action", visible: onActions, run: add("add_async_action", "Async action", true)},
		{
			id:      "removeAsyncAction",
			title:   "Remove Async Action",
			visible: onActionIndexOr(rekitproject.AsyncAction),
			run:     remove("rm_async_action", "Async Action", actionTarget(rekitproject.AsyncAction)),
		},
		{
			id:    "unitTest",
			title: "Unit Test",
			visible: onActionIndexOr(rekitproject.Component, rekitproject.Page, rekitproject.Action,
				rekitproject.AsyncAction, rekitproject.Reducer),
			run: (*controller).unitTest,
		},
		{id: "runTest", title: "Run Test", visible: on(rekitproject.Test), run: runTest},
		{id: "runTestFolder", title: "Run Tests in Folder", visible: on(rekitproject.TestFolder), run: runTest},
		{id: "runCliTests", title: "Run CLI Tests", visible: inProject, run: runCliTests},
		{id: "showOutput", title: "Show Output", visible: inProject, run: (*controller).showOutput},
		{id: "clearOutput", title: "Clear Output", visible: inProject, run: clearOutput},
		{id: "openCoverage", title: "Open Coverage Report", visible: inProject, run: (*controller).openCoverage},
		{id: "build", title: "Build", visible: inProject, run: build},
	}
}

func on(categories ...rekitproject.Category) func(rekitproject.Selection) bool {
	return func(sel rekitproject.Selection) bool {
		return sel.Categories.ContainsAny(categories...)
	}
}

func onActionIndexOr(categories ...rekitproject.Category) func(rekitproject.Selection) bool {
	return func(sel rekitproject.Selection) bool {
		return sel.ActionIndex || sel.Categories.ContainsAny(categories...)
	}
}

var onActions = onActionIndexOr(rekitproject.Feature, rekitproject.Action, rekitproject.AsyncAction)

func inProject(sel rekitproject.Selection) bool {
	return sel.InProject
}

// add runs script with the entered name. Feature scoped names without a feature are qualified with the
// selected one, so "Hello --connect" on feature home becomes "home/Hello --connect".
func add(script, label string, featureScoped bool) func(*controller, context.Context, *request) error {
	return func(c *controller, ctx context.Context, req *request) error {
		fields := req.args.NameFields()
		if len(fields) == 0 {
			c.logger.Infof("%s: %v", script, rerrors.MissingNameError)
			c.showError(ctx, fmt.Sprintf("%s name is required.", label))
			return nil
		}
		if featureScoped {
			fields[0] = qualify(req.sel.Feature, fields[0])
		}
		c.runScript(ctx, req, script, fields)
		return nil
	}
}

// remove asks for confirmation before running script on the target derived from the request.
func remove(script, label string, target func(req *request) []string) func(*controller, context.Context, *request) error {
	return func(c *controller, ctx context.Context, req *request) error {
		args := target(req)
		if len(args) == 0 {
			c.showError(ctx, fmt.Sprintf("%s name is required.", label))
			return nil
		}
		ok, err := c.confirm(ctx, fmt.Sprintf("Remove %s: %s?", label, strings.Join(args, " ")), _actionRemove)
		if err != nil || !ok {
			return err
		}
		c.runScript(ctx, req, script, args)
		return nil
	}
}

func featureTarget(req *request) []string {
	return []string{req.sel.Feature}
}

func elementTarget(req *request) []string {
	return []string{req.sel.Feature + "/" + req.sel.Name}
}

// actionTarget prefers an entered name and falls back to the selected action file.
// The action index names no action, so a name is required there.
func actionTarget(category rekitproject.Category) func(req *request) []string {
	return func(req *request) []string {
		if fields := req.args.NameFields(); len(fields) > 0 {
			fields[0] = qualify(req.sel.Feature, fields[0])
			return fields
		}
		if req.sel.Categories.Contains(category) && !req.sel.ActionIndex {
			return elementTarget(req)
		}
		return nil
	}
}

func qualify(feature, name string) string {
	if feature == "" || strings.Contains(name, "/") {
		return name
	}
	return feature + "/" + name
}

func runTest(c *controller, ctx context.Context, req *request) error {
	rel, err := filepath.Rel(req.sel.Root, req.sel.Path)
	if err != nil {
		return fmt.Errorf("resolving test path: %w", err)
	}
	c.runScript(ctx, req, "run_test", []string{filepath.ToSlash(rel)})
	return nil
}

func runCliTests(c *controller, ctx context.Context, req *request) error {
	task := c.runner.RunPackageScript(req.settings, req.sel.Root, _cliTestScript, req.panel, c.completionNote(req, _cliTestScript, nil))
	c.watchTask(ctx, task)
	return nil
}

func build(c *controller, ctx context.Context, req *request) error {
	c.runScript(ctx, req, "build", nil)
	return nil
}

func (c *controller) showOutput(ctx context.Context, req *request) error {
	return c.showDocument(ctx, req.panel.Path(), false)
}

func clearOutput(_ *controller, _ context.Context, req *request) error {
	return req.panel.Clear()
}

func (c *controller) openCoverage(ctx context.Context, req *request) error {
	report := filepath.Join(req.sel.Root, c.coverageReport)
	exists, err := c.fs.FileExists(report)
	if err != nil {
		return fmt.Errorf("checking coverage report: %w", err)
	}
	if !exists {
		c.showMessage(ctx, protocol.MessageTypeWarning, fmt.Sprintf("No coverage report at %s. Run the tests with coverage first.", report))
		return nil
	}
	return c.showDocument(ctx, report, true)
}

// runScript starts a generator script and reports its outcome once it finished.
func (c *controller) runScript(ctx context.Context, req *request, script string, args []string) {
	task := c.runner.RunScript(req.settings, req.sel.Root, script, args, req.panel, c.completionNote(req, script, args))
	c.watchTask(ctx, task)
}

// completionNote writes a summary line for scripts whose output is not forwarded to the panel.
func (c *controller) completionNote(req *request, script string, args []string) func() {
	if req.settings.IsInteresting(script) {
		return nil
	}
	line := strings.TrimSpace(script + " " + strings.Join(args, " "))
	return func() {
		if _, err := fmt.Fprintf(req.panel, "%s: done\n", line); err != nil {
			c.logger.Warnf("writing completion of %s: %v", script, err)
		}
	}
}

// watchTask waits for task and turns a missing interpreter into an error notification.
// Other failures were already written to the panel by the runner.
func (c *controller) watchTask(ctx context.Context, task *scriptrunner.Task) {
	<-task.Done()
	if nf, ok := rerrors.InterpreterNotFound(task.Err()); ok {
		c.showError(ctx, nf.Error())
		return
	}
	if err := task.Err(); err != nil {
		c.logger.Infof("%s finished in state %s: %v", task.Invocation.Name, task.State(), err)
	}
}
