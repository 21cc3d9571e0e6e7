// Package scriptrunner launches Rekit generator scripts as child processes and streams their output.
package scriptrunner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/executor"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_nameKey     = "scriptrunner"
	_maxLineSize = 1024 * 1024
)

// Module provides the Runner.
var Module = fx.Provide(New)

// Params are the dependencies of the Runner.
type Params struct {
	fx.In

	Executor executor.Executor
	FS       fs.WorkspaceFS
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
}

// Runner starts script invocations on their own goroutine. Calls never block on the child process.
type Runner interface {
	// RunScript runs `<interpreter> <root>/<toolsDir>/<script>.js args...`.
	// Output lines go to sink when the script is interesting. onDone runs once after a normal exit.
	RunScript(settings Settings, root, script string, args []string, sink io.Writer, onDone func()) *Task
	// RunPackageScript runs `<packageManager> run <script>` with the same output and completion rules.
	RunPackageScript(settings Settings, root, script string, sink io.Writer, onDone func()) *Task
}

type runner struct {
	executor executor.Executor
	fs       fs.WorkspaceFS
	logger   *zap.SugaredLogger
	stats    tally.Scope
	environ  func() []string
	inFlight atomic.Int64
}

// New creates a Runner.
func New(p Params) Runner {
	return &runner{
		executor: p.Executor,
		fs:       p.FS,
		logger:   p.Logger.With("plugin", _nameKey),
		stats:    p.Stats.SubScope(_nameKey),
		environ:  os.Environ,
	}
}

func (r *runner) RunScript(settings Settings, root, script string, args []string, sink io.Writer, onDone func()) *Task {
	settings = DefaultSettings().Merge(settings)
	inv := NewScriptInvocation(settings, r.environ(), root, script, args)
	return r.start(inv, settings.IsInteresting(script), sink, onDone)
}

func (r *runner) RunPackageScript(settings Settings, root, script string, sink io.Writer, onDone func()) *Task {
	settings = DefaultSettings().Merge(settings)
	inv := NewPackageInvocation(settings, r.environ(), root, script)
	return r.start(inv, settings.IsInteresting(script), sink, onDone)
}

func (r *runner) start(inv Invocation, interesting bool, sink io.Writer, onDone func()) *Task {
	if sink == nil {
		sink = io.Discard
	}
	t := newTask(inv)
	r.stats.Counter("runs").Inc(1)
	r.stats.Gauge("in_flight").Update(float64(r.inFlight.Add(1)))
	go r.run(t, interesting, sink, onDone)
	return t
}

func (r *runner) run(t *Task, interesting bool, sink io.Writer, onDone func()) {
	stopwatch := r.stats.Timer("duration").Start()
	defer func() {
		stopwatch.Stop()
		r.stats.Gauge("in_flight").Update(float64(r.inFlight.Add(-1)))
	}()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorf("recovered from panic while running %s: %v", t.Invocation.Name, p)
			r.finish(t, RuntimeError, fmt.Errorf("running %s: %v", t.Invocation.Name, p), sink, nil)
		}
	}()

	t.setState(Spawning)
	executable, err := t.Invocation.LookPath(r.fs)
	if err != nil {
		r.finish(t, LaunchFailed, err, nil, nil)
		return
	}

	cmd := exec.Command(executable, t.Invocation.Argv()...)
	cmd.Dir = t.Invocation.Dir
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	exited := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("running %s: %v", t.Invocation.Name, p)
			}
			pw.Close()
			exited <- err
		}()
		err = r.executor.RunCommand(cmd, t.Invocation.Environ(r.environ()))
	}()
	t.setState(Streaming)

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), _maxLineSize)
	for scanner.Scan() {
		t.addLine()
		if interesting {
			fmt.Fprintln(sink, scanner.Text())
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep the child from blocking on a full pipe.
		io.Copy(io.Discard, pr)
	}
	runErr := <-exited

	switch {
	case runErr != nil && cmd.ProcessState == nil:
		r.finish(t, LaunchFailed, fmt.Errorf("launching %s: %w", t.Invocation.Name, runErr), sink, nil)
	case runErr != nil:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			runErr = fmt.Errorf("%s exited with code %d", t.Invocation.Name, exitErr.ExitCode())
		}
		r.finish(t, RuntimeError, runErr, sink, nil)
	case scanErr != nil:
		r.finish(t, RuntimeError, fmt.Errorf("reading output of %s: %w", t.Invocation.Name, scanErr), sink, nil)
	default:
		r.finish(t, Completed, nil, nil, onDone)
	}
}

// finish records the terminal state. A non-nil sink receives the error message.
// Tasks are finished from their own worker only, so the terminal check cannot race.
func (r *runner) finish(t *Task, state State, err error, sink io.Writer, onDone func()) {
	if t.State().Terminal() {
		return
	}
	if err != nil && sink != nil {
		fmt.Fprintln(sink, err.Error())
	}
	r.stats.Counter(state.String()).Inc(1)
	if err != nil {
		r.logger.Warnw("script failed", "script", t.Invocation.Name, "state", state.String(), "error", err)
	} else {
		r.logger.Infow("script completed", "script", t.Invocation.Name, "lines", t.Lines())
	}
	t.finish(state, err, onDone)
}
