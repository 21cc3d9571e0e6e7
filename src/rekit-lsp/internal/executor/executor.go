// Package executor runs child processes on behalf of the script runner.
package executor

import (
	"os/exec"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides an Executor that logs through the application logger.
var Module = fx.Provide(func(logger *zap.SugaredLogger) Executor {
	return NewExecutor(WithLogger(logger.Named("executor")))
})

// Executor starts and waits for generator processes.
type Executor interface {
	// RunCommand executes cmd and blocks until it exits. A non-nil env replaces cmd.Env.
	RunCommand(cmd *exec.Cmd, env []string) error
}

type executorImp struct {
	logger *zap.SugaredLogger
	run    func(cmd *exec.Cmd) error
}

// Option customizes an Executor.
type Option func(*executorImp)

// WithLogger replaces the default no-op logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *executorImp) {
		e.logger = logger
	}
}

// WithExecFunc replaces (*exec.Cmd).Run. A nil func turns every call into a logged no-op.
func WithExecFunc(run func(cmd *exec.Cmd) error) Option {
	return func(e *executorImp) {
		e.run = run
	}
}

// NewExecutor creates an Executor.
func NewExecutor(opts ...Option) Executor {
	e := &executorImp{
		logger: zap.NewNop().Sugar(),
		run:    func(cmd *exec.Cmd) error { return cmd.Run() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *executorImp) RunCommand(cmd *exec.Cmd, env []string) error {
	if env != nil {
		cmd.Env = env
	}
	e.logger.Infow("starting process", "path", cmd.Path, "dir", cmd.Dir, "args", cmd.Args[1:])

	if e.run == nil {
		e.logger.Warnw("no exec func, process skipped", "path", cmd.Path)
		return nil
	}

	start := time.Now()
	err := e.run(cmd)
	elapsed := time.Since(start)
	if err != nil {
		e.logger.Debugw("process failed", "path", cmd.Path, "exitCode", cmd.ProcessState.ExitCode(), "elapsed", elapsed, "error", err)
		return err
	}
	e.logger.Debugw("process exited", "path", cmd.Path, "elapsed", elapsed)
	return nil
}
