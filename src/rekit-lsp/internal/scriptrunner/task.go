package scriptrunner

import (
	"context"
	"sync"
)

// State is the lifecycle position of one Task.
type State int

const (
	Idle State = iota
	Spawning
	Streaming
	Completed
	LaunchFailed
	RuntimeError
)

var _stateNames = map[State]string{
	Idle:         "idle",
	Spawning:     "spawning",
	Streaming:    "streaming",
	Completed:    "completed",
	LaunchFailed: "launch_failed",
	RuntimeError: "runtime_error",
}

func (s State) String() string {
	if name, ok := _stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Completed || s == LaunchFailed || s == RuntimeError
}

// Task tracks one asynchronous script run.
// Exactly one terminal state is reached. Done is closed after the last output line was
// delivered and after the completion callback returned.
type Task struct {
	Invocation Invocation

	mu    sync.Mutex
	state State
	err   error
	lines int

	done chan struct{}
	once sync.Once
}

func newTask(inv Invocation) *Task {
	return &Task{
		Invocation: inv,
		state:      Idle,
		done:       make(chan struct{}),
	}
}

// NewFinishedTask returns a task that already reached the terminal state.
// Runner fakes use it to hand out results without spawning processes.
func NewFinishedTask(inv Invocation, state State, err error) *Task {
	t := newTask(inv)
	t.finish(state, err, nil)
	return t
}

// State returns the current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure of a LaunchFailed or RuntimeError task, nil otherwise.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Lines returns how many output lines the process produced so far, forwarded or not.
func (t *Task) Lines() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines
}

// Done is closed once the task reached a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finished or ctx is done, returning the task error or the context error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Terminal() {
		t.state = s
	}
}

func (t *Task) addLine() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines++
}

// finish moves the task into its terminal state. Only the first call has an effect.
// onDone runs for Completed tasks only, before Done is closed.
func (t *Task) finish(state State, err error, onDone func()) {
	t.once.Do(func() {
		t.mu.Lock()
		t.state = state
		t.err = err
		t.mu.Unlock()

		defer close(t.done)
		if state == Completed && onDone != nil {
			onDone()
		}
	})
}
