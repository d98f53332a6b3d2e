// Package task provides the cooperative execution context used by long
// geometry builds. A build receives a Runtime, checks in at designated
// checkpoints through Update, and unwinds with ErrCancelled when the
// underlying context has been cancelled. Nothing is ever preempted between
// checkpoints.
package task

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrCancelled is returned from Update once the runtime's context is done.
var ErrCancelled = errors.New("task: cancelled")

// CheckpointInterval is the number of processed elements between two
// checkpoints in geometry loops.
const CheckpointInterval = 10000

// DefaultUpdateInterval rate-limits ShouldUpdate for runtimes created
// without WithUpdateInterval.
const DefaultUpdateInterval = 100 * time.Millisecond

// Progress describes how far a task has come.
type Progress struct {
	Message         string
	Current         int
	Max             int
	IsIndeterminate bool
}

// Fraction returns Current/Max in [0,1], or 0 when indeterminate.
func (p Progress) Fraction() float64 {
	if p.IsIndeterminate || p.Max <= 0 {
		return 0
	}
	return min(max(float64(p.Current)/float64(p.Max), 0), 1)
}

// Observer receives progress reports. It is called synchronously from the
// checkpoint and must not block for long.
type Observer func(id uuid.UUID, p Progress)

// Runtime is the context handed to a running task. It may be shared by
// several builds running concurrently.
type Runtime struct {
	ctx      context.Context
	id       uuid.UUID
	interval time.Duration
	observer Observer

	mu       sync.Mutex
	last     time.Time
	progress Progress
	updates  int
}

// RunOption configures a Runtime.
type RunOption func(*Runtime)

// WithUpdateInterval sets the minimum time between two ShouldUpdate
// reports. Zero or negative means every call reports true.
func WithUpdateInterval(d time.Duration) RunOption {
	return func(rt *Runtime) { rt.interval = d }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) RunOption {
	return func(rt *Runtime) { rt.observer = o }
}

// NewRuntime creates a runtime bound to ctx.
func NewRuntime(ctx context.Context, opts ...RunOption) *Runtime {
	rt := &Runtime{
		ctx:      ctx,
		id:       uuid.New(),
		interval: DefaultUpdateInterval,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Synchronous returns a runtime that is never cancelled and checks in at
// every checkpoint. It is meant for tests and small inputs.
func Synchronous() *Runtime {
	return NewRuntime(context.Background(), WithUpdateInterval(0))
}

// ID returns the id of the task this runtime belongs to.
func (rt *Runtime) ID() uuid.UUID { return rt.id }

// Context returns the context the runtime observes.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// ShouldUpdate reports whether enough time has passed since the last
// Update for another one to be worthwhile.
func (rt *Runtime) ShouldUpdate() bool {
	if rt.interval <= 0 {
		return true
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return time.Since(rt.last) >= rt.interval
}

// Update is the checkpoint. It returns ErrCancelled if the context is done;
// otherwise it records p, notifies the observer and yields the processor.
func (rt *Runtime) Update(p Progress) error {
	if err := rt.ctx.Err(); err != nil {
		return errors.WithMessage(ErrCancelled, err.Error())
	}
	rt.mu.Lock()
	rt.last = time.Now()
	rt.progress = p
	rt.updates++
	rt.mu.Unlock()

	if rt.observer != nil {
		rt.observer(rt.id, p)
	}
	runtime.Gosched()
	return nil
}

// Step is the loop checkpoint: every CheckpointInterval elements, and only
// when ShouldUpdate allows it, it calls Update with the loop position.
func (rt *Runtime) Step(i, n int, message string) error {
	if i%CheckpointInterval == 0 && rt.ShouldUpdate() {
		return rt.Update(Progress{Message: message, Current: i, Max: n})
	}
	return nil
}

// Progress returns the last reported progress.
func (rt *Runtime) Progress() Progress {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.progress
}

// Updates returns how many checkpoints have been passed.
func (rt *Runtime) Updates() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.updates
}

// Task is a named unit of work producing a T.
type Task[T any] struct {
	ID   uuid.UUID
	Name string
	fn   func(rt *Runtime) (T, error)
}

// New creates a task.
func New[T any](name string, fn func(rt *Runtime) (T, error)) *Task[T] {
	return &Task[T]{ID: uuid.New(), Name: name, fn: fn}
}

// Run executes the task with a fresh runtime bound to ctx.
func (t *Task[T]) Run(ctx context.Context, opts ...RunOption) (T, error) {
	rt := NewRuntime(ctx, opts...)
	rt.id = t.ID
	return t.RunInContext(rt)
}

// RunInContext executes the task inside an existing runtime, for example
// as a sub-task of a larger build.
func (t *Task[T]) RunInContext(rt *Runtime) (T, error) {
	start := time.Now()
	v, err := t.fn(rt)
	elapsed := time.Since(start)
	if err != nil {
		slog.Debug("task failed", "task", t.Name, "id", t.ID, "elapsed", elapsed, "err", err)
		return v, errors.Wrapf(err, "task %q", t.Name)
	}
	slog.Debug("task finished", "task", t.Name, "id", t.ID, "elapsed", elapsed)
	return v, nil
}
