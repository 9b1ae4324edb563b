// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"
)

// TaskState is one of the states a Task/Promise pair moves through over
// its lifecycle.
type TaskState uint32

const (
	// StatePending is the initial state: no result yet, not canceled.
	StatePending TaskState = iota
	// StateFulfilled means Promise.Complete was called.
	StateFulfilled
	// StateRejected means Promise.Fail was called.
	StateRejected
	// StateCanceled means Promise.Cancel or Task.Cancel was called before
	// the task settled otherwise.
	StateCanceled
)

func (s TaskState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	case StateRejected:
		return "rejected"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// sharedState is the record a Task and its Promise share. Settlement is a
// single CAS on settling, giving exactly one caller the right to run the
// completion side effects no matter which of Complete/Fail/Cancel races
// to call first.
type sharedState[R any] struct {
	settling atomic.Uint32 // 0 = not yet settling, 1 = first settle won
	state    atomic.Uint32 // TaskState, written once after settling wins
	cell     ResultCell[R]

	// listener is a single slot serving both observer roles: the waker a
	// coroutine or combinator installs through OnReady, and the erased
	// Listener installed through OnDone. Installing either replaces the
	// other, so a task never notifies more than one observer; callers
	// that need both must multiplex through one Listener.
	listener Listener
	detached bool

	// onCancel fires when the task settles by cancellation, before the
	// listener is notified. Combinators install it to deregister from
	// their children the moment the combinator's own task is dropped.
	onCancel func()

	// id and creation are only populated under Config.DebugMode.
	id       string
	creation []byte
}

func newSharedState[R any]() *sharedState[R] {
	return &sharedState[R]{}
}

// settle performs the single-writer transition shared by Complete, Fail,
// and Cancel. Returns false if the task had already settled.
func (s *sharedState[R]) settle(final TaskState, set func()) bool {
	if !s.settling.CompareAndSwap(0, 1) {
		return false
	}
	set()
	s.state.Store(uint32(final))
	if final == StateCanceled && s.onCancel != nil {
		s.onCancel()
	}
	if s.listener != nil {
		if s.detached {
			s.listener.OnDetach()
		} else {
			s.listener.OnDone()
		}
	}
	return true
}

// Task is the read/await half of an asynchronous operation. The zero
// value is not usable; obtain a Task from NewTask or AcquireTask.
type Task[R any] struct {
	s *sharedState[R]
}

// NewTask creates a linked Task/Promise pair, both backed by the same
// shared state. cfg may be nil, meaning defaults.
func NewTask[R any](cfg *Config) (Task[R], Promise[R]) {
	s := newSharedState[R]()
	if cfg != nil && cfg.DebugMode {
		s.id = newDebugID()
		s.creation = debug.Stack()
	}
	return Task[R]{s: s}, Promise[R]{s: s}
}

// CompletedTask returns a task already settled with v.
func CompletedTask[R any](v R) Task[R] {
	t, p := NewTask[R](nil)
	p.Complete(v)
	return t
}

// FailedTask returns a task already settled with err.
func FailedTask[R any](err error) Task[R] {
	t, p := NewTask[R](nil)
	p.Fail(err)
	return t
}

// State returns the task's current lifecycle state.
func (t Task[R]) State() TaskState { return TaskState(t.s.state.Load()) }

// IsRunning reports whether the task has not yet settled.
func (t Task[R]) IsRunning() bool { return t.State() == StatePending }

// HasError reports whether the task settled in StateRejected.
func (t Task[R]) HasError() bool { return t.State() == StateRejected }

// Error returns the error a rejected task settled with, and nil for every
// other state. Cancellation is a state, not an error: a canceled task
// reports StateCanceled from State and nil from Error (Result surfaces
// ErrCanceled for callers that want a uniform value/error pair instead).
func (t Task[R]) Error() error {
	if t.State() != StateRejected {
		return nil
	}
	_, err, _ := t.s.cell.Peek()
	return err
}

// Listener returns the listener currently attached to the task, or nil.
func (t Task[R]) Listener() Listener { return t.s.listener }

// DebugID returns the identifier assigned to the task under
// Config.DebugMode, or the empty string.
func (t Task[R]) DebugID() string { return t.s.id }

// CreationStack returns the stack trace captured when the task was
// created under Config.DebugMode, or nil. Useful for attributing a
// leaked or never-completed task back to its construction site.
func (t Task[R]) CreationStack() []byte { return t.s.creation }

// Cancel transitions the task directly to StateCanceled. It is symmetric
// with Promise.Cancel: both handles share the same underlying
// sharedState, so either side dropping its half of the pair reaches the
// same terminal state. Returns false if the task had already settled.
func (t Task[R]) Cancel() bool {
	return t.s.settle(StateCanceled, func() {})
}

// Detach marks the task as fire-and-forget without going through its
// Promise. Like Promise.Detach, it is only legal before a listener has
// been attached; calling it afterward is a ContractViolation.
func (t Task[R]) Detach(strict bool) error {
	if t.s.listener != nil {
		return violation(strict, "Task.Detach called after a listener was attached")
	}
	t.s.detached = true
	return nil
}

// Ready reports whether the task has left StatePending. Implements
// Awaitable.
func (t Task[R]) Ready() bool { return t.State() != StatePending }

// Result returns the settled value or error. Panics if the task is still
// pending. A canceled task returns the zero value and ErrCanceled.
func (t Task[R]) Result() (R, error) {
	switch t.State() {
	case StatePending:
		panic("async: Task.Result called while pending")
	case StateCanceled:
		var zero R
		return zero, ErrCanceled
	default:
		v, err, ok := t.s.cell.Peek()
		if !ok {
			var zero R
			return zero, ErrCanceled
		}
		return v, err
	}
}

// OnReady implements Awaitable: registers a listener that fires once,
// synchronously if the task is already settled.
func (t Task[R]) OnReady(f func()) {
	if t.Ready() {
		f()
		return
	}
	t.s.listener = ListenerFunc{Done: f, Detach: f}
}

// OffReady implements Awaitable: clears whatever listener is currently
// attached, provided the task has not yet settled — always legal while
// not ready. A no-op once the task has settled, since there is then
// nothing left to notify.
func (t Task[R]) OffReady() {
	if !t.Ready() {
		t.s.listener = nil
	}
}

// OnDone registers l to be notified once the task settles, replacing any
// previously attached listener. If the task has already settled, l is
// notified synchronously before OnDone returns — exactly one of
// l.OnDone/l.OnDetach fires, whether the listener is attached before or
// after settlement.
func (t Task[R]) OnDone(l Listener) {
	t.s.listener = l
	if !t.Ready() {
		return
	}
	if t.s.detached {
		l.OnDetach()
	} else {
		l.OnDone()
	}
}

// ToChannel returns a channel that receives exactly one value once the
// task settles, letting a foreign goroutine block on the result outside
// the cooperative single-thread world.
func (t Task[R]) ToChannel() <-chan TaskOutcome[R] {
	ch := make(chan TaskOutcome[R], 1)
	done := func() {
		v, err := t.Result()
		ch <- TaskOutcome[R]{Value: v, Err: err, State: t.State()}
		close(ch)
	}
	t.OnDone(ListenerFunc{Done: done, Detach: done})
	return ch
}

// TaskOutcome is the value delivered on the channel returned by
// Task.ToChannel.
type TaskOutcome[R any] struct {
	Value R
	Err   error
	State TaskState
}

// newDebugID produces a debug-mode task identifier. A real uuid is used
// instead of a plain counter so identifiers stay unique across process
// restarts when correlated with persisted logs.
func newDebugID() string {
	return uuid.NewString()
}
