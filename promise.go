// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "sync"

// Promise is the write/producer half of an asynchronous operation,
// linked to exactly one Task by NewTask.
type Promise[R any] struct {
	s *sharedState[R]
}

// Complete fulfills the promise with v. Returns false if the task had
// already settled (a ContractViolation-worthy caller bug, surfaced as a
// bool rather than an error/panic so hot producer paths don't pay for
// error allocation on the common case).
func (p Promise[R]) Complete(v R) bool {
	return p.s.settle(StateFulfilled, func() { p.s.cell.Set(v) })
}

// Fail rejects the promise with err.
func (p Promise[R]) Fail(err error) bool {
	return p.s.settle(StateRejected, func() { p.s.cell.SetErr(&OperationError{Err: err}) })
}

// Cancel transitions the task directly to StateCanceled without ever
// populating the result cell — Task.Result on a canceled task returns
// ErrCanceled rather than anything taken from the cell.
func (p Promise[R]) Cancel() bool {
	return p.s.settle(StateCanceled, func() {})
}

// Detach marks the task as fire-and-forget: once it settles, a listener
// attached through Task.OnDone, before or after settlement, receives
// OnDetach rather than OnDone. The settled value is still stored and
// readable through Task.Result. Detach is only legal
// before a listener has been attached; calling it afterward is a
// ContractViolation.
func (p Promise[R]) Detach(strict bool) error {
	if p.s.listener != nil {
		return violation(strict, "Promise.Detach called after a listener was attached")
	}
	p.s.detached = true
	return nil
}

// Release discards the promise's hold on the shared state, returning it
// (when backed by a PoolAllocator) for reuse. Idempotent: releasing an
// already-released promise is a no-op, because a Task's AsyncFrame and
// its owning Coroutine may each independently decide to release on their
// own error path.
func (p *Promise[R]) Release(a Allocator) {
	if p.s == nil {
		return
	}
	releaseSharedState(a, p.s)
	p.s = nil
}

// Completable reports whether the promise can still settle its task:
// true exactly while the task is pending and the promise has not been
// released.
func (p Promise[R]) Completable() bool {
	return p.s != nil && p.s.settling.Load() == 0
}

// State returns the underlying task's lifecycle state.
func (p Promise[R]) State() TaskState { return TaskState(p.s.state.Load()) }

// Share wraps the promise so Complete/Fail/Cancel may be called safely
// from a goroutine other than the one driving the task's coroutine,
// serializing completions posted in from foreign threads.
func (p Promise[R]) Share() *SharedPromise[R] {
	return &SharedPromise[R]{p: p}
}

// SharedPromise is a mutex-guarded wrapper around Promise, safe to call
// from any goroutine. Unlike the plain Promise, SharedPromise serializes
// the whole settle operation (cell write plus listener dispatch), since
// more than one producer goroutine might race to settle the same task.
type SharedPromise[R any] struct {
	mu sync.Mutex
	p  Promise[R]
}

func (sp *SharedPromise[R]) Complete(v R) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.p.Complete(v)
}

func (sp *SharedPromise[R]) Fail(err error) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.p.Fail(err)
}

func (sp *SharedPromise[R]) Cancel() bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.p.Cancel()
}
