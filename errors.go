// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"errors"
	"fmt"
)

// ErrAllocation is the panic value an [ArenaAllocator] raises from
// AcquireTask once it has exhausted its batch.
var ErrAllocation = errors.New("async: allocation failed")

// ErrCanceled reports that a task was canceled before it produced a result.
// Task.State reflects cancellation as StateCanceled directly; ErrCanceled
// is only surfaced through Task.Result (and Await, for a destructed
// coroutine) for callers that want a uniform error value; Task.Error
// returns nil for a canceled task.
var ErrCanceled = errors.New("async: task canceled")

// OperationError wraps the error a producer passed to Promise.Fail, so
// call sites can tell a task's own failure apart from a ContractViolation
// raised by the framework around it.
type OperationError struct {
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("async: operation failed: %v", e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// ForcedUnwind is the panic value used to interrupt a coroutine's call
// stack when its owning Task is dropped or canceled while suspended. It is
// never returned as an error — code that recovers a panic must re-panic
// with the same value unless it is genuinely abandoning the coroutine.
type ForcedUnwind struct {
	Reason error
}

func (f ForcedUnwind) Error() string {
	return fmt.Sprintf("async: forced unwind: %v", f.Reason)
}

func (f ForcedUnwind) Unwrap() error { return f.Reason }

// ContractViolation reports a caller error that, unlike an ordinary
// OperationError, indicates a bug at the call site rather than a failed
// operation: detaching a Task after a listener has been attached, an Any()
// combinator over zero children, Some(k, ...) with k above the number of
// children, and so on. In strict mode (Config.StrictMode for the
// combinators, the strict argument of Detach) these are raised as panics
// instead of being returned, matching the "checked in debug" discipline.
type ContractViolation struct {
	Msg string
}

func (e *ContractViolation) Error() string { return "async: contract violation: " + e.Msg }

func violation(strict bool, msg string) error {
	if strict {
		panic(&ContractViolation{Msg: msg})
	}
	return &ContractViolation{Msg: msg}
}
