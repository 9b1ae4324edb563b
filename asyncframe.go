// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"fmt"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// AsyncFrame binds one Coroutine to one Promise and drives the coroutine
// to completion, translating its terminal state into the promise's
// completion protocol. It implements Listener: once attached to the task
// with Task.OnDone, the frame kills its coroutine when that task is
// canceled from the outside.
type AsyncFrame[R any] struct {
	co        Coroutine[R]
	promise   Promise[R]
	allocator Allocator
	cfg       *Config
}

// NewAsyncFrame constructs a frame around co and p, but does not start
// driving it — call Start. It does not attach the frame to the task as its
// Listener; the frame receives OnDone/OnDetach only after Task.OnDone.
func NewAsyncFrame[R any](co Coroutine[R], p Promise[R], a Allocator, cfg *Config) *AsyncFrame[R] {
	return &AsyncFrame[R]{co: co, promise: p, allocator: a, cfg: cfg}
}

// Start begins (or resumes) driving the coroutine until it either
// completes or suspends; in the latter case the frame reschedules itself
// via the pending awaitable's OnReady.
func (f *AsyncFrame[R]) Start() { f.step() }

func (f *AsyncFrame[R]) logger() Logger {
	if f.cfg == nil {
		return nil
	}
	return f.cfg.Logger
}

func (f *AsyncFrame[R]) step() {
	defer func() {
		if r := recover(); r != nil {
			if fu, ok := r.(ForcedUnwind); ok {
				f.promise.Cancel()
				logDebug(f.logger(), "async frame unwound", withErr(fu))
				return
			}
			err := fmt.Errorf("async: coroutine panicked: %v", r)
			f.promise.Fail(err)
			logDebug(f.logger(), "async frame recovered panic", withErr(err))
		}
	}()

	state, value, err, onReady := f.co.Resume()
	switch state {
	case Done:
		f.promise.Complete(value)
	case Failed:
		f.promise.Fail(err)
	case Destructed:
		f.promise.Cancel()
		logDebug(f.logger(), "async frame destructed", nil)
	case Suspended:
		onReady(f.step)
	}
}

// Cancel kills the owned coroutine and cancels the promise — the
// counterpart a host calls when the outer Task is dropped while the
// frame is still suspended.
func (f *AsyncFrame[R]) Cancel() {
	f.co.Kill()
	f.promise.Cancel()
}

// OnDone implements Listener. A task settled from within step needs
// nothing more; a task canceled from the outside has its coroutine killed.
func (f *AsyncFrame[R]) OnDone() {
	if f.promise.s != nil && f.promise.State() == StateCanceled {
		f.co.Kill()
	}
}

// OnDetach implements Listener: the owning task was dropped without
// anyone observing the result, so the frame kills its coroutine (a
// StackCoroutine's goroutine unwinds; a FrameCoroutine runs no more of its
// body), and hands the promise's record back to the allocator
// — with no observer left there is nothing the record could still be
// read through.
func (f *AsyncFrame[R]) OnDetach() {
	f.co.Kill()
	f.promise.Release(f.allocator)
}

func withErr(err error) func(b *logiface.Builder[*stumpy.Event]) *logiface.Builder[*stumpy.Event] {
	return func(b *logiface.Builder[*stumpy.Event]) *logiface.Builder[*stumpy.Event] { return b.Err(err) }
}
