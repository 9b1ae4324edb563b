// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/async"
)

func TestAsyncFrameDrivesCoroutineToCompletion(t *testing.T) {
	co := async.NewFrameCoroutine[int](async.FrameReturn[int](5))
	task, promise := async.NewTask[int](nil)
	frame := async.NewAsyncFrame[int](co, promise, nil, nil)
	frame.Start()

	if !task.Ready() {
		t.Fatal("task should settle once the coroutine completes")
	}
	v, err := task.Result()
	if err != nil || v != 5 {
		t.Fatalf("Result() = %v, %v; want 5, nil", v, err)
	}
}

func TestAsyncFrameFailsPromiseOnCoroutineFailure(t *testing.T) {
	wantErr := errors.New("boom")
	co := async.NewFrameCoroutine[int](async.FrameFail[int](wantErr))
	task, promise := async.NewTask[int](nil)
	frame := async.NewAsyncFrame[int](co, promise, nil, nil)
	frame.Start()

	_, err := task.Result()
	if !errors.Is(err, wantErr) {
		t.Fatalf("Result() err = %v, want wrapping %v", err, wantErr)
	}
}

func TestAsyncFrameReschedulesOnSuspension(t *testing.T) {
	child, childPromise := async.NewTask[int](nil)
	body := async.FrameAwait[int, int](child, func(v int, err error) async.FrameExprOf[int] {
		return async.FrameReturn[int](v + 1)
	})
	co := async.NewFrameCoroutine[int](body)
	task, promise := async.NewTask[int](nil)
	frame := async.NewAsyncFrame[int](co, promise, nil, nil)
	frame.Start()

	if task.Ready() {
		t.Fatal("task should stay pending until the awaited child settles")
	}
	childPromise.Complete(41)
	if !task.Ready() {
		t.Fatal("task should settle once the async frame is rescheduled")
	}
	v, err := task.Result()
	if err != nil || v != 42 {
		t.Fatalf("Result() = %v, %v; want 42, nil", v, err)
	}
}

// TestAsyncFrameOnDetachKillsCoroutine checks that when the task an
// AsyncFrame owns is dropped (detached, unobserved), the frame kills its
// coroutine rather than leaking it. OnDetach is the Listener callback the
// task machinery invokes in that scenario; this test drives it directly.
func TestAsyncFrameOnDetachKillsCoroutine(t *testing.T) {
	child, _ := async.NewTask[int](nil)
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		return async.StackAwait[int, int](y, child)
	})
	_, promise := async.NewTask[int](nil)
	frame := async.NewAsyncFrame[int](co, promise, nil, nil)
	frame.Start()

	frame.OnDetach()

	state, _, _, _ := co.Resume()
	if state != async.Destructed {
		t.Fatalf("coroutine state after OnDetach = %v, want Destructed", state)
	}
}
