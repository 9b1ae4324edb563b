// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/async"
)

func TestFrameCoroutineResumeReturnsDoneOnCompletion(t *testing.T) {
	co := async.NewFrameCoroutine[int](async.FrameReturn[int](7))
	state, v, err, onReady := co.Resume()
	if state != async.Done || v != 7 || err != nil || onReady != nil {
		t.Fatalf("Resume() = %v, %v, %v, %p; want Done, 7, nil, nil", state, v, err, onReady)
	}
	// Re-resuming an already-done coroutine keeps returning Done with the
	// same value, rather than re-running the body.
	state, v, err, _ = co.Resume()
	if state != async.Done || v != 7 || err != nil {
		t.Fatalf("second Resume() = %v, %v, %v; want Done, 7, nil", state, v, err)
	}
}

func TestFrameCoroutineResumeReturnsFailedOnFrameFail(t *testing.T) {
	wantErr := errors.New("bad frame")
	co := async.NewFrameCoroutine[int](async.FrameFail[int](wantErr))
	state, _, err, _ := co.Resume()
	if state != async.Failed || !errors.Is(err, wantErr) {
		t.Fatalf("Resume() = %v, %v; want Failed, %v", state, err, wantErr)
	}
}

func TestFrameBindSequencesWithoutSuspension(t *testing.T) {
	body := async.FrameBind(async.FrameReturn[int](1), func(v int) async.FrameExprOf[int] {
		return async.FrameBind(async.FrameReturn[int](v+1), func(v int) async.FrameExprOf[int] {
			return async.FrameReturn[int](v * 10)
		})
	})
	co := async.NewFrameCoroutine[int](body)
	state, v, err, _ := co.Resume()
	if state != async.Done || err != nil || v != 20 {
		t.Fatalf("Resume() = %v, %v, %v; want Done, 20, nil", state, v, err)
	}
}

func TestFrameBindAfterAwaitCarriesTheAwaitedValue(t *testing.T) {
	child, childPromise := async.NewTask[int](nil)
	body := async.FrameBind(
		async.FrameAwait[int, int](child, func(v int, err error) async.FrameExprOf[int] {
			return async.FrameReturn[int](v)
		}),
		func(v int) async.FrameExprOf[string] {
			if v > 40 {
				return async.FrameReturn[string]("big")
			}
			return async.FrameReturn[string]("small")
		},
	)
	co := async.NewFrameCoroutine[string](body)

	state, _, _, onReady := co.Resume()
	if state != async.Suspended {
		t.Fatalf("Resume() state = %v, want Suspended before the child settles", state)
	}

	woke := false
	onReady(func() { woke = true })
	childPromise.Complete(41)
	if !woke {
		t.Fatal("onReady callback should fire once the awaited child settles")
	}

	state, v, err, _ := co.Resume()
	if state != async.Done || err != nil || v != "big" {
		t.Fatalf("Resume() = %v, %v, %v; want Done, \"big\", nil", state, v, err)
	}
}

// TestFrameBindShortCircuitsAfterFail: binding a continuation onto an
// already-failed expression must propagate the failure, never run the
// continuation.
func TestFrameBindShortCircuitsAfterFail(t *testing.T) {
	wantErr := errors.New("early failure")
	body := async.FrameBind(async.FrameFail[int](wantErr), func(v int) async.FrameExprOf[string] {
		t.Fatal("continuation must not run after a failure")
		return async.FrameReturn[string]("unreachable")
	})
	co := async.NewFrameCoroutine[string](body)
	state, _, err, _ := co.Resume()
	if state != async.Failed || !errors.Is(err, wantErr) {
		t.Fatalf("Resume() = %v, %v; want Failed, %v", state, err, wantErr)
	}
}

// TestFrameBindShortCircuitsFailureFromAwait exercises the same
// short-circuit when the failure only materializes after a suspension.
func TestFrameBindShortCircuitsFailureFromAwait(t *testing.T) {
	child, childPromise := async.NewTask[int](nil)
	wantErr := errors.New("resumed failure")
	body := async.FrameBind(
		async.FrameAwait[int, int](child, func(v int, err error) async.FrameExprOf[int] {
			return async.FrameFail[int](wantErr)
		}),
		func(v int) async.FrameExprOf[int] {
			t.Fatal("continuation must not run after a failure")
			return async.FrameReturn[int](v + 1)
		},
	)
	co := async.NewFrameCoroutine[int](body)

	state, _, _, _ := co.Resume()
	if state != async.Suspended {
		t.Fatalf("Resume() state = %v, want Suspended before the child settles", state)
	}
	childPromise.Complete(1)

	state, _, err, _ := co.Resume()
	if state != async.Failed || !errors.Is(err, wantErr) {
		t.Fatalf("Resume() = %v, %v; want Failed, %v", state, err, wantErr)
	}
}

func TestFrameCoroutineKillMarksDestructed(t *testing.T) {
	child, _ := async.NewTask[int](nil)
	body := async.FrameAwait[int, int](child, func(v int, err error) async.FrameExprOf[int] {
		return async.FrameReturn[int](v)
	})
	co := async.NewFrameCoroutine[int](body)

	state, _, _, _ := co.Resume()
	if state != async.Suspended {
		t.Fatalf("Resume() state = %v, want Suspended", state)
	}

	co.Kill()
	state, _, _, onReady := co.Resume()
	if state != async.Destructed || onReady != nil {
		t.Fatalf("Resume() after Kill = %v, %p; want Destructed, nil onReady", state, onReady)
	}
}
