// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"testing"

	"code.hybscloud.com/async"
)

func TestListenerFuncNilFieldsAreNoOps(t *testing.T) {
	var l async.ListenerFunc
	l.OnDone()   // must not panic
	l.OnDetach() // must not panic
}

func TestListenerFuncDispatchesToCorrectField(t *testing.T) {
	var done, detach bool
	l := async.ListenerFunc{
		Done:   func() { done = true },
		Detach: func() { detach = true },
	}
	l.OnDone()
	if !done || detach {
		t.Fatalf("done=%v detach=%v; want true, false", done, detach)
	}
}

// TestListenerSeesExactlyOneOfDoneOrDetach exercises the non-detached
// completion path: a listener must see exactly one of OnDone/OnDetach.
func TestListenerSeesExactlyOneOfDoneOrDetach(t *testing.T) {
	task, promise := async.NewTask[int](nil)
	var done, detach int
	task.OnDone(async.ListenerFunc{
		Done:   func() { done++ },
		Detach: func() { detach++ },
	})
	promise.Complete(1)
	if done != 1 || detach != 0 {
		t.Fatalf("done=%d detach=%d; want 1, 0", done, detach)
	}
}
