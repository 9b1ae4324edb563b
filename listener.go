// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Listener is attached to a Task to be notified exactly once, when the
// task transitions out of Pending. AsyncFrame implements Listener so that
// canceling or detaching its own task kills the coroutine it drives.
type Listener interface {
	// OnDone is called once, after the task's result cell has settled.
	OnDone()

	// OnDetach is called once if the task is marked fire-and-forget before
	// ever settling — the listener should release any resources it was
	// holding to observe the result, since no OnDone will follow.
	OnDetach()
}

// ListenerFunc adapts two plain functions to the Listener interface.
type ListenerFunc struct {
	Done   func()
	Detach func()
}

func (f ListenerFunc) OnDone() {
	if f.Done != nil {
		f.Done()
	}
}

func (f ListenerFunc) OnDetach() {
	if f.Detach != nil {
		f.Detach()
	}
}
