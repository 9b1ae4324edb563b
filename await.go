// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Await drives c to completion, blocking the calling goroutine between
// suspensions. It is meant for callers (tests, simple command-line tools)
// that have no event loop of their own to drive the coroutine from.
//
// A real event-loop host should not call Await: it should call
// c.Resume() directly and reschedule itself via the returned onReady
// callback, the way AsyncFrame does.
func Await[R any](c Coroutine[R]) (R, error) {
	for {
		state, value, err, onReady := c.Resume()
		switch state {
		case Done:
			return value, nil
		case Failed:
			return value, err
		case Destructed:
			var zero R
			return zero, ErrCanceled
		case Suspended:
			woke := make(chan struct{}, 1)
			onReady(func() {
				select {
				case woke <- struct{}{}:
				default:
				}
			})
			<-woke
		}
	}
}
