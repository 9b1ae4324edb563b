// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Stack-preserving coroutine: a goroutine per coroutine, handed off to
// and from its driver over unbuffered channels so the two executions
// never overlap. Unlike FrameCoroutine, the body is written as ordinary,
// arbitrarily deep Go code — the dedicated goroutine preserves its own
// call stack across suspensions, at the cost of one goroutine per
// coroutine.

// ErrCoroutineLeak is the error a StackCoroutine is force-unwound with
// when its handle is garbage collected while the coroutine is still
// blocked waiting to be resumed, detected via runtime.SetFinalizer.
var ErrCoroutineLeak = errors.New("async: coroutine leaked")

var coroDepth struct {
	mu  sync.Mutex
	cur int
}

func pushCoroDepth(max int) bool {
	coroDepth.mu.Lock()
	defer coroDepth.mu.Unlock()
	if coroDepth.cur >= max {
		return false
	}
	coroDepth.cur++
	return true
}

func popCoroDepth() {
	coroDepth.mu.Lock()
	coroDepth.cur--
	coroDepth.mu.Unlock()
}

// StackYield is passed into a StackCoroutine's body function, and is the
// only way the body can suspend itself — awaiting via StackAwait, or
// generator style via Yield.
type StackYield[R any] struct {
	core *stackCore[R]
}

func (y *StackYield[R]) yield() {
	y.core.yieldCh <- struct{}{}
	y.core.waitResume()
}

// Yield suspends the coroutine and hands v to the driver as the
// suspension's value, generator style. The coroutine is runnable again
// immediately: the onReady registrar Resume returns for this suspension
// invokes its callback synchronously.
func (y *StackYield[R]) Yield(v R) {
	y.core.value = v
	y.yield()
}

// StackAwait suspends the calling StackCoroutine body until aw settles,
// then returns its result. Methods cannot be generic in Go, so this is a
// package-level function taking the coroutine's StackYield handle.
func StackAwait[R, A any](y *StackYield[R], aw Awaitable[A]) (A, error) {
	if aw.Ready() {
		return aw.Result()
	}
	y.core.pending = eraseAwaitable(aw)
	y.yield()
	y.core.pending = nil
	return aw.Result()
}

// stackCore is the record shared by the driver-facing StackCoroutine
// handle and the coroutine's own goroutine. The handle must stay a
// separate allocation: the goroutine references only the core, so a
// handle the caller drops can be collected and its finalizer can unwind
// the orphaned goroutine.
type stackCore[R any] struct {
	resumeCh chan struct{} // driver -> coroutine: run until the next suspension
	yieldCh  chan struct{} // coroutine -> driver: suspended; closed on exit
	gc       chan struct{}
	killCh   chan struct{}
	killOnce sync.Once
	gcOnce   sync.Once

	pending  erasedAwaitable
	value    R
	err      error
	finished bool
	maxDepth int
}

// StackCoroutine is the stack-preserving Coroutine flavor.
type StackCoroutine[R any] struct {
	core *stackCore[R]
}

// NewStackCoroutine creates a StackCoroutine and immediately spawns its
// goroutine, which blocks until the first Resume call: construction never
// runs body code.
func NewStackCoroutine[R any](cfg *Config, body func(y *StackYield[R]) (R, error)) *StackCoroutine[R] {
	maxDepth := DefaultMaxCoroutineDepth
	if cfg != nil && cfg.MaxCoroutineDepth > 0 {
		maxDepth = cfg.MaxCoroutineDepth
	}
	core := &stackCore[R]{
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
		gc:       make(chan struct{}),
		killCh:   make(chan struct{}),
		maxDepth: maxDepth,
	}
	c := &StackCoroutine[R]{core: core}
	runtime.SetFinalizer(c, func(*StackCoroutine[R]) {
		core.gcOnce.Do(func() { close(core.gc) })
	})
	go core.run(body)
	return c
}

// waitResume blocks the coroutine's goroutine until the driver resumes
// it, or force-unwinds it. The driver never sends a resume after Kill or
// after its handle has been collected, so the unwind cases are
// unambiguous here.
func (c *stackCore[R]) waitResume() {
	select {
	case <-c.resumeCh:
	case <-c.gc:
		panic(ForcedUnwind{Reason: ErrCoroutineLeak})
	case <-c.killCh:
		panic(ForcedUnwind{Reason: ErrCanceled})
	}
}

func (c *stackCore[R]) run(body func(y *StackYield[R]) (R, error)) {
	defer close(c.yieldCh)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fu, ok := r.(ForcedUnwind); ok {
			c.err = fu
			return
		}
		c.err = fmt.Errorf("async: coroutine panicked: %v", r)
	}()
	c.waitResume()
	y := &StackYield[R]{core: c}
	c.value, c.err = body(y)
}

// Resume implements Coroutine: it blocks the caller until the coroutine
// either yields (Suspended), returns (Done/Failed), or was force-unwound
// (Destructed). Resuming past Config.MaxCoroutineDepth concurrently
// active coroutines is a contract violation, reported as Failed.
func (c *StackCoroutine[R]) Resume() (state ResumeState, value R, err error, onReady func(func())) {
	core := c.core
	if core.finished {
		return core.finalState()
	}
	select {
	case <-core.killCh:
		// Killed: the body must never run again. Wait out the unwind
		// instead of handing the goroutine a resume.
		for range core.yieldCh {
		}
		core.finished = true
		return core.finalState()
	default:
	}
	if !pushCoroDepth(core.maxDepth) {
		var zero R
		return Failed, zero, &ContractViolation{Msg: "max coroutine depth exceeded"}, nil
	}
	defer popCoroDepth()

	core.resumeCh <- struct{}{}
	if _, ok := <-core.yieldCh; !ok {
		core.finished = true
		return core.finalState()
	}
	pend := core.pending
	if pend == nil {
		// Generator-style Yield rather than an await: the suspension
		// carries a value and the coroutine is immediately runnable.
		return Suspended, core.value, nil, func(f func()) { f() }
	}
	var zero R
	return Suspended, zero, nil, pend.OnReady
}

// Value returns the most recent value the coroutine yielded or returned.
func (c *StackCoroutine[R]) Value() R { return c.core.value }

func (c *stackCore[R]) finalState() (ResumeState, R, error, func(func())) {
	if _, ok := c.err.(ForcedUnwind); ok {
		var zero R
		return Destructed, zero, nil, nil
	}
	if c.err != nil {
		return Failed, c.value, c.err, nil
	}
	return Done, c.value, nil, nil
}

// Kill force-unwinds the coroutine at its next suspension point (or
// immediately, if it is currently blocked on one). Resume afterward
// reports Destructed, never Done/Failed.
func (c *StackCoroutine[R]) Kill() {
	c.core.killOnce.Do(func() { close(c.core.killCh) })
}
