// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Resume-point-encoded coroutine: the computation is defunctionalized
// into a chain of frame structs (Reynolds 1972) instead of nested
// closures, and a single iterative driver walks the chain. The resume
// point is simply which frame node is current — the chain itself is the
// resume point, so a suspended coroutine's entire continuation lives in
// one allocated value instead of a goroutine stack.

// erased is a type-erased value moving through the frame chain; concrete
// types are recovered via type assertion at frame boundaries.
type erased = any

// frameNode is the marker interface for frame chain links.
type frameNode interface{ isFrame() }

// returnFrame signals the coroutine body has completed.
type returnFrame struct{}

func (returnFrame) isFrame() {}

// bindFrame sequences a continuation function after the current value.
// f itself may await, via frameExpr values built with awaitErased.
type bindFrame struct {
	f    func(erased) frameExpr
	next frameNode
}

func (*bindFrame) isFrame() {}

// awaitFrame suspends the coroutine on pending until it settles, then
// resumes the chain with its result.
type awaitFrame struct {
	pending erasedAwaitable
	resume  func(v any, err error) frameExpr
	next    frameNode
}

func (*awaitFrame) isFrame() {}

// chainedFrame links two frame chains in O(1), letting chainFrames avoid
// ever walking an existing chain just to append to it.
type chainedFrame struct {
	first frameNode
	rest  frameNode
}

func (*chainedFrame) isFrame() {}

func chainFrames(first, second frameNode) frameNode {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	if _, ok := first.(returnFrame); ok {
		return second
	}
	if _, ok := second.(returnFrame); ok {
		return first
	}
	return &chainedFrame{first: first, rest: second}
}

// frameExpr is a defunctionalized coroutine-body expression: either a
// completed value (frame == returnFrame{}) or a pending frame chain.
type frameExpr struct {
	value erased
	frame frameNode
}

func frameReturn(v erased) frameExpr { return frameExpr{value: v, frame: returnFrame{}} }

// frameErr is the sentinel completion value a coroutine body uses to end
// itself with an error instead of a success value (see FrameFail).
type frameErr struct{ err error }

func frameBind(m frameExpr, f func(erased) frameExpr) frameExpr {
	if _, ok := m.frame.(returnFrame); ok {
		// A frameErr value short-circuits past every bind untouched; the
		// typed continuation only ever sees success values.
		if _, isErr := m.value.(frameErr); isErr {
			return m
		}
		return f(m.value)
	}
	bf := &bindFrame{f: f, next: returnFrame{}}
	return frameExpr{frame: chainFrames(m.frame, bf)}
}

func awaitErased(pending erasedAwaitable, resume func(v any, err error) frameExpr) frameExpr {
	return frameExpr{frame: &awaitFrame{pending: pending, resume: resume, next: returnFrame{}}}
}

// FrameExprOf is the typed facade over frameExpr that coroutine bodies are
// built with via FrameReturn/FrameBind/FrameAwait; the untyped frameExpr
// beneath is what runFrames actually drives.
type FrameExprOf[R any] struct{ e frameExpr }

// FrameReturn lifts a value into a completed coroutine-body expression.
func FrameReturn[R any](v R) FrameExprOf[R] { return FrameExprOf[R]{e: frameReturn(v)} }

// FrameFail ends a coroutine-body expression with an error instead of a
// success value.
func FrameFail[R any](err error) FrameExprOf[R] { return FrameExprOf[R]{e: frameReturn(frameErr{err})} }

// FrameBind sequences g after m, threading m's value.
func FrameBind[A, B any](m FrameExprOf[A], g func(A) FrameExprOf[B]) FrameExprOf[B] {
	return FrameExprOf[B]{e: frameBind(m.e, func(v erased) frameExpr { return g(v.(A)).e })}
}

// FrameAwait suspends a FrameCoroutine body on aw and resumes with its
// settled (value, error) pair, applying f to build the rest of the body.
// This is the primitive building block coroutine bodies are written with,
// in the absence of Go's own suspend-anywhere control flow.
func FrameAwait[A, B any](aw Awaitable[A], f func(A, error) FrameExprOf[B]) FrameExprOf[B] {
	return FrameExprOf[B]{e: awaitErased(eraseAwaitable(aw), func(v any, err error) frameExpr {
		var a A
		if v != nil {
			a = v.(A)
		}
		return f(a, err).e
	})}
}

// erasedAwaitable is a type-erased Awaitable, recovered at the point the
// coroutine planted the await (FrameAwait knows the concrete A).
type erasedAwaitable interface {
	Ready() bool
	ResultAny() (any, error)
	OnReady(func())
}

type erasedAwaitableImpl[A any] struct{ aw Awaitable[A] }

func (e erasedAwaitableImpl[A]) Ready() bool { return e.aw.Ready() }

func (e erasedAwaitableImpl[A]) ResultAny() (any, error) {
	v, err := e.aw.Result()
	return v, err
}

func (e erasedAwaitableImpl[A]) OnReady(f func()) { e.aw.OnReady(f) }

func eraseAwaitable[A any](aw Awaitable[A]) erasedAwaitable { return erasedAwaitableImpl[A]{aw: aw} }

// runFrames is the iterative evaluator for a frame chain. It runs until
// the chain completes, or hits an awaitFrame whose target is not yet
// ready.
//
// Returns (value, nil, true) on completion, or (nil, pendingFrame, false)
// when suspended — pendingFrame.next already carries the remainder of the
// original chain, so resuming just means re-entering runFrames with it.
func runFrames(current erased, frame frameNode) (erased, *awaitFrame, bool) {
	for {
		for {
			cf, ok := frame.(*chainedFrame)
			if !ok {
				break
			}
			switch inner := cf.first.(type) {
			case returnFrame:
				frame = cf.rest
			case *chainedFrame:
				frame = chainFrames(inner.first, chainFrames(inner.rest, cf.rest))
			case *bindFrame:
				if _, isErr := current.(frameErr); isErr {
					frame = chainFrames(inner.next, cf.rest)
					continue
				}
				next := inner.f(current)
				current = next.value
				frame = chainFrames(chainFrames(next.frame, inner.next), cf.rest)
			case *awaitFrame:
				if !inner.pending.Ready() {
					return nil, &awaitFrame{
						pending: inner.pending,
						resume:  inner.resume,
						next:    chainFrames(inner.next, cf.rest),
					}, false
				}
				v, err := inner.pending.ResultAny()
				next := inner.resume(v, err)
				current = next.value
				frame = chainFrames(chainFrames(next.frame, inner.next), cf.rest)
			default:
				panic("async: unknown frame node")
			}
		}

		switch f := frame.(type) {
		case returnFrame:
			return current, nil, true
		case *bindFrame:
			if _, isErr := current.(frameErr); isErr {
				frame = f.next
				continue
			}
			next := f.f(current)
			current = next.value
			frame = chainFrames(next.frame, f.next)
		case *awaitFrame:
			if !f.pending.Ready() {
				return nil, f, false
			}
			v, err := f.pending.ResultAny()
			next := f.resume(v, err)
			current = next.value
			frame = chainFrames(next.frame, f.next)
		default:
			panic("async: unknown frame node")
		}
	}
}

// ResumeState is the common result of driving any Coroutine one step.
type ResumeState uint8

const (
	Suspended ResumeState = iota
	Done
	Failed
	Destructed
)

// Coroutine is the contract both coroutine flavors satisfy, letting
// AsyncFrame drive either one the same way.
type Coroutine[R any] interface {
	// Resume advances the coroutine one step. onReady is non-nil only
	// when state == Suspended: the driver should call it with a callback
	// to invoke once the pending awaitable settles, then Resume again.
	Resume() (state ResumeState, value R, err error, onReady func(func()))

	// Kill destructs the coroutine without running any more of its body.
	Kill()
}

// FrameCoroutine is the resume-point-encoded Coroutine flavor. It holds no
// dedicated goroutine: Resume re-enters runFrames at whichever frame is
// current, which is cheaper per instance than StackCoroutine but requires
// the body be built from FrameReturn/FrameBind/FrameAwait rather than
// written as straight-line imperative Go.
type FrameCoroutine[R any] struct {
	cur   erased
	frame frameNode
	value R
	err   error
	done  bool
	// destructing is set by Kill; once set, Resume reports Destructed
	// without running any more of the body.
	destructing bool
}

// NewFrameCoroutine starts a FrameCoroutine from body, not yet running it.
func NewFrameCoroutine[R any](body FrameExprOf[R]) *FrameCoroutine[R] {
	return &FrameCoroutine[R]{cur: body.e.value, frame: body.e.frame}
}

// Resume drives the coroutine until it completes or suspends on an
// awaitFrame that is not yet ready. onReady is non-nil only in the
// Suspended case; the caller should pass it a callback to schedule the
// next Resume once the pending awaitable settles.
func (c *FrameCoroutine[R]) Resume() (state ResumeState, value R, err error, onReady func(func())) {
	if c.destructing {
		return Destructed, c.value, nil, nil
	}
	if c.done {
		if c.err != nil {
			return Failed, c.value, c.err, nil
		}
		return Done, c.value, nil, nil
	}
	v, pend, doneNow := runFrames(c.cur, c.frame)
	if !doneNow {
		c.cur, c.frame = nil, pend
		return Suspended, c.value, nil, pend.pending.OnReady
	}
	c.done = true
	if fe, ok := v.(frameErr); ok {
		c.err = fe.err
		return Failed, c.value, c.err, nil
	}
	if rv, ok := v.(R); ok {
		c.value = rv
	}
	return Done, c.value, nil, nil
}

// Kill marks the coroutine destructed without running any more of its
// body. Safe to call on an already-done coroutine.
func (c *FrameCoroutine[R]) Kill() {
	c.destructing = true
}
