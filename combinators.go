// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"iter"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Combinators over homogeneous Awaitable[R] collections. The core they
// sit on is single-threaded and cooperative, so every combinator below is
// plain, unsynchronized state closed over by each child's OnReady
// callback — no mutexes or atomics needed.
//
// All three entry points accept the variadic "explicit list" input shape
// directly; the Seq variants accept an iter.Seq[Awaitable[R]] for callers
// holding a container or a lazily produced sequence of children.

// Any completes with the index of the first child to settle, regardless
// of whether that child succeeded or failed. Once a winner is chosen, Any
// deregisters itself from every other child via OffReady. Calling Any
// with no children is a contract violation.
func Any[R any](a Allocator, cfg *Config, children ...Awaitable[R]) Task[int] {
	return anyFrom(a, cfg, children)
}

// AnySeq is the iter.Seq[Awaitable[R]] input shape for Any.
func AnySeq[R any](a Allocator, cfg *Config, seq iter.Seq[Awaitable[R]]) Task[int] {
	return anyFrom(a, cfg, collectAwaitables(seq))
}

func anyFrom[R any](a Allocator, cfg *Config, children []Awaitable[R]) Task[int] {
	if len(children) == 0 {
		return violationTask[int](a, cfg, "async: Any called with no children")
	}

	t, p := AcquireTask[int](a, cfg)

	// A child already ready at construction time completes Any
	// synchronously; no wakers are installed.
	for i, c := range children {
		if c.Ready() {
			p.Complete(i)
			return t
		}
	}

	won := false
	for i := range children {
		i := i
		children[i].OnReady(func() {
			if won {
				return
			}
			won = true
			deregisterExcept(children, i)
			p.Complete(i)
			logDebug(configLogger(cfg), "async: Any short-circuited", withWinner(i, len(children)))
		})
	}
	t.s.onCancel = func() { deregisterAll(children) }
	return t
}

// Some completes once k children have succeeded, or as soon as any child
// fails, whichever comes first. Result is the index of the failing child,
// or len(children) if k successes were reached. Some(0, ...) always
// completes synchronously with success. Some(k, ...) with k greater than
// the number of children is a contract violation.
func Some[R any](a Allocator, cfg *Config, k int, children ...Awaitable[R]) Task[int] {
	return someFrom(a, cfg, k, children)
}

// SomeSeq is the iter.Seq[Awaitable[R]] input shape for Some.
func SomeSeq[R any](a Allocator, cfg *Config, k int, seq iter.Seq[Awaitable[R]]) Task[int] {
	return someFrom(a, cfg, k, collectAwaitables(seq))
}

func someFrom[R any](a Allocator, cfg *Config, k int, children []Awaitable[R]) Task[int] {
	n := len(children)
	if k > n {
		return violationTask[int](a, cfg, "async: Some(k, ...) called with k greater than the number of children")
	}

	t, p := AcquireTask[int](a, cfg)
	if k <= 0 {
		p.Complete(n)
		return t
	}

	// Construction-time scan, in child order: a child that has already
	// failed, or the k-th already-succeeded child, completes the
	// combinator synchronously and no wakers are installed.
	successes := 0
	pending := make([]int, 0, n)
	for i, c := range children {
		if !c.Ready() {
			pending = append(pending, i)
			continue
		}
		if _, err := c.Result(); err != nil {
			p.Complete(i)
			return t
		}
		successes++
		if successes >= k {
			p.Complete(n)
			return t
		}
	}

	won := false
	for _, i := range pending {
		i := i
		children[i].OnReady(func() {
			if won {
				return
			}
			if _, err := children[i].Result(); err != nil {
				won = true
				deregisterExcept(children, i)
				p.Complete(i)
				logDebug(configLogger(cfg), "async: Some short-circuited on failure", withWinner(i, n))
				return
			}
			successes++
			if successes >= k {
				won = true
				deregisterExcept(children, i)
				p.Complete(n)
				logDebug(configLogger(cfg), "async: Some reached its success count", nil)
			}
		})
	}
	t.s.onCancel = func() { deregisterAll(children) }
	return t
}

// configLogger extracts cfg's Logger, tolerating a nil Config.
func configLogger(cfg *Config) Logger {
	if cfg == nil {
		return nil
	}
	return cfg.Logger
}

// withWinner builds a log field closure naming the child index that
// short-circuited a combinator, out of childCount siblings.
func withWinner(i, childCount int) func(b *logiface.Builder[*stumpy.Event]) *logiface.Builder[*stumpy.Event] {
	return func(b *logiface.Builder[*stumpy.Event]) *logiface.Builder[*stumpy.Event] {
		return b.Int64("winner", int64(i)).Int64("children", int64(childCount))
	}
}

// All completes once every child has succeeded, or on the first child to
// fail; it is Some(N, ...) where N is the number of children. All over
// zero children succeeds synchronously (Some(0, ...)'s rule applies).
func All[R any](a Allocator, cfg *Config, children ...Awaitable[R]) Task[int] {
	return someFrom(a, cfg, len(children), children)
}

// AllSeq is the iter.Seq[Awaitable[R]] input shape for All.
func AllSeq[R any](a Allocator, cfg *Config, seq iter.Seq[Awaitable[R]]) Task[int] {
	children := collectAwaitables(seq)
	return someFrom(a, cfg, len(children), children)
}

// Outcome is one child's settled state as collected by AllSettled.
type Outcome[R any] struct {
	Value R
	Err   error
}

// AllSettled completes once every child has settled, regardless of
// success or failure, and never fails itself.
func AllSettled[R any](a Allocator, cfg *Config, children ...Awaitable[R]) Task[[]Outcome[R]] {
	return allSettledFrom(a, cfg, children)
}

// AllSettledSeq is the iter.Seq[Awaitable[R]] input shape for AllSettled.
func AllSettledSeq[R any](a Allocator, cfg *Config, seq iter.Seq[Awaitable[R]]) Task[[]Outcome[R]] {
	return allSettledFrom(a, cfg, collectAwaitables(seq))
}

func allSettledFrom[R any](a Allocator, cfg *Config, children []Awaitable[R]) Task[[]Outcome[R]] {
	t, p := AcquireTask[[]Outcome[R]](a, cfg)
	n := len(children)
	out := make([]Outcome[R], n)
	if n == 0 {
		p.Complete(out)
		return t
	}

	remaining := n
	record := func(i int) {
		v, err := children[i].Result()
		out[i] = Outcome[R]{Value: v, Err: err}
		remaining--
	}
	for i, c := range children {
		if c.Ready() {
			record(i)
			continue
		}
		i := i
		children[i].OnReady(func() {
			record(i)
			if remaining == 0 {
				p.Complete(out)
			}
		})
	}
	if remaining == 0 {
		p.Complete(out)
	} else {
		t.s.onCancel = func() { deregisterAll(children) }
	}
	return t
}

func deregisterExcept[R any](children []Awaitable[R], winner int) {
	for j, c := range children {
		if j != winner {
			c.OffReady()
		}
	}
}

// deregisterAll drops every child registration within the same synchronous
// scope as the cancellation that triggered it. Children are only ever
// deregistered, never themselves canceled: an Awaitable has no cancel
// surface, so canceling child operations stays with whoever holds their
// Task handles.
func deregisterAll[R any](children []Awaitable[R]) {
	for _, c := range children {
		c.OffReady()
	}
}

func collectAwaitables[R any](seq iter.Seq[Awaitable[R]]) []Awaitable[R] {
	var out []Awaitable[R]
	for a := range seq {
		out = append(out, a)
	}
	return out
}

// violationTask returns a Task already settled with a ContractViolation,
// or panics directly when cfg.StrictMode is set.
func violationTask[R any](a Allocator, cfg *Config, msg string) Task[R] {
	if cfg != nil && cfg.StrictMode {
		panic(&ContractViolation{Msg: msg})
	}
	t, p := AcquireTask[R](a, cfg)
	p.s.settle(StateRejected, func() { p.s.cell.SetErr(&ContractViolation{Msg: msg}) })
	return t
}
