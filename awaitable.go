// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Awaitable is the minimal probe any task, promise, or user-defined
// asynchronous value must implement to be suspended on by a coroutine or
// passed to a combinator.
type Awaitable[R any] interface {
	// Ready reports whether the awaitable has already settled.
	Ready() bool

	// Result returns the settled value/error. Calling Result before Ready
	// is true panics.
	Result() (R, error)

	// OnReady registers f to run the first time the awaitable settles. If
	// the awaitable is already settled, f runs synchronously before
	// OnReady returns. At most one OnReady callback is retained; a second
	// call replaces the first (matching Task's single-listener contract).
	OnReady(f func())

	// OffReady clears any callback registered via OnReady: always legal,
	// and a no-op once the awaitable has already settled or nothing is
	// registered. The combinators call this to deregister from every
	// losing child the moment one child wins.
	OffReady()
}

// ptrAwaitable relays to whatever Awaitable *p currently points to,
// resolved at Ready/Result/OnReady time rather than at wrap time: the
// pointee may not exist yet when the relay is constructed.
type ptrAwaitable[R any] struct {
	p *Awaitable[R]
}

// Ptr wraps a pointer to an Awaitable so the pointee can be assigned after
// the relay is handed out, e.g. to a combinator constructed before its
// children are known.
func Ptr[R any](p *Awaitable[R]) Awaitable[R] { return ptrAwaitable[R]{p: p} }

func (r ptrAwaitable[R]) Ready() bool        { return (*r.p).Ready() }
func (r ptrAwaitable[R]) Result() (R, error) { return (*r.p).Result() }
func (r ptrAwaitable[R]) OnReady(f func())   { (*r.p).OnReady(f) }
func (r ptrAwaitable[R]) OffReady()          { (*r.p).OffReady() }

// refAwaitable relays to the Awaitable returned by resolve(), called once
// lazily on first use and cached — the second built-in relay shape, for
// callers that produce the real awaitable from a factory rather than a
// settable pointer.
type refAwaitable[R any] struct {
	resolve func() Awaitable[R]
}

// Ref wraps a factory function as a lazily-resolved Awaitable relay.
func Ref[R any](resolve func() Awaitable[R]) Awaitable[R] {
	return &refAwaitable[R]{resolve: resolve}
}

func (r *refAwaitable[R]) target() Awaitable[R] {
	a := r.resolve()
	r.resolve = func() Awaitable[R] { return a }
	return a
}

func (r *refAwaitable[R]) Ready() bool        { return r.target().Ready() }
func (r *refAwaitable[R]) Result() (R, error) { return r.target().Result() }
func (r *refAwaitable[R]) OnReady(f func())   { r.target().OnReady(f) }
func (r *refAwaitable[R]) OffReady()          { r.target().OffReady() }
