// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// cellState tags the four states a ResultCell may occupy.
type cellState uint8

const (
	cellBlank cellState = iota
	cellValue
	cellError
	cellMoved
)

// ResultCell is the common result cell shared by Task, Promise and the
// coroutine flavors: a value-or-error slot that starts blank, is set at
// most once, and can be taken (moved-from) at most once.
//
// ResultCell is not safe for concurrent use; callers that hand a result
// across goroutines must go through SharedPromise instead.
type ResultCell[R any] struct {
	state cellState
	value R
	err   error
}

// State reports which of the four states the cell currently occupies.
func (c *ResultCell[R]) State() cellState { return c.state }

func (c *ResultCell[R]) IsBlank() bool { return c.state == cellBlank }
func (c *ResultCell[R]) IsValue() bool { return c.state == cellValue }
func (c *ResultCell[R]) IsError() bool { return c.state == cellError }
func (c *ResultCell[R]) IsMoved() bool { return c.state == cellMoved }

// Set stores a value, transitioning the cell from blank to value.
// Panics if the cell is not currently blank. Callers whose value
// construction may itself fail should use SetFunc instead, which
// recovers a construction panic into the cell's error state.
func (c *ResultCell[R]) Set(v R) {
	if c.state != cellBlank {
		panic("async: result cell set twice")
	}
	c.state = cellValue
	c.value = v
}

// SetFunc stores the value produced by construct, or the error it panics
// with. Panics other than those carrying an error value are re-raised.
func (c *ResultCell[R]) SetFunc(construct func() R) {
	if c.state != cellBlank {
		panic("async: result cell set twice")
	}
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				c.state = cellError
				c.err = err
				return
			}
			panic(r)
		}
	}()
	v := construct()
	c.state = cellValue
	c.value = v
}

// SetErr stores an error, transitioning the cell from blank to error.
// Panics if the cell is not currently blank.
func (c *ResultCell[R]) SetErr(err error) {
	if c.state != cellBlank {
		panic("async: result cell set twice")
	}
	c.state = cellError
	c.err = err
}

// Peek returns the stored value/error without consuming the cell.
// ok is false while the cell is blank or already moved.
func (c *ResultCell[R]) Peek() (v R, err error, ok bool) {
	switch c.state {
	case cellValue:
		return c.value, nil, true
	case cellError:
		var zero R
		return zero, c.err, true
	default:
		var zero R
		return zero, nil, false
	}
}

// Take consumes the cell, transitioning value/error to moved. Calling Take
// on a blank or already-moved cell panics.
func (c *ResultCell[R]) Take() (R, error) {
	switch c.state {
	case cellValue:
		v := c.value
		var zero R
		c.value = zero
		c.state = cellMoved
		return v, nil
	case cellError:
		err := c.err
		c.err = nil
		c.state = cellMoved
		return *new(R), err
	default:
		panic("async: result cell taken while blank or already moved")
	}
}

// Either represents a value that is either Left (error) or Right (success).
// Kept as a small standalone sum type for callers that want to pattern
// match on a settled ResultCell without consuming it (e.g. logging).
type Either[E, A any] struct {
	isRight bool
	left    E
	right   A
}

// Left creates a Left (error) value.
func Left[E, A any](e E) Either[E, A] { return Either[E, A]{isRight: false, left: e} }

// Right creates a Right (success) value.
func Right[E, A any](a A) Either[E, A] { return Either[E, A]{isRight: true, right: a} }

// IsRight returns true if this is a Right value.
func (e Either[E, A]) IsRight() bool { return e.isRight }

// IsLeft returns true if this is a Left value.
func (e Either[E, A]) IsLeft() bool { return !e.isRight }

// GetRight returns the Right value and true, or zero and false.
func (e Either[E, A]) GetRight() (A, bool) {
	if e.isRight {
		return e.right, true
	}
	var zero A
	return zero, false
}

// GetLeft returns the Left value and true, or zero and false.
func (e Either[E, A]) GetLeft() (E, bool) {
	if !e.isRight {
		return e.left, true
	}
	var zero E
	return zero, false
}

// MatchEither pattern matches on the Either, calling onLeft or onRight.
func MatchEither[E, A, T any](e Either[E, A], onLeft func(E) T, onRight func(A) T) T {
	if e.isRight {
		return onRight(e.right)
	}
	return onLeft(e.left)
}
