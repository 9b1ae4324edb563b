// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/async"
)

func TestStackCoroutineRunsStraightLineBody(t *testing.T) {
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		return 7, nil
	})
	state, v, err, _ := co.Resume()
	if state != async.Done || err != nil || v != 7 {
		t.Fatalf("Resume() = %v, %v, %v; want Done, 7, nil", state, v, err)
	}
}

func TestStackCoroutineSuspendsOnAwait(t *testing.T) {
	child, childPromise := async.NewTask[int](nil)
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		v, err := async.StackAwait[int, int](y, child)
		if err != nil {
			return 0, err
		}
		return v * 10, nil
	})

	state, _, _, onReady := co.Resume()
	if state != async.Suspended {
		t.Fatalf("state = %v, want Suspended", state)
	}

	woke := false
	onReady(func() { woke = true })
	childPromise.Complete(4)
	if !woke {
		t.Fatal("onReady callback should fire once the awaited task settles")
	}

	state, v, err, _ := co.Resume()
	if state != async.Done || err != nil || v != 40 {
		t.Fatalf("Resume() after settle = %v, %v, %v; want Done, 40, nil", state, v, err)
	}
}

func TestStackCoroutinePropagatesBodyError(t *testing.T) {
	wantErr := errors.New("body failed")
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		return 0, wantErr
	})
	state, _, err, _ := co.Resume()
	if state != async.Failed || !errors.Is(err, wantErr) {
		t.Fatalf("Resume() = %v, %v; want Failed, %v", state, err, wantErr)
	}
}

func TestStackCoroutineKillDestructsAtNextSuspension(t *testing.T) {
	child, _ := async.NewTask[int](nil)
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		return async.StackAwait[int, int](y, child)
	})

	state, _, _, _ := co.Resume()
	if state != async.Suspended {
		t.Fatalf("state = %v, want Suspended", state)
	}

	co.Kill()
	state, _, _, _ = co.Resume()
	if state != async.Destructed {
		t.Fatalf("state = %v, want Destructed after Kill", state)
	}
}

// TestStackCoroutineGeneratorYieldsFibonacci drives a generator-style
// coroutine through ten yields and checks the yielded sequence.
func TestStackCoroutineGeneratorYieldsFibonacci(t *testing.T) {
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		a, b := 0, 1
		for i := 0; i < 10; i++ {
			y.Yield(b)
			a, b = b, a+b
		}
		return 0, nil
	})

	want := []int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	for i, w := range want {
		state, v, err, onReady := co.Resume()
		if state != async.Suspended || err != nil {
			t.Fatalf("resume %d = %v, %v; want Suspended, nil", i, state, err)
		}
		if v != w || co.Value() != w {
			t.Fatalf("resume %d yielded %d (Value %d), want %d", i, v, co.Value(), w)
		}
		fired := false
		onReady(func() { fired = true })
		if !fired {
			t.Fatal("a generator yield's onReady must fire synchronously")
		}
	}

	state, _, err, _ := co.Resume()
	if state != async.Done || err != nil {
		t.Fatalf("final Resume() = %v, %v; want Done, nil", state, err)
	}
}

// TestStackCoroutineGeneratorFailsOnOverflow drives the Fibonacci
// generator past the int range: the body detects the wrap and ends the
// coroutine with an error instead of yielding a garbage value.
func TestStackCoroutineGeneratorFailsOnOverflow(t *testing.T) {
	errOverflow := errors.New("fibonacci overflow")
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		a, b := 0, 1
		for {
			y.Yield(b)
			a, b = b, a+b
			if b < a {
				return 0, errOverflow
			}
		}
	})

	for {
		state, v, err, _ := co.Resume()
		if state == async.Suspended {
			if v < 1 {
				t.Fatalf("yielded %d; the generator must never yield a wrapped value", v)
			}
			continue
		}
		if state != async.Failed || !errors.Is(err, errOverflow) {
			t.Fatalf("final Resume() = %v, %v; want Failed, %v", state, err, errOverflow)
		}
		return
	}
}

func TestStackCoroutineDepthOverflowIsContractViolation(t *testing.T) {
	cfg := async.NewConfig(async.WithMaxCoroutineDepth(1))
	inner := async.NewStackCoroutine[int](cfg, func(y *async.StackYield[int]) (int, error) {
		return 1, nil
	})
	outer := async.NewStackCoroutine[int](cfg, func(y *async.StackYield[int]) (int, error) {
		// Resuming a second coroutine from inside the first exceeds the
		// configured depth of 1.
		_, v, err, _ := inner.Resume()
		return v, err
	})

	state, _, err, _ := outer.Resume()
	if state != async.Failed {
		t.Fatalf("state = %v, want Failed on depth overflow", state)
	}
	var cv *async.ContractViolation
	if !errors.As(err, &cv) {
		t.Fatalf("err = %v, want a ContractViolation", err)
	}
}

func TestStackCoroutineResumeAfterFinishReturnsFinalStateAgain(t *testing.T) {
	co := async.NewStackCoroutine[int](nil, func(y *async.StackYield[int]) (int, error) {
		return 1, nil
	})
	co.Resume()
	state, v, err, _ := co.Resume()
	if state != async.Done || v != 1 || err != nil {
		t.Fatalf("second Resume() = %v, %v, %v; want Done, 1, nil (idempotent after finish)", state, v, err)
	}
}
