// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"testing"

	"code.hybscloud.com/async"
)

func TestAcquireTaskWithNilAllocatorFallsBackToNewTask(t *testing.T) {
	task, promise := async.AcquireTask[int](nil, nil)
	if task.State() != async.StatePending {
		t.Fatalf("state = %v, want pending", task.State())
	}
	promise.Complete(3)
	v, err := task.Result()
	if err != nil || v != 3 {
		t.Fatalf("Result() = %v, %v; want 3, nil", v, err)
	}
}

func TestPoolAllocatorReturnsFreshStateEveryAcquire(t *testing.T) {
	a := async.NewPoolAllocator()
	task1, promise1 := async.AcquireTask[int](a, nil)
	promise1.Complete(1)
	if task1.State() != async.StateFulfilled {
		t.Fatal("first task should be fulfilled")
	}

	task2, _ := async.AcquireTask[int](a, nil)
	if task2.State() != async.StatePending {
		t.Fatalf("state = %v, want pending (pool must reset reused records)", task2.State())
	}
}

func TestArenaAllocatorRefusesOverCapacity(t *testing.T) {
	a := async.NewArenaAllocator(1)
	_, _ = async.AcquireTask[int](a, nil)

	defer func() {
		r := recover()
		if r != async.ErrAllocation {
			t.Fatalf("recover() = %v, want ErrAllocation", r)
		}
	}()
	_, _ = async.AcquireTask[int](a, nil)
}

func TestArenaAllocatorResetReclaimsCapacity(t *testing.T) {
	a := async.NewArenaAllocator(1)
	_, _ = async.AcquireTask[int](a, nil)
	a.Reset()
	// must not panic: capacity was reclaimed
	_, _ = async.AcquireTask[int](a, nil)
}

func TestArenaAllocatorUnboundedWithZeroCapacity(t *testing.T) {
	a := async.NewArenaAllocator(0)
	for i := 0; i < 100; i++ {
		_, _ = async.AcquireTask[int](a, nil)
	}
}
