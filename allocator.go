// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"reflect"
	"runtime/debug"
	"sync"
)

// Allocator is the pluggable acquire/release surface Task/Promise pairs
// go through for their pooled internals. Generic methods
// are not legal in Go, so Allocator is type-erased (a key plus a factory);
// AcquireTask recovers the concrete type with a single type assertion at
// the call site.
type Allocator interface {
	acquire(key reflect.Type, newFunc func() any) any
	release(key reflect.Type, v any)
}

// PoolAllocator is the default Allocator: a pool-of-pools keyed by result
// type, each backed by a sync.Pool.
type PoolAllocator struct {
	pools sync.Map // reflect.Type -> *sync.Pool
}

// NewPoolAllocator constructs a ready-to-use PoolAllocator.
func NewPoolAllocator() *PoolAllocator { return &PoolAllocator{} }

func (a *PoolAllocator) poolFor(key reflect.Type, newFunc func() any) *sync.Pool {
	if v, ok := a.pools.Load(key); ok {
		return v.(*sync.Pool)
	}
	p := &sync.Pool{New: newFunc}
	actual, _ := a.pools.LoadOrStore(key, p)
	return actual.(*sync.Pool)
}

func (a *PoolAllocator) acquire(key reflect.Type, newFunc func() any) any {
	return a.poolFor(key, newFunc).Get()
}

func (a *PoolAllocator) release(key reflect.Type, v any) {
	if p, ok := a.pools.Load(key); ok {
		p.(*sync.Pool).Put(v)
	}
}

// ArenaAllocator is a bump allocator for a batch of tasks that are all
// released together. Individual release calls are no-ops; Reset reclaims
// the whole batch at once, which is the only release operation
// ArenaAllocator supports.
type ArenaAllocator struct {
	mu      sync.Mutex
	records []any
	cap     int
}

// NewArenaAllocator creates an ArenaAllocator that refuses further
// acquisitions once capacity records have been handed out (0 means
// unbounded).
func NewArenaAllocator(capacity int) *ArenaAllocator {
	return &ArenaAllocator{cap: capacity}
}

func (a *ArenaAllocator) acquire(_ reflect.Type, newFunc func() any) any {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cap > 0 && len(a.records) >= a.cap {
		panic(ErrAllocation)
	}
	v := newFunc()
	a.records = append(a.records, v)
	return v
}

func (a *ArenaAllocator) release(reflect.Type, any) {
	// no-op; see Reset
}

// Reset drops every record the arena has handed out, for reuse by a new
// batch of tasks.
func (a *ArenaAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = a.records[:0]
}

// AcquireTask obtains a Task/Promise pair from the allocator instead of a
// fresh heap allocation. The state is reset to StatePending/blank before
// being handed back.
func AcquireTask[R any](a Allocator, cfg *Config) (Task[R], Promise[R]) {
	if a == nil {
		return NewTask[R](cfg)
	}
	var zero R
	key := reflect.TypeOf(&zero)
	raw := a.acquire(key, func() any { return newSharedState[R]() })
	s := raw.(*sharedState[R])
	s.settling.Store(0)
	s.state.Store(uint32(StatePending))
	s.cell = ResultCell[R]{}
	s.listener = nil
	s.detached = false
	s.onCancel = nil
	s.id = ""
	s.creation = nil
	if cfg != nil && cfg.DebugMode {
		s.id = newDebugID()
		s.creation = debug.Stack()
	}
	return Task[R]{s: s}, Promise[R]{s: s}
}

func releaseSharedState[R any](a Allocator, s *sharedState[R]) {
	if a == nil || s == nil {
		return
	}
	var zero R
	a.release(reflect.TypeOf(&zero), s)
}
