// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package async provides composable asynchronous computation for
// single-threaded, event-driven Go programs.
//
// # Design Philosophy
//
// async provides:
//   - A minimal but complete Task/Promise pair as the unit of asynchronous
//     result propagation
//   - Two interchangeable coroutine flavors behind one [Coroutine] contract,
//     so callers pick allocation profile over semantics
//   - A stepping boundary ([Coroutine].Resume) that lets an external event
//     loop drive a suspended computation one step at a time, the same shape
//     as a generator's Next
//   - Defunctionalized evaluation for the resume-point-encoded flavor: a
//     single iterative trampoline loop walks the frame chain
//
// # Task and Promise
//
//   - [Task]: the read side — [Task.State], [Task.Result], [Task.OnDone]
//   - [Promise]: the write side — [Promise.Complete], [Promise.Fail], [Promise.Cancel]
//   - [NewTask]: create a linked Task/Promise pair
//   - [Promise.Share]: obtain a [SharedPromise] safe to complete from another goroutine
//
// # Coroutines
//
// Both flavors implement [Coroutine]:
//
//   - [FrameCoroutine]: resume-point encoded, built from a defunctionalized
//     frame chain ([frameNode], [runFrames]); no dedicated goroutine, cheapest
//     per-instance cost
//   - [StackCoroutine]: stack-preserving, backed by a dedicated goroutine and
//     a yield/resume channel handoff; supports arbitrary call depth and
//     recursive generators at the cost of one goroutine each
//
// # Await Protocol
//
//   - [Awaitable]: the minimal probe ([Awaitable.Ready], [Awaitable.OnReady],
//     [Awaitable.OffReady]) any task, promise, or user type can implement
//   - [FrameAwait], [StackAwait]: suspend a coroutine body on an
//     [Awaitable] until it settles
//   - [Await]: drive a [Coroutine] to completion from a goroutine with no
//     event loop, blocking between suspensions
//
// # Combinators
//
//   - [Any]: settles on the first child to settle
//   - [Some]: settles once k of n children succeed
//   - [All]: settles once every child succeeds, or on the first failure
//   - [AllSettled]: always waits for every child, never fails itself
//
// # Allocator Plumbing
//
//   - [Allocator]: pluggable acquire/release for pooled internals
//   - [PoolAllocator]: the default, backed by [sync.Pool]
//   - [ArenaAllocator]: a bump allocator for a batch of tasks released together
//
// None of these types perform their own cross-goroutine synchronization in
// the steady state: a single goroutine is expected to drive the whole graph
// by repeatedly resuming whatever is currently runnable. The handful of
// places real synchronization primitives appear ([SharedPromise], the
// package-level coroutine depth counter, [sync.Pool] itself) exist only to
// keep that contract safe when a host posts a completion in from a foreign
// goroutine; they never change the single-threaded semantics.
package async
