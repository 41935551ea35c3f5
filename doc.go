// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides a per-producer lock-free staging byte ring: a
// fixed-capacity circular buffer with reserve/commit semantics on the
// write side and peek/consume semantics on the read side.
//
// It is built for low-latency logging and similar staging pipelines:
// one goroutine formats records directly into ring-owned memory
// (avoiding an intermediate allocation and copy), and one background
// goroutine drains completed records out to a sink (disk, network,
// compressor).
//
// # Quick Start
//
//	r, err := ring.New(producerID)
//	if err != nil {
//	    return err
//	}
//
//	// Producer goroutine
//	buf := r.Reserve(len(record))
//	n := copy(buf, record)
//	r.Commit(n)
//
//	// Consumer goroutine
//	chunk := r.Peek()
//	if len(chunk) > 0 {
//	    process(chunk)
//	    r.Consume(len(chunk))
//	}
//
// # Construction
//
// Use [Builder] for anything other than the default capacity:
//
//	r, err := ring.NewBuilder(producerID).
//	    Capacity(4 << 20).
//	    HistogramEnabled(true).
//	    Build()
//
// # Reserve and Commit
//
// Reserve returns a slice of at least n writable bytes and blocks
// (busy-waiting with a brief pause between attempts) until space
// exists. TryReserve is the non-blocking variant, returning (nil,
// false) instead of spinning:
//
//	buf, ok := r.TryReserve(n)
//	if !ok {
//	    // ring momentarily full; apply backpressure
//	    return
//	}
//	// ... write into buf ...
//	r.Commit(n)
//
// Reservations are not guards: nothing prevents a caller from writing
// past the reserved slice or skipping Commit. The caller is trusted to
// commit no more than it reserved, exactly once, before reserving
// again — the same discipline any zero-copy staging buffer places on
// its callers, just expressed here without a RAII guard type.
//
// # Peek and Consume
//
// Peek returns the currently available contiguous region without
// removing it; Consume releases the first n bytes of that region:
//
//	for {
//	    chunk := r.Peek()
//	    if len(chunk) == 0 {
//	        if r.CanDelete() {
//	            return
//	        }
//	        continue
//	    }
//	    consumed := handle(chunk)
//	    r.Consume(consumed)
//	}
//
// Peek can return less than the full amount of data logically present
// in the ring: when the producer has wrapped around, the readable
// region stops at the end-of-recorded-space marker rather than
// spanning the wrap discontinuity. A second Peek call after Consume
// picks up the wrapped region.
//
// # Thread Safety
//
// A Ring is safe for concurrent use by exactly one producer goroutine
// (Reserve, TryReserve, Commit, MarkForDeletion) and exactly one
// consumer goroutine (Peek, Consume, CanDelete) at a time. Violating
// this — two producers, two consumers, or a producer calling consumer
// methods — causes data corruption and races. This package provides no
// locking of its own; serialize access above it if your topology needs
// more than one writer or reader.
//
// # Lifecycle
//
// A ring has no explicit Close. The producer calls MarkForDeletion
// when it is done writing; the consumer polls [Ring.CanDelete] after
// each empty Peek and drops its reference once true, letting the
// garbage collector reclaim storage:
//
//	defer r.MarkForDeletion()
//
// # Performance
//
// Reserve's fast path — the overwhelming majority of calls in a
// healthy pipeline — touches no hardware fence and never reads the
// consumer's position: it is a cached free-space comparison plus a
// slice of pre-allocated storage. Commit publishes with a single
// store-release. Peek reads the producer's position with a
// load-acquire, plus a second load-acquire and a store-release on the
// call that handles a wrap. Consume bounds its argument with the same
// acquire loads and publishes with a store-release. See SPEC_FULL.md
// and DESIGN.md for the full reasoning
// behind this split.
//
// # Metrics
//
// [Ring.Stats] returns a snapshot of allocation counts, producer-block
// counts and duration, and (when enabled via
// [Builder.HistogramEnabled]) a histogram of block durations. The
// sink subpackage exposes these as Prometheus counters, plus a gauge
// for the ring's capacity.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but
// cannot see the happens-before relationship this package establishes
// through [code.hybscloud.com/atomix]'s acquire/release atomics.
// Concurrent tests that rely on that relationship are excluded under
// race detection via //go:build !race; see [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/spin] for
// CPU-pause-based busy-wait backoff on Reserve's slow path, and
// [code.hybscloud.com/iox] for semantic error classification.
package ring
