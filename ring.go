// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides a lock-free, single-producer single-consumer
// staging byte ring with reserve/commit producer semantics and
// peek/consume consumer semantics.
//
// # Thread-Safety Guarantees
//
// One goroutine may call Reserve/TryReserve/Commit (the producer); one
// goroutine may call Peek/Consume/CanDelete (the consumer). The
// producer may also call MarkForDeletion when it exits. Violating these
// constraints (multiple producers, multiple consumers, or a producer
// calling consumer methods) causes data corruption and races.
//
// # Performance Characteristics
//
//   - Reserve's fast path touches no hardware fence and never reads
//     consumer_pos: it is a cached-free-space check plus a slice of the
//     pre-allocated storage.
//   - Commit publishes with a single store-release. Peek reads the
//     producer's position with a load-acquire, plus a second load-acquire
//     and a store-release on the call that handles a wrap. Consume bounds
//     n with the same acquire loads and publishes with a store-release.
//   - Zero allocations on the fast path: storage is allocated once at
//     construction.
//
// # Usage Example
//
//	r, err := ring.New(id)
//	if err != nil {
//	    return err
//	}
//
//	// Producer goroutine
//	buf := r.Reserve(len(payload))
//	copy(buf, payload)
//	r.Commit(len(payload))
//
//	// Consumer goroutine
//	for {
//	    chunk := r.Peek()
//	    if len(chunk) == 0 {
//	        if r.CanDelete() {
//	            return
//	        }
//	        continue
//	    }
//	    process(chunk)
//	    r.Consume(len(chunk))
//	}
package ring

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Ring is a fixed-capacity byte queue decoupling one producer goroutine
// from one consumer goroutine. See the package doc for the access
// pattern it requires.
//
// Layout: producer-mutated fields occupy one cache line, a pad
// separates them from the consumer-mutated region, and storage is a
// separate heap allocation so it cannot share a line with either side.
type Ring struct {
	// ---- producer-mutated region: one cache line ----
	producerPos        atomix.Uint64 // next write offset into storage
	endOfRecordedSpace  atomix.Uint64 // exclusive end of consumer-readable data
	minFreeSpace        uint64        // producer-private cached lower bound on free bytes
	allocCount          atomix.Uint64
	timesBlocked        atomix.Uint64
	blockedNanos        atomix.Uint64
	histogram           *histogram
	_                   pad

	// ---- consumer-mutated region: its own cache line ----
	consumerPos      atomix.Uint64 // next read offset into storage
	shouldDeallocate atomix.Bool
	_                pad

	// ---- immutable after construction ----
	storage  []byte // separate allocation, exactly capacity bytes
	capacity uint64
	id       uint64
}

// New creates a ring identified by id with default options (CAP = 2^20
// bytes, a full cache-line gap, histogram disabled). Use NewBuilder for
// other configurations.
func New(id uint64) (*Ring, error) {
	return NewBuilder(id).Build()
}

// ID returns the ring's opaque identifier, assigned at construction.
func (r *Ring) ID() uint64 {
	return r.id
}

// Reserve returns a slice of at least n contiguous writable bytes,
// busy-waiting with a brief pause until such space exists. n must
// satisfy 0 < n < CAP. The caller must Commit exactly once per Reserve,
// with a count no greater than n, before reserving again.
func (r *Ring) Reserve(n int) []byte {
	r.validateReserveSize(n)
	r.allocCount.StoreRelaxed(r.allocCount.LoadRelaxed() + 1)

	un := uint64(n)
	if un < r.minFreeSpace {
		p := r.producerPos.LoadRelaxed()
		return r.storage[p : p+un]
	}
	return r.reserveSlow(un, true)
}

// TryReserve behaves like Reserve but never blocks: it returns (nil,
// false) instead of spinning when no space is currently available.
func (r *Ring) TryReserve(n int) ([]byte, bool) {
	r.validateReserveSize(n)
	r.allocCount.StoreRelaxed(r.allocCount.LoadRelaxed() + 1)

	un := uint64(n)
	if un < r.minFreeSpace {
		p := r.producerPos.LoadRelaxed()
		return r.storage[p : p+un], true
	}
	buf := r.reserveSlow(un, false)
	return buf, buf != nil
}

func (r *Ring) validateReserveSize(n int) {
	if n <= 0 || uint64(n) >= r.capacity {
		panic("ring: reserve size must satisfy 0 < n < CAP")
	}
}

// reserveSlow recomputes free space from a fresh read of consumerPos
// and, if necessary, wraps the producer back to the base of storage.
// blocking selects whether it spins until space exists or returns nil
// the first time it finds none.
func (r *Ring) reserveSlow(n uint64, blocking bool) []byte {
	// The "times blocked" counter and its timer start on entering the
	// slow path, even if this call turns out not to spin at all: callers
	// must not assume blocked-count exactness.
	r.timesBlocked.StoreRelaxed(r.timesBlocked.LoadRelaxed() + 1)
	start := time.Now()
	sw := spin.Wait{}

	capEnd := r.capacity
	for {
		p := r.producerPos.LoadRelaxed()
		c := loadAcquireU64(&r.consumerPos)

		if c <= p {
			r.minFreeSpace = capEnd - p
			if r.minFreeSpace <= n {
				// Tail too small: publish the wrap marker for the
				// consumer before attempting to move producerPos.
				storeReleaseU64(&r.endOfRecordedSpace, p)
				if c == 0 {
					// Wrap-pending: wrapping now would set
					// producerPos == consumerPos == 0, colliding with
					// the emptiness invariant. Wait for the consumer
					// to advance off the base.
				} else {
					storeReleaseU64(&r.producerPos, 0)
					p = 0
					r.minFreeSpace = c
				}
			}
		} else {
			r.minFreeSpace = c - p
		}

		if r.minFreeSpace > n {
			break
		}
		if !blocking {
			r.recordBlocked(start)
			return nil
		}
		sw.Once()
	}

	r.recordBlocked(start)
	p := r.producerPos.LoadRelaxed()
	return r.storage[p : p+n]
}

func (r *Ring) recordBlocked(start time.Time) {
	d := time.Since(start)
	r.blockedNanos.StoreRelaxed(r.blockedNanos.LoadRelaxed() + uint64(d))
	r.histogram.record(d)
}

// Commit declares that the first n bytes of the prior Reservation are
// initialized and may become visible to the consumer. n must be no
// greater than the amount passed to the matching Reserve/TryReserve;
// the common case is equal.
func (r *Ring) Commit(n int) {
	un := uint64(n)
	if un >= r.minFreeSpace {
		panic("ring: commit exceeds reserved free space")
	}
	p := r.producerPos.LoadRelaxed()
	if p+un >= r.capacity {
		panic("ring: commit would overrun storage")
	}
	storeReleaseU64(&r.producerPos, p+un)
	r.minFreeSpace -= un
}

// Peek returns a slice of the contiguous bytes currently available to
// the consumer. It is idempotent and side-effect-free except for one
// possible internal wrap of the consumer's read position when it has
// drained exactly up to the end-of-recorded-space marker.
func (r *Ring) Peek() []byte {
	p := loadAcquireU64(&r.producerPos)
	c := r.consumerPos.LoadRelaxed()

	if p < c {
		// The producer has wrapped; consult the published marker.
		e := loadAcquireU64(&r.endOfRecordedSpace)
		if e-c > 0 {
			return r.storage[c:e]
		}
		// Consumer has reached the end marker: wrap its own position
		// to the base and fall through to read the head region.
		c = 0
		storeReleaseU64(&r.consumerPos, 0)
	}
	return r.storage[c : c+(p-c)]
}

// Consume releases the first n bytes of the region returned by the
// prior Peek. n must not exceed that region's length. Consume panics if
// n is negative or exceeds the bytes currently readable from the read
// position; it does not record the length of the last Peek itself.
func (r *Ring) Consume(n int) {
	c := r.consumerPos.LoadRelaxed()
	// The region a prior Peek returned never extends past producerPos,
	// or past the end-of-recorded-space marker once the producer wraps.
	end := loadAcquireU64(&r.producerPos)
	if end < c {
		end = loadAcquireU64(&r.endOfRecordedSpace)
	}
	if n < 0 || c+uint64(n) > end {
		panic("ring: consume exceeds readable bytes")
	}
	// A store-release on consumerPos orders every preceding read of the
	// consumed region before the advance becomes visible to the
	// producer, so no separate fence is needed ahead of it.
	storeReleaseU64(&r.consumerPos, c+uint64(n))
}

// MarkForDeletion records that the owning producer thread has exited.
// The consumer may reclaim the ring once CanDelete reports true.
func (r *Ring) MarkForDeletion() {
	r.shouldDeallocate.StoreRelaxed(true)
}

// CanDelete reports whether the ring is marked for deletion and empty.
// The check is advisory and uses no fences: a reclaim path that
// actually frees resources beyond ordinary garbage collection must
// re-verify before acting.
func (r *Ring) CanDelete() bool {
	return r.shouldDeallocate.LoadRelaxed() && r.consumerPos.LoadRelaxed() == r.producerPos.LoadRelaxed()
}
