// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
)

// cacheLine is the assumed cache line width in bytes. Producer- and
// consumer-mutated fields are separated by one pad of this width so a
// write to one side never invalidates the other side's line.
const cacheLine = 64

// pad is cache-line padding that prevents false sharing between
// adjacent fields.
type pad [cacheLine]byte

// defaultCapacity is CAP when the builder is not given an explicit
// capacity: 2^20 bytes, a typical size for a single producer's staging buffer.
const defaultCapacity = 1 << 20

// histogramBins and histogramBinWidth configure the producer
// block-duration histogram: 20 bins of 10 ns each, the last saturating.
const (
	histogramBins     = 20
	histogramBinWidth = 10 * time.Nanosecond
)

// histogram buckets producer block durations. Writes come only from the
// owning producer thread (on the slow path, never the fast path); reads
// come from Stats() on the reporting goroutine. Relaxed atomics give
// both sides race-free access without any fence.
type histogram struct {
	bins [histogramBins]atomix.Uint64
}

func (h *histogram) record(d time.Duration) {
	if h == nil {
		return
	}
	bucket := int(d / histogramBinWidth)
	if bucket >= histogramBins {
		bucket = histogramBins - 1
	}
	if bucket < 0 {
		bucket = 0
	}
	h.bins[bucket].StoreRelaxed(h.bins[bucket].LoadRelaxed() + 1)
}

// Snapshot copies the current bucket counts. Safe to call concurrently
// with record from the reporting goroutine.
func (h *histogram) Snapshot() [histogramBins]uint64 {
	var out [histogramBins]uint64
	if h == nil {
		return out
	}
	for i := range h.bins {
		out[i] = h.bins[i].LoadRelaxed()
	}
	return out
}

// Options configures ring construction: capacity and whether the
// block-duration histogram is kept. Built up with a fluent Builder.
type Options struct {
	capacity         uint64
	histogramEnabled bool
}

// Builder creates a Ring with fluent configuration.
//
// Example:
//
//	r, err := ring.NewBuilder(id).
//	    Capacity(1 << 20).
//	    HistogramEnabled(true).
//	    Build()
type Builder struct {
	id   uint64
	opts Options
}

// NewBuilder creates a ring builder identified by id. id is opaque to
// the ring itself; the caller assigns it (e.g. from a global producer
// registry, which is out of this package's scope).
func NewBuilder(id uint64) *Builder {
	return &Builder{
		id: id,
		opts: Options{
			capacity: defaultCapacity,
		},
	}
}

// Capacity sets CAP, the fixed ring capacity in bytes. Rings never
// resize; reserve/commit traffic that does not fit in CAP-1 bytes of
// concurrently in-flight data blocks forever. Panics if n < 2.
func (b *Builder) Capacity(n uint64) *Builder {
	if n < 2 {
		panic("ring: capacity must be >= 2")
	}
	b.opts.capacity = n
	return b
}

// HistogramEnabled toggles the producer-block-duration histogram.
func (b *Builder) HistogramEnabled(enabled bool) *Builder {
	b.opts.histogramEnabled = enabled
	return b
}

// Build allocates the ring's backing storage and returns the Ring.
// Returns a wrapped ErrAllocationFailed if storage cannot be acquired;
// that failure is fatal to this ring alone, not to the process.
func (b *Builder) Build() (r *Ring, err error) {
	defer func() {
		if p := recover(); p != nil {
			r = nil
			err = newAllocationError(fmt.Errorf("%v", p))
		}
	}()

	storage := make([]byte, b.opts.capacity)

	r = &Ring{
		storage:  storage,
		capacity: b.opts.capacity,
		id:       b.id,
	}
	if b.opts.histogramEnabled {
		r.histogram = &histogram{}
	}
	r.endOfRecordedSpace.StoreRelaxed(b.opts.capacity)
	return r, nil
}
