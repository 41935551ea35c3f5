// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import "time"

// Stats is a point-in-time snapshot of a ring's counters. Safe to read
// from any goroutine; it never blocks the producer or consumer.
type Stats struct {
	ID               uint64
	Capacity         uint64
	Allocations      uint64
	TimesBlocked     uint64
	BlockedDuration  time.Duration
	HistogramEnabled bool
	// Histogram holds counts for 20 buckets of histogramBinWidth each,
	// the last saturating every duration at or beyond its lower bound.
	// Zero-valued when HistogramEnabled is false.
	Histogram [histogramBins]uint64
}

// Stats returns a snapshot of r's allocation and blocking counters.
// Intended for the sink package's metrics collector; calling it does
// not perturb the producer's or consumer's fast paths.
func (r *Ring) Stats() Stats {
	s := Stats{
		ID:              r.id,
		Capacity:        r.capacity,
		Allocations:     r.allocCount.LoadRelaxed(),
		TimesBlocked:    r.timesBlocked.LoadRelaxed(),
		BlockedDuration: time.Duration(r.blockedNanos.LoadRelaxed()),
	}
	if r.histogram != nil {
		s.HistogramEnabled = true
		s.Histogram = r.histogram.Snapshot()
	}
	return s
}
