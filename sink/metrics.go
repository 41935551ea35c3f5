// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fastlogio/ring"
)

// Collector exports every registered ring's Stats as Prometheus
// metrics. It is safe for concurrent use; AddRing may be called while
// Collect is in flight (e.g. from another ring's own startup
// goroutine).
type Collector struct {
	mu    sync.Mutex
	rings []*ring.Ring

	allocations  *prometheus.Desc
	timesBlocked *prometheus.Desc
	blockedSecs  *prometheus.Desc
	capacity     *prometheus.Desc
	histogram    *prometheus.Desc
}

// NewCollector returns a Collector exporting metrics for the given
// rings. Additional rings can be attached later with AddRing, including
// after the collector has been registered with a prometheus.Registry.
func NewCollector(rings ...*ring.Ring) *Collector {
	constLabels := []string{"ring_id"}
	return &Collector{
		rings: append([]*ring.Ring(nil), rings...),
		allocations: prometheus.NewDesc(
			"ring_allocations_total",
			"Total number of Reserve/TryReserve calls made on the ring.",
			constLabels, nil,
		),
		timesBlocked: prometheus.NewDesc(
			"ring_reserve_blocked_total",
			"Total number of Reserve/TryReserve calls that took the slow path to recompute free space, whether or not they spun.",
			constLabels, nil,
		),
		blockedSecs: prometheus.NewDesc(
			"ring_reserve_blocked_seconds_total",
			"Total time Reserve/TryReserve spent in the slow path recomputing and waiting for free space.",
			constLabels, nil,
		),
		capacity: prometheus.NewDesc(
			"ring_capacity_bytes",
			"Configured backing storage capacity of the ring.",
			constLabels, nil,
		),
		histogram: prometheus.NewDesc(
			"ring_reserve_block_duration_bucket_total",
			"Count of Reserve block durations falling in each histogram bucket, when enabled.",
			append(append([]string{}, constLabels...), "le_bucket"),
			nil,
		),
	}
}

// AddRing attaches another ring to the collector's export set.
func (c *Collector) AddRing(r *ring.Ring) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rings = append(c.rings, r)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.allocations
	ch <- c.timesBlocked
	ch <- c.blockedSecs
	ch <- c.capacity
	ch <- c.histogram
}

// Collect implements prometheus.Collector. It reads each ring's Stats
// snapshot, which never blocks the ring's producer or consumer.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	rings := append([]*ring.Ring(nil), c.rings...)
	c.mu.Unlock()

	for _, r := range rings {
		s := r.Stats()
		id := strconv.FormatUint(s.ID, 10)

		ch <- prometheus.MustNewConstMetric(c.allocations, prometheus.CounterValue, float64(s.Allocations), id)
		ch <- prometheus.MustNewConstMetric(c.timesBlocked, prometheus.CounterValue, float64(s.TimesBlocked), id)
		ch <- prometheus.MustNewConstMetric(c.blockedSecs, prometheus.CounterValue, s.BlockedDuration.Seconds(), id)
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity), id)

		if !s.HistogramEnabled {
			continue
		}
		for i, count := range s.Histogram {
			ch <- prometheus.MustNewConstMetric(c.histogram, prometheus.CounterValue, float64(count), id, strconv.Itoa(i))
		}
	}
}
