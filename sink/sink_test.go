// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/fastlogio/ring"
	"github.com/fastlogio/ring/sink"
)

// bufSink collects every Write into a bytes.Buffer; a mutex isn't
// needed since Drain is the only writer.
type bufSink struct {
	bytes.Buffer
}

func (b *bufSink) Write(p []byte) (int, error) {
	return b.Buffer.Write(p)
}

func TestDrainCopiesAllBytes(t *testing.T) {
	r, err := ring.New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload := []byte("hello, drain")
	buf := r.Reserve(len(payload))
	copy(buf, payload)
	r.Commit(len(payload))
	r.MarkForDeletion()

	var dst bufSink
	logger := zaptest.NewLogger(t)
	if err := sink.Drain(context.Background(), r, &dst, logger); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if got := dst.String(); got != string(payload) {
		t.Fatalf("Drain copied %q, want %q", got, payload)
	}
}

func TestDrainRespectsContextCancellation(t *testing.T) {
	r, err := ring.New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Never marked for deletion: Drain would otherwise spin forever.

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dst bufSink
	err = sink.Drain(ctx, r, &dst, zap.NewNop())
	if err != context.Canceled {
		t.Fatalf("Drain: got %v, want context.Canceled", err)
	}
}

func TestTryDrainOnceReportsWouldBlockOnEmptyRing(t *testing.T) {
	r, err := ring.New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var dst bufSink
	n, err := sink.TryDrainOnce(r, &dst)
	if n != 0 || !ring.IsWouldBlock(err) {
		t.Fatalf("TryDrainOnce on empty ring: got (%d, %v), want (0, ring.ErrWouldBlock)", n, err)
	}
}

func TestTryDrainOnceMovesOneChunk(t *testing.T) {
	r, err := ring.New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	payload := []byte("chunk")
	buf := r.Reserve(len(payload))
	copy(buf, payload)
	r.Commit(len(payload))

	var dst bufSink
	n, err := sink.TryDrainOnce(r, &dst)
	if err != nil {
		t.Fatalf("TryDrainOnce: %v", err)
	}
	if n != len(payload) || dst.String() != string(payload) {
		t.Fatalf("TryDrainOnce: got (%d, %q), want (%d, %q)", n, dst.String(), len(payload), payload)
	}
}

func TestDrainTimeoutFiresOnStalledProducer(t *testing.T) {
	r, err := ring.New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// A ring with data committed but never marked for deletion and
	// never drained looks, from Drain's perspective, like a producer
	// that stopped making progress.
	buf := r.Reserve(4)
	copy(buf, []byte("data"))
	r.Commit(4)

	var dst bufSink
	err = sink.DrainTimeout(context.Background(), r, &dst, zap.NewNop(), 10*time.Millisecond)
	if err != sink.ErrTimeout {
		t.Fatalf("DrainTimeout: got %v, want sink.ErrTimeout", err)
	}
}

func TestCollectorExportsStats(t *testing.T) {
	r, err := ring.NewBuilder(7).Capacity(64).HistogramEnabled(true).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf := r.Reserve(8)
	r.Commit(len(buf))

	c := sink.NewCollector(r)

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var sawAllocations bool
	for _, mf := range families {
		if mf.GetName() != "ring_allocations_total" {
			continue
		}
		sawAllocations = true
		for _, m := range mf.GetMetric() {
			if !hasLabel(m, "ring_id", "7") {
				continue
			}
			if got := m.GetCounter().GetValue(); got != 1 {
				t.Fatalf("ring_allocations_total{ring_id=7}: got %v, want 1", got)
			}
		}
	}
	if !sawAllocations {
		t.Fatal("ring_allocations_total: metric family not exported")
	}
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
