// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command ringdemo drives a single producer goroutine and a single
// sink.Drain consumer goroutine against one ring, then logs a final
// Stats snapshot. It is a demonstration of the reserve/commit and
// peek/consume contracts end to end, not a benchmark harness: it does
// not pin threads, does not use a pthread-style barrier, and does not
// report throughput or latency percentiles.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"net/http"

	"github.com/fastlogio/ring"
	"github.com/fastlogio/ring/sink"
)

type cli struct {
	Capacity    uint64 `help:"Ring backing storage capacity, in bytes." default:"1048576"`
	Histogram   bool   `help:"Track a producer block-duration histogram." default:"false"`
	Records     int    `help:"Number of records to produce." default:"100000"`
	RecordSize  int    `help:"Size in bytes of each produced record." default:"64"`
	MetricsAddr string `help:"Address to serve Prometheus metrics on; empty disables it." default:""`
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("ringdemo"),
		kong.Description("Drives one producer and one sink.Drain consumer against a single ring."),
	)

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ringdemo: building logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(c, logger); err != nil {
		logger.Error("ringdemo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(c cli, logger *zap.Logger) error {
	if c.RecordSize <= 0 || uint64(c.RecordSize) >= c.Capacity {
		return fmt.Errorf("ringdemo: record-size %d must be >0 and < capacity %d", c.RecordSize, c.Capacity)
	}

	r, err := ring.NewBuilder(1).
		Capacity(c.Capacity).
		HistogramEnabled(c.Histogram).
		Build()
	if err != nil {
		return fmt.Errorf("building ring: %w", err)
	}

	collector := sink.NewCollector(r)
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		return fmt.Errorf("registering collector: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.MetricsAddr != "" {
		srv := &http.Server{Addr: c.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			logger.Info("serving metrics", zap.String("addr", c.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	producerDone := make(chan error, 1)
	go func() {
		producerDone <- produce(r, c.Records, c.RecordSize)
	}()

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- sink.DrainTimeout(ctx, r, discardSink{}, logger, 5*time.Second)
	}()

	if err := <-producerDone; err != nil {
		return fmt.Errorf("producer: %w", err)
	}
	if err := <-drainDone; err != nil {
		return fmt.Errorf("drain: %w", err)
	}

	logger.Info("run complete", statsFields(r.Stats())...)
	return nil
}

func produce(r *ring.Ring, records, size int) error {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i)
	}
	for i := 0; i < records; i++ {
		buf := r.Reserve(size)
		copy(buf, payload)
		r.Commit(size)
	}
	r.MarkForDeletion()
	return nil
}

// discardSink is ringdemo's Sink: it exists to exercise the drain
// loop's contract, not to showcase a realistic downstream.
type discardSink struct{}

func (discardSink) Write(p []byte) (int, error) {
	return io.Discard.Write(p)
}

func statsFields(s ring.Stats) []zap.Field {
	return []zap.Field{
		zap.Uint64("ring_id", s.ID),
		zap.Uint64("capacity", s.Capacity),
		zap.Uint64("allocations", s.Allocations),
		zap.Uint64("times_blocked", s.TimesBlocked),
		zap.Duration("blocked_duration", s.BlockedDuration),
	}
}
