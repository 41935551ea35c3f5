// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sink provides the consumer-side drain loop for a ring: a
// Sink is whatever downstream destination bytes pulled off the ring
// should go to (a file, a network connection, a test buffer), and
// Drain is the loop that pulls from the ring and pushes to the Sink
// until the ring is marked for deletion and fully drained.
//
// Nothing in this package touches the ring's fast path: Drain calls
// only the same Peek/Consume/CanDelete methods any consumer would.
package sink

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"code.hybscloud.com/spin"

	"github.com/fastlogio/ring"
)

// Sink receives bytes drained from a ring. Write must not retain p
// past the call: Drain reuses the backing array on the next chunk.
type Sink interface {
	Write(p []byte) (int, error)
}

// done is returned by TryDrainOnce when the ring has been marked for
// deletion and has nothing left to read.
var done = errors.New("sink: ring drained and marked for deletion")

// TryDrainOnce makes one non-blocking attempt to move a chunk from r
// to s. It returns (0, ring.ErrWouldBlock) if the ring currently has
// nothing ready for the consumer: callers that want to do other work
// between attempts check ring.IsWouldBlock(err) rather than
// busy-waiting inside this call.
func TryDrainOnce(r *ring.Ring, s Sink) (int, error) {
	chunk := r.Peek()
	if len(chunk) == 0 {
		if r.CanDelete() {
			return 0, done
		}
		return 0, ring.ErrWouldBlock
	}
	n, err := s.Write(chunk)
	if err != nil {
		return 0, err
	}
	r.Consume(n)
	return n, nil
}

// Drain pulls bytes from r and writes them to s until r.CanDelete
// reports true and the ring has nothing left to read, or ctx is
// canceled. It logs drain start/stop and any write error through
// logger.
//
// Drain is meant to run on its own goroutine, one per ring: like the
// ring itself, a Sink has exactly one consumer.
func Drain(ctx context.Context, r *ring.Ring, s Sink, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.Uint64("ring_id", r.ID()))
	logger.Info("drain started")

	sw := spin.Wait{}
	for {
		select {
		case <-ctx.Done():
			logger.Info("drain canceled", zap.Error(ctx.Err()))
			return ctx.Err()
		default:
		}

		_, err := TryDrainOnce(r, s)
		switch {
		case err == nil:
			continue
		case err == done:
			logger.Info("drain finished")
			return nil
		case ring.IsWouldBlock(err):
			sw.Once()
		case ring.IsSemantic(err):
			// A control flow signal from the sink, not a real failure:
			// log it quietly and keep draining.
			logger.Debug("sink signaled", zap.Error(err))
		default:
			logger.Error("sink write failed", zap.Error(err))
			return err
		}
	}
}

// DrainTimeout is like Drain but gives up and returns ErrTimeout if the
// ring does not reach CanDelete within d of the producer's last
// Reserve or TryReserve call (the last advance of Stats().Allocations). It
// exists for callers (the ringdemo CLI among them) that would rather
// fail than hang on a producer that stopped committing without calling
// MarkForDeletion.
func DrainTimeout(ctx context.Context, r *ring.Ring, s Sink, logger *zap.Logger, d time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	idle := time.NewTimer(d)
	defer idle.Stop()
	drainDone := make(chan error, 1)
	go func() { drainDone <- Drain(ctx, r, s, logger) }()

	progress := make(chan struct{})
	go watchProgress(ctx, r, progress)

	for {
		select {
		case err := <-drainDone:
			return err
		case <-progress:
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(d)
		case <-idle.C:
			cancel()
			<-drainDone
			return ErrTimeout
		}
	}
}

// ErrTimeout is returned by DrainTimeout when the ring stops making
// progress before it is marked for deletion and drained.
var ErrTimeout = errors.New("sink: drain timed out waiting for producer")

// watchProgress signals progress whenever the ring's allocation count
// advances, so DrainTimeout can distinguish a quiet producer from a
// dead one.
func watchProgress(ctx context.Context, r *ring.Ring, progress chan<- struct{}) {
	sw := spin.Wait{}
	last := r.Stats().Allocations
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if n := r.Stats().Allocations; n != last {
			last = n
			select {
			case progress <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		sw.Once()
	}
}
