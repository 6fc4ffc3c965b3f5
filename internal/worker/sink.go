package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"smartrate/internal/arbitrage"
	"smartrate/internal/metrics"
	"smartrate/internal/signal"
)

// ArchiveSink accepts computed quotes for best-effort persistence.
type ArchiveSink interface {
	// Submit returns immediately. Archive failures are logged, never reported.
	Submit(q arbitrage.Quote, s signal.Signal)
	// Wait blocks until in-flight submissions finish.
	Wait()
}

// Enqueuer enqueues archive tasks.
type Enqueuer interface {
	EnqueueArchiveTask(ctx context.Context, payload ArchivePayload) error
}

// QueueArchiveSink submits quotes to the task queue from a background goroutine.
type QueueArchiveSink struct {
	enqueuer Enqueuer
	timeout  time.Duration
	logger   *zap.SugaredLogger
	metrics  *metrics.Recorder
	wg       sync.WaitGroup
}

// NewQueueArchiveSink creates a sink giving each enqueue at most timeout.
func NewQueueArchiveSink(enqueuer Enqueuer, timeout time.Duration, logger *zap.SugaredLogger, rec *metrics.Recorder) *QueueArchiveSink {
	return &QueueArchiveSink{enqueuer: enqueuer, timeout: timeout, logger: logger, metrics: rec}
}

// Submit implements ArchiveSink. The enqueue runs detached from the request
// context so a finished response does not cancel it.
func (s *QueueArchiveSink) Submit(q arbitrage.Quote, sig signal.Signal) {
	payload := NewArchivePayload(q, sig)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		err := s.enqueuer.EnqueueArchiveTask(ctx, payload)
		s.metrics.RecordArchive(err)
		if err != nil {
			s.logger.Warnw("quote archive submission dropped", "quote_id", payload.ID,
				"base", payload.Base, "target", payload.Target, "error", err)
		}
	}()
}

// Wait implements ArchiveSink.
func (s *QueueArchiveSink) Wait() { s.wg.Wait() }

// NopArchiveSink discards quotes.
type NopArchiveSink struct{}

// Submit implements ArchiveSink.
func (NopArchiveSink) Submit(arbitrage.Quote, signal.Signal) {}

// Wait implements ArchiveSink.
func (NopArchiveSink) Wait() {}
