// Package worker runs the polling loop that feeds queued files to the
// ingestion pipeline and settles every message by its outcome: processed and
// rejected files ack, infrastructure failures retain, poison bodies drop.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/ingest"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/metrics"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
)

//go:generate mockgen -source=worker.go -destination=ingestor_mock.go -package=worker
type Ingestor interface {
	Process(ctx context.Context, msg queue.FileMessage) (*ingest.Outcome, error)
}

// state makes the loop's position explicit so cancellation is checked at
// every transition rather than somewhere inside an iteration body.
type state int

const (
	statePolling state = iota
	stateIdle
	stateDispatching
)

type Worker struct {
	queue       queue.Client
	ingestor    Ingestor
	maxMessages int32
	backoff     time.Duration
	metrics     metrics.Recorder
}

func New(q queue.Client, ing Ingestor, maxMessages int32, pollBackoff time.Duration, rec metrics.Recorder) *Worker {
	return &Worker{
		queue:       q,
		ingestor:    ing,
		maxMessages: maxMessages,
		backoff:     pollBackoff,
		metrics:     rec,
	}
}

// Run polls until ctx is cancelled. Messages already being processed finish
// before it returns; undispatched ones reappear after the visibility
// timeout.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("worker started", "maxMessages", w.maxMessages, "pollBackoff", w.backoff)

	var deliveries []queue.Delivery

	st := statePolling

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch st {
		case statePolling:
			batch, err := w.queue.Receive(ctx, w.maxMessages)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				slog.Error("receiving batch", "error", err)

				st = stateIdle

				continue
			}

			w.metrics.RecordBatch(len(batch))

			if len(batch) == 0 {
				st = stateIdle
				continue
			}

			deliveries = batch
			st = stateDispatching

		case stateIdle:
			if err := sleep(ctx, w.backoff); err != nil {
				return err
			}

			st = statePolling

		case stateDispatching:
			for _, d := range deliveries {
				if ctx.Err() != nil {
					break
				}

				w.handle(ctx, d)
			}

			deliveries = nil
			st = statePolling
		}
	}
}

// handle settles one delivery. Nothing it does may kill the polling loop:
// panics are logged and the message retained for redelivery.
func (w *Worker) handle(ctx context.Context, d queue.Delivery) {
	// A message already being worked on finishes even when shutdown
	// cancels the polling context.
	ctx = context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			w.metrics.RecordDecision(metrics.DecisionRetain)
			slog.Error("panic while processing message, retaining",
				"messageId", d.MessageID, "panic", r)
		}
	}()

	msg, err := queue.DecodeFileMessage(d.Body)
	if err != nil {
		// No redelivery can fix the body.
		w.delete(ctx, d)
		w.metrics.RecordDecision(metrics.DecisionPoison)
		slog.Error("deleted poison message", "messageId", d.MessageID, "error", err)

		return
	}

	outcome, err := w.ingestor.Process(ctx, msg)
	if err != nil {
		w.metrics.RecordDecision(metrics.DecisionRetain)
		slog.Error("processing failed, retaining message",
			"messageId", d.MessageID, "fileId", msg.FileID, "error", err)

		return
	}

	w.delete(ctx, d)
	w.metrics.RecordDecision(metrics.DecisionAck)

	slog.Info("message settled",
		"messageId", d.MessageID,
		"fileId", msg.FileID,
		"status", outcome.Status,
		"duplicate", outcome.Duplicate,
	)
}

func (w *Worker) delete(ctx context.Context, d queue.Delivery) {
	if err := w.queue.Delete(ctx, d.ReceiptHandle); err != nil {
		slog.Error("deleting message", "messageId", d.MessageID, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
