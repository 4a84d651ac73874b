package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/metrics"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
)

// DLQWorker drains the notification dead-letter queue on a fixed timer.
// Every message it receives is settled after one replay cycle no matter how
// the replay went, so an un-retriable notification cannot loop forever.
type DLQWorker struct {
	channel     *Channel
	dlq         queue.Client
	interval    time.Duration
	maxMessages int32
	metrics     metrics.Recorder
}

func NewDLQWorker(channel *Channel, dlq queue.Client, interval time.Duration, maxMessages int32, rec metrics.Recorder) *DLQWorker {
	return &DLQWorker{
		channel:     channel,
		dlq:         dlq,
		interval:    interval,
		maxMessages: maxMessages,
		metrics:     rec,
	}
}

// Run drains the queue every interval until ctx is cancelled.
func (w *DLQWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("notification dlq worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain replays one batch of parked notifications.
func (w *DLQWorker) Drain(ctx context.Context) {
	deliveries, err := w.dlq.Receive(ctx, w.maxMessages)
	if err != nil {
		slog.Error("receiving from notification dlq", "error", err)
		return
	}

	for _, d := range deliveries {
		w.replay(ctx, d)
	}
}

func (w *DLQWorker) replay(ctx context.Context, d queue.Delivery) {
	// One cycle per message: settle it whatever happens below.
	defer func() {
		if err := w.dlq.Delete(ctx, d.ReceiptHandle); err != nil {
			slog.Error("deleting dlq message", "messageId", d.MessageID, "error", err)
		}
	}()

	dl, err := DecodeDeadLetter(d.Body)
	if err != nil {
		slog.Error("dropping undecodable dlq message", "messageId", d.MessageID, "error", err)
		return
	}

	if err := w.channel.Replay(ctx, dl); err != nil {
		w.metrics.RecordDLQReplay(false)
		slog.Error("notification replay failed, giving up",
			"notificationId", dl.NotificationID,
			"fileId", dl.FileID,
			"error", err,
		)

		return
	}

	w.metrics.RecordDLQReplay(true)
	slog.Info("notification replayed",
		"notificationId", dl.NotificationID, "fileId", dl.FileID)
}
