// Package notify is the best-effort side channel that announces settled
// files. Delivery gets a bounded number of attempts; exhausted notifications
// are parked on a dead-letter queue instead of failing the pipeline.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/metrics"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
)

// Type names the event a notification announces.
type Type string

const (
	TypeCompleted Type = "processing_completed"
	TypeFailed    Type = "processing_failed"
)

// MaxAttempts bounds deliveries per cycle, both for fresh notifications and
// dead-letter replays.
const MaxAttempts = 3

// Backoff returns the wait after the given failed attempt: 2s, 4s, 8s.
func Backoff(attempt int) time.Duration {
	return 2 * time.Second << (attempt - 1)
}

//go:generate mockgen -source=notify.go -destination=notify_mock.go -package=notify
type Transport interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Notification is one announcement of a settled file.
type Notification struct {
	ID            uuid.UUID
	FileID        uuid.UUID
	Type          Type
	Recipient     string
	Message       string // rejection reason, empty for completed files
	CorrelationID string
}

// DeadLetter is the wire payload parked on the notification dead-letter
// queue when every delivery attempt failed.
type DeadLetter struct {
	NotificationID uuid.UUID `json:"notificationId"`
	FileID         uuid.UUID `json:"fileId"`
	Type           Type      `json:"notificationType"`
	RecipientEmail string    `json:"recipientEmail"`
	AttemptCount   int       `json:"attemptCount"`
	LastAttemptAt  time.Time `json:"lastAttemptAt"`
	ErrorMessage   string    `json:"errorMessage"`
	Context        string    `json:"context"`
}

// DecodeDeadLetter parses a dead-letter queue body. A body that does not
// decode, or that carries no notification id, is poison.
func DecodeDeadLetter(body string) (DeadLetter, error) {
	var dl DeadLetter

	if err := json.Unmarshal([]byte(body), &dl); err != nil {
		return DeadLetter{}, fmt.Errorf("%w: %v", queue.ErrPoisonMessage, err)
	}

	if dl.NotificationID == uuid.Nil {
		return DeadLetter{}, fmt.Errorf("%w: missing notificationId", queue.ErrPoisonMessage)
	}

	return dl, nil
}

// Channel delivers notifications over a transport with retry, parking
// exhausted ones on the dead-letter queue.
type Channel struct {
	transport Transport
	dlq       queue.Client
	recipient string
	metrics   metrics.Recorder

	// Sleep waits between attempts. Tests swap it out to skip the real
	// backoff.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewChannel(transport Transport, dlq queue.Client, recipient string, rec metrics.Recorder) *Channel {
	return &Channel{
		transport: transport,
		dlq:       dlq,
		recipient: recipient,
		metrics:   rec,
		Sleep:     sleep,
	}
}

// NotifyFile announces a settled file to the configured recipient. The
// returned error reports delivery failure for logging only; the caller does
// not fail the file because of it.
func (c *Channel) NotifyFile(ctx context.Context, fileID uuid.UUID, status file.Status, errorMessage, correlationID string) error {
	n := Notification{
		ID:            uuid.New(),
		FileID:        fileID,
		Type:          typeFor(status),
		Recipient:     c.recipient,
		Message:       errorMessage,
		CorrelationID: correlationID,
	}

	return c.Deliver(ctx, n)
}

func typeFor(status file.Status) Type {
	if status == file.StatusProcessed {
		return TypeCompleted
	}

	return TypeFailed
}

// Deliver sends n with bounded retry. When every attempt fails, the dead
// letter is published and the delivery error is returned.
func (c *Channel) Deliver(ctx context.Context, n Notification) error {
	attempts, err := c.send(ctx, n)
	c.metrics.RecordNotification(err == nil, attempts)

	if err == nil {
		return nil
	}

	dl := DeadLetter{
		NotificationID: n.ID,
		FileID:         n.FileID,
		Type:           n.Type,
		RecipientEmail: n.Recipient,
		AttemptCount:   attempts,
		LastAttemptAt:  time.Now().UTC(),
		ErrorMessage:   err.Error(),
		Context:        n.CorrelationID,
	}

	body, mErr := json.Marshal(dl)
	if mErr != nil {
		return fmt.Errorf("encoding dead letter: %w", mErr)
	}

	if pubErr := c.dlq.Send(ctx, string(body)); pubErr != nil {
		slog.Error("parking notification on dead-letter queue",
			"notificationId", n.ID, "error", pubErr)
	} else {
		slog.Warn("notification parked on dead-letter queue",
			"notificationId", n.ID, "fileId", n.FileID, "attempts", attempts)
	}

	return fmt.Errorf("delivering notification: %w", err)
}

// Replay runs one more retry cycle for a parked notification. It never
// publishes a new dead letter; the dead-letter worker settles the message
// whatever the result.
func (c *Channel) Replay(ctx context.Context, dl DeadLetter) error {
	n := Notification{
		ID:            dl.NotificationID,
		FileID:        dl.FileID,
		Type:          dl.Type,
		Recipient:     dl.RecipientEmail,
		CorrelationID: dl.Context,
	}

	_, err := c.send(ctx, n)

	return err
}

// send tries the transport up to MaxAttempts times, sleeping Backoff between
// attempts. It reports the attempts used and the last delivery error.
func (c *Channel) send(ctx context.Context, n Notification) (int, error) {
	subject, body := render(n)

	var lastErr error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		lastErr = c.transport.Send(ctx, n.Recipient, subject, body)
		if lastErr == nil {
			return attempt, nil
		}

		if attempt == MaxAttempts {
			break
		}

		if err := c.Sleep(ctx, Backoff(attempt)); err != nil {
			return attempt, lastErr
		}
	}

	return MaxAttempts, lastErr
}

func render(n Notification) (subject, body string) {
	switch n.Type {
	case TypeCompleted:
		subject = fmt.Sprintf("CNAB file %s processed", n.FileID)
		body = fmt.Sprintf("File %s was processed successfully.", n.FileID)
	default:
		subject = fmt.Sprintf("CNAB file %s rejected", n.FileID)

		if n.Message == "" {
			body = fmt.Sprintf("File %s was rejected.", n.FileID)
		} else {
			body = fmt.Sprintf("File %s was rejected: %s", n.FileID, n.Message)
		}
	}

	if n.CorrelationID != "" {
		body += fmt.Sprintf("\n\nCorrelation id: %s", n.CorrelationID)
	}

	return subject, body
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
