// Package queue carries the message contract between the upload API and the
// ingestion worker, plus the client surface the polling loops need.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileMessage announces an uploaded file to the ingestion worker.
type FileMessage struct {
	FileID        uuid.UUID `json:"fileId"`
	ObjectKey     string    `json:"objectKey"`
	FileName      string    `json:"fileName"`
	UploadedAt    time.Time `json:"uploadedAt"`
	CorrelationID string    `json:"correlationId"`
}

// Encode renders the message as its wire body.
func (m FileMessage) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding file message: %w", err)
	}

	return string(b), nil
}

// ErrPoisonMessage marks a body that can never be processed: it is deleted
// without retry.
var ErrPoisonMessage = errors.New("poison message")

// DecodeFileMessage parses a wire body. A body that does not decode, or that
// carries no file id, is poison.
func DecodeFileMessage(body string) (FileMessage, error) {
	var m FileMessage

	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return FileMessage{}, fmt.Errorf("%w: %v", ErrPoisonMessage, err)
	}

	if m.FileID == uuid.Nil {
		return FileMessage{}, fmt.Errorf("%w: missing fileId", ErrPoisonMessage)
	}

	return m, nil
}

// Delivery is one received message together with the handle used to settle it.
type Delivery struct {
	MessageID     string
	ReceiptHandle string
	Body          string
}

//go:generate mockgen -source=queue.go -destination=queue_mock.go -package=queue
type Client interface {
	Receive(ctx context.Context, maxMessages int32) ([]Delivery, error)
	Delete(ctx context.Context, receiptHandle string) error
	Send(ctx context.Context, body string) error
}
