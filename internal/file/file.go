// Package file holds the CNAB file aggregate: its lifecycle states, the
// transitions the pipeline is allowed to make, and the queries exposed over
// the API.
package file

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an uploaded file.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusRejected   Status = "rejected"
)

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusRejected
}

// CanTransition reports whether moving from s to next is legal. Processing
// may be re-entered so a worker that crashed mid-file can pick the redelivery
// back up.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusUploaded:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessing || next == StatusProcessed || next == StatusRejected
	default:
		return false
	}
}

var (
	// ErrNotFound is returned when no file exists for the given id.
	ErrNotFound = errors.New("file not found")

	// ErrTerminal is returned when a status change is attempted on a file
	// already in a terminal state.
	ErrTerminal = errors.New("file already in a terminal state")
)

// MaxErrorLength caps the persisted rejection reason.
const MaxErrorLength = 1000

// TruncateError shortens a rejection reason to MaxErrorLength runes.
func TruncateError(reason string) string {
	runes := []rune(reason)
	if len(runes) <= MaxErrorLength {
		return reason
	}
	return string(runes[:MaxErrorLength])
}

// File represents one uploaded CNAB file and its processing outcome.
type File struct {
	ID               uuid.UUID
	Name             string
	Key              string // object storage key
	SizeBytes        int64
	Status           Status
	ErrorMessage     *string
	TransactionCount int
	UploadedAt       time.Time
	ProcessedAt      *time.Time
}
