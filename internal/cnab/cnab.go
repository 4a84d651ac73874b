// Package cnab implements the fixed-width, 80-byte-per-line bank interchange
// format: structural validation of raw uploads and per-line decoding of
// transaction records.
package cnab

import (
	"time"
)

const (
	// LineLength is the exact byte length of every CNAB line.
	LineLength = 80

	// MaxFileBytes is the upper bound for a whole CNAB upload.
	MaxFileBytes = 10 << 20
)

// Field boundaries within a line as [start, end) byte offsets.
const (
	posType        = 0
	posDateStart   = 1
	posDateEnd     = 9
	posAmountStart = 9
	posAmountEnd   = 19
	posCPFStart    = 19
	posCPFEnd      = 30
	posCardStart   = 30
	posCardEnd     = 42
	posTimeStart   = 42
	posTimeEnd     = 48
	posOwnerStart  = 48
	posOwnerEnd    = 62
	posStoreStart  = 62
	posStoreEnd    = 80
)

// StoreIdentity is the composite key that deduplicates stores within and
// across files.
type StoreIdentity struct {
	Name      string
	OwnerName string
}

// Record is one decoded CNAB line.
type Record struct {
	Line        int // 1-based line number in the source file
	Type        int
	AmountCents int64
	OccurredAt  time.Time // occurrence date and time, UTC
	CPF         string
	Card        string
	Store       StoreIdentity
}
