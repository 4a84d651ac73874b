// Package transaction holds the CNAB transaction domain: the persisted
// records, the stores they belong to, and the type table that gives every
// record its sign when balances are computed.
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Nature classifies a transaction type as money in or money out.
type Nature string

const (
	NatureIncome  Nature = "income"
	NatureExpense Nature = "expense"
)

// TypeInfo describes one CNAB transaction type code. The authoritative set
// lives in the transaction_types table; nothing outside it decides signs.
type TypeInfo struct {
	Code        int
	Description string
	Nature      Nature
	Sign        string // "+" or "-" as stored in the type table
}

var (
	// ErrUnknownType is returned when a balance is computed over a type code
	// absent from the type table.
	ErrUnknownType = errors.New("unknown transaction type")

	// ErrStoreNotFound is returned when no store exists for the given id.
	ErrStoreNotFound = errors.New("store not found")
)

// SignSet resolves type codes to signed multipliers. It is built from the
// type table per computation, never hardcoded.
type SignSet map[int]TypeInfo

// NewSignSet builds a SignSet, rejecting entries whose sign is neither "+"
// nor "-".
func NewSignSet(infos []TypeInfo) (SignSet, error) {
	set := make(SignSet, len(infos))

	for _, ti := range infos {
		if ti.Sign != "+" && ti.Sign != "-" {
			return nil, fmt.Errorf("type %d: invalid sign %q", ti.Code, ti.Sign)
		}

		set[ti.Code] = ti
	}

	return set, nil
}

// Sign returns +1 or -1 for the given type code.
func (s SignSet) Sign(code int) (int64, error) {
	ti, ok := s[code]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownType, code)
	}

	if ti.Sign == "+" {
		return 1, nil
	}

	return -1, nil
}

// SignedCents applies the sign for the given type code to an amount.
func (s SignSet) SignedCents(code int, amountCents int64) (int64, error) {
	sign, err := s.Sign(code)
	if err != nil {
		return 0, err
	}

	return sign * amountCents, nil
}

// Store is a merchant extracted from CNAB lines, deduplicated by
// (name, owner_name).
type Store struct {
	ID        uuid.UUID
	Name      string
	OwnerName string
	CreatedAt time.Time
}

// Transaction is one decoded CNAB line persisted against a store. Ids are
// assigned monotonically by the database.
type Transaction struct {
	ID          int64
	FileID      uuid.UUID
	StoreID     uuid.UUID
	Type        int
	AmountCents int64 // Always positive; the sign comes from the type.
	CPF         string
	Card        string
	OccurredAt  time.Time
	CreatedAt   time.Time
}
