package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	ListTypes(ctx context.Context) ([]TypeInfo, error)
	GetStore(ctx context.Context, id uuid.UUID) (*Store, error)
	ListStores(ctx context.Context) ([]*Store, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*Transaction, error)
	SumByStoreAndType(ctx context.Context) ([]TypeSum, error)
}

// TypeSum aggregates the unsigned cents of one type code within one store.
type TypeSum struct {
	StoreID     uuid.UUID
	Type        int
	AmountCents int64
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// StoreBalance pairs a store with its derived balance.
type StoreBalance struct {
	Store        *Store
	BalanceCents int64
}

// Statement is one store's transactions together with the derived balance.
type Statement struct {
	Store        *Store
	Transactions []*Transaction
	BalanceCents int64
}

func (s *Service) Types(ctx context.Context) ([]TypeInfo, error) {
	return s.repo.ListTypes(ctx)
}

// SignSet loads the type table and builds the sign lookup for balance
// computation.
func (s *Service) SignSet(ctx context.Context) (SignSet, error) {
	infos, err := s.repo.ListTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transaction types: %w", err)
	}

	return NewSignSet(infos)
}

// ListStoreBalances returns every store with its balance. Balances are
// derived on demand; a store with no transactions balances to zero.
func (s *Service) ListStoreBalances(ctx context.Context) ([]*StoreBalance, error) {
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}

	signs, err := s.SignSet(ctx)
	if err != nil {
		return nil, err
	}

	sums, err := s.repo.SumByStoreAndType(ctx)
	if err != nil {
		return nil, fmt.Errorf("summing transactions: %w", err)
	}

	balances := make(map[uuid.UUID]int64, len(stores))

	for _, sum := range sums {
		signed, err := signs.SignedCents(sum.Type, sum.AmountCents)
		if err != nil {
			return nil, err
		}

		balances[sum.StoreID] += signed
	}

	out := make([]*StoreBalance, len(stores))
	for i, st := range stores {
		out[i] = &StoreBalance{Store: st, BalanceCents: balances[st.ID]}
	}

	return out, nil
}

// StoreStatement returns one store's transactions ordered by occurrence
// together with the derived balance.
func (s *Service) StoreStatement(ctx context.Context, storeID uuid.UUID) (*Statement, error) {
	st, err := s.repo.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	signs, err := s.SignSet(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	var balance int64

	for _, tx := range txs {
		signed, err := signs.SignedCents(tx.Type, tx.AmountCents)
		if err != nil {
			return nil, err
		}

		balance += signed
	}

	return &Statement{Store: st, Transactions: txs, BalanceCents: balance}, nil
}
