package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order: id, file_id, store_id, type, amount_cents, cpf, card, occurred_at, created_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	if err := s.Scan(
		&tx.ID, &tx.FileID, &tx.StoreID, &tx.Type, &tx.AmountCents,
		&tx.CPF, &tx.Card, &tx.OccurredAt, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.file_id, t.store_id, t.type, t.amount_cents, t.cpf, t.card,
	t.occurred_at, t.created_at
`

func (s *Store) ListTypes(ctx context.Context) ([]transaction.TypeInfo, error) {
	query := `SELECT code, description, nature, sign FROM transaction_types ORDER BY code ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing transaction types: %w", err)
	}
	defer rows.Close()

	var infos []transaction.TypeInfo

	for rows.Next() {
		var ti transaction.TypeInfo

		var natureStr string

		if err := rows.Scan(&ti.Code, &ti.Description, &natureStr, &ti.Sign); err != nil {
			return nil, fmt.Errorf("scanning transaction type: %w", err)
		}

		ti.Nature = transaction.Nature(natureStr)
		infos = append(infos, ti)
	}

	return infos, nil
}

func (s *Store) GetStore(ctx context.Context, id uuid.UUID) (*transaction.Store, error) {
	query := `SELECT id, name, owner_name, created_at FROM stores WHERE id = $1`

	var st transaction.Store

	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&st.ID, &st.Name, &st.OwnerName, &st.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, transaction.ErrStoreNotFound
		}

		return nil, fmt.Errorf("getting store: %w", err)
	}

	return &st, nil
}

func (s *Store) ListStores(ctx context.Context) ([]*transaction.Store, error) {
	query := `SELECT id, name, owner_name, created_at FROM stores ORDER BY name ASC, owner_name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	defer rows.Close()

	var stores []*transaction.Store

	for rows.Next() {
		var st transaction.Store

		if err := rows.Scan(&st.ID, &st.Name, &st.OwnerName, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning store: %w", err)
		}

		stores = append(stores, &st)
	}

	return stores, nil
}

func (s *Store) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.store_id = $1
		ORDER BY t.occurred_at ASC, t.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func (s *Store) SumByStoreAndType(ctx context.Context) ([]transaction.TypeSum, error) {
	query := `
		SELECT store_id, type, COALESCE(SUM(amount_cents), 0)
		FROM transactions
		GROUP BY store_id, type
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("summing transactions: %w", err)
	}
	defer rows.Close()

	var sums []transaction.TypeSum

	for rows.Next() {
		var ts transaction.TypeSum

		if err := rows.Scan(&ts.StoreID, &ts.Type, &ts.AmountCents); err != nil {
			return nil, fmt.Errorf("scanning transaction sum: %w", err)
		}

		sums = append(sums, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction sums: %w", err)
	}

	return sums, nil
}
