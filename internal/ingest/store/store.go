package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/cnab"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/ingest"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetFile(ctx context.Context, id uuid.UUID) (*file.File, error) {
	query := `
		SELECT id, name, storage_key, size_bytes, status, error_message,
			transaction_count, uploaded_at, processed_at
		FROM files
		WHERE id = $1
	`

	var f file.File

	var statusStr string

	var errMsg sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.Key, &f.SizeBytes, &statusStr, &errMsg,
		&f.TransactionCount, &f.UploadedAt, &f.ProcessedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, file.ErrNotFound
		}

		return nil, fmt.Errorf("getting file: %w", err)
	}

	f.Status = file.Status(statusStr)

	if errMsg.Valid {
		f.ErrorMessage = &errMsg.String
	}

	return &f, nil
}

// MarkProcessing flips a file to processing. Re-marking a file already in
// processing succeeds so a redelivery after a worker crash can resume it.
// Zero rows means the file settled concurrently.
func (s *Store) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE files
		SET status = $2
		WHERE id = $1 AND status IN ($3, $4)
	`

	res, err := s.db.ExecContext(ctx, query, id,
		file.StatusProcessing, file.StatusUploaded, file.StatusProcessing)
	if err != nil {
		return fmt.Errorf("marking file processing: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking file processing: %w", err)
	}

	if n == 0 {
		return file.ErrTerminal
	}

	return nil
}

// MarkRejected settles a file as rejected with the given reason. Rejection
// only ever happens to a file this worker marked processing first; zero rows
// means the file settled concurrently.
func (s *Store) MarkRejected(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE files
		SET status = $2, error_message = $3, transaction_count = 0, processed_at = NOW()
		WHERE id = $1 AND status = $4
	`

	res, err := s.db.ExecContext(ctx, query, id,
		file.StatusRejected, reason, file.StatusProcessing)
	if err != nil {
		return fmt.Errorf("marking file rejected: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking file rejected: %w", err)
	}

	if n == 0 {
		return file.ErrTerminal
	}

	return nil
}

type unitOfWork struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (ingest.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning unit of work: %w", err)
	}

	return &unitOfWork{tx: tx}, nil
}

func (u *unitOfWork) Commit() error   { return u.tx.Commit() }
func (u *unitOfWork) Rollback() error { return u.tx.Rollback() }

// ResolveStores upserts every identity and maps it to its id. Identities
// arrive sorted, so concurrent files take store row locks in the same order.
// The do-nothing-shaped update makes the insert return the id of an existing
// row too.
func (u *unitOfWork) ResolveStores(ctx context.Context, identities []cnab.StoreIdentity) (map[cnab.StoreIdentity]uuid.UUID, error) {
	query := `
		INSERT INTO stores (name, owner_name)
		VALUES ($1, $2)
		ON CONFLICT (name, owner_name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	ids := make(map[cnab.StoreIdentity]uuid.UUID, len(identities))

	for _, ident := range identities {
		var id uuid.UUID
		if err := u.tx.QueryRowContext(ctx, query, ident.Name, ident.OwnerName).Scan(&id); err != nil {
			return nil, classify("resolving store", err)
		}

		ids[ident] = id
	}

	return ids, nil
}

// insertChunk caps the rows per multi-row INSERT so a large file stays well
// under the driver's parameter limit.
const insertChunk = 500

func (u *unitOfWork) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for start := 0; start < len(txs); start += insertChunk {
		end := min(start+insertChunk, len(txs))
		if err := u.insert(ctx, txs[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (u *unitOfWork) insert(ctx context.Context, txs []*transaction.Transaction) error {
	var sb strings.Builder

	sb.WriteString(`INSERT INTO transactions (file_id, store_id, type, amount_cents, cpf, card, occurred_at) VALUES `)

	args := make([]any, 0, len(txs)*7)

	for i, tx := range txs {
		if i > 0 {
			sb.WriteString(", ")
		}

		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		args = append(args, tx.FileID, tx.StoreID, tx.Type, tx.AmountCents, tx.CPF, tx.Card, tx.OccurredAt)
	}

	if _, err := u.tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return classify("creating transactions", err)
	}

	return nil
}

// MarkProcessed settles the file inside the unit of work so the status flip
// commits or rolls back together with its rows. Zero rows means the file
// settled concurrently.
func (u *unitOfWork) MarkProcessed(ctx context.Context, id uuid.UUID, transactionCount int) error {
	query := `
		UPDATE files
		SET status = $2, transaction_count = $3, error_message = NULL, processed_at = NOW()
		WHERE id = $1 AND status = $4
	`

	res, err := u.tx.ExecContext(ctx, query, id,
		file.StatusProcessed, transactionCount, file.StatusProcessing)
	if err != nil {
		return classify("marking file processed", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking file processed: %w", err)
	}

	if n == 0 {
		return file.ErrTerminal
	}

	return nil
}

// classify wraps a database failure for the pipeline's settle decision. A
// statement the server rejected stays rejected on redelivery, so it becomes
// a PersistenceError; connection-level failures stay plain errors and the
// message is retried.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && !transientClass(pgErr.Code) {
		return &ingest.PersistenceError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// transientClass reports whether a SQLSTATE class can clear on retry:
// connection exceptions, transaction rollbacks such as serialization
// failures and deadlocks, resource exhaustion, operator intervention, and
// system errors.
func transientClass(code string) bool {
	if len(code) < 2 {
		return false
	}

	switch code[:2] {
	case "08", "40", "53", "57", "58":
		return true
	default:
		return false
	}
}
