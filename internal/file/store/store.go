package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
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

// scanFile reads a file row from the scanner and returns a populated File.
// Expected column order: id, name, storage_key, size_bytes, status, error_message, transaction_count, uploaded_at, processed_at
func scanFile(s scanner) (*file.File, error) {
	var f file.File

	var statusStr string

	var errMsg sql.NullString

	if err := s.Scan(
		&f.ID, &f.Name, &f.Key, &f.SizeBytes, &statusStr, &errMsg,
		&f.TransactionCount, &f.UploadedAt, &f.ProcessedAt,
	); err != nil {
		return nil, err
	}

	f.Status = file.Status(statusStr)

	if errMsg.Valid {
		f.ErrorMessage = &errMsg.String
	}

	return &f, nil
}

const selectFileColumns = `
	f.id, f.name, f.storage_key, f.size_bytes, f.status, f.error_message,
	f.transaction_count, f.uploaded_at, f.processed_at
`

func (s *Store) CreateFile(ctx context.Context, f *file.File) error {
	query := `
		INSERT INTO files (id, name, storage_key, size_bytes, status, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING uploaded_at
	`

	err := s.db.QueryRowContext(ctx, query,
		f.ID,
		f.Name,
		f.Key,
		f.SizeBytes,
		f.Status,
	).Scan(&f.UploadedAt)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	return nil
}

func (s *Store) GetFile(ctx context.Context, id uuid.UUID) (*file.File, error) {
	query := `SELECT ` + selectFileColumns + `
		FROM files f
		WHERE f.id = $1`

	f, err := scanFile(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, file.ErrNotFound
		}

		return nil, fmt.Errorf("getting file: %w", err)
	}

	return f, nil
}

func (s *Store) ListFiles(ctx context.Context, filter file.ListFilter) ([]*file.File, error) {
	query := `SELECT ` + selectFileColumns + `
		FROM files f`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" WHERE f.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY f.uploaded_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	var files []*file.File

	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}

		files = append(files, f)
	}

	return files, nil
}
