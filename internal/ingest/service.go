// Package ingest drives one queued CNAB file through the pipeline: download,
// structural validation, decoding, atomic persistence, and the terminal
// status transition. The returned Outcome tells the worker whether the
// message can be acknowledged; a returned error means the message must stay
// on the queue for a later delivery.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/cnab"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/metrics"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/objectstore"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
)

// PersistenceError marks a database failure that retrying the same file
// cannot fix, such as a constraint or data-shape violation. It settles the
// file as rejected instead of leaving the message on the queue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ingest
type Repository interface {
	GetFile(ctx context.Context, id uuid.UUID) (*file.File, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkRejected(ctx context.Context, id uuid.UUID, reason string) error

	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is one database transaction covering everything a processed
// file persists: store resolution, transaction rows, and the status flip.
// Either all of it commits or none of it does.
type UnitOfWork interface {
	ResolveStores(ctx context.Context, identities []cnab.StoreIdentity) (map[cnab.StoreIdentity]uuid.UUID, error)
	CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error
	MarkProcessed(ctx context.Context, id uuid.UUID, transactionCount int) error
	Commit() error
	Rollback() error
}

// Notifier announces a settled file. Delivery failures never fail the
// pipeline; the notifier owns its own retry policy.
type Notifier interface {
	NotifyFile(ctx context.Context, fileID uuid.UUID, status file.Status, errorMessage, correlationID string) error
}

type Service struct {
	repo     Repository
	storage  objectstore.Storage
	notifier Notifier
	metrics  metrics.Recorder
	parser   *cnab.Parser
}

func NewService(repo Repository, storage objectstore.Storage, notifier Notifier, rec metrics.Recorder) *Service {
	return &Service{
		repo:     repo,
		storage:  storage,
		notifier: notifier,
		metrics:  rec,
		parser:   cnab.NewParser(time.Now),
	}
}

// Outcome describes how a file settled.
type Outcome struct {
	FileID           uuid.UUID
	Status           file.Status
	TransactionCount int
	ErrorMessage     string

	// Duplicate means the file was already terminal before this delivery,
	// so no state changed and no notification goes out.
	Duplicate bool
}

// Process runs the pipeline for one queued file.
func (s *Service) Process(ctx context.Context, msg queue.FileMessage) (*Outcome, error) {
	start := time.Now()
	logger := slog.With("fileId", msg.FileID, "correlationId", msg.CorrelationID)

	f, err := s.repo.GetFile(ctx, msg.FileID)
	if err != nil {
		return nil, fmt.Errorf("loading file: %w", err)
	}

	if f.Status.Terminal() {
		logger.Info("file already settled, dropping redelivery", "status", f.Status)

		return settled(f), nil
	}

	if err := s.repo.MarkProcessing(ctx, f.ID); err != nil {
		if errors.Is(err, file.ErrTerminal) {
			return s.refetch(ctx, f.ID)
		}

		return nil, fmt.Errorf("marking file processing: %w", err)
	}

	logger.Info("processing file", "name", f.Name, "sizeBytes", f.SizeBytes)

	outcome, err := s.run(ctx, logger, f)
	if err != nil {
		return nil, err
	}

	if outcome.Duplicate {
		return outcome, nil
	}

	duration := time.Since(start)
	s.metrics.RecordFileOutcome(string(outcome.Status), outcome.TransactionCount, duration)
	logger.Info("file settled",
		"status", outcome.Status,
		"transactions", outcome.TransactionCount,
		"duration", duration,
	)

	if err := s.notifier.NotifyFile(ctx, outcome.FileID, outcome.Status, outcome.ErrorMessage, msg.CorrelationID); err != nil {
		logger.Error("notifying file outcome", "error", err)
	}

	return outcome, nil
}

// run executes the fallible stages on a file already marked processing.
func (s *Service) run(ctx context.Context, logger *slog.Logger, f *file.File) (*Outcome, error) {
	body, err := s.storage.Get(ctx, f.Key)
	if err != nil {
		return nil, fmt.Errorf("downloading object %s: %w", f.Key, err)
	}
	defer body.Close()

	// One read feeds both passes. The extra byte lets the validator see a
	// file that grew past the cap after upload.
	data, err := io.ReadAll(io.LimitReader(body, cnab.MaxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", f.Key, err)
	}

	validation, err := cnab.Validate(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if !validation.OK() {
		return s.reject(ctx, logger, f, validation.Summary())
	}

	records, contentErrs, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if len(contentErrs) > 0 {
		return s.reject(ctx, logger, f, contentErrs.Summary())
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer uow.Rollback()

	if err := s.persist(ctx, uow, f, records); err != nil {
		if errors.Is(err, file.ErrTerminal) {
			// Another worker settled the file between our mark and our
			// commit. Its result stands.
			uow.Rollback()
			return s.refetch(ctx, f.ID)
		}

		var perr *PersistenceError
		if !errors.As(err, &perr) {
			return nil, err
		}

		// The rejection write needs its own connection, so release the
		// failed transaction's locks first.
		uow.Rollback()

		return s.reject(ctx, logger, f, perr.Error())
	}

	return &Outcome{
		FileID:           f.ID,
		Status:           file.StatusProcessed,
		TransactionCount: len(records),
	}, nil
}

// persist writes everything a processed file produces inside one unit of
// work. A file of nothing but padding lines settles as processed with zero
// transactions.
func (s *Service) persist(ctx context.Context, uow UnitOfWork, f *file.File, records []cnab.Record) error {
	if len(records) > 0 {
		ids, err := uow.ResolveStores(ctx, storeIdentities(records))
		if err != nil {
			return fmt.Errorf("resolving stores: %w", err)
		}

		txs := make([]*transaction.Transaction, len(records))
		for i, rec := range records {
			txs[i] = &transaction.Transaction{
				FileID:      f.ID,
				StoreID:     ids[rec.Store],
				Type:        rec.Type,
				AmountCents: rec.AmountCents,
				CPF:         rec.CPF,
				Card:        rec.Card,
				OccurredAt:  rec.OccurredAt,
			}
		}

		if err := uow.CreateTransactions(ctx, txs); err != nil {
			return fmt.Errorf("creating transactions: %w", err)
		}
	}

	if err := uow.MarkProcessed(ctx, f.ID, len(records)); err != nil {
		return fmt.Errorf("marking file processed: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}

	return nil
}

// reject settles the file as rejected. If the rejection write itself fails
// the error propagates and the message stays on the queue, so a later
// delivery can settle the file.
func (s *Service) reject(ctx context.Context, logger *slog.Logger, f *file.File, reason string) (*Outcome, error) {
	reason = file.TruncateError(reason)

	if err := s.repo.MarkRejected(ctx, f.ID, reason); err != nil {
		if errors.Is(err, file.ErrTerminal) {
			return s.refetch(ctx, f.ID)
		}

		return nil, fmt.Errorf("marking file rejected: %w", err)
	}

	logger.Warn("file rejected", "reason", reason)

	return &Outcome{
		FileID:       f.ID,
		Status:       file.StatusRejected,
		ErrorMessage: reason,
	}, nil
}

// refetch reloads a file another worker settled so the outcome reports what
// actually happened to it.
func (s *Service) refetch(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	f, err := s.repo.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reloading settled file: %w", err)
	}

	if !f.Status.Terminal() {
		return nil, fmt.Errorf("file %s reported settled but is %s", id, f.Status)
	}

	return settled(f), nil
}

func settled(f *file.File) *Outcome {
	o := &Outcome{
		FileID:           f.ID,
		Status:           f.Status,
		TransactionCount: f.TransactionCount,
		Duplicate:        true,
	}
	if f.ErrorMessage != nil {
		o.ErrorMessage = *f.ErrorMessage
	}

	return o
}

// storeIdentities collects the unique store identities of a file in a fixed
// order, so concurrent files take store row locks consistently.
func storeIdentities(records []cnab.Record) []cnab.StoreIdentity {
	seen := make(map[cnab.StoreIdentity]struct{}, len(records))

	var ids []cnab.StoreIdentity

	for _, rec := range records {
		if _, ok := seen[rec.Store]; ok {
			continue
		}

		seen[rec.Store] = struct{}{}
		ids = append(ids, rec.Store)
	}

	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Name != ids[j].Name {
			return ids[i].Name < ids[j].Name
		}

		return ids[i].OwnerName < ids[j].OwnerName
	})

	return ids
}
