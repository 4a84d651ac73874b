// Package upload accepts raw CNAB files: it registers the file record,
// stores the bytes, and announces the file to the ingestion queue.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/cnab"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/objectstore"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue"
)

var (
	// ErrEmpty is returned for uploads with no content.
	ErrEmpty = errors.New("file is empty")

	// ErrTooLarge is returned for uploads past the format's size cap.
	ErrTooLarge = errors.New("file exceeds maximum size")
)

type Service struct {
	files   *file.Service
	storage objectstore.Storage
	queue   queue.Client
}

func NewService(files *file.Service, storage objectstore.Storage, q queue.Client) *Service {
	return &Service{files: files, storage: storage, queue: q}
}

// Upload registers the file, stores its bytes, and enqueues it for
// processing. It returns the created record and the correlation id that
// tags the file's trip through the pipeline.
func (s *Service) Upload(ctx context.Context, name string, size int64, r io.Reader) (*file.File, string, error) {
	if size <= 0 {
		return nil, "", ErrEmpty
	}

	if size > cnab.MaxFileBytes {
		return nil, "", ErrTooLarge
	}

	name = filepath.Base(name)

	fileID := uuid.New()
	key := fmt.Sprintf("cnab/%s/%s", fileID, name)

	f, err := s.files.Create(ctx, file.CreateParams{
		ID:        fileID,
		Name:      name,
		Key:       key,
		SizeBytes: size,
	})
	if err != nil {
		return nil, "", fmt.Errorf("registering file: %w", err)
	}

	if err := s.storage.Put(ctx, key, r, size, "text/plain"); err != nil {
		return nil, "", fmt.Errorf("storing file: %w", err)
	}

	correlationID := uuid.NewString()

	body, err := queue.FileMessage{
		FileID:        f.ID,
		ObjectKey:     key,
		FileName:      name,
		UploadedAt:    f.UploadedAt,
		CorrelationID: correlationID,
	}.Encode()
	if err != nil {
		return nil, "", err
	}

	if err := s.queue.Send(ctx, body); err != nil {
		return nil, "", fmt.Errorf("enqueueing file: %w", err)
	}

	slog.Info("file uploaded",
		"fileId", f.ID, "name", name, "sizeBytes", size, "correlationId", correlationID)

	return f, correlationID, nil
}
