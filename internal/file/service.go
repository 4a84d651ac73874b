package file

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=file
type Repository interface {
	CreateFile(ctx context.Context, f *File) error
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)
	ListFiles(ctx context.Context, filter ListFilter) ([]*File, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ID        uuid.UUID // generated when zero
	Name      string
	Key       string
	SizeBytes int64
}

type ListFilter struct {
	Status *Status
	Limit  int
}

// Create registers a freshly uploaded file in the uploaded state.
func (s *Service) Create(ctx context.Context, params CreateParams) (*File, error) {
	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	f := &File{
		ID:        id,
		Name:      params.Name,
		Key:       params.Key,
		SizeBytes: params.SizeBytes,
		Status:    StatusUploaded,
	}
	if err := s.repo.CreateFile(ctx, f); err != nil {
		return nil, err
	}

	return f, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*File, error) {
	return s.repo.GetFile(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*File, error) {
	return s.repo.ListFiles(ctx, filter)
}
