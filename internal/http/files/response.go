package files

import (
	"time"

	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
)

type fileResponse struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	SizeBytes        int64       `json:"sizeBytes"`
	Status           file.Status `json:"status"`
	ErrorMessage     *string     `json:"errorMessage,omitempty"`
	TransactionCount int         `json:"transactionCount"`
	UploadedAt       time.Time   `json:"uploadedAt"`
	ProcessedAt      *time.Time  `json:"processedAt,omitempty"`
}

func toResponse(f *file.File) fileResponse {
	return fileResponse{
		ID:               f.ID,
		Name:             f.Name,
		SizeBytes:        f.SizeBytes,
		Status:           f.Status,
		ErrorMessage:     f.ErrorMessage,
		TransactionCount: f.TransactionCount,
		UploadedAt:       f.UploadedAt,
		ProcessedAt:      f.ProcessedAt,
	}
}

func toResponseList(fs []*file.File) []fileResponse {
	resp := make([]fileResponse, len(fs))
	for i, f := range fs {
		resp[i] = toResponse(f)
	}

	return resp
}
