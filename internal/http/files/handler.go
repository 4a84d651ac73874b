// Package files exposes CNAB file upload and status queries.
package files

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/cnab"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/upload"
)

// uploadBodyLimit caps the request body: the file cap plus room for the
// multipart framing.
const uploadBodyLimit = cnab.MaxFileBytes + 1<<20

type Handler struct {
	uploads *upload.Service
	files   *file.Service
}

func NewHandler(uploads *upload.Service, files *file.Service) *Handler {
	return &Handler{uploads: uploads, files: files}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type uploadResponse struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Status        file.Status `json:"status"`
	UploadedAt    time.Time   `json:"uploadedAt"`
	CorrelationID string      `json:"correlationId"`
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)

	if err := r.ParseMultipartForm(cnab.MaxFileBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "file exceeds maximum size", http.StatusRequestEntityTooLarge)
			return
		}

		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)

		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer part.Close()

	f, correlationID, err := h.uploads.Upload(r.Context(), header.Filename, header.Size, part)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrEmpty):
			http.Error(w, "file is empty", http.StatusUnprocessableEntity)
		case errors.Is(err, upload.ErrTooLarge):
			http.Error(w, "file exceeds maximum size", http.StatusRequestEntityTooLarge)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)

	resp := uploadResponse{
		ID:            f.ID,
		Name:          f.Name,
		Status:        f.Status,
		UploadedAt:    f.UploadedAt,
		CorrelationID: correlationID,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := file.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := file.Status(s)

		switch status {
		case file.StatusUploaded, file.StatusProcessing, file.StatusProcessed, file.StatusRejected:
			filter.Status = &status
		default:
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
	}

	files, err := h.files.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(files)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	f, err := h.files.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, file.ErrNotFound) {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(f)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
