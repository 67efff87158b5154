package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/auth"
	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type documentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	ListByEntity(ctx context.Context, entityType domain.DocumentEntityType, entityID uuid.UUID) ([]domain.Document, error)
}

type objectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type DocumentHandler struct {
	documents documentRepository
	store     objectStore
}

func NewDocumentHandler(documents documentRepository, store objectStore) *DocumentHandler {
	return &DocumentHandler{documents: documents, store: store}
}

type documentDTO struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	StorageKey string    `json:"storage_key"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toDocumentDTO(d *domain.Document) documentDTO {
	return documentDTO{
		ID:         d.ID,
		FileName:   d.FileName,
		StorageKey: d.StorageKey,
		MimeType:   d.MimeType,
		SizeBytes:  d.SizeBytes,
		EntityType: string(d.EntityType),
		EntityID:   d.EntityID,
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
	}
}

// Upload stores a multipart file in the object store and records its
// metadata, attached to the entity named in the form fields.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	entityType := domain.DocumentEntityType(r.FormValue("entity_type"))
	if !entityType.IsValid() {
		RespondValidationError(w, []FieldError{{Field: "entity_type", Message: "unknown entity type"}})
		return
	}
	entityID, err := uuid.Parse(r.FormValue("entity_id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "entity_id", Message: "must be a UUID"}})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "file", Message: "required"}})
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	docID := uuid.New()
	key := fmt.Sprintf("%s/%s/%s%s", entityType, entityID, docID, filepath.Ext(header.Filename))

	storageKey, err := h.store.Put(r.Context(), key, mimeType, file)
	if err != nil {
		log.Error("document upload failed", "error", err, "key", key)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	d := &domain.Document{
		ID:         docID,
		FileName:   header.Filename,
		StorageKey: storageKey,
		MimeType:   mimeType,
		SizeBytes:  header.Size,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     domain.DocumentStatusPending,
		UploadedBy: claims.ProfileID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.documents.Create(r.Context(), d); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toDocumentDTO(d))
}

func (h *DocumentHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := domain.DocumentEntityType(r.URL.Query().Get("entity_type"))
	if !entityType.IsValid() {
		RespondValidationError(w, []FieldError{{Field: "entity_type", Message: "unknown entity type"}})
		return
	}
	entityID, err := uuid.Parse(r.URL.Query().Get("entity_id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "entity_id", Message: "must be a UUID"}})
		return
	}

	ds, err := h.documents.ListByEntity(r.Context(), entityType, entityID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]documentDTO, 0, len(ds))
	for i := range ds {
		dtos = append(dtos, toDocumentDTO(&ds[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
