package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

type auditRepository interface {
	List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error)
}

type AuditHandler struct {
	audits auditRepository
}

func NewAuditHandler(audits auditRepository) *AuditHandler {
	return &AuditHandler{audits: audits}
}

type auditLogDTO struct {
	ID        uuid.UUID       `json:"id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  uuid.UUID       `json:"entity_id"`
	NewValues json.RawMessage `json:"new_values,omitempty"`
	ActorID   uuid.UUID       `json:"actor_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be between 1 and 500"}})
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondValidationError(w, []FieldError{{Field: "offset", Message: "must be non-negative"}})
			return
		}
		offset = n
	}

	logs, err := h.audits.List(r.Context(), limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]auditLogDTO, 0, len(logs))
	for _, entry := range logs {
		dtos = append(dtos, auditLogDTO{
			ID:        entry.ID,
			Action:    entry.Action,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			NewValues: entry.NewValues,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
