package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/auth"
	"github.com/nordex-trade/mercury-api/internal/domain"
)

type notificationRepository interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID, unreadOnly bool) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, profileID uuid.UUID) error
}

type NotificationHandler struct {
	notifications notificationRepository
}

func NewNotificationHandler(notifications notificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationDTO struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	Read      bool            `json:"read"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toNotificationDTO(n *domain.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	ns, err := h.notifications.ListByProfile(r.Context(), claims.ProfileID, unreadOnly)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	unread, err := h.notifications.UnreadCount(r.Context(), claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(ns))
	for i := range ns {
		dtos = append(dtos, toNotificationDTO(&ns[i]))
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"notifications": dtos,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, claims.ProfileID); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]bool{"read": true})
}
