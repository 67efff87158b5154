package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

// Event is the message published to Kafka after a transition commits. The
// notifier worker consumes it and handles email delivery with its own retry
// policy, keeping delivery out of the request/response cycle.
type Event struct {
	NotificationID uuid.UUID               `json:"notification_id"`
	ProfileID      uuid.UUID               `json:"profile_id"`
	Email          string                  `json:"email"`
	Title          string                  `json:"title"`
	Message        string                  `json:"message"`
	Type           domain.NotificationType `json:"type"`
	Metadata       json.RawMessage         `json:"metadata,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}
