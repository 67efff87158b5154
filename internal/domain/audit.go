package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog rows are append-only; one is written inside the same database
// transaction as the workflow transition it records.
type AuditLog struct {
	ID        uuid.UUID
	Action    string
	Entity    string
	EntityID  uuid.UUID
	NewValues json.RawMessage
	ActorID   uuid.UUID
	CreatedAt time.Time
}
