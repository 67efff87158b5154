package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

type auditRepo interface {
	Create(ctx context.Context, tx *sql.Tx, a *domain.AuditLog) error
}

// writeAudit appends the audit row for a transition inside its transaction.
func writeAudit(ctx context.Context, tx *sql.Tx, audits auditRepo, action, entity string, entityID uuid.UUID, newValues any, actorID uuid.UUID) error {
	var raw json.RawMessage
	if newValues != nil {
		b, err := json.Marshal(newValues)
		if err != nil {
			return fmt.Errorf("writeAudit: marshal: %w", err)
		}
		raw = b
	}

	return audits.Create(ctx, tx, &domain.AuditLog{
		ID:        uuid.New(),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		NewValues: raw,
		ActorID:   actorID,
		CreatedAt: time.Now().UTC(),
	})
}
