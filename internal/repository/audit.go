package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const auditColumns = `id, action, entity, entity_id, new_values, actor_id, created_at`

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends the audit row inside the transition's transaction so a
// transition and its audit record commit or roll back together.
func (r *AuditRepository) Create(ctx context.Context, tx *sql.Tx, a *domain.AuditLog) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (id, action, entity, entity_id, new_values, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Action, a.Entity, a.EntityID, nullableJSON(a.NewValues), a.ActorID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var newValues *[]byte
		if err := rows.Scan(&a.ID, &a.Action, &a.Entity, &a.EntityID, &newValues, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		if newValues != nil {
			a.NewValues = *newValues
		}
		logs = append(logs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return logs, nil
}
