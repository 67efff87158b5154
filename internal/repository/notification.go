package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const notificationColumns = `id, profile_id, title, message, type, read, metadata, created_at`

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, profile_id, title, message, type, read, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.ProfileID, n.Title, n.Message, n.Type, n.Read, nullableJSON(n.Metadata), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// CreateBulk inserts one row per notification in a single transaction.
func (r *NotificationRepository) CreateBulk(ctx context.Context, ns []domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateBulk: begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range ns {
		n := &ns[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (id, profile_id, title, message, type, read, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			n.ID, n.ProfileID, n.Title, n.Message, n.Type, n.Read, nullableJSON(n.Metadata), n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("CreateBulk: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("CreateBulk: commit: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE profile_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("ListByProfile: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByProfile: scan: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByProfile: rows: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, profileID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE profile_id = $1 AND NOT read`,
		profileID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("UnreadCount: %w", err)
	}
	return n, nil
}

// MarkRead only touches the caller's own notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, profileID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND profile_id = $2`,
		id, profileID,
	)
	if err != nil {
		return fmt.Errorf("MarkRead: %w", err)
	}
	return requireRowsAffected(res, "MarkRead")
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var n domain.Notification
	var metadata *[]byte
	err := s.Scan(&n.ID, &n.ProfileID, &n.Title, &n.Message, &n.Type, &n.Read, &metadata, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if metadata != nil {
		n.Metadata = *metadata
	}
	return &n, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
