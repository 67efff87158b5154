package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const quotationColumns = `id, code, request_id, amount, currency, exchange_rate,
	service_fee, handling_fee, total, total_in_bs, status, valid_until,
	created_by, created_at, updated_at`

type QuotationRepository struct {
	db *sql.DB
}

func NewQuotationRepository(db *sql.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, tx *sql.Tx, q *domain.Quotation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO quotations (id, code, request_id, amount, currency, exchange_rate,
			service_fee, handling_fee, total, total_in_bs, status, valid_until,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		q.ID, q.Code, q.RequestID, q.Amount, q.Currency, q.ExchangeRate,
		q.ServiceFee, q.HandlingFee, q.Total, q.TotalInBs, q.Status, q.ValidUntil,
		q.CreatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id,
	)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return q, nil
}

// GetForUpdate locks the quotation row for the duration of the transaction.
// Cashier participation reads the assigned sums under this lock so two
// concurrent participations cannot both pass the remaining-balance check.
func (r *QuotationRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Quotation, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE id = $1 FOR UPDATE`, id,
	)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return q, nil
}

func (r *QuotationRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Quotation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE request_id = $1 ORDER BY created_at`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByRequest: %w", err)
	}
	defer rows.Close()
	return collectQuotations(rows)
}

func (r *QuotationRepository) CountAccepted(ctx context.Context, tx *sql.Tx, requestID uuid.UUID) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM quotations WHERE request_id = $1 AND status = $2`,
		requestID, domain.QuotationStatusAccepted,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountAccepted: %w", err)
	}
	return n, nil
}

func (r *QuotationRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.QuotationStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE quotations SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return requireRowsAffected(res, "UpdateStatus")
}

// MarkExpired flips sent quotations whose validity window has passed.
// Called lazily on reads rather than by a scheduler.
func (r *QuotationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quotations SET status = $1, updated_at = now()
		WHERE status = $2 AND valid_until IS NOT NULL AND valid_until < $3`,
		domain.QuotationStatusExpired, domain.QuotationStatusSent, now,
	)
	if err != nil {
		return 0, fmt.Errorf("MarkExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("MarkExpired: rows affected: %w", err)
	}
	return n, nil
}

func (r *QuotationRepository) LastCodeMatching(ctx context.Context, tx *sql.Tx, prefix string) (string, error) {
	var code string
	err := tx.QueryRowContext(ctx,
		`SELECT code FROM quotations WHERE code LIKE $1 || '%' ORDER BY length(code) DESC, code DESC LIMIT 1`,
		prefix,
	).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("LastCodeMatching: %w", err)
	}
	return code, nil
}

// ListAcceptedWithoutCashier returns accepted quotations that have no
// transaction yet for the given cashier. The sync job uses this to create
// the missing assignments; the existence check keeps the job idempotent.
func (r *QuotationRepository) ListAcceptedWithoutCashier(ctx context.Context, cashierID uuid.UUID) ([]domain.Quotation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+quotationColumns+` FROM quotations q
		WHERE q.status = $1
		AND NOT EXISTS (
			SELECT 1 FROM cashier_transactions t
			WHERE t.quotation_id = q.id AND t.cashier_id = $2
		)
		ORDER BY q.created_at`,
		domain.QuotationStatusAccepted, cashierID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListAcceptedWithoutCashier: %w", err)
	}
	defer rows.Close()
	return collectQuotations(rows)
}

func scanQuotation(s scanner) (*domain.Quotation, error) {
	var q domain.Quotation
	err := s.Scan(
		&q.ID, &q.Code, &q.RequestID, &q.Amount, &q.Currency, &q.ExchangeRate,
		&q.ServiceFee, &q.HandlingFee, &q.Total, &q.TotalInBs, &q.Status, &q.ValidUntil,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func collectQuotations(rows *sql.Rows) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("collectQuotations: scan: %w", err)
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectQuotations: rows: %w", err)
	}
	return quotations, nil
}
