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

const registrationColumns = `id, company_name, tax_id, contact_name, email, phone, status,
	reviewed_by, reviewed_at, created_at`

type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.RegistrationRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registration_requests (id, company_name, tax_id, contact_name, email, phone,
			status, reviewed_by, reviewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reg.ID, reg.CompanyName, reg.TaxID, reg.ContactName, reg.Email, reg.Phone,
		reg.Status, reg.ReviewedBy, reg.ReviewedAt, reg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RegistrationRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registration_requests WHERE id = $1`, id,
	)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) List(ctx context.Context) ([]domain.RegistrationRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM registration_requests ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var regs []domain.RegistrationRequest
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return regs, nil
}

// Decide moves a pending registration to approved or rejected. The status
// guard in the WHERE clause makes a second review a no-op that surfaces as
// not-found, which the service maps to ErrRegistrationDecided.
func (r *RegistrationRepository) Decide(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.RegistrationStatus, reviewedBy uuid.UUID, reviewedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE registration_requests SET status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5`,
		status, reviewedBy, reviewedAt, id, domain.RegistrationStatusPending,
	)
	if err != nil {
		return fmt.Errorf("Decide: %w", err)
	}
	return requireRowsAffected(res, "Decide")
}

func scanRegistration(s scanner) (*domain.RegistrationRequest, error) {
	var reg domain.RegistrationRequest
	var reviewedBy uuid.NullUUID
	err := s.Scan(&reg.ID, &reg.CompanyName, &reg.TaxID, &reg.ContactName, &reg.Email, &reg.Phone,
		&reg.Status, &reviewedBy, &reg.ReviewedAt, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		reg.ReviewedBy = &reviewedBy.UUID
	}
	return &reg, nil
}
