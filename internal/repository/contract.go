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

const contractColumns = `id, quotation_id, request_id, company_id, status, start_date, end_date,
	signed_at, completed_by, completed_at, completion_notes, created_at, updated_at`

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, tx *sql.Tx, c *domain.Contract) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO contracts (id, quotation_id, request_id, company_id, status, start_date, end_date,
			signed_at, completed_by, completed_at, completion_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.QuotationID, c.RequestID, c.CompanyID, c.Status, c.StartDate, c.EndDate,
		c.SignedAt, c.CompletedBy, c.CompletedAt, c.CompletionNotes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrContractExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id,
	)
	c, err := scanContract(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *ContractRepository) GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*domain.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE quotation_id = $1`, quotationID,
	)
	c, err := scanContract(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByQuotation: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByQuotation: %w", err)
	}
	return c, nil
}

func (r *ContractRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCompany: %w", err)
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *ContractRepository) List(ctx context.Context) ([]domain.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM contracts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *ContractRepository) MarkActive(ctx context.Context, tx *sql.Tx, id uuid.UUID, signedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE contracts SET status = $1, signed_at = $2, updated_at = now()
		WHERE id = $3 AND status = $4`,
		domain.ContractStatusActive, signedAt, id, domain.ContractStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("MarkActive: %w", err)
	}
	return requireRowsAffected(res, "MarkActive")
}

func (r *ContractRepository) MarkCompleted(ctx context.Context, tx *sql.Tx, id uuid.UUID, by uuid.UUID, at time.Time, notes *string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE contracts SET status = $1, completed_by = $2, completed_at = $3,
			completion_notes = $4, updated_at = now()
		WHERE id = $5 AND status = $6`,
		domain.ContractStatusCompleted, by, at, notes, id, domain.ContractStatusActive,
	)
	if err != nil {
		return fmt.Errorf("MarkCompleted: %w", err)
	}
	return requireRowsAffected(res, "MarkCompleted")
}

func scanContract(s scanner) (*domain.Contract, error) {
	var c domain.Contract
	var completedBy uuid.NullUUID
	err := s.Scan(
		&c.ID, &c.QuotationID, &c.RequestID, &c.CompanyID, &c.Status, &c.StartDate, &c.EndDate,
		&c.SignedAt, &completedBy, &c.CompletedAt, &c.CompletionNotes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedBy.Valid {
		c.CompletedBy = &completedBy.UUID
	}
	return &c, nil
}

func collectContracts(rows *sql.Rows) ([]domain.Contract, error) {
	var contracts []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("collectContracts: scan: %w", err)
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectContracts: rows: %w", err)
	}
	return contracts, nil
}
