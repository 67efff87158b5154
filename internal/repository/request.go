package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const requestColumns = `id, code, company_id, provider_id, created_by, amount, currency,
	description, status, created_at, updated_at`

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, tx *sql.Tx, req *domain.Request) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO requests (id, code, company_id, provider_id, created_by, amount, currency,
			description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		req.ID, req.Code, req.CompanyID, req.ProviderID, req.CreatedBy, req.Amount, req.Currency,
		req.Description, req.Status, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id,
	)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) List(ctx context.Context) ([]domain.Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *RequestRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCompany: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.RequestStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return requireRowsAffected(res, "UpdateStatus")
}

// LastCodeMatching returns the highest existing code with the given prefix,
// read inside the caller's transaction so the subsequent insert and this
// read race only through the unique constraint on code.
func (r *RequestRepository) LastCodeMatching(ctx context.Context, tx *sql.Tx, prefix string) (string, error) {
	var code string
	err := tx.QueryRowContext(ctx,
		`SELECT code FROM requests WHERE code LIKE $1 || '%' ORDER BY length(code) DESC, code DESC LIMIT 1`,
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

func scanRequest(s scanner) (*domain.Request, error) {
	var req domain.Request
	err := s.Scan(
		&req.ID, &req.Code, &req.CompanyID, &req.ProviderID, &req.CreatedBy, &req.Amount,
		&req.Currency, &req.Description, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]domain.Request, error) {
	var requests []domain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("collectRequests: scan: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectRequests: rows: %w", err)
	}
	return requests, nil
}
