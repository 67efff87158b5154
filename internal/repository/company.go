package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const companyColumns = `id, name, tax_id, address, phone, email, status, created_at`

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, tax_id, address, phone, email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.TaxID, c.Address, c.Phone, c.Email, c.Status, c.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrCompanyExists)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CompanyRepository) CreateTx(ctx context.Context, tx *sql.Tx, c *domain.Company) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO companies (id, name, tax_id, address, phone, email, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.TaxID, c.Address, c.Phone, c.Email, c.Status, c.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("CreateTx: %w", domain.ErrCompanyExists)
		}
		return fmt.Errorf("CreateTx: %w", err)
	}
	return nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id,
	)
	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return companies, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = $1, address = $2, phone = $3, email = $4, status = $5
		WHERE id = $6`,
		c.Name, c.Address, c.Phone, c.Email, c.Status, c.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRowsAffected(res, "Update")
}

// Suspend is the delete operation for companies: requests, contracts and
// payments keep referencing the row.
func (r *CompanyRepository) Suspend(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE companies SET status = $1 WHERE id = $2`,
		domain.CompanyStatusSuspended, id,
	)
	if err != nil {
		return fmt.Errorf("Suspend: %w", err)
	}
	return requireRowsAffected(res, "Suspend")
}

func scanCompany(s scanner) (*domain.Company, error) {
	var c domain.Company
	err := s.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
