package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const profileColumns = `id, email, name, password_hash, role, company_id, status, created_at`

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, name, password_hash, role, company_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Email, p.Name, p.PasswordHash, p.Role, p.CompanyID, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ProfileRepository) CreateTx(ctx context.Context, tx *sql.Tx, p *domain.Profile) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (id, email, name, password_hash, role, company_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Email, p.Name, p.PasswordHash, p.Role, p.CompanyID, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateTx: %w", err)
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id,
	)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email,
	)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (r *ProfileRepository) ListByRole(ctx context.Context, role domain.Role, status domain.ProfileStatus) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE role = $1 AND status = $2 ORDER BY created_at`,
		role, status,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByRole: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (r *ProfileRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE company_id = $1 ORDER BY created_at`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCompany: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET email = $1, name = $2, role = $3, company_id = $4, status = $5
		WHERE id = $6`,
		p.Email, p.Name, p.Role, p.CompanyID, p.Status, p.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRowsAffected(res, "Update")
}

func (r *ProfileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET password_hash = $1 WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("UpdatePassword: %w", err)
	}
	return requireRowsAffected(res, "UpdatePassword")
}

// Deactivate is the delete operation for profiles: rows are kept for
// audit-log and foreign-key integrity.
func (r *ProfileRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET status = $1 WHERE id = $2`,
		domain.ProfileStatusInactive, id,
	)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	return requireRowsAffected(res, "Deactivate")
}

func scanProfile(s scanner) (*domain.Profile, error) {
	var p domain.Profile
	var companyID uuid.NullUUID
	err := s.Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.Role, &companyID, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		p.CompanyID = &companyID.UUID
	}
	return &p, nil
}

func collectProfiles(rows *sql.Rows) ([]domain.Profile, error) {
	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("collectProfiles: scan: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectProfiles: rows: %w", err)
	}
	return profiles, nil
}

func requireRowsAffected(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
