package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const cashierAccountColumns = `id, name, bank, holder, daily_limit_bs, assigned_cashier_id,
	is_default, active, created_at`

type CashierAccountRepository struct {
	db *sql.DB
}

func NewCashierAccountRepository(db *sql.DB) *CashierAccountRepository {
	return &CashierAccountRepository{db: db}
}

func (r *CashierAccountRepository) Create(ctx context.Context, a *domain.CashierAccount) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cashier_accounts (id, name, bank, holder, daily_limit_bs, assigned_cashier_id,
			is_default, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Name, a.Bank, a.Holder, a.DailyLimitBs, a.AssignedCashierID,
		a.IsDefault, a.Active, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CashierAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CashierAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cashierAccountColumns+` FROM cashier_accounts WHERE id = $1`, id,
	)
	a, err := scanCashierAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *CashierAccountRepository) List(ctx context.Context) ([]domain.CashierAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cashierAccountColumns+` FROM cashier_accounts ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()
	return collectCashierAccounts(rows)
}

// AccountForCashier picks the account the sync job assigns: the cashier's
// own account when one exists, the default account otherwise.
func (r *CashierAccountRepository) AccountForCashier(ctx context.Context, cashierID uuid.UUID) (*domain.CashierAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cashierAccountColumns+` FROM cashier_accounts
		WHERE active AND (assigned_cashier_id = $1 OR is_default)
		ORDER BY (assigned_cashier_id = $1) DESC, is_default DESC
		LIMIT 1`,
		cashierID,
	)
	a, err := scanCashierAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("AccountForCashier: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("AccountForCashier: %w", err)
	}
	return a, nil
}

func (r *CashierAccountRepository) Update(ctx context.Context, a *domain.CashierAccount) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cashier_accounts SET name = $1, bank = $2, holder = $3, daily_limit_bs = $4,
			assigned_cashier_id = $5, is_default = $6, active = $7
		WHERE id = $8`,
		a.Name, a.Bank, a.Holder, a.DailyLimitBs, a.AssignedCashierID, a.IsDefault, a.Active, a.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return requireRowsAffected(res, "Update")
}

func (r *CashierAccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cashier_accounts SET active = false WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	return requireRowsAffected(res, "Deactivate")
}

func scanCashierAccount(s scanner) (*domain.CashierAccount, error) {
	var a domain.CashierAccount
	var assigned uuid.NullUUID
	err := s.Scan(&a.ID, &a.Name, &a.Bank, &a.Holder, &a.DailyLimitBs, &assigned,
		&a.IsDefault, &a.Active, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		a.AssignedCashierID = &assigned.UUID
	}
	return &a, nil
}

func collectCashierAccounts(rows *sql.Rows) ([]domain.CashierAccount, error) {
	var accounts []domain.CashierAccount
	for rows.Next() {
		a, err := scanCashierAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("collectCashierAccounts: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectCashierAccounts: rows: %w", err)
	}
	return accounts, nil
}
