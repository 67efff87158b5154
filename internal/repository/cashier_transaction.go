package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

const cashierTxColumns = `id, quotation_id, cashier_id, account_id, assigned_amount_bs,
	expected_usdt, delivered_usdt, status, created_at, completed_at`

type CashierTransactionRepository struct {
	db *sql.DB
}

func NewCashierTransactionRepository(db *sql.DB) *CashierTransactionRepository {
	return &CashierTransactionRepository{db: db}
}

func (r *CashierTransactionRepository) Create(ctx context.Context, tx *sql.Tx, t *domain.CashierTransaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO cashier_transactions (id, quotation_id, cashier_id, account_id,
			assigned_amount_bs, expected_usdt, delivered_usdt, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.QuotationID, t.CashierID, t.AccountID,
		t.AssignedAmountBs, t.ExpectedUsdt, t.DeliveredUsdt, t.Status, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicateParticipation)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CashierTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CashierTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cashierTxColumns+` FROM cashier_transactions WHERE id = $1`, id,
	)
	t, err := scanCashierTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

func (r *CashierTransactionRepository) ExistsForQuotationAndCashier(ctx context.Context, tx *sql.Tx, quotationID, cashierID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM cashier_transactions WHERE quotation_id = $1 AND cashier_id = $2
		)`,
		quotationID, cashierID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsForQuotationAndCashier: %w", err)
	}
	return exists, nil
}

// SumAssignedForQuotation totals the non-cancelled assignments on a
// quotation. Runs inside the participation transaction, after the quotation
// row is locked.
func (r *CashierTransactionRepository) SumAssignedForQuotation(ctx context.Context, tx *sql.Tx, quotationID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(assigned_amount_bs), 0) FROM cashier_transactions
		WHERE quotation_id = $1 AND status != $2`,
		quotationID, domain.CashierTransactionStatusCancelled,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumAssignedForQuotation: %w", err)
	}
	return sum, nil
}

// SumAssignedForAccountDay totals a cashier's non-cancelled assignments on
// an account for the calendar day containing ts (UTC).
func (r *CashierTransactionRepository) SumAssignedForAccountDay(ctx context.Context, tx *sql.Tx, cashierID, accountID uuid.UUID, ts time.Time) (decimal.Decimal, error) {
	dayStart := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var sum decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(assigned_amount_bs), 0) FROM cashier_transactions
		WHERE cashier_id = $1 AND account_id = $2 AND status != $3
		AND created_at >= $4 AND created_at < $5`,
		cashierID, accountID, domain.CashierTransactionStatusCancelled, dayStart, dayEnd,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SumAssignedForAccountDay: %w", err)
	}
	return sum, nil
}

func (r *CashierTransactionRepository) ListByQuotation(ctx context.Context, quotationID uuid.UUID) ([]domain.CashierTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cashierTxColumns+` FROM cashier_transactions WHERE quotation_id = $1 ORDER BY created_at`,
		quotationID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByQuotation: %w", err)
	}
	defer rows.Close()
	return collectCashierTransactions(rows)
}

func (r *CashierTransactionRepository) ListByCashier(ctx context.Context, cashierID uuid.UUID) ([]domain.CashierTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cashierTxColumns+` FROM cashier_transactions WHERE cashier_id = $1 ORDER BY created_at DESC`,
		cashierID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCashier: %w", err)
	}
	defer rows.Close()
	return collectCashierTransactions(rows)
}

// ListForReport returns transactions created in [from, to), oldest first.
func (r *CashierTransactionRepository) ListForReport(ctx context.Context, from, to time.Time) ([]domain.CashierTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cashierTxColumns+` FROM cashier_transactions
		WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("ListForReport: %w", err)
	}
	defer rows.Close()
	return collectCashierTransactions(rows)
}

func (r *CashierTransactionRepository) MarkCompleted(ctx context.Context, tx *sql.Tx, id uuid.UUID, delivered decimal.Decimal, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE cashier_transactions SET status = $1, delivered_usdt = $2, completed_at = $3
		WHERE id = $4 AND status IN ($5, $6)`,
		domain.CashierTransactionStatusCompleted, delivered, at, id,
		domain.CashierTransactionStatusPending, domain.CashierTransactionStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("MarkCompleted: %w", err)
	}
	return requireRowsAffected(res, "MarkCompleted")
}

func (r *CashierTransactionRepository) MarkCancelled(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE cashier_transactions SET status = $1
		WHERE id = $2 AND status IN ($3, $4)`,
		domain.CashierTransactionStatusCancelled, id,
		domain.CashierTransactionStatusPending, domain.CashierTransactionStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("MarkCancelled: %w", err)
	}
	return requireRowsAffected(res, "MarkCancelled")
}

func scanCashierTransaction(s scanner) (*domain.CashierTransaction, error) {
	var t domain.CashierTransaction
	var delivered decimal.NullDecimal
	err := s.Scan(&t.ID, &t.QuotationID, &t.CashierID, &t.AccountID, &t.AssignedAmountBs,
		&t.ExpectedUsdt, &delivered, &t.Status, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	if delivered.Valid {
		t.DeliveredUsdt = &delivered.Decimal
	}
	return &t, nil
}

func collectCashierTransactions(rows *sql.Rows) ([]domain.CashierTransaction, error) {
	var txs []domain.CashierTransaction
	for rows.Next() {
		t, err := scanCashierTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("collectCashierTransactions: scan: %w", err)
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collectCashierTransactions: rows: %w", err)
	}
	return txs, nil
}
