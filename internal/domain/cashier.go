package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CashierAccount struct {
	ID                uuid.UUID
	Name              string
	Bank              string
	Holder            string
	DailyLimitBs      decimal.Decimal
	AssignedCashierID *uuid.UUID
	IsDefault         bool
	Active            bool
	CreatedAt         time.Time
}

type CashierTransactionStatus string

const (
	CashierTransactionStatusPending    CashierTransactionStatus = "pending"
	CashierTransactionStatusInProgress CashierTransactionStatus = "in_progress"
	CashierTransactionStatusCompleted  CashierTransactionStatus = "completed"
	CashierTransactionStatusCancelled  CashierTransactionStatus = "cancelled"
)

func (s CashierTransactionStatus) Open() bool {
	return s == CashierTransactionStatusPending || s == CashierTransactionStatusInProgress
}

// CashierTransaction assigns a slice of a quotation's bolivar total to a
// cashier for conversion. ExpectedUsdt is AssignedAmountBs divided by the
// quotation's exchange rate; DeliveredUsdt stays nil until completion.
type CashierTransaction struct {
	ID               uuid.UUID
	QuotationID      uuid.UUID
	CashierID        uuid.UUID
	AccountID        uuid.UUID
	AssignedAmountBs decimal.Decimal
	ExpectedUsdt     decimal.Decimal
	DeliveredUsdt    *decimal.Decimal
	Status           CashierTransactionStatus
	CreatedAt        time.Time
	CompletedAt      *time.Time
}
