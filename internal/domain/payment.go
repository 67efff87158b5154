package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Payment mirrors the contract amount at the time the contract completes.
type Payment struct {
	ID         uuid.UUID
	Code       string
	ContractID uuid.UUID
	CompanyID  uuid.UUID
	Amount     decimal.Decimal
	Currency   Currency
	Status     PaymentStatus
	CreatedAt  time.Time
}
