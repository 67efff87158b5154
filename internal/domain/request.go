package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyCNY Currency = "CNY"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyCNY:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusInReview  RequestStatus = "in_review"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusRejected  RequestStatus = "rejected"
)

// Request is an import request raised by a company against a provider.
// Requests are never deleted; they only move through statuses.
type Request struct {
	ID          uuid.UUID
	Code        string
	CompanyID   uuid.UUID
	ProviderID  uuid.UUID
	CreatedBy   uuid.UUID
	Amount      decimal.Decimal
	Currency    Currency
	Description *string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
