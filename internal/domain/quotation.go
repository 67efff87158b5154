package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuotationStatus string

const (
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// Quotation prices an import request: the quoted amount plus fees,
// converted to bolivars at the quoted exchange rate. At most one
// quotation per request may ever be accepted.
type Quotation struct {
	ID           uuid.UUID
	Code         string
	RequestID    uuid.UUID
	Amount       decimal.Decimal
	Currency     Currency
	ExchangeRate decimal.Decimal
	ServiceFee   decimal.Decimal
	HandlingFee  decimal.Decimal
	Total        decimal.Decimal
	TotalInBs    decimal.Decimal
	Status       QuotationStatus
	ValidUntil   *time.Time
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Quotation) Expired(now time.Time) bool {
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}
