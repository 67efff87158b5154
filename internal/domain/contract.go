package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
)

type Contract struct {
	ID              uuid.UUID
	QuotationID     uuid.UUID
	RequestID       uuid.UUID
	CompanyID       uuid.UUID
	Status          ContractStatus
	StartDate       time.Time
	EndDate         time.Time
	SignedAt        *time.Time
	CompletedBy     *uuid.UUID
	CompletedAt     *time.Time
	CompletionNotes *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
