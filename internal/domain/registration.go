package domain

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

type RegistrationRequest struct {
	ID          uuid.UUID
	CompanyName string
	TaxID       string
	ContactName string
	Email       string
	Phone       *string
	Status      RegistrationStatus
	ReviewedBy  *uuid.UUID
	ReviewedAt  *time.Time
	CreatedAt   time.Time
}
