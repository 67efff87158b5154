package domain

import (
	"time"

	"github.com/google/uuid"
)

type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

type Company struct {
	ID        uuid.UUID
	Name      string
	TaxID     string
	Address   *string
	Phone     *string
	Email     *string
	Status    CompanyStatus
	CreatedAt time.Time
}

type ProviderStatus string

const (
	ProviderStatusActive   ProviderStatus = "active"
	ProviderStatusInactive ProviderStatus = "inactive"
)

type Provider struct {
	ID           uuid.UUID
	Name         string
	Country      string
	ContactEmail *string
	Phone        *string
	Status       ProviderStatus
	CreatedAt    time.Time
}
