package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperadmin Role = "SUPERADMIN"
	RoleImportador Role = "IMPORTADOR"
	RoleCajero     Role = "CAJERO"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleImportador, RoleCajero:
		return true
	}
	return false
}

type ProfileStatus string

const (
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusInactive ProfileStatus = "inactive"
)

type Profile struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CompanyID    *uuid.UUID
	Status       ProfileStatus
	CreatedAt    time.Time
}
