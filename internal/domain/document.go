package domain

import (
	"time"

	"github.com/google/uuid"
)

type DocumentEntityType string

const (
	DocumentEntityRequest      DocumentEntityType = "request"
	DocumentEntityContract     DocumentEntityType = "contract"
	DocumentEntityPayment      DocumentEntityType = "payment"
	DocumentEntityCompany      DocumentEntityType = "company"
	DocumentEntityRegistration DocumentEntityType = "registration_request"
)

func (t DocumentEntityType) IsValid() bool {
	switch t {
	case DocumentEntityRequest, DocumentEntityContract, DocumentEntityPayment,
		DocumentEntityCompany, DocumentEntityRegistration:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusPending  DocumentStatus = "pending"
)

type Document struct {
	ID         uuid.UUID
	FileName   string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	EntityType DocumentEntityType
	EntityID   uuid.UUID
	Status     DocumentStatus
	UploadedBy uuid.UUID
	CreatedAt  time.Time
}
