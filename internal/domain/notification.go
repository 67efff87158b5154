package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeRequest      NotificationType = "request"
	NotificationTypeQuotation    NotificationType = "quotation"
	NotificationTypeContract     NotificationType = "contract"
	NotificationTypeCashier      NotificationType = "cashier"
	NotificationTypePayment      NotificationType = "payment"
	NotificationTypeRegistration NotificationType = "registration"
)

type Notification struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	Metadata  json.RawMessage
	CreatedAt time.Time
}
