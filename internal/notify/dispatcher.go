// Package notify fans notifications out to interested profiles: an in-app
// row per recipient plus a Kafka event the notifier worker turns into email.
// Delivery is best-effort; a failed fan-out never fails the workflow
// transition that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

type notificationRepo interface {
	CreateBulk(ctx context.Context, ns []domain.Notification) error
}

type eventPublisher interface {
	Publish(ctx context.Context, events []Event) error
}

type Dispatcher struct {
	notifications notificationRepo
	publisher     eventPublisher
}

func NewDispatcher(notifications notificationRepo, publisher eventPublisher) *Dispatcher {
	return &Dispatcher{notifications: notifications, publisher: publisher}
}

// Send notifies every recipient. Errors are logged and swallowed.
func (d *Dispatcher) Send(ctx context.Context, recipients []domain.Profile, nType domain.NotificationType, title, message string, metadata any) {
	if len(recipients) == 0 {
		return
	}
	log := logging.FromContext(ctx)

	var raw json.RawMessage
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			log.Error("notification metadata marshal failed", "error", err)
		} else {
			raw = b
		}
	}

	now := time.Now().UTC()
	rows := make([]domain.Notification, 0, len(recipients))
	events := make([]Event, 0, len(recipients))
	for _, p := range recipients {
		n := domain.Notification{
			ID:        uuid.New(),
			ProfileID: p.ID,
			Title:     title,
			Message:   message,
			Type:      nType,
			Metadata:  raw,
			CreatedAt: now,
		}
		rows = append(rows, n)
		events = append(events, Event{
			NotificationID: n.ID,
			ProfileID:      p.ID,
			Email:          p.Email,
			Title:          title,
			Message:        message,
			Type:           nType,
			Metadata:       raw,
			CreatedAt:      now,
		})
	}

	if err := d.notifications.CreateBulk(ctx, rows); err != nil {
		log.Error("notification rows not written", "error", err, "recipients", len(rows))
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, events); err != nil {
			log.Error("notification events not published", "error", err, "recipients", len(events))
		}
	}
}
