package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	gomail "gopkg.in/gomail.v2"

	"github.com/nordex-trade/mercury-api/internal/config"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/notify"
)

// The notifier consumes notification events off Kafka and delivers them by
// email. Delivery failures are logged and the message is committed anyway so
// one bad address cannot stall the partition.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("mercury-notifier", cfg.LogLevel, cfg.AppEnv)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaNotificationTopic,
		GroupID:        cfg.KafkaConsumerGroup,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	sender := &emailSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier starting",
		"topic", cfg.KafkaNotificationTopic,
		"group", cfg.KafkaConsumerGroup)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("notifier stopping")
				return
			}
			logger.Error("failed to read message", "error", err)
			time.Sleep(time.Second)
			continue
		}

		var event notify.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("skipping malformed event",
				"offset", msg.Offset, "error", err)
			continue
		}

		if err := sender.Send(event); err != nil {
			logger.Error("failed to deliver email",
				"notification_id", event.NotificationID,
				"email", event.Email,
				"error", err)
			continue
		}

		logger.Info("email delivered",
			"notification_id", event.NotificationID,
			"type", event.Type,
			"email", event.Email)
	}
}

type emailSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *emailSender) Send(event notify.Event) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", event.Email)
	m.SetHeader("Subject", event.Title)
	m.SetBody("text/plain", event.Message)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("Send: %w", err)
	}
	return nil
}
