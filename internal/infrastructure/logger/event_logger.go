package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type WebhookSource string

const (
	SourceProvider WebhookSource = "provider"
	SourcePlatform WebhookSource = "platform"
)

// WebhookEvent is one audited inbound webhook delivery.
type WebhookEvent struct {
	ID          uint          `gorm:"primaryKey"`
	Source      WebhookSource `gorm:"index:idx_webhook_source_received"`
	ExternalID  string        `gorm:"index"`
	Topic       string
	MerchantRef string
	OrderRef    string
	Outcome     string
	Error       string
	ReceivedAt  time.Time `gorm:"index:idx_webhook_source_received"`
}

type WebhookEventLogger interface {
	LogWebhook(ctx context.Context, event WebhookEvent) error
}

type PGWebhookEventLogger struct {
	db *gorm.DB
}

func NewPGWebhookEventLogger(db *gorm.DB) *PGWebhookEventLogger {
	return &PGWebhookEventLogger{db: db}
}

func (l *PGWebhookEventLogger) LogWebhook(ctx context.Context, event WebhookEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	return l.db.WithContext(ctx).Create(&event).Error
}
