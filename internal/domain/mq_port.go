package domain

import (
	"context"
	"time"
)

type OrderEventType string

const (
	EventOrderCreated   OrderEventType = "created"
	EventOrderPaid      OrderEventType = "paid"
	EventOrderFailed    OrderEventType = "failed"
	EventOrderCancelled OrderEventType = "cancelled"
	EventOrderExpired   OrderEventType = "expired"
	EventOrderReminder  OrderEventType = "reminder"
)

type OrderEvent struct {
	Type            OrderEventType `json:"type"`
	OrderID         string         `json:"order_id"`
	MerchantID      string         `json:"merchant_id"`
	PlatformOrderID string         `json:"platform_order_id"`
	ProviderOrderID string         `json:"provider_order_id"`
	PlatformStatus  PlatformStatus `json:"platform_status"`
	ProviderStatus  ProviderStatus `json:"provider_status"`
	Amount          string         `json:"amount"`
	Currency        string         `json:"currency"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}
