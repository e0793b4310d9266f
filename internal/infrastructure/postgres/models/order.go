package models

import (
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID              string         `gorm:"primaryKey;type:uuid"`
	MerchantID      string         `gorm:"type:uuid;not null;uniqueIndex:idx_order_platform_merchant,priority:2"`
	Merchant        *MerchantModel `gorm:"foreignKey:MerchantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	PlatformOrderID string         `gorm:"not null;uniqueIndex:idx_order_platform_merchant,priority:1"`
	ProviderOrderID string         `gorm:"uniqueIndex"`

	PlatformStatus domain.PlatformStatus `gorm:"not null;default:pending"`
	ProviderStatus domain.ProviderStatus `gorm:"not null;default:pending;index:idx_provider_status_created"`

	Amount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency string          `gorm:"size:3;not null"`

	PaymentLink           string
	ProviderTransactionID string
	ProviderPaymentDate   *time.Time
	ProviderComments      string `gorm:"size:2000"`

	CustomerEmail string
	CustomerName  string

	CancelTimeLimit int `gorm:"not null;default:10"`

	LastWebhookID       string
	LastWebhookAt       *int64 // unix ms of the latest applied provider event
	LastPlatformEventAt *int64

	HalfTimeReminderSent bool `gorm:"not null;default:false"`
	CancelEmailSent      bool `gorm:"not null;default:false"`
	Cancelled            bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"index:idx_provider_status_created"`
	UpdatedAt time.Time
}

func (OrderModel) TableName() string { return "orders" }
