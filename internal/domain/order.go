package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "QAR"

type Order struct {
	ID              string
	MerchantID      string
	Merchant        *Merchant
	PlatformOrderID string
	ProviderOrderID string

	PlatformStatus PlatformStatus
	ProviderStatus ProviderStatus

	Amount   decimal.Decimal
	Currency string

	// vault tokens
	PaymentLink           string
	ProviderTransactionID string

	ProviderPaymentDate *time.Time
	ProviderComments    string

	CustomerEmail string
	CustomerName  string

	CancelTimeLimit int

	LastWebhookID       string
	LastWebhookAt       *time.Time
	LastPlatformEventAt *time.Time

	HalfTimeReminderSent bool
	CancelEmailSent      bool
	Cancelled            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveCancelTimeLimit prefers the live merchant policy and falls back
// to the snapshot taken at creation.
func (o *Order) EffectiveCancelTimeLimit() int {
	if o.Merchant != nil && o.Merchant.CancelTimeLimit > 0 {
		return o.Merchant.CancelTimeLimit
	}
	if o.CancelTimeLimit > 0 {
		return o.CancelTimeLimit
	}
	return DefaultCancelTimeLimit
}

// ProviderUpdate is the field set written by a provider webhook.
// Nil fields are left untouched.
type ProviderUpdate struct {
	ProviderStatus        ProviderStatus
	PlatformStatus        *PlatformStatus
	ProviderTransactionID *string
	ProviderPaymentDate   *time.Time
	ProviderComments      *string
	WebhookID             string
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	GetOrderByPlatformID(ctx context.Context, merchantID, platformOrderID string) (*Order, error)
	GetOrderByProviderID(ctx context.Context, merchantID, providerOrderID string) (*Order, error)
	FindOrderByPlatformID(ctx context.Context, platformOrderID string) (*Order, error)
	ListPendingOrders(ctx context.Context) ([]*Order, error)

	// ApplyIfNewer writes upd only when eventAt is strictly newer than the
	// stored last webhook time and the payment track is not terminal. A
	// platform status in upd also advances the last platform event time.
	ApplyIfNewer(ctx context.Context, orderID string, eventAt time.Time, upd ProviderUpdate) (bool, error)
	// ApplyPlatformStatus writes status only when eventAt is strictly newer
	// than the last applied platform event. Once the payment track is paid or
	// failed only fulfilled and cancelled are accepted.
	ApplyPlatformStatus(ctx context.Context, orderID string, eventAt time.Time, status PlatformStatus) (bool, error)
	RealignProviderFailed(ctx context.Context, orderID string) (bool, error)

	MarkHalfTimeReminderSent(ctx context.Context, orderID string) (bool, error)
	MarkCancelEmailSent(ctx context.Context, orderID string) (bool, error)
	MarkExpired(ctx context.Context, orderID string) (bool, error)
	CancelByRedirect(ctx context.Context, orderID string) (bool, error)
}
