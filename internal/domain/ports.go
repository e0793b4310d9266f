package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SecretVault interface {
	Seal(plaintext string) (string, error)
	SealIfNeeded(value string) (string, error)
	Open(token string) (string, error)
}

type PaymentLinkRequest struct {
	MerchantID         string
	OutletID           string
	Currency           string
	Amount             decimal.Decimal
	OrderID            string
	SuccessRedirectURL string
	FailRedirectURL    string
}

type PaymentLink struct {
	URL         string
	ProviderRef string
}

type PaymentLinkProvider interface {
	CreatePaymentLink(ctx context.Context, apiKey string, req PaymentLinkRequest) (*PaymentLink, error)
}

// PlatformShop addresses a merchant's store on the commerce platform.
type PlatformShop struct {
	Domain      string
	AccessToken string
}

type PlatformClient interface {
	CaptureTransaction(ctx context.Context, shop PlatformShop, platformOrderID string, amount decimal.Decimal, currency string) error
	UpdateFinancialStatus(ctx context.Context, shop PlatformShop, platformOrderID string, status PlatformStatus) error
	CancelOrder(ctx context.Context, shop PlatformShop, platformOrderID string) error
	TagOrder(ctx context.Context, shop PlatformShop, platformOrderID, tag string) error
}

type OrderNotification struct {
	Email            string
	CustomerName     string
	MerchantName     string
	PlatformOrderID  string
	Amount           decimal.Decimal
	Currency         string
	PaymentLink      string
	RemainingMinutes int
	Status           string
	Date             time.Time
}

type CustomerNotifier interface {
	SendPaymentLink(ctx context.Context, n OrderNotification) error
	SendExpiryReminder(ctx context.Context, n OrderNotification) error
	SendCancellation(ctx context.Context, n OrderNotification) error
}

// LinkLocker serialises payment link issuance for one key across instances.
type LinkLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
