package domain

import (
	"context"
	"time"
)

const DefaultCancelTimeLimit = 10

// Merchant is a store that offers PayLater checkout.
// AccessToken, ProviderAPIKey and WebhookSecret hold vault tokens, never plaintext.
type Merchant struct {
	ID                 string
	ShopDomain         string
	Name               string
	AccessToken        string
	ProviderAPIKey     string
	WebhookSecret      string
	ProviderMerchantID string
	ProviderOutletID   string
	CancelTimeLimit    int // minutes
	SuccessURL         string
	FailURL            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (m *Merchant) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ShopDomain
}

type MerchantRepository interface {
	SaveMerchant(ctx context.Context, merchant *Merchant) error
	GetMerchantByID(ctx context.Context, merchantID string) (*Merchant, error)
	GetMerchantByDomain(ctx context.Context, shopDomain string) (*Merchant, error)
	GetMerchantByProviderID(ctx context.Context, providerMerchantID string) (*Merchant, error)
}
