package merchantdto

import (
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
)

// MerchantResponse never carries secrets, only whether they are set.
type MerchantResponse struct {
	ID                 string    `json:"id"`
	ShopDomain         string    `json:"shop_domain"`
	Name               string    `json:"name"`
	ProviderMerchantID string    `json:"provider_merchant_id"`
	ProviderOutletID   string    `json:"provider_outlet_id"`
	CancelTimeLimit    int       `json:"cancel_time_limit"`
	SuccessURL         string    `json:"success_url,omitempty"`
	FailURL            string    `json:"fail_url,omitempty"`
	HasAccessToken     bool      `json:"has_access_token"`
	HasProviderAPIKey  bool      `json:"has_provider_api_key"`
	HasWebhookSecret   bool      `json:"has_webhook_secret"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func FromDomain(m *domain.Merchant) *MerchantResponse {
	return &MerchantResponse{
		ID:                 m.ID,
		ShopDomain:         m.ShopDomain,
		Name:               m.Name,
		ProviderMerchantID: m.ProviderMerchantID,
		ProviderOutletID:   m.ProviderOutletID,
		CancelTimeLimit:    m.CancelTimeLimit,
		SuccessURL:         m.SuccessURL,
		FailURL:            m.FailURL,
		HasAccessToken:     m.AccessToken != "",
		HasProviderAPIKey:  m.ProviderAPIKey != "",
		HasWebhookSecret:   m.WebhookSecret != "",
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
