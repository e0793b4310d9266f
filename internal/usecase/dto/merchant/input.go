package merchantdto

import "github.com/LavaJover/shvark-paylater-service/internal/domain"

// RegisterMerchantInput creates or updates a merchant by shop domain.
// Empty secrets keep the stored value on update.
type RegisterMerchantInput struct {
	ShopDomain         string `json:"shop_domain"`
	Name               string `json:"name"`
	AccessToken        string `json:"access_token"`
	ProviderAPIKey     string `json:"provider_api_key"`
	WebhookSecret      string `json:"webhook_secret"`
	ProviderMerchantID string `json:"provider_merchant_id"`
	ProviderOutletID   string `json:"provider_outlet_id"`
	CancelTimeLimit    int    `json:"cancel_time_limit"`
	SuccessURL         string `json:"success_url"`
	FailURL            string `json:"fail_url"`
}

func (in *RegisterMerchantInput) Validate() error {
	if in.ShopDomain == "" {
		return domain.Validationf("shop_domain is required")
	}
	if in.ProviderMerchantID == "" {
		return domain.Validationf("provider_merchant_id is required")
	}
	if in.CancelTimeLimit < 0 {
		return domain.Validationf("cancel_time_limit must not be negative")
	}
	return nil
}
