package orderdto

import (
	"sort"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentIntentInput asks for a payment link for one platform order.
type PaymentIntentInput struct {
	Merchant        *domain.Merchant
	PlatformOrderID string
	Amount          decimal.Decimal
	Currency        string
	CustomerEmail   string
	CustomerName    string
}

func (in *PaymentIntentInput) Validate() error {
	if in.Merchant == nil {
		return domain.Validationf("merchant is required")
	}
	if in.PlatformOrderID == "" {
		return domain.Validationf("orderId is required")
	}
	if !in.Amount.IsPositive() {
		return domain.Validationf("amount must be positive")
	}
	return nil
}

// CheckoutInput is a payment link request addressed by provider merchant id.
type CheckoutInput struct {
	ProviderMerchantID string
	PlatformOrderID    string
	Amount             string
	Currency           string
	CustomerEmail      string
	CustomerName       string
}

type ProviderWebhookInput struct {
	MerchantID string
	OrderID    string
	Status     string
	Timestamp  string
	TxHash     string
	Signature  string
	Comments   string
}

func (in *ProviderWebhookInput) Validate() error {
	missing := make([]string, 0)
	for name, v := range map[string]string{
		"merchantId": in.MerchantID,
		"orderId":    in.OrderID,
		"status":     in.Status,
		"timestamp":  in.Timestamp,
		"txHash":     in.TxHash,
		"signature":  in.Signature,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return domain.Validationf("missing fields %v", missing)
	}
	return nil
}

type PlatformWebhookInput struct {
	ShopDomain string
	Topic      string
	WebhookID  string
	HMAC       string
	RawBody    []byte
	ReceivedAt time.Time
}
