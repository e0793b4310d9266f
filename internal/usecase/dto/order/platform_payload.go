package orderdto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlatformOrderPayload is the subset of a platform order or checkout body
// the service reads.
type PlatformOrderPayload struct {
	ID                  FlexString `json:"id"`
	Token               string     `json:"token"`
	Email               string     `json:"email"`
	ContactEmail        string     `json:"contact_email"`
	Currency            string     `json:"currency"`
	FinancialStatus     string     `json:"financial_status"`
	CancelledAt         *string    `json:"cancelled_at"`
	UpdatedAt           string     `json:"updated_at"`
	Gateway             string     `json:"gateway"`
	PaymentGatewayNames []string   `json:"payment_gateway_names"`
	CurrentTotalPrice   FlexString `json:"current_total_price"`
	TotalPrice          FlexString `json:"total_price"`
	TotalPriceSet       *struct {
		ShopMoney struct {
			Amount       FlexString `json:"amount"`
			CurrencyCode string     `json:"currency_code"`
		} `json:"shop_money"`
	} `json:"total_price_set"`
	Customer        *platformPerson `json:"customer"`
	BillingAddress  *platformPerson `json:"billing_address"`
	ShippingAddress *platformPerson `json:"shipping_address"`
}

type platformPerson struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

func (p *platformPerson) fullName() string {
	if p == nil {
		return ""
	}
	if n := strings.TrimSpace(p.FirstName + " " + p.LastName); n != "" {
		return n
	}
	return strings.TrimSpace(p.Name)
}

// OrderID is the order id, or the checkout token for checkout payloads.
func (p *PlatformOrderPayload) OrderID() string {
	if id := p.ID.String(); id != "" {
		return id
	}
	return p.Token
}

// Amount picks the first parseable of current total, total and shop money.
func (p *PlatformOrderPayload) Amount() (decimal.Decimal, bool) {
	candidates := []FlexString{p.CurrentTotalPrice, p.TotalPrice}
	if p.TotalPriceSet != nil {
		candidates = append(candidates, p.TotalPriceSet.ShopMoney.Amount)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(c.String())); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func (p *PlatformOrderPayload) CurrencyCode() string {
	if p.Currency != "" {
		return p.Currency
	}
	if p.TotalPriceSet != nil {
		return p.TotalPriceSet.ShopMoney.CurrencyCode
	}
	return ""
}

// UsesPayLater reports whether any payment gateway name mentions paylater.
func (p *PlatformOrderPayload) UsesPayLater() bool {
	names := append([]string{p.Gateway}, p.PaymentGatewayNames...)
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), "paylater") {
			return true
		}
	}
	return false
}

func (p *PlatformOrderPayload) CustomerEmail() string {
	if p.Email != "" {
		return p.Email
	}
	if p.Customer != nil && p.Customer.Email != "" {
		return p.Customer.Email
	}
	return p.ContactEmail
}

func (p *PlatformOrderPayload) CustomerName() string {
	for _, person := range []*platformPerson{p.Customer, p.BillingAddress, p.ShippingAddress} {
		if n := person.fullName(); n != "" {
			return n
		}
	}
	return ""
}

// IsCancelled reports a non-empty cancelled_at.
func (p *PlatformOrderPayload) IsCancelled() bool {
	return p.CancelledAt != nil && *p.CancelledAt != ""
}

// EventTime is updated_at when it parses, else fallback.
func (p *PlatformOrderPayload) EventTime(fallback time.Time) time.Time {
	if p.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.UpdatedAt); err == nil {
			return t.UTC()
		}
	}
	return fallback.UTC()
}
