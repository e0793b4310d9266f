package orderdto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, body string) *PlatformOrderPayload {
	t.Helper()
	var p PlatformOrderPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return &p
}

func TestPlatformOrderPayload_Extraction(t *testing.T) {
	p := decodePayload(t, `{
		"id": 450789469,
		"email": "",
		"contact_email": "contact@example.com",
		"current_total_price": null,
		"total_price": "199.50",
		"payment_gateway_names": ["manual", "PayLater Qatar"],
		"customer": {"first_name": "Amal", "last_name": "Haddad"},
		"updated_at": "2026-01-02T10:00:00+03:00"
	}`)

	assert.Equal(t, "450789469", p.OrderID())
	amount, ok := p.Amount()
	require.True(t, ok)
	assert.Equal(t, "199.5", amount.String())
	assert.True(t, p.UsesPayLater())
	assert.Equal(t, "contact@example.com", p.CustomerEmail())
	assert.Equal(t, "Amal Haddad", p.CustomerName())
	assert.Equal(t, time.Date(2026, 1, 2, 7, 0, 0, 0, time.UTC), p.EventTime(time.Time{}))
}

func TestPlatformOrderPayload_CheckoutFallbacks(t *testing.T) {
	p := decodePayload(t, `{
		"token": "chk_123",
		"gateway": "bogus",
		"total_price_set": {"shop_money": {"amount": "42.00", "currency_code": "QAR"}},
		"shipping_address": {"name": "Omar"},
		"customer": {"email": "omar@example.com"}
	}`)

	assert.Equal(t, "chk_123", p.OrderID())
	amount, ok := p.Amount()
	require.True(t, ok)
	assert.Equal(t, "42", amount.String())
	assert.Equal(t, "QAR", p.CurrencyCode())
	assert.False(t, p.UsesPayLater())
	assert.Equal(t, "omar@example.com", p.CustomerEmail())
	assert.Equal(t, "Omar", p.CustomerName())

	fallback := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, fallback, p.EventTime(fallback))
}

func TestPlatformOrderPayload_Cancelled(t *testing.T) {
	assert.True(t, decodePayload(t, `{"id": 1, "cancelled_at": "2026-01-01T00:00:00Z"}`).IsCancelled())
	assert.False(t, decodePayload(t, `{"id": 1, "cancelled_at": null}`).IsCancelled())

	_, ok := decodePayload(t, `{"id": 1}`).Amount()
	assert.False(t, ok)
}
