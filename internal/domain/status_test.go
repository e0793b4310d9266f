package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlatformStatus(t *testing.T) {
	cases := map[string]PlatformStatus{
		"paid":           PlatformPaid,
		"PARTIALLY_PAID": PlatformPaid,
		" voided ":       PlatformCancelled,
		"Refunded":       PlatformCancelled,
		"cancelled":      PlatformCancelled,
		"failed":         PlatformCancelled,
		"fulfilled":      PlatformFulfilled,
		"authorized":     PlatformAuthorized,
		"pending":        PlatformPending,
		"":               PlatformPending,
		"something-new":  PlatformPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePlatformStatus(in), in)
	}
}

func TestNormalizeProviderStatus(t *testing.T) {
	cases := map[string]ProviderStatus{
		"success":   ProviderPaid,
		"PAID":      ProviderPaid,
		"Completed": ProviderPaid,
		"failed":    ProviderFailed,
		"cancelled": ProviderFailed,
		"ERROR":     ProviderFailed,
		"pending":   ProviderPending,
		"":          ProviderPending,
		"weird":     ProviderPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeProviderStatus(in), in)
	}
}

func TestEffectiveCancelTimeLimit(t *testing.T) {
	o := &Order{CancelTimeLimit: 15}
	assert.Equal(t, 15, o.EffectiveCancelTimeLimit())

	o.Merchant = &Merchant{CancelTimeLimit: 30}
	assert.Equal(t, 30, o.EffectiveCancelTimeLimit())

	o.Merchant.CancelTimeLimit = 0
	o.CancelTimeLimit = 0
	assert.Equal(t, DefaultCancelTimeLimit, o.EffectiveCancelTimeLimit())
}

func TestProviderStatusTerminal(t *testing.T) {
	assert.True(t, ProviderPaid.IsTerminal())
	assert.True(t, ProviderFailed.IsTerminal())
	assert.False(t, ProviderPending.IsTerminal())
	assert.False(t, ProviderAuthorized.IsTerminal())
	assert.False(t, PlatformAuthorized.Storable())
	assert.True(t, PlatformFulfilled.Storable())
}
