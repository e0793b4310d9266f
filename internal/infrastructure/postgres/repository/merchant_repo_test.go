package repository

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveMerchantSealsSecrets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.merchants.GetMerchantByDomain(ctx, "demo.myshop.test")
	require.NoError(t, err)
	assert.True(t, vault.IsSealed(got.AccessToken))
	assert.True(t, vault.IsSealed(got.WebhookSecret))
	assert.Empty(t, got.ProviderAPIKey)

	secret, err := f.vault.Open(got.WebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "whsec_test", secret)
}

func TestSaveMerchantUpdatesWithoutDoubleSealing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.merchants.GetMerchantByProviderID(ctx, "138")
	require.NoError(t, err)
	sealedToken := m.AccessToken

	m.CancelTimeLimit = 20
	require.NoError(t, f.merchants.SaveMerchant(ctx, m))

	got, err := f.merchants.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.CancelTimeLimit)
	assert.Equal(t, sealedToken, got.AccessToken)
}

func TestGetMerchantNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.merchants.GetMerchantByProviderID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrMerchantNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
