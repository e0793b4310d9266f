package usecase

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/vault"
	merchantdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/merchant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMerchantUsecase(t *testing.T) (*DefaultMerchantUsecase, *vault.Vault) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	v, err := vault.New("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)
	return NewDefaultMerchantUsecase(repository.NewDefaultMerchantRepository(db, v)), v
}

func TestRegisterMerchant_CreateThenUpdateKeepsSecrets(t *testing.T) {
	uc, v := newMerchantUsecase(t)
	ctx := context.Background()

	created, err := uc.RegisterMerchant(ctx, &merchantdto.RegisterMerchantInput{
		ShopDomain:         "Demo.MyShop.test ",
		AccessToken:        "shpat_token",
		WebhookSecret:      "whsec_test",
		ProviderMerchantID: "138",
	})
	require.NoError(t, err)
	assert.Equal(t, "demo.myshop.test", created.ShopDomain)
	assert.Equal(t, domain.DefaultCancelTimeLimit, created.CancelTimeLimit)
	assert.True(t, created.HasWebhookSecret)
	assert.False(t, created.HasProviderAPIKey)

	updated, err := uc.RegisterMerchant(ctx, &merchantdto.RegisterMerchantInput{
		ShopDomain:         "demo.myshop.test",
		Name:               "Demo",
		ProviderMerchantID: "138",
		CancelTimeLimit:    30,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 30, updated.CancelTimeLimit)

	stored, err := uc.MerchantRepo.GetMerchantByDomain(ctx, "demo.myshop.test")
	require.NoError(t, err)
	secret, err := v.Open(stored.WebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "whsec_test", secret)
}

func TestRegisterMerchant_Validation(t *testing.T) {
	uc, _ := newMerchantUsecase(t)

	_, err := uc.RegisterMerchant(context.Background(), &merchantdto.RegisterMerchantInput{ProviderMerchantID: "1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.RegisterMerchant(context.Background(), &merchantdto.RegisterMerchantInput{
		ShopDomain: "new.myshop.test", ProviderMerchantID: "2",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.GetMerchantByDomain(context.Background(), "missing.myshop.test")
	assert.ErrorIs(t, err, domain.ErrMerchantNotFound)
}
