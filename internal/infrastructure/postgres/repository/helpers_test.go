package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/vault"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, postgres.AutoMigrate(db))
	return db
}

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.New(testKey)
	require.NoError(t, err)
	return v
}

type fixture struct {
	db        *gorm.DB
	vault     *vault.Vault
	merchants *DefaultMerchantRepository
	orders    *DefaultOrderRepository
	merchant  *domain.Merchant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	v := newTestVault(t)
	f := &fixture{
		db:        db,
		vault:     v,
		merchants: NewDefaultMerchantRepository(db, v),
		orders:    NewDefaultOrderRepository(db, v),
		merchant: &domain.Merchant{
			ShopDomain:         "demo.myshop.test",
			AccessToken:        "shpat_token",
			WebhookSecret:      "whsec_test",
			ProviderMerchantID: "138",
			ProviderOutletID:   "7",
			CancelTimeLimit:    10,
		},
	}
	require.NoError(t, f.merchants.SaveMerchant(context.Background(), f.merchant))
	return f
}

func (f *fixture) newOrder(t *testing.T, platformOrderID string) *domain.Order {
	t.Helper()
	o := &domain.Order{
		MerchantID:      f.merchant.ID,
		PlatformOrderID: platformOrderID,
		ProviderOrderID: "PL-" + platformOrderID,
		Amount:          decimal.RequireFromString("120.50"),
		Currency:        domain.DefaultCurrency,
		PaymentLink:     "https://pay.example/" + platformOrderID,
		CustomerEmail:   "buyer@example.com",
		CancelTimeLimit: 10,
	}
	require.NoError(t, f.orders.CreateOrder(context.Background(), o))
	return o
}
