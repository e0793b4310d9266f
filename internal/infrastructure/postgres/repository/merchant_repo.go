package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultMerchantRepository struct {
	DB    *gorm.DB
	Vault domain.SecretVault
}

func NewDefaultMerchantRepository(db *gorm.DB, vault domain.SecretVault) *DefaultMerchantRepository {
	return &DefaultMerchantRepository{DB: db, Vault: vault}
}

// SaveMerchant inserts or updates by shop domain. Secrets are sealed unless
// they already are.
func (r *DefaultMerchantRepository) SaveMerchant(ctx context.Context, merchant *domain.Merchant) error {
	for _, secret := range []*string{&merchant.AccessToken, &merchant.ProviderAPIKey, &merchant.WebhookSecret} {
		sealed, err := r.Vault.SealIfNeeded(*secret)
		if err != nil {
			return fmt.Errorf("seal merchant secret: %w", err)
		}
		*secret = sealed
	}
	if merchant.CancelTimeLimit <= 0 {
		merchant.CancelTimeLimit = domain.DefaultCancelTimeLimit
	}

	var existing models.MerchantModel
	err := r.DB.WithContext(ctx).First(&existing, "shop_domain = ?", merchant.ShopDomain).Error
	switch {
	case err == nil:
		merchant.ID = existing.ID
		merchant.CreatedAt = existing.CreatedAt
		return r.DB.WithContext(ctx).Save(mappers.ToGORMMerchant(merchant)).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if merchant.ID == "" {
			merchant.ID = uuid.New().String()
		}
		model := mappers.ToGORMMerchant(merchant)
		if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		merchant.CreatedAt, merchant.UpdatedAt = model.CreatedAt, model.UpdatedAt
		return nil
	default:
		return err
	}
}

func (r *DefaultMerchantRepository) GetMerchantByID(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	return r.first(ctx, "id = ?", merchantID)
}

func (r *DefaultMerchantRepository) GetMerchantByDomain(ctx context.Context, shopDomain string) (*domain.Merchant, error) {
	return r.first(ctx, "shop_domain = ?", shopDomain)
}

func (r *DefaultMerchantRepository) GetMerchantByProviderID(ctx context.Context, providerMerchantID string) (*domain.Merchant, error) {
	return r.first(ctx, "provider_merchant_id = ?", providerMerchantID)
}

func (r *DefaultMerchantRepository) first(ctx context.Context, query string, arg any) (*domain.Merchant, error) {
	var model models.MerchantModel
	if err := r.DB.WithContext(ctx).First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, err
	}
	return mappers.ToDomainMerchant(&model), nil
}
