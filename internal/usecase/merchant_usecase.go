package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	merchantdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/merchant"
)

type MerchantUsecase interface {
	RegisterMerchant(ctx context.Context, input *merchantdto.RegisterMerchantInput) (*merchantdto.MerchantResponse, error)
	GetMerchantByDomain(ctx context.Context, shopDomain string) (*merchantdto.MerchantResponse, error)
}

type DefaultMerchantUsecase struct {
	MerchantRepo domain.MerchantRepository
}

func NewDefaultMerchantUsecase(merchantRepo domain.MerchantRepository) *DefaultMerchantUsecase {
	return &DefaultMerchantUsecase{
		MerchantRepo: merchantRepo,
	}
}

func (uc *DefaultMerchantUsecase) RegisterMerchant(ctx context.Context, input *merchantdto.RegisterMerchantInput) (*merchantdto.MerchantResponse, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	shopDomain := strings.ToLower(strings.TrimSpace(input.ShopDomain))

	merchant := &domain.Merchant{
		ShopDomain:         shopDomain,
		Name:               input.Name,
		AccessToken:        input.AccessToken,
		ProviderAPIKey:     input.ProviderAPIKey,
		WebhookSecret:      input.WebhookSecret,
		ProviderMerchantID: input.ProviderMerchantID,
		ProviderOutletID:   input.ProviderOutletID,
		CancelTimeLimit:    input.CancelTimeLimit,
		SuccessURL:         input.SuccessURL,
		FailURL:            input.FailURL,
	}

	existing, err := uc.MerchantRepo.GetMerchantByDomain(ctx, shopDomain)
	switch {
	case err == nil:
		// пустые секреты при обновлении не затираем
		if merchant.AccessToken == "" {
			merchant.AccessToken = existing.AccessToken
		}
		if merchant.ProviderAPIKey == "" {
			merchant.ProviderAPIKey = existing.ProviderAPIKey
		}
		if merchant.WebhookSecret == "" {
			merchant.WebhookSecret = existing.WebhookSecret
		}
	case errors.Is(err, domain.ErrMerchantNotFound):
		if merchant.WebhookSecret == "" {
			return nil, domain.Validationf("webhook_secret is required for a new merchant")
		}
	default:
		return nil, err
	}

	if err := uc.MerchantRepo.SaveMerchant(ctx, merchant); err != nil {
		return nil, err
	}
	return merchantdto.FromDomain(merchant), nil
}

func (uc *DefaultMerchantUsecase) GetMerchantByDomain(ctx context.Context, shopDomain string) (*merchantdto.MerchantResponse, error) {
	merchant, err := uc.MerchantRepo.GetMerchantByDomain(ctx, strings.ToLower(strings.TrimSpace(shopDomain)))
	if err != nil {
		return nil, err
	}
	return merchantdto.FromDomain(merchant), nil
}
