package mappers

import (
	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/models"
)

func ToDomainMerchant(model *models.MerchantModel) *domain.Merchant {
	return &domain.Merchant{
		ID:                 model.ID,
		ShopDomain:         model.ShopDomain,
		Name:               model.Name,
		AccessToken:        model.AccessToken,
		ProviderAPIKey:     model.ProviderAPIKey,
		WebhookSecret:      model.WebhookSecret,
		ProviderMerchantID: model.ProviderMerchantID,
		ProviderOutletID:   model.ProviderOutletID,
		CancelTimeLimit:    model.CancelTimeLimit,
		SuccessURL:         model.SuccessURL,
		FailURL:            model.FailURL,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMMerchant(merchant *domain.Merchant) *models.MerchantModel {
	return &models.MerchantModel{
		ID:                 merchant.ID,
		ShopDomain:         merchant.ShopDomain,
		Name:               merchant.Name,
		AccessToken:        merchant.AccessToken,
		ProviderAPIKey:     merchant.ProviderAPIKey,
		WebhookSecret:      merchant.WebhookSecret,
		ProviderMerchantID: merchant.ProviderMerchantID,
		ProviderOutletID:   merchant.ProviderOutletID,
		CancelTimeLimit:    merchant.CancelTimeLimit,
		SuccessURL:         merchant.SuccessURL,
		FailURL:            merchant.FailURL,
		CreatedAt:          merchant.CreatedAt,
		UpdatedAt:          merchant.UpdatedAt,
	}
}
