package mappers

import (
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := &domain.Order{
		ID:                    model.ID,
		MerchantID:            model.MerchantID,
		PlatformOrderID:       model.PlatformOrderID,
		ProviderOrderID:       model.ProviderOrderID,
		PlatformStatus:        model.PlatformStatus,
		ProviderStatus:        model.ProviderStatus,
		Amount:                model.Amount,
		Currency:              model.Currency,
		PaymentLink:           model.PaymentLink,
		ProviderTransactionID: model.ProviderTransactionID,
		ProviderPaymentDate:   model.ProviderPaymentDate,
		ProviderComments:      model.ProviderComments,
		CustomerEmail:         model.CustomerEmail,
		CustomerName:          model.CustomerName,
		CancelTimeLimit:       model.CancelTimeLimit,
		LastWebhookID:         model.LastWebhookID,
		LastWebhookAt:         fromMillis(model.LastWebhookAt),
		LastPlatformEventAt:   fromMillis(model.LastPlatformEventAt),
		HalfTimeReminderSent:  model.HalfTimeReminderSent,
		CancelEmailSent:       model.CancelEmailSent,
		Cancelled:             model.Cancelled,
		CreatedAt:             model.CreatedAt,
		UpdatedAt:             model.UpdatedAt,
	}
	if model.Merchant != nil {
		order.Merchant = ToDomainMerchant(model.Merchant)
	}
	return order
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:                    order.ID,
		MerchantID:            order.MerchantID,
		PlatformOrderID:       order.PlatformOrderID,
		ProviderOrderID:       order.ProviderOrderID,
		PlatformStatus:        order.PlatformStatus,
		ProviderStatus:        order.ProviderStatus,
		Amount:                order.Amount,
		Currency:              order.Currency,
		PaymentLink:           order.PaymentLink,
		ProviderTransactionID: order.ProviderTransactionID,
		ProviderPaymentDate:   order.ProviderPaymentDate,
		ProviderComments:      order.ProviderComments,
		CustomerEmail:         order.CustomerEmail,
		CustomerName:          order.CustomerName,
		CancelTimeLimit:       order.CancelTimeLimit,
		LastWebhookID:         order.LastWebhookID,
		LastWebhookAt:         toMillis(order.LastWebhookAt),
		LastPlatformEventAt:   toMillis(order.LastPlatformEventAt),
		HalfTimeReminderSent:  order.HalfTimeReminderSent,
		CancelEmailSent:       order.CancelEmailSent,
		Cancelled:             order.Cancelled,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
}

func toMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
