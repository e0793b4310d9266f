package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/signature"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
)

const maxProviderComments = 2000

const sourceProvider = "provider"

// HandleProviderWebhook verifies and applies a provider payment status
// callback. Stale and duplicate deliveries are acknowledged without changes.
func (uc *DefaultOrderUsecase) HandleProviderWebhook(ctx context.Context, input *orderdto.ProviderWebhookInput) (*orderdto.WebhookResult, error) {
	if err := input.Validate(); err != nil {
		uc.recordWebhookMetrics(sourceProvider, "invalid")
		return nil, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(input.Timestamp), 10, 64)
	if err != nil {
		uc.recordWebhookMetrics(sourceProvider, "invalid")
		return nil, domain.Validationf("timestamp %q is not epoch milliseconds", input.Timestamp)
	}
	eventAt := time.UnixMilli(ms).UTC()

	fields := signature.ProviderFields{
		MerchantID: input.MerchantID,
		OrderID:    input.OrderID,
		Status:     input.Status,
		Timestamp:  input.Timestamp,
		Comments:   input.Comments,
		TxHash:     input.TxHash,
		Signature:  input.Signature,
	}

	merchant, err := uc.MerchantRepo.GetMerchantByProviderID(ctx, input.MerchantID)
	if err != nil {
		if errors.Is(err, domain.ErrMerchantNotFound) {
			signature.BurnProviderCheck(fields)
			uc.recordWebhookMetrics(sourceProvider, "unknown_merchant")
		}
		return nil, err
	}

	secret, err := uc.Vault.Open(merchant.WebhookSecret)
	if err != nil {
		return nil, err
	}
	if err := signature.VerifyProviderWebhook(fields, secret); err != nil {
		uc.Logger.Warn("provider webhook signature mismatch",
			"merchant_id", merchant.ID,
			"order_id", input.OrderID,
		)
		uc.recordWebhookMetrics(sourceProvider, "forbidden")
		return nil, err
	}

	order, err := uc.findProviderOrder(ctx, merchant.ID, input.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			uc.Logger.Info("provider webhook for unknown order",
				"merchant_id", merchant.ID,
				"order_id", input.OrderID,
			)
			uc.recordWebhookMetrics(sourceProvider, string(orderdto.OutcomeIgnored))
			return &orderdto.WebhookResult{Outcome: orderdto.OutcomeIgnored, Reason: "order not found"}, nil
		}
		return nil, err
	}
	if order.Merchant == nil {
		order.Merchant = merchant
	}

	status := domain.NormalizeProviderStatus(input.Status)
	upd := buildProviderUpdate(status, input, eventAt)

	applied, err := uc.OrderRepo.ApplyIfNewer(ctx, order.ID, eventAt, upd)
	if err != nil {
		return nil, err
	}
	if !applied {
		uc.Logger.Info("provider webhook not applied",
			"order_id", order.ID,
			"status", status,
			"event_at", eventAt,
			"reason", domain.ErrStaleEvent,
		)
		uc.recordWebhookMetrics(sourceProvider, string(orderdto.OutcomeStale))
		return &orderdto.WebhookResult{Outcome: orderdto.OutcomeStale, OrderID: order.ID, Reason: domain.ErrStaleEvent.Error()}, nil
	}

	priorPlatform := order.PlatformStatus
	order.ProviderStatus = status
	if upd.PlatformStatus != nil {
		order.PlatformStatus = *upd.PlatformStatus
	}

	uc.Logger.Info("provider webhook applied",
		"order_id", order.ID,
		"provider_status", status,
		"platform_status", order.PlatformStatus,
	)
	uc.recordWebhookMetrics(sourceProvider, string(orderdto.OutcomeApplied))

	switch status {
	case domain.ProviderPaid:
		uc.recordTransitionMetrics("paid")
		if priorPlatform != domain.PlatformPaid {
			uc.syncPaidToPlatform(ctx, order)
		}
		uc.publish(ctx, domain.EventOrderPaid, order)
	case domain.ProviderFailed:
		uc.recordTransitionMetrics("failed")
		uc.syncFinancialStatus(ctx, order, domain.PlatformCancelled)
		uc.sendCancellationOnce(ctx, order)
		uc.publish(ctx, domain.EventOrderFailed, order)
	}

	return &orderdto.WebhookResult{Outcome: orderdto.OutcomeApplied, OrderID: order.ID}, nil
}

func buildProviderUpdate(status domain.ProviderStatus, input *orderdto.ProviderWebhookInput, eventAt time.Time) domain.ProviderUpdate {
	comments := strings.TrimSpace(input.Comments)
	if r := []rune(comments); len(r) > maxProviderComments {
		comments = string(r[:maxProviderComments])
	}
	txHash := strings.ToLower(input.TxHash)

	upd := domain.ProviderUpdate{
		ProviderStatus:        status,
		ProviderTransactionID: &txHash,
		ProviderComments:      &comments,
		WebhookID:             txHash,
	}
	switch status {
	case domain.ProviderPaid:
		paid := domain.PlatformPaid
		upd.PlatformStatus = &paid
		upd.ProviderPaymentDate = &eventAt
	case domain.ProviderFailed:
		cancelled := domain.PlatformCancelled
		upd.PlatformStatus = &cancelled
	}
	return upd
}

// findProviderOrder looks up by provider order id, then by platform order id.
func (uc *DefaultOrderUsecase) findProviderOrder(ctx context.Context, merchantID, orderID string) (*domain.Order, error) {
	order, err := uc.OrderRepo.GetOrderByProviderID(ctx, merchantID, orderID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}
	return uc.OrderRepo.GetOrderByPlatformID(ctx, merchantID, orderID)
}

func (uc *DefaultOrderUsecase) syncPaidToPlatform(ctx context.Context, order *domain.Order) {
	uc.runSideEffect(ctx, "platform_capture", order, func(ctx context.Context) error {
		merchant, err := uc.merchantFor(ctx, order)
		if err != nil {
			return err
		}
		shop, err := uc.shopFor(merchant)
		if err != nil {
			return err
		}
		return uc.Platform.CaptureTransaction(ctx, shop, order.PlatformOrderID, order.Amount, order.Currency)
	})
	uc.syncFinancialStatus(ctx, order, domain.PlatformPaid)
}

func (uc *DefaultOrderUsecase) syncFinancialStatus(ctx context.Context, order *domain.Order, status domain.PlatformStatus) {
	uc.runSideEffect(ctx, "platform_financial_status", order, func(ctx context.Context) error {
		merchant, err := uc.merchantFor(ctx, order)
		if err != nil {
			return err
		}
		shop, err := uc.shopFor(merchant)
		if err != nil {
			return err
		}
		return uc.Platform.UpdateFinancialStatus(ctx, shop, order.PlatformOrderID, status)
	})
}
