package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/signature"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
)

const sourcePlatform = "platform"

const (
	TopicOrdersCreate    = "orders/create"
	TopicCheckoutsCreate = "checkouts/create"
	TopicOrdersUpdated   = "orders/updated"
	TopicOrdersPaid      = "orders/paid"
	TopicOrdersCancelled = "orders/cancelled"
)

func ignored(reason string) *orderdto.WebhookResult {
	return &orderdto.WebhookResult{Outcome: orderdto.OutcomeIgnored, Reason: reason}
}

// HandlePlatformWebhook verifies a platform order event and either issues a
// payment link or reconciles the platform status. Anything it does not
// recognise is acknowledged as ignored so the sender stops retrying.
func (uc *DefaultOrderUsecase) HandlePlatformWebhook(ctx context.Context, input *orderdto.PlatformWebhookInput) (*orderdto.WebhookResult, error) {
	res, err := uc.handlePlatformWebhook(ctx, input)
	switch {
	case err != nil && errors.Is(err, domain.ErrSignatureInvalid):
		uc.recordWebhookMetrics(sourcePlatform, "forbidden")
	case err != nil:
		uc.recordWebhookMetrics(sourcePlatform, "error")
	default:
		uc.recordWebhookMetrics(sourcePlatform, string(res.Outcome))
	}
	return res, err
}

func (uc *DefaultOrderUsecase) handlePlatformWebhook(ctx context.Context, input *orderdto.PlatformWebhookInput) (*orderdto.WebhookResult, error) {
	if input.ShopDomain == "" || input.Topic == "" {
		return ignored("missing shop or topic header"), nil
	}
	if err := signature.VerifyPlatformWebhook(input.RawBody, input.HMAC, uc.Settings.PlatformWebhookSecret); err != nil {
		uc.Logger.Warn("platform webhook signature mismatch", "shop", input.ShopDomain, "topic", input.Topic)
		return nil, err
	}

	merchant, err := uc.MerchantRepo.GetMerchantByDomain(ctx, strings.ToLower(input.ShopDomain))
	if err != nil {
		if errors.Is(err, domain.ErrMerchantNotFound) {
			return ignored("unknown shop"), nil
		}
		return nil, err
	}

	var payload orderdto.PlatformOrderPayload
	if err := json.Unmarshal(input.RawBody, &payload); err != nil {
		uc.Logger.Warn("platform webhook body is not an order", "shop", input.ShopDomain, "error", err)
		return ignored("malformed body"), nil
	}
	if payload.OrderID() == "" {
		return ignored("order id missing"), nil
	}

	switch input.Topic {
	case TopicOrdersCreate, TopicCheckoutsCreate:
		return uc.platformOrderCreated(ctx, merchant, &payload)
	case TopicOrdersPaid:
		return uc.reconcilePlatformStatus(ctx, merchant, &payload, domain.PlatformPaid, input)
	case TopicOrdersCancelled:
		return uc.reconcilePlatformStatus(ctx, merchant, &payload, domain.PlatformCancelled, input)
	case TopicOrdersUpdated:
		status := domain.NormalizePlatformStatus(payload.FinancialStatus)
		if payload.IsCancelled() {
			status = domain.PlatformCancelled
		}
		return uc.reconcilePlatformStatus(ctx, merchant, &payload, status, input)
	default:
		return ignored("unsupported topic"), nil
	}
}

func (uc *DefaultOrderUsecase) platformOrderCreated(ctx context.Context, merchant *domain.Merchant, payload *orderdto.PlatformOrderPayload) (*orderdto.WebhookResult, error) {
	if !payload.UsesPayLater() {
		return ignored("not a paylater order"), nil
	}
	amount, ok := payload.Amount()
	if !ok || !amount.IsPositive() {
		return ignored("order has no payable amount"), nil
	}

	out, err := uc.IssuePaymentLink(ctx, &orderdto.PaymentIntentInput{
		Merchant:        merchant,
		PlatformOrderID: payload.OrderID(),
		Amount:          amount,
		Currency:        payload.CurrencyCode(),
		CustomerEmail:   payload.CustomerEmail(),
		CustomerName:    payload.CustomerName(),
	})
	if err != nil {
		return nil, err
	}
	if out.Cached {
		return &orderdto.WebhookResult{Outcome: orderdto.OutcomeIgnored, OrderID: out.OrderID, Reason: "payment link already issued"}, nil
	}
	return &orderdto.WebhookResult{Outcome: orderdto.OutcomeApplied, OrderID: out.OrderID}, nil
}

func (uc *DefaultOrderUsecase) reconcilePlatformStatus(
	ctx context.Context,
	merchant *domain.Merchant,
	payload *orderdto.PlatformOrderPayload,
	status domain.PlatformStatus,
	input *orderdto.PlatformWebhookInput,
) (*orderdto.WebhookResult, error) {
	if !status.Storable() {
		return ignored("status " + string(status) + " is not tracked"), nil
	}

	order, err := uc.OrderRepo.GetOrderByPlatformID(ctx, merchant.ID, payload.OrderID())
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return ignored("order not found"), nil
		}
		return nil, err
	}
	if order.Merchant == nil {
		order.Merchant = merchant
	}

	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = uc.now()
	}
	eventAt := payload.EventTime(receivedAt)

	applied, err := uc.OrderRepo.ApplyPlatformStatus(ctx, order.ID, eventAt, status)
	if err != nil {
		return nil, err
	}
	if !applied {
		uc.Logger.Info("platform event not applied",
			"order_id", order.ID,
			"status", status,
			"event_at", eventAt,
			"reason", domain.ErrStaleEvent,
		)
		return &orderdto.WebhookResult{Outcome: orderdto.OutcomeStale, OrderID: order.ID, Reason: domain.ErrStaleEvent.Error()}, nil
	}
	order.PlatformStatus = status
	uc.Logger.Info("platform status applied", "order_id", order.ID, "platform_status", status)

	if status == domain.PlatformCancelled {
		realigned, err := uc.OrderRepo.RealignProviderFailed(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if realigned {
			order.ProviderStatus = domain.ProviderFailed
			uc.recordTransitionMetrics("platform_cancelled")
			uc.sendCancellationOnce(ctx, order)
			uc.publish(ctx, domain.EventOrderCancelled, order)
		}
	}

	return &orderdto.WebhookResult{Outcome: orderdto.OutcomeApplied, OrderID: order.ID}, nil
}
