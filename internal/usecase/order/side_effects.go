package usecase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
)

// runSideEffect executes a best-effort external call. Failures are logged
// and counted; they never undo persisted state.
func (uc *DefaultOrderUsecase) runSideEffect(ctx context.Context, effect string, order *domain.Order, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.Settings.SideEffectTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		uc.Logger.Warn("side effect failed",
			"effect", effect,
			"order_id", order.ID,
			"merchant_id", order.MerchantID,
			"platform_order_id", order.PlatformOrderID,
			"error", err,
		)
		uc.recordSideEffectFailure(effect)
	}
}

func (uc *DefaultOrderUsecase) publish(ctx context.Context, eventType domain.OrderEventType, order *domain.Order) {
	if uc.Publisher == nil {
		return
	}
	event := domain.OrderEvent{
		Type:            eventType,
		OrderID:         order.ID,
		MerchantID:      order.MerchantID,
		PlatformOrderID: order.PlatformOrderID,
		ProviderOrderID: order.ProviderOrderID,
		PlatformStatus:  order.PlatformStatus,
		ProviderStatus:  order.ProviderStatus,
		Amount:          order.Amount.String(),
		Currency:        order.Currency,
		OccurredAt:      uc.now(),
	}
	uc.runSideEffect(ctx, "publish_"+string(eventType), order, func(ctx context.Context) error {
		return uc.Publisher.PublishOrderEvent(ctx, event)
	})
}

// merchantFor returns the order's merchant, loading it when not preloaded.
func (uc *DefaultOrderUsecase) merchantFor(ctx context.Context, order *domain.Order) (*domain.Merchant, error) {
	if order.Merchant != nil {
		return order.Merchant, nil
	}
	merchant, err := uc.MerchantRepo.GetMerchantByID(ctx, order.MerchantID)
	if err != nil {
		return nil, err
	}
	order.Merchant = merchant
	return merchant, nil
}

func (uc *DefaultOrderUsecase) shopFor(merchant *domain.Merchant) (domain.PlatformShop, error) {
	token, err := uc.Vault.Open(merchant.AccessToken)
	if err != nil {
		return domain.PlatformShop{}, fmt.Errorf("open access token: %w", err)
	}
	return domain.PlatformShop{Domain: merchant.ShopDomain, AccessToken: token}, nil
}

func (uc *DefaultOrderUsecase) notificationFor(ctx context.Context, order *domain.Order) (domain.OrderNotification, error) {
	merchant, err := uc.merchantFor(ctx, order)
	if err != nil {
		return domain.OrderNotification{}, err
	}
	link, err := uc.Vault.Open(order.PaymentLink)
	if err != nil {
		return domain.OrderNotification{}, fmt.Errorf("open payment link: %w", err)
	}
	return domain.OrderNotification{
		Email:           order.CustomerEmail,
		CustomerName:    order.CustomerName,
		MerchantName:    merchant.DisplayName(),
		PlatformOrderID: order.PlatformOrderID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		PaymentLink:     link,
		Date:            order.CreatedAt,
	}, nil
}

// sendCancellationOnce claims the cancel-email flag and sends only if the
// claim won.
func (uc *DefaultOrderUsecase) sendCancellationOnce(ctx context.Context, order *domain.Order) {
	won, err := uc.OrderRepo.MarkCancelEmailSent(ctx, order.ID)
	if err != nil {
		uc.Logger.Error("failed to claim cancellation email", "order_id", order.ID, "error", err)
		return
	}
	if !won || order.CustomerEmail == "" {
		return
	}
	uc.runSideEffect(ctx, "cancellation_email", order, func(ctx context.Context) error {
		n, err := uc.notificationFor(ctx, order)
		if err != nil {
			return err
		}
		return uc.Notifier.SendCancellation(ctx, n)
	})
}

func (uc *DefaultOrderUsecase) cancelOnPlatform(ctx context.Context, order *domain.Order) {
	uc.runSideEffect(ctx, "platform_cancel", order, func(ctx context.Context) error {
		merchant, err := uc.merchantFor(ctx, order)
		if err != nil {
			return err
		}
		shop, err := uc.shopFor(merchant)
		if err != nil {
			return err
		}
		return uc.Platform.CancelOrder(ctx, shop, order.PlatformOrderID)
	})
}

func (uc *DefaultOrderUsecase) successURL(merchant *domain.Merchant) string {
	if merchant.SuccessURL != "" {
		return merchant.SuccessURL
	}
	return uc.Settings.FrontendURL + "/pages/paylater-success"
}

func (uc *DefaultOrderUsecase) failRedirectURL(platformOrderID string) string {
	return uc.Settings.ServerURL + "/api/paylater/cancel?orderId=" + url.QueryEscape(platformOrderID)
}

func (uc *DefaultOrderUsecase) cancelledPageURL(merchant *domain.Merchant) string {
	if merchant != nil && merchant.FailURL != "" {
		return merchant.FailURL
	}
	return uc.Settings.FrontendURL + "/payment-cancelled"
}
