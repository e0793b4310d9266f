package usecase

import (
	"context"
	"strings"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
)

// CancelByRedirect handles the customer coming back from the provider's fail
// redirect. It is idempotent: an already cancelled order redirects at once.
func (uc *DefaultOrderUsecase) CancelByRedirect(ctx context.Context, platformOrderID string) (*orderdto.CancelRedirectOutput, error) {
	platformOrderID = strings.TrimSpace(platformOrderID)
	if platformOrderID == "" {
		return nil, domain.Validationf("orderId is required")
	}

	order, err := uc.OrderRepo.FindOrderByPlatformID(ctx, platformOrderID)
	if err != nil {
		return nil, err
	}
	merchant, err := uc.merchantFor(ctx, order)
	if err != nil {
		uc.Logger.Warn("merchant for cancelled order not loaded", "order_id", order.ID, "error", err)
		merchant = nil
	}
	out := &orderdto.CancelRedirectOutput{RedirectURL: uc.cancelledPageURL(merchant)}

	if order.Cancelled || order.PlatformStatus == domain.PlatformCancelled {
		return out, nil
	}

	won, err := uc.OrderRepo.CancelByRedirect(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return out, nil
	}

	order.Cancelled = true
	order.PlatformStatus = domain.PlatformCancelled
	order.ProviderStatus = domain.ProviderFailed
	out.Cancelled = true

	uc.Logger.Info("order cancelled by customer redirect", "order_id", order.ID, "platform_order_id", order.PlatformOrderID)
	uc.recordTransitionMetrics("redirect_cancelled")

	uc.cancelOnPlatform(ctx, order)
	uc.sendCancellationOnce(ctx, order)
	uc.publish(ctx, domain.EventOrderCancelled, order)

	return out, nil
}
