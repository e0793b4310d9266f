package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
	"github.com/shopspring/decimal"
)

// IssuePaymentLink returns the payment link for a platform order, creating
// the order and calling the provider at most once per (merchant, order).
func (uc *DefaultOrderUsecase) IssuePaymentLink(ctx context.Context, input *orderdto.PaymentIntentInput) (*orderdto.PaymentLinkOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Currency == "" {
		input.Currency = uc.Settings.DefaultCurrency
	}

	if out, err := uc.cachedLink(ctx, input.Merchant.ID, input.PlatformOrderID); out != nil || err != nil {
		return out, err
	}

	key := input.Merchant.ID + ":" + input.PlatformOrderID
	v, err, shared := uc.links.Do(key, func() (interface{}, error) {
		return uc.issueLocked(context.WithoutCancel(ctx), key, input)
	})
	if err != nil {
		return nil, err
	}
	out := *v.(*orderdto.PaymentLinkOutput)
	if shared {
		uc.Logger.Debug("payment link shared between callers", "key", key)
	}
	return &out, nil
}

// CreateCheckout resolves the merchant by its provider id and issues a link.
func (uc *DefaultOrderUsecase) CreateCheckout(ctx context.Context, input *orderdto.CheckoutInput) (*orderdto.PaymentLinkOutput, error) {
	if input.ProviderMerchantID == "" {
		return nil, domain.Validationf("merchantId is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(input.Amount))
	if err != nil {
		return nil, domain.Validationf("amount %q is not a number", input.Amount)
	}
	merchant, err := uc.MerchantRepo.GetMerchantByProviderID(ctx, input.ProviderMerchantID)
	if err != nil {
		return nil, err
	}
	return uc.IssuePaymentLink(ctx, &orderdto.PaymentIntentInput{
		Merchant:        merchant,
		PlatformOrderID: input.PlatformOrderID,
		Amount:          amount,
		Currency:        input.Currency,
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
	})
}

func (uc *DefaultOrderUsecase) cachedLink(ctx context.Context, merchantID, platformOrderID string) (*orderdto.PaymentLinkOutput, error) {
	existing, err := uc.OrderRepo.GetOrderByPlatformID(ctx, merchantID, platformOrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing.PaymentLink == "" {
		return nil, nil
	}
	link, err := uc.Vault.Open(existing.PaymentLink)
	if err != nil {
		return nil, fmt.Errorf("open cached payment link: %w", err)
	}
	uc.recordPaymentLinkMetrics("cached", time.Now())
	return &orderdto.PaymentLinkOutput{
		OrderID:         existing.ID,
		PaymentURL:      link,
		ProviderOrderID: existing.ProviderOrderID,
		Cached:          true,
	}, nil
}

func (uc *DefaultOrderUsecase) issueLocked(ctx context.Context, key string, input *orderdto.PaymentIntentInput) (*orderdto.PaymentLinkOutput, error) {
	if uc.Locker != nil {
		release, err := uc.Locker.Acquire(ctx, "link:"+key, uc.Settings.LockTTL)
		if err != nil {
			uc.Logger.Warn("link lease not acquired, continuing without it", "key", key, "error", err)
		} else {
			defer release()
		}
	}

	// Другой инстанс мог создать заказ, пока мы ждали блокировку
	if out, err := uc.cachedLink(ctx, input.Merchant.ID, input.PlatformOrderID); out != nil || err != nil {
		return out, err
	}

	started := time.Now()
	merchant := input.Merchant

	apiKey, err := uc.providerAPIKey(merchant)
	if err != nil {
		uc.recordPaymentLinkMetrics("error", started)
		return nil, err
	}

	link, err := uc.Provider.CreatePaymentLink(ctx, apiKey, domain.PaymentLinkRequest{
		MerchantID:         merchant.ProviderMerchantID,
		OutletID:           merchant.ProviderOutletID,
		Currency:           input.Currency,
		Amount:             input.Amount,
		OrderID:            input.PlatformOrderID,
		SuccessRedirectURL: uc.successURL(merchant),
		FailRedirectURL:    uc.failRedirectURL(input.PlatformOrderID),
	})
	if err != nil {
		uc.recordPaymentLinkMetrics("error", started)
		uc.Logger.Error("payment link request failed",
			"merchant_id", merchant.ID,
			"platform_order_id", input.PlatformOrderID,
			"error", err,
		)
		return nil, err
	}

	order := &domain.Order{
		MerchantID:      merchant.ID,
		Merchant:        merchant,
		PlatformOrderID: input.PlatformOrderID,
		ProviderOrderID: link.ProviderRef,
		PlatformStatus:  domain.PlatformPending,
		ProviderStatus:  domain.ProviderPending,
		Amount:          input.Amount,
		Currency:        input.Currency,
		PaymentLink:     link.URL,
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		CancelTimeLimit: merchant.CancelTimeLimit,
		CreatedAt:       uc.now(),
	}
	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, domain.ErrOrderExists) {
			uc.Logger.Info("order created concurrently, returning existing link",
				"merchant_id", merchant.ID,
				"platform_order_id", input.PlatformOrderID,
			)
			if out, cerr := uc.cachedLink(ctx, merchant.ID, input.PlatformOrderID); out != nil || cerr != nil {
				return out, cerr
			}
		}
		uc.recordPaymentLinkMetrics("error", started)
		return nil, fmt.Errorf("create order: %w", err)
	}
	uc.recordPaymentLinkMetrics("created", started)
	uc.recordTransitionMetrics("created")

	uc.Logger.Info("payment link issued",
		"order_id", order.ID,
		"merchant_id", merchant.ID,
		"platform_order_id", order.PlatformOrderID,
		"provider_order_id", order.ProviderOrderID,
	)

	if order.CustomerEmail != "" {
		uc.runSideEffect(ctx, "payment_link_email", order, func(ctx context.Context) error {
			return uc.Notifier.SendPaymentLink(ctx, domain.OrderNotification{
				Email:           order.CustomerEmail,
				CustomerName:    order.CustomerName,
				MerchantName:    merchant.DisplayName(),
				PlatformOrderID: order.PlatformOrderID,
				Amount:          order.Amount,
				Currency:        order.Currency,
				PaymentLink:     link.URL,
				Date:            order.CreatedAt,
			})
		})
	}
	if uc.Settings.OrderTag != "" {
		uc.runSideEffect(ctx, "platform_tag", order, func(ctx context.Context) error {
			shop, err := uc.shopFor(merchant)
			if err != nil {
				return err
			}
			return uc.Platform.TagOrder(ctx, shop, order.PlatformOrderID, uc.Settings.OrderTag)
		})
	}
	uc.publish(ctx, domain.EventOrderCreated, order)

	return &orderdto.PaymentLinkOutput{
		OrderID:         order.ID,
		PaymentURL:      link.URL,
		ProviderOrderID: order.ProviderOrderID,
	}, nil
}

func (uc *DefaultOrderUsecase) providerAPIKey(merchant *domain.Merchant) (string, error) {
	if merchant.ProviderAPIKey != "" {
		key, err := uc.Vault.Open(merchant.ProviderAPIKey)
		if err != nil {
			return "", fmt.Errorf("open provider api key: %w", err)
		}
		if key != "" {
			return key, nil
		}
	}
	if uc.Settings.ProviderAPIKey == "" {
		return "", domain.Validationf("merchant %s has no provider api key", merchant.ID)
	}
	return uc.Settings.ProviderAPIKey, nil
}
