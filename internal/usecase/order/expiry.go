package usecase

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// RunExpirySweep evaluates every provider-pending order once. Orders run
// independently under their own timeout; a failing order is logged and does
// not stop the others. When ctx is cancelled orders already running finish
// and no new ones are started.
func (uc *DefaultOrderUsecase) RunExpirySweep(ctx context.Context) error {
	started := time.Now()

	orders, err := uc.OrderRepo.ListPendingOrders(ctx)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}

	var (
		g       errgroup.Group
		skipped atomic.Int64
	)
	g.SetLimit(uc.Settings.SweepConcurrency)

	for _, order := range orders {
		if ctx.Err() != nil {
			skipped.Add(1)
			continue
		}
		g.Go(func() error {
			// g.Go мог ждать свободный слот, пока ctx отменили
			if ctx.Err() != nil {
				skipped.Add(1)
				return nil
			}
			uc.processOne(ctx, order)
			return nil
		})
	}
	_ = g.Wait()

	if n := skipped.Load(); n > 0 {
		uc.Logger.Info("expiry sweep interrupted", "skipped", n, "orders", len(orders))
	}

	uc.recordSweepMetrics(started, len(orders))
	uc.Logger.Debug("expiry sweep finished", "orders", len(orders), "took", time.Since(started))
	return nil
}

func (uc *DefaultOrderUsecase) processOne(parent context.Context, order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), uc.Settings.PerOrderTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			uc.Logger.Error("panic while processing order expiry", "order_id", order.ID, "panic", r)
		}
	}()

	if err := uc.ProcessExpiry(ctx, order); err != nil {
		uc.Logger.Error("failed to process order expiry", "order_id", order.ID, "error", err)
	}
}

// ProcessExpiry applies the reminder or auto-cancel transition to one order
// based on its age against the cancel time limit.
func (uc *DefaultOrderUsecase) ProcessExpiry(ctx context.Context, order *domain.Order) error {
	if order.ProviderStatus != domain.ProviderPending {
		return nil
	}

	limit := time.Duration(order.EffectiveCancelTimeLimit()) * time.Minute
	age := uc.now().Sub(order.CreatedAt)

	switch {
	case age >= limit:
		return uc.expire(ctx, order)
	case age >= limit/2 && !order.HalfTimeReminderSent:
		return uc.remind(ctx, order, limit-age)
	}
	return nil
}

func (uc *DefaultOrderUsecase) expire(ctx context.Context, order *domain.Order) error {
	won, err := uc.OrderRepo.MarkExpired(ctx, order.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	order.Cancelled = true
	order.PlatformStatus = domain.PlatformCancelled
	order.ProviderStatus = domain.ProviderFailed

	uc.Logger.Info("order expired", "order_id", order.ID, "platform_order_id", order.PlatformOrderID)
	uc.recordTransitionMetrics("expired")

	uc.cancelOnPlatform(ctx, order)
	uc.sendCancellationOnce(ctx, order)
	uc.publish(ctx, domain.EventOrderExpired, order)
	return nil
}

func (uc *DefaultOrderUsecase) remind(ctx context.Context, order *domain.Order, remaining time.Duration) error {
	won, err := uc.OrderRepo.MarkHalfTimeReminderSent(ctx, order.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	order.HalfTimeReminderSent = true
	minutes := int(math.Ceil(remaining.Minutes()))

	uc.Logger.Info("half-time reminder due", "order_id", order.ID, "remaining_minutes", minutes)
	uc.recordTransitionMetrics("reminder")

	if order.CustomerEmail != "" {
		uc.runSideEffect(ctx, "reminder_email", order, func(ctx context.Context) error {
			n, err := uc.notificationFor(ctx, order)
			if err != nil {
				return err
			}
			n.RemainingMinutes = minutes
			return uc.Notifier.SendExpiryReminder(ctx, n)
		})
	}
	uc.publish(ctx, domain.EventOrderReminder, order)
	return nil
}
