package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var terminalProviderStatuses = []domain.ProviderStatus{domain.ProviderPaid, domain.ProviderFailed}

type DefaultOrderRepository struct {
	DB    *gorm.DB
	Vault domain.SecretVault
}

func NewDefaultOrderRepository(db *gorm.DB, vault domain.SecretVault) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db, Vault: vault}
}

// CreateOrder inserts a new order in (pending, pending). A clash on
// (platform order id, merchant) or provider order id yields domain.ErrOrderExists.
func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.PlatformStatus == "" {
		order.PlatformStatus = domain.PlatformPending
	}
	if order.ProviderStatus == "" {
		order.ProviderStatus = domain.ProviderPending
	}

	model := mappers.ToGORMOrder(order)
	var err error
	if model.PaymentLink, err = r.Vault.SealIfNeeded(order.PaymentLink); err != nil {
		return fmt.Errorf("seal payment link: %w", err)
	}
	if model.ProviderTransactionID, err = r.Vault.SealIfNeeded(order.ProviderTransactionID); err != nil {
		return fmt.Errorf("seal transaction id: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrOrderExists
		}
		return err
	}

	order.PaymentLink = model.PaymentLink
	order.ProviderTransactionID = model.ProviderTransactionID
	order.CreatedAt, order.UpdatedAt = model.CreatedAt, model.UpdatedAt
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.first(r.withMerchant(ctx).Where("orders.id = ?", orderID))
}

func (r *DefaultOrderRepository) GetOrderByPlatformID(ctx context.Context, merchantID, platformOrderID string) (*domain.Order, error) {
	return r.first(r.withMerchant(ctx).
		Where("orders.merchant_id = ? AND orders.platform_order_id = ?", merchantID, platformOrderID))
}

func (r *DefaultOrderRepository) GetOrderByProviderID(ctx context.Context, merchantID, providerOrderID string) (*domain.Order, error) {
	return r.first(r.withMerchant(ctx).
		Where("orders.merchant_id = ? AND orders.provider_order_id = ?", merchantID, providerOrderID))
}

// FindOrderByPlatformID looks an order up without knowing its merchant.
// The most recent order wins when several merchants share the id.
func (r *DefaultOrderRepository) FindOrderByPlatformID(ctx context.Context, platformOrderID string) (*domain.Order, error) {
	return r.first(r.withMerchant(ctx).
		Where("orders.platform_order_id = ?", platformOrderID).
		Order("orders.created_at DESC"))
}

func (r *DefaultOrderRepository) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.withMerchant(ctx).
		Where("orders.provider_status = ?", domain.ProviderPending).
		Order("orders.created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, nil
}

func (r *DefaultOrderRepository) ApplyIfNewer(ctx context.Context, orderID string, eventAt time.Time, upd domain.ProviderUpdate) (bool, error) {
	values := map[string]any{
		"provider_status": upd.ProviderStatus,
		"last_webhook_at": eventAt.UnixMilli(),
		"last_webhook_id": upd.WebhookID,
	}
	if upd.PlatformStatus != nil {
		values["platform_status"] = *upd.PlatformStatus
		values["last_platform_event_at"] = laterMillis("last_platform_event_at", eventAt)
	}
	if upd.ProviderTransactionID != nil {
		sealed, err := r.Vault.SealIfNeeded(*upd.ProviderTransactionID)
		if err != nil {
			return false, fmt.Errorf("seal transaction id: %w", err)
		}
		values["provider_transaction_id"] = sealed
	}
	if upd.ProviderPaymentDate != nil {
		values["provider_payment_date"] = *upd.ProviderPaymentDate
	}
	if upd.ProviderComments != nil {
		values["provider_comments"] = *upd.ProviderComments
	}

	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		return q.
			Where("(last_webhook_at IS NULL OR last_webhook_at < ?)", eventAt.UnixMilli()).
			Where("provider_status NOT IN ?", terminalProviderStatuses)
	})
}

func (r *DefaultOrderRepository) ApplyPlatformStatus(ctx context.Context, orderID string, eventAt time.Time, status domain.PlatformStatus) (bool, error) {
	if !status.Storable() {
		return false, domain.Validationf("platform status %q cannot be stored", status)
	}
	values := map[string]any{
		"platform_status":        status,
		"last_platform_event_at": eventAt.UnixMilli(),
	}
	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		q = q.Where("(last_platform_event_at IS NULL OR last_platform_event_at < ?)", eventAt.UnixMilli())
		if !status.AllowedAfterTerminal() {
			// завершённый платёж: откат статуса платформы запрещён
			q = q.Where("provider_status NOT IN ?", terminalProviderStatuses)
		}
		return q
	})
}

// laterMillis keeps the larger of the stored column and eventAt.
func laterMillis(column string, eventAt time.Time) clause.Expr {
	ms := eventAt.UnixMilli()
	return gorm.Expr("CASE WHEN "+column+" IS NULL OR "+column+" < ? THEN ? ELSE "+column+" END", ms, ms)
}

// RealignProviderFailed moves a non-terminal payment track to failed.
func (r *DefaultOrderRepository) RealignProviderFailed(ctx context.Context, orderID string) (bool, error) {
	values := map[string]any{"provider_status": domain.ProviderFailed}
	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		return q.Where("provider_status NOT IN ?", terminalProviderStatuses)
	})
}

func (r *DefaultOrderRepository) MarkHalfTimeReminderSent(ctx context.Context, orderID string) (bool, error) {
	values := map[string]any{"half_time_reminder_sent": true}
	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		return q.Where("half_time_reminder_sent = ? AND provider_status = ?", false, domain.ProviderPending)
	})
}

func (r *DefaultOrderRepository) MarkCancelEmailSent(ctx context.Context, orderID string) (bool, error) {
	values := map[string]any{"cancel_email_sent": true}
	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		return q.Where("cancel_email_sent = ?", false)
	})
}

// MarkExpired is the scheduler's auto-cancel: it wins only while the order is
// still pending on the provider side and not yet cancelled.
func (r *DefaultOrderRepository) MarkExpired(ctx context.Context, orderID string) (bool, error) {
	values := map[string]any{
		"cancelled":       true,
		"platform_status": domain.PlatformCancelled,
		"provider_status": domain.ProviderFailed,
	}
	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		return q.Where("cancelled = ? AND provider_status = ?", false, domain.ProviderPending)
	})
}

// CancelByRedirect cancels an order the customer walked away from. Paid
// orders and orders already cancelled on the platform are left alone.
func (r *DefaultOrderRepository) CancelByRedirect(ctx context.Context, orderID string) (bool, error) {
	values := map[string]any{
		"cancelled":       true,
		"platform_status": domain.PlatformCancelled,
		"provider_status": domain.ProviderFailed,
	}
	return r.conditional(ctx, orderID, values, func(q *gorm.DB) *gorm.DB {
		return q.Where("cancelled = ? AND platform_status <> ? AND provider_status <> ?",
			false, domain.PlatformCancelled, domain.ProviderPaid)
	})
}

// conditional runs a single guarded UPDATE and reports whether a row changed.
func (r *DefaultOrderRepository) conditional(ctx context.Context, orderID string, values map[string]any, guard func(*gorm.DB) *gorm.DB) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", orderID)
	res := guard(q).Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultOrderRepository) withMerchant(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&models.OrderModel{}).Preload("Merchant")
}

func (r *DefaultOrderRepository) first(q *gorm.DB) (*domain.Order, error) {
	var model models.OrderModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}
