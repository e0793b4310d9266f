package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/metrics"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
	"golang.org/x/sync/singleflight"
)

type OrderUsecase interface {
	IssuePaymentLink(ctx context.Context, input *orderdto.PaymentIntentInput) (*orderdto.PaymentLinkOutput, error)
	CreateCheckout(ctx context.Context, input *orderdto.CheckoutInput) (*orderdto.PaymentLinkOutput, error)

	HandleProviderWebhook(ctx context.Context, input *orderdto.ProviderWebhookInput) (*orderdto.WebhookResult, error)
	HandlePlatformWebhook(ctx context.Context, input *orderdto.PlatformWebhookInput) (*orderdto.WebhookResult, error)
	CancelByRedirect(ctx context.Context, platformOrderID string) (*orderdto.CancelRedirectOutput, error)

	RunExpirySweep(ctx context.Context) error
	ProcessExpiry(ctx context.Context, order *domain.Order) error
}

type Settings struct {
	PlatformWebhookSecret string
	ProviderAPIKey        string
	DefaultCurrency       string
	ServerURL             string
	FrontendURL           string
	OrderTag              string
	LockTTL               time.Duration
	SideEffectTimeout     time.Duration
	SweepConcurrency      int
	PerOrderTimeout       time.Duration
}

func (s *Settings) applyDefaults() {
	if s.DefaultCurrency == "" {
		s.DefaultCurrency = domain.DefaultCurrency
	}
	if s.OrderTag == "" {
		s.OrderTag = "PayLater"
	}
	if s.LockTTL <= 0 {
		s.LockTTL = 45 * time.Second
	}
	if s.SideEffectTimeout <= 0 {
		s.SideEffectTimeout = 15 * time.Second
	}
	if s.SweepConcurrency <= 0 {
		s.SweepConcurrency = 8
	}
	if s.PerOrderTimeout <= 0 {
		s.PerOrderTimeout = 30 * time.Second
	}
}

type Dependencies struct {
	OrderRepo    domain.OrderRepository
	MerchantRepo domain.MerchantRepository
	Vault        domain.SecretVault
	Provider     domain.PaymentLinkProvider
	Platform     domain.PlatformClient
	Notifier     domain.CustomerNotifier
	Publisher    domain.OrderEventPublisher
	Locker       domain.LinkLocker
	Metrics      *metrics.PayLaterMetrics
	Logger       *slog.Logger
}

type DefaultOrderUsecase struct {
	OrderRepo    domain.OrderRepository
	MerchantRepo domain.MerchantRepository
	Vault        domain.SecretVault
	Provider     domain.PaymentLinkProvider
	Platform     domain.PlatformClient
	Notifier     domain.CustomerNotifier
	Publisher    domain.OrderEventPublisher
	Locker       domain.LinkLocker
	Metrics      *metrics.PayLaterMetrics
	Logger       *slog.Logger
	Settings     Settings

	// Now is the clock used for order ages; tests replace it.
	Now func() time.Time

	links singleflight.Group
}

func NewDefaultOrderUsecase(deps Dependencies, settings Settings) *DefaultOrderUsecase {
	settings.applyDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultOrderUsecase{
		OrderRepo:    deps.OrderRepo,
		MerchantRepo: deps.MerchantRepo,
		Vault:        deps.Vault,
		Provider:     deps.Provider,
		Platform:     deps.Platform,
		Notifier:     deps.Notifier,
		Publisher:    deps.Publisher,
		Locker:       deps.Locker,
		Metrics:      deps.Metrics,
		Logger:       logger,
		Settings:     settings,
		Now:          time.Now,
	}
}

func (uc *DefaultOrderUsecase) now() time.Time {
	return uc.Now().UTC()
}
