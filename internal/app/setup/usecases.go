package setup

import (
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/paylater"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/platform"
	"github.com/LavaJover/shvark-paylater-service/internal/usecase"
	orderusecase "github.com/LavaJover/shvark-paylater-service/internal/usecase/order"
)

type UseCases struct {
	OrderUsecase    orderusecase.OrderUsecase
	MerchantUsecase usecase.MerchantUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config

	provider := paylater.NewClient(paylater.Config{
		BaseURL:     cfg.PayLater.BaseURL,
		Timeout:     cfg.PayLater.Timeout,
		MaxAttempts: cfg.PayLater.MaxAttempts,
		BackoffBase: cfg.PayLater.BackoffBase,
	}, deps.Logger)
	provider.OnAttempt = deps.Metrics.RecordProviderAttempt

	platformClient := platform.NewClient(platform.Config{
		APIVersion: cfg.Platform.APIVersion,
		BaseURL:    cfg.Platform.BaseURL,
		Timeout:    cfg.Platform.Timeout,
	})

	emailNotifier := notifier.NewEmailNotifier(notifier.Config{
		BaseURL:              cfg.Notifier.BaseURL,
		AppID:                cfg.Notifier.AppID,
		RestKey:              cfg.Notifier.RestKey,
		PaymentLinkTemplate:  cfg.Notifier.PaymentLinkTemplate,
		ReminderTemplate:     cfg.Notifier.ReminderTemplate,
		CancellationTemplate: cfg.Notifier.CancellationTemplate,
		Timeout:              cfg.Notifier.Timeout,
	}, deps.Logger)

	orderUsecase := orderusecase.NewDefaultOrderUsecase(orderusecase.Dependencies{
		OrderRepo:    deps.Repositories.OrderRepo,
		MerchantRepo: deps.Repositories.MerchantRepo,
		Vault:        deps.Vault,
		Provider:     provider,
		Platform:     platformClient,
		Notifier:     emailNotifier,
		Publisher:    deps.Publisher,
		Locker:       deps.Locker,
		Metrics:      deps.Metrics,
		Logger:       deps.Logger,
	}, orderusecase.Settings{
		PlatformWebhookSecret: cfg.Platform.WebhookSecret,
		ProviderAPIKey:        cfg.PayLater.APIKey,
		DefaultCurrency:       cfg.PayLater.Currency,
		ServerURL:             cfg.URLs.ServerURL,
		FrontendURL:           cfg.URLs.FrontendURL,
		OrderTag:              cfg.Platform.OrderTag,
		LockTTL:               cfg.PayLater.LockTTL,
		SideEffectTimeout:     cfg.PayLater.SideEffectTimeout,
		SweepConcurrency:      cfg.Scheduler.Concurrency,
		PerOrderTimeout:       cfg.Scheduler.PerOrderTimeout,
	})

	return &UseCases{
		OrderUsecase:    orderUsecase,
		MerchantUsecase: usecase.NewDefaultMerchantUsecase(deps.Repositories.MerchantRepo),
	}, nil
}
