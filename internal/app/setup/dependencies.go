package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-paylater-service/internal/config"
	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	publisher "github.com/LavaJover/shvark-paylater-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/redislock"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.PayLaterConfig
	Logger       *slog.Logger
	DB           *gorm.DB
	Vault        *vault.Vault
	Publisher    domain.OrderEventPublisher
	Locker       domain.LinkLocker
	Registry     *prometheus.Registry
	Metrics      *metrics.PayLaterMetrics
	EventLogger  logger.WebhookEventLogger
	Repositories *Repositories

	closers []func() error
}

type Repositories struct {
	OrderRepo    domain.OrderRepository
	MerchantRepo domain.MerchantRepository
}

func InitializeDependencies() (*Dependencies, error) {
	cfg := config.MustLoad()
	log := logger.New(cfg.LogConfig)
	slog.SetDefault(log)

	db := postgres.MustInitDB(cfg)
	if !cfg.OrderDB.AutoMigrate {
		if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath, log); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	opts := []vault.Option{}
	if cfg.Vault.AllowPlaintextLegacy {
		opts = append(opts, vault.WithPlaintextLegacy(log))
	}
	v, err := vault.New(cfg.Vault.EncryptionKey, opts...)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("vault: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := &Dependencies{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		Vault:       v,
		Registry:    registry,
		Metrics:     metrics.NewPayLaterMetrics(registry),
		EventLogger: logger.NewPGWebhookEventLogger(db),
		Repositories: &Repositories{
			OrderRepo:    repository.NewDefaultOrderRepository(db, v),
			MerchantRepo: repository.NewDefaultMerchantRepository(db, v),
		},
	}

	deps.Publisher = deps.initPublisher()
	if err := deps.initLocker(); err != nil {
		deps.Close()
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) initPublisher() domain.OrderEventPublisher {
	if len(d.Config.KafkaService.Brokers) == 0 {
		d.Logger.Info("kafka brokers not configured, order events are dropped")
		return publisher.NoopPublisher{}
	}
	pub := publisher.NewKafkaOrderPublisher(d.Config.KafkaService.Brokers, d.Config.KafkaService.Topic)
	d.closers = append(d.closers, pub.Close)
	return pub
}

func (d *Dependencies) initLocker() error {
	if d.Config.Redis.Addr == "" {
		d.Logger.Info("redis not configured, link issuance locks are process-local")
		d.Locker = redislock.NewLocalLocker()
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     d.Config.Redis.Addr,
		Password: d.Config.Redis.Password,
		DB:       d.Config.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis ping: %w", err)
	}
	d.closers = append(d.closers, client.Close)
	d.Locker = redislock.NewRedisLocker(client, "paylater:", d.Logger)
	return nil
}

// Close releases external connections in reverse order of creation.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Warn("failed to close dependency", "error", err)
		}
	}
	closeDB(d.DB)
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
