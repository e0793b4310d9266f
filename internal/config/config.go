package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PayLaterConfig struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	OrderDB      `yaml:"order_db"`
	LogConfig    `yaml:"log_config"`
	Vault        `yaml:"vault"`
	PayLater     `yaml:"paylater"`
	Platform     `yaml:"platform"`
	Notifier     `yaml:"notifier"`
	KafkaService `yaml:"kafka-service"`
	Redis        `yaml:"redis"`
	Scheduler    `yaml:"scheduler"`
	URLs         `yaml:"urls"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	AdminToken      string        `yaml:"admin_token" env:"ADMIN_TOKEN"`
}

type GRPCServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"50051"`
}

type OrderDB struct {
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env-default:"migrations"`
	AutoMigrate    bool   `yaml:"auto_migrate"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

type Vault struct {
	EncryptionKey        string `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	AllowPlaintextLegacy bool   `yaml:"allow_plaintext_legacy"`
}

type PayLater struct {
	BaseURL     string        `yaml:"base_url" env:"PAYLATER_BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"PAYLATER_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	MaxAttempts int           `yaml:"max_attempts" env-default:"3"`
	BackoffBase time.Duration `yaml:"backoff_base" env-default:"1s"`
	Currency    string        `yaml:"currency" env-default:"QAR"`
	LockTTL     time.Duration `yaml:"lock_ttl" env-default:"45s"`
	// бюджет на одно побочное действие (письмо, вызов платформы, kafka)
	SideEffectTimeout time.Duration `yaml:"side_effect_timeout" env-default:"15s"`
}

type Platform struct {
	WebhookSecret string        `yaml:"webhook_secret" env:"PLATFORM_WEBHOOK_SECRET"`
	APIVersion    string        `yaml:"api_version" env-default:"2025-10"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout" env-default:"10s"`
	OrderTag      string        `yaml:"order_tag" env-default:"PayLater"`
}

type Notifier struct {
	BaseURL              string        `yaml:"base_url" env-default:"https://onesignal.com/api/v1"`
	AppID                string        `yaml:"app_id" env:"NOTIFY_APP_ID"`
	RestKey              string        `yaml:"rest_key" env:"NOTIFY_REST_KEY"`
	PaymentLinkTemplate  string        `yaml:"payment_link_template"`
	ReminderTemplate     string        `yaml:"reminder_template"`
	CancellationTemplate string        `yaml:"cancellation_template"`
	Timeout              time.Duration `yaml:"timeout" env-default:"10s"`
}

type KafkaService struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env-default:"paylater-order-events"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type Scheduler struct {
	Interval        time.Duration `yaml:"interval" env-default:"1m"`
	PerOrderTimeout time.Duration `yaml:"per_order_timeout" env-default:"30s"`
	Concurrency     int           `yaml:"concurrency" env-default:"8"`
}

type URLs struct {
	ServerURL   string `yaml:"server_url" env:"SERVER_URL"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`
}

func MustLoad() *PayLaterConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYLATER_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYLATER_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// Load reads the YAML file at path, applies env overrides and validates.
func Load(path string) (*PayLaterConfig, error) {
	var cfg PayLaterConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PayLaterConfig) Validate() error {
	key, err := hex.DecodeString(c.Vault.EncryptionKey)
	if err != nil || len(key) != 32 {
		return fmt.Errorf("vault.encryption_key must be 64 hex characters")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}
	if c.PayLater.MaxAttempts < 1 {
		return fmt.Errorf("paylater.max_attempts must be at least 1")
	}
	if c.OrderDB.Dsn == "" {
		return fmt.Errorf("order_db.dsn is required")
	}
	return nil
}
