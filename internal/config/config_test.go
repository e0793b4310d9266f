package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
env: test
http_server:
  port: "8080"
order_db:
  dsn: "host=localhost user=paylater dbname=paylater sslmode=disable"
vault:
  encryption_key: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
paylater:
  base_url: "https://provider.example"
scheduler:
  interval: 30s
kafka-service:
  brokers: ["kafka:9092"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPServer.Port)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, 10*time.Second, cfg.PayLater.Timeout)
	assert.Equal(t, 3, cfg.PayLater.MaxAttempts)
	assert.Equal(t, "QAR", cfg.PayLater.Currency)
	assert.Equal(t, "2025-10", cfg.Platform.APIVersion)
	assert.Equal(t, "paylater-order-events", cfg.KafkaService.Topic)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaService.Brokers)
}

func TestLoadEnvOverridesSecret(t *testing.T) {
	t.Setenv("PLATFORM_WEBHOOK_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Platform.WebhookSecret)
}

func TestValidateRejectsShortKey(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	cfg.Vault.EncryptionKey = "abcd"
	assert.Error(t, cfg.Validate())
}
