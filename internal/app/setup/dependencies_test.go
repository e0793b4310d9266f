package setup

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/LavaJover/shvark-paylater-service/internal/config"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDependencies(t *testing.T, buf *bytes.Buffer) *Dependencies {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return &Dependencies{
		Config: &config.PayLaterConfig{},
		Logger: slog.New(slog.NewTextHandler(buf, nil)),
		DB:     db,
	}
}

func TestCloseRunsClosersInReverseAndClosesDB(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDependencies(t, &buf)

	var closed []string
	d.closers = append(d.closers,
		func() error { closed = append(closed, "kafka"); return nil },
		func() error { closed = append(closed, "redis"); return errors.New("redis gone") },
	)
	d.Close()

	assert.Equal(t, []string{"redis", "kafka"}, closed)
	assert.Contains(t, buf.String(), "failed to close dependency")
	assert.Contains(t, buf.String(), "redis gone")

	sqlDB, err := d.DB.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestInitLockerFallsBackToLocal(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDependencies(t, &buf)
	defer d.Close()

	require.NoError(t, d.initLocker())
	assert.IsType(t, &redislock.LocalLocker{}, d.Locker)
	assert.Empty(t, d.closers)
}

func TestInitLockerUnreachableRedis(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDependencies(t, &buf)
	defer d.Close()
	d.Config.Redis.Addr = "127.0.0.1:1"

	err := d.initLocker()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
	assert.Nil(t, d.Locker)
	assert.Empty(t, d.closers)
}
