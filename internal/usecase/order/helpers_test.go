package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/vault"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var t0 = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type fakeProvider struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (p *fakeProvider) CreatePaymentLink(ctx context.Context, apiKey string, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	n := p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &domain.PaymentLink{
		URL:         fmt.Sprintf("https://pay.example/%s/%d", req.OrderID, n),
		ProviderRef: fmt.Sprintf("PL-%s-%d", req.OrderID, n),
	}, nil
}

type fakePlatform struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *fakePlatform) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	return p.err
}

func (p *fakePlatform) count(prefix string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (p *fakePlatform) CaptureTransaction(ctx context.Context, shop domain.PlatformShop, platformOrderID string, amount decimal.Decimal, currency string) error {
	return p.record("capture:" + platformOrderID + ":" + amount.StringFixed(2))
}

func (p *fakePlatform) UpdateFinancialStatus(ctx context.Context, shop domain.PlatformShop, platformOrderID string, status domain.PlatformStatus) error {
	return p.record("status:" + platformOrderID + ":" + string(status))
}

func (p *fakePlatform) CancelOrder(ctx context.Context, shop domain.PlatformShop, platformOrderID string) error {
	if shop.AccessToken != "shpat_token" {
		return errors.New("bad access token")
	}
	return p.record("cancel:" + platformOrderID)
}

func (p *fakePlatform) TagOrder(ctx context.Context, shop domain.PlatformShop, platformOrderID, tag string) error {
	return p.record("tag:" + platformOrderID + ":" + tag)
}

type fakeNotifier struct {
	mu            sync.Mutex
	links         []domain.OrderNotification
	reminders     []domain.OrderNotification
	cancellations []domain.OrderNotification
	err           error
}

func (n *fakeNotifier) SendPaymentLink(ctx context.Context, msg domain.OrderNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links = append(n.links, msg)
	return n.err
}

func (n *fakeNotifier) SendExpiryReminder(ctx context.Context, msg domain.OrderNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, msg)
	return n.err
}

func (n *fakeNotifier) SendCancellation(ctx context.Context, msg domain.OrderNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancellations = append(n.cancellations, msg)
	return n.err
}

func (n *fakeNotifier) counts() (links, reminders, cancellations int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.links), len(n.reminders), len(n.cancellations)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) types() []domain.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	vault     *vault.Vault
	orders    *repository.DefaultOrderRepository
	merchants *repository.DefaultMerchantRepository
	merchant  *domain.Merchant

	provider  *fakeProvider
	platform  *fakePlatform
	notifier  *fakeNotifier
	publisher *fakePublisher
	clock     *testClock
	uc        *DefaultOrderUsecase
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:uc_%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, postgres.AutoMigrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	v, err := vault.New(testKey)
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		vault:     v,
		orders:    repository.NewDefaultOrderRepository(db, v),
		merchants: repository.NewDefaultMerchantRepository(db, v),
		provider:  &fakeProvider{},
		platform:  &fakePlatform{},
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		clock:     &testClock{now: t0},
		merchant: &domain.Merchant{
			ShopDomain:         "demo.myshop.test",
			Name:               "Demo Shop",
			AccessToken:        "shpat_token",
			ProviderAPIKey:     "pk_merchant",
			WebhookSecret:      "whsec_test",
			ProviderMerchantID: "138",
			ProviderOutletID:   "7",
			CancelTimeLimit:    10,
		},
	}
	require.NoError(t, f.merchants.SaveMerchant(context.Background(), f.merchant))
	f.uc = f.newUsecase(nil)
	return f
}

func (f *fixture) newUsecase(locker domain.LinkLocker) *DefaultOrderUsecase {
	uc := NewDefaultOrderUsecase(Dependencies{
		OrderRepo:    f.orders,
		MerchantRepo: f.merchants,
		Vault:        f.vault,
		Provider:     f.provider,
		Platform:     f.platform,
		Notifier:     f.notifier,
		Publisher:    f.publisher,
		Locker:       locker,
		Metrics:      metrics.NewPayLaterMetrics(prometheus.NewRegistry()),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Settings{
		PlatformWebhookSecret: "platform_secret",
		ProviderAPIKey:        "pk_global",
		ServerURL:             "https://api.example",
		FrontendURL:           "https://shop.example",
		SideEffectTimeout:     time.Second,
		PerOrderTimeout:       time.Second,
	})
	uc.Now = f.clock.Now
	return uc
}

// issue creates an order through the use case at the current clock time.
func (f *fixture) issue(t *testing.T, platformOrderID string) *orderdto.PaymentLinkOutput {
	t.Helper()
	out, err := f.uc.IssuePaymentLink(context.Background(), &orderdto.PaymentIntentInput{
		Merchant:        f.merchant,
		PlatformOrderID: platformOrderID,
		Amount:          decimal.RequireFromString("250.00"),
		CustomerEmail:   "buyer@example.com",
		CustomerName:    "Sara Ali",
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) reload(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	o, err := f.orders.GetOrderByID(context.Background(), orderID)
	require.NoError(t, err)
	return o
}
