package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/go-resty/resty/v2"
)

type Config struct {
	BaseURL              string
	AppID                string
	RestKey              string
	PaymentLinkTemplate  string
	ReminderTemplate     string
	CancellationTemplate string
	Timeout              time.Duration
}

// EmailNotifier sends templated customer emails through the push/email
// service's notifications endpoint.
type EmailNotifier struct {
	http   *resty.Client
	cfg    Config
	logger *slog.Logger
}

func NewEmailNotifier(cfg Config, logger *slog.Logger) *EmailNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &EmailNotifier{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Authorization", "Basic "+cfg.RestKey),
		cfg:    cfg,
		logger: logger,
	}
}

func (n *EmailNotifier) SendPaymentLink(ctx context.Context, msg domain.OrderNotification) error {
	if msg.Status == "" {
		msg.Status = "Pending"
	}
	return n.send(ctx, n.cfg.PaymentLinkTemplate, msg)
}

func (n *EmailNotifier) SendExpiryReminder(ctx context.Context, msg domain.OrderNotification) error {
	if msg.Status == "" {
		msg.Status = "Pending"
	}
	return n.send(ctx, n.cfg.ReminderTemplate, msg)
}

func (n *EmailNotifier) SendCancellation(ctx context.Context, msg domain.OrderNotification) error {
	if msg.Status == "" {
		msg.Status = "Cancelled"
	}
	return n.send(ctx, n.cfg.CancellationTemplate, msg)
}

func (n *EmailNotifier) send(ctx context.Context, templateID string, msg domain.OrderNotification) error {
	if msg.Email == "" {
		return nil
	}
	if templateID == "" {
		n.logger.Debug("notification template not configured, skipping", "order", msg.PlatformOrderID)
		return nil
	}

	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}
	payload := notificationPayload{
		AppID:              n.cfg.AppID,
		TemplateID:         templateID,
		IncludeEmailTokens: []string{msg.Email},
		CustomData: customData{
			User: userData{FullName: msg.CustomerName},
			Order: orderData{
				OrderID:       msg.PlatformOrderID,
				MerchantName:  msg.MerchantName,
				Date:          date.UTC().Format("2006-01-02 15:04"),
				Amount:        msg.Amount.StringFixed(2),
				Currency:      msg.Currency,
				RemainingTime: msg.RemainingMinutes,
				PaymentLink:   msg.PaymentLink,
				Status:        msg.Status,
			},
		},
	}

	var out notificationResponse
	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/notifications")
	if err != nil {
		return domain.External("send notification", err)
	}
	if resp.IsError() {
		return domain.External("send notification", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	if out.Errors != nil {
		return domain.External("send notification", fmt.Errorf("rejected: %v", out.Errors))
	}
	return nil
}
