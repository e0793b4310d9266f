package paylater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/go-resty/resty/v2"
)

const createLinkPath = "/api/paylater/merchant-portal/web-checkout/"

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// Client creates payment links on the PayLater provider. Each attempt is
// bounded by Timeout; failed attempts are retried with linear backoff.
type Client struct {
	http        *resty.Client
	maxAttempts int
	backoffBase time.Duration
	logger      *slog.Logger

	// OnAttempt is called after every provider call with "ok", "retry" or "error".
	OnAttempt func(outcome string)
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:        httpClient,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		logger:      logger,
	}
}

type createLinkRequest struct {
	MerchantID         string      `json:"merchantId"`
	OutletID           string      `json:"outletId"`
	Currency           string      `json:"currency"`
	Amount             json.Number `json:"amount"`
	OrderID            string      `json:"orderId"`
	SuccessRedirectURL string      `json:"successRedirectUrl"`
	FailRedirectURL    string      `json:"failRedirectUrl"`
}

type createLinkResponse struct {
	PaymentLinkURL string `json:"paymentLinkUrl"`
	PaylaterRef    string `json:"paylaterRef"`
	Message        string `json:"message"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code >= http.StatusInternalServerError || e.code == http.StatusTooManyRequests
}

func (c *Client) CreatePaymentLink(ctx context.Context, apiKey string, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	body := createLinkRequest{
		MerchantID:         req.MerchantID,
		OutletID:           req.OutletID,
		Currency:           req.Currency,
		Amount:             json.Number(req.Amount.String()),
		OrderID:            req.OrderID,
		SuccessRedirectURL: req.SuccessRedirectURL,
		FailRedirectURL:    req.FailRedirectURL,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		link, err := c.createOnce(ctx, apiKey, body)
		if err == nil {
			c.attempt("ok")
			return link, nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			c.attempt("error")
			break
		}
		if attempt == c.maxAttempts {
			c.attempt("error")
			break
		}
		c.attempt("retry")
		c.logger.Warn("paylater create link attempt failed",
			"order_id", req.OrderID, "attempt", attempt, "error", err)

		// линейная задержка между попытками
		select {
		case <-ctx.Done():
			return nil, domain.External("create payment link", ctx.Err())
		case <-time.After(time.Duration(attempt) * c.backoffBase):
		}
	}

	return nil, domain.External("create payment link", lastErr)
}

func (c *Client) createOnce(ctx context.Context, apiKey string, body createLinkRequest) (*domain.PaymentLink, error) {
	var out createLinkResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", apiKey).
		SetBody(body).
		SetResult(&out).
		ForceContentType("application/json").
		Post(createLinkPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &statusError{code: resp.StatusCode(), body: truncate(resp.String(), 512)}
	}
	if out.PaymentLinkURL == "" {
		return nil, fmt.Errorf("provider response has no paymentLinkUrl")
	}

	ref := out.PaylaterRef
	if ref == "" {
		ref = body.OrderID
	}
	return &domain.PaymentLink{URL: out.PaymentLinkURL, ProviderRef: ref}, nil
}

func (c *Client) attempt(outcome string) {
	if c.OnAttempt != nil {
		c.OnAttempt(outcome)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
