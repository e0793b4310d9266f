package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const accessTokenHeader = "X-Shopify-Access-Token"

type Config struct {
	APIVersion string
	// BaseURL replaces https://{shop} for every store when set.
	BaseURL string
	Timeout time.Duration
}

// Client talks to the commerce platform's admin REST API on behalf of a shop.
type Client struct {
	http       *resty.Client
	apiVersion string
	baseURL    string
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2025-10"
	}
	return &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		apiVersion: cfg.APIVersion,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (c *Client) CaptureTransaction(ctx context.Context, shop domain.PlatformShop, platformOrderID string, amount decimal.Decimal, currency string) error {
	body := map[string]any{
		"transaction": map[string]any{
			"kind":     "capture",
			"status":   "success",
			"amount":   amount.StringFixed(2),
			"currency": currency,
		},
	}
	return c.do(ctx, shop, resty.MethodPost, c.orderPath(platformOrderID, "/transactions.json"), body, nil)
}

func (c *Client) UpdateFinancialStatus(ctx context.Context, shop domain.PlatformShop, platformOrderID string, status domain.PlatformStatus) error {
	body := map[string]any{
		"order": map[string]any{
			"id":               platformOrderID,
			"financial_status": string(status),
		},
	}
	return c.do(ctx, shop, resty.MethodPut, c.orderPath(platformOrderID, ".json"), body, nil)
}

func (c *Client) CancelOrder(ctx context.Context, shop domain.PlatformShop, platformOrderID string) error {
	body := map[string]any{
		"reason": "declined",
		"email":  false,
	}
	return c.do(ctx, shop, resty.MethodPost, c.orderPath(platformOrderID, "/cancel.json"), body, nil)
}

// TagOrder appends tag to the order's tag list unless it is already there.
func (c *Client) TagOrder(ctx context.Context, shop domain.PlatformShop, platformOrderID, tag string) error {
	var current struct {
		Order struct {
			Tags string `json:"tags"`
		} `json:"order"`
	}
	if err := c.do(ctx, shop, resty.MethodGet, c.orderPath(platformOrderID, ".json"), nil, &current); err != nil {
		return err
	}

	var tags []string
	for _, t := range strings.Split(current.Order.Tags, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.EqualFold(t, tag) {
			return nil
		}
		tags = append(tags, t)
	}
	tags = append(tags, tag)

	body := map[string]any{
		"order": map[string]any{
			"id":   platformOrderID,
			"tags": strings.Join(tags, ", "),
		},
	}
	return c.do(ctx, shop, resty.MethodPut, c.orderPath(platformOrderID, ".json"), body, nil)
}

func (c *Client) orderPath(platformOrderID, suffix string) string {
	return fmt.Sprintf("/admin/api/%s/orders/%s%s", c.apiVersion, url.PathEscape(platformOrderID), suffix)
}

func (c *Client) shopURL(shop domain.PlatformShop) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return "https://" + shop.Domain
}

func (c *Client) do(ctx context.Context, shop domain.PlatformShop, method, path string, body, result any) error {
	req := c.http.R().
		SetContext(ctx).
		SetHeader(accessTokenHeader, shop.AccessToken)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result).ForceContentType("application/json")
	}

	resp, err := req.Execute(method, c.shopURL(shop)+path)
	if err != nil {
		return domain.External("platform "+method+" "+path, err)
	}
	if resp.IsError() {
		return domain.External("platform "+method+" "+path,
			fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}
