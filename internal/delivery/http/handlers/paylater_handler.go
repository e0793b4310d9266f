package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/logger"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
	usecase "github.com/LavaJover/shvark-paylater-service/internal/usecase/order"
	"github.com/jaevor/go-nanoid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderPlatformHMAC      = "X-Shopify-Hmac-Sha256"
	HeaderPlatformShop      = "X-Shopify-Shop-Domain"
	HeaderPlatformTopic     = "X-Shopify-Topic"
	HeaderPlatformWebhookID = "X-Shopify-Webhook-Id"
)

const maxWebhookBody = 1 << 20

type PayLaterHandler struct {
	orderUsecase usecase.OrderUsecase
	events       logger.WebhookEventLogger
	logger       *slog.Logger
	// страница, куда уводим покупателя, если отмена упала
	fallbackCancelURL string
	newID             func() string
}

func NewPayLaterHandler(orderUsecase usecase.OrderUsecase, events logger.WebhookEventLogger, log *slog.Logger, fallbackCancelURL string) (*PayLaterHandler, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}
	return &PayLaterHandler{
		orderUsecase:      orderUsecase,
		events:            events,
		logger:            log,
		fallbackCancelURL: fallbackCancelURL,
		newID:             idGenerator,
	}, nil
}

// ProviderWebhook handles POST /api/webhooks/paylater.
func (h *PayLaterHandler) ProviderWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	receivedAt := time.Now().UTC()

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody)
	var req request.ProviderWebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid json body"})
	}
	input := req.ToInput()

	res, err := h.orderUsecase.HandleProviderWebhook(ctx, input)

	event := logger.WebhookEvent{
		Source:      logger.SourceProvider,
		ExternalID:  input.TxHash,
		Topic:       input.Status,
		MerchantRef: input.MerchantID,
		OrderRef:    input.OrderID,
		ReceivedAt:  receivedAt,
	}
	if err != nil {
		event.Outcome, event.Error = outcomeOf(err), err.Error()
		h.audit(ctx, event)
		if errorStatus(err) == http.StatusInternalServerError {
			h.logger.Error("provider webhook failed", "order_id", input.OrderID, "error", err)
		}
		return writeError(c, err)
	}
	event.Outcome = string(res.Outcome)
	h.audit(ctx, event)

	return c.JSON(http.StatusOK, response.WebhookResponse{
		Status:  string(res.Outcome),
		OrderID: res.OrderID,
		Reason:  res.Reason,
	})
}

// PlatformWebhook handles POST /api/webhooks/platform. The HMAC covers the
// raw body, so it is read before any decoding.
func (h *PayLaterHandler) PlatformWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	header := c.Request().Header

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "unreadable body"})
	}

	input := &orderdto.PlatformWebhookInput{
		ShopDomain: header.Get(HeaderPlatformShop),
		Topic:      header.Get(HeaderPlatformTopic),
		WebhookID:  header.Get(HeaderPlatformWebhookID),
		HMAC:       header.Get(HeaderPlatformHMAC),
		RawBody:    body,
		ReceivedAt: time.Now().UTC(),
	}
	if input.WebhookID == "" {
		input.WebhookID = h.newID()
	}

	res, err := h.orderUsecase.HandlePlatformWebhook(ctx, input)

	event := logger.WebhookEvent{
		Source:      logger.SourcePlatform,
		ExternalID:  input.WebhookID,
		Topic:       input.Topic,
		MerchantRef: input.ShopDomain,
		ReceivedAt:  input.ReceivedAt,
	}
	if err != nil {
		event.Outcome, event.Error = outcomeOf(err), err.Error()
		h.audit(ctx, event)
		if errorStatus(err) == http.StatusForbidden {
			return c.JSON(http.StatusForbidden, response.ErrorResponse{Error: domain.ErrSignatureInvalid.Error()})
		}
		// остальное отдаём 500, платформа повторит доставку
		h.logger.Error("platform webhook failed", "shop", input.ShopDomain, "topic", input.Topic, "error", err)
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "internal error"})
	}
	event.OrderRef, event.Outcome = res.OrderID, string(res.Outcome)
	h.audit(ctx, event)

	return c.JSON(http.StatusOK, response.WebhookResponse{
		Status:  string(res.Outcome),
		OrderID: res.OrderID,
		Reason:  res.Reason,
	})
}

// CancelRedirect handles GET /api/paylater/cancel?orderId=.
func (h *PayLaterHandler) CancelRedirect(c echo.Context) error {
	out, err := h.orderUsecase.CancelByRedirect(c.Request().Context(), c.QueryParam("orderId"))
	if err != nil {
		switch errorStatus(err) {
		case http.StatusBadRequest, http.StatusNotFound:
			return writeError(c, err)
		}
		h.logger.Error("cancel redirect failed", "order_id", c.QueryParam("orderId"), "error", err)
		return c.Redirect(http.StatusFound, h.fallbackCancelURL)
	}
	return c.Redirect(http.StatusFound, out.RedirectURL)
}

// Checkout handles POST /api/orders.
func (h *PayLaterHandler) Checkout(c echo.Context) error {
	var req request.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
	}

	out, err := h.orderUsecase.CreateCheckout(c.Request().Context(), req.ToInput())
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			h.logger.Error("checkout failed", "order_id", req.OrderID.String(), "error", err)
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, response.CheckoutResponse{
		OrderID:         out.OrderID,
		PaymentURL:      out.PaymentURL,
		PaylaterOrderID: out.ProviderOrderID,
	})
}

func (h *PayLaterHandler) audit(ctx context.Context, event logger.WebhookEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.LogWebhook(context.WithoutCancel(ctx), event); err != nil {
		h.logger.Warn("failed to audit webhook", "source", event.Source, "error", err)
	}
}
