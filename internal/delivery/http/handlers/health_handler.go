package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/dto/response"
	"github.com/labstack/echo/v4"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", Database: "unreachable"})
	}
	return c.JSON(http.StatusOK, response.HealthResponse{Status: "ok", Database: "ok"})
}
