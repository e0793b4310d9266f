package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-paylater-service/internal/usecase"
	merchantdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/merchant"
	"github.com/labstack/echo/v4"
)

type MerchantHandler struct {
	merchantUsecase usecase.MerchantUsecase
}

func NewMerchantHandler(merchantUsecase usecase.MerchantUsecase) *MerchantHandler {
	return &MerchantHandler{merchantUsecase: merchantUsecase}
}

// RegisterMerchant handles PUT /api/merchants.
func (h *MerchantHandler) RegisterMerchant(c echo.Context) error {
	var req merchantdto.RegisterMerchantInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid request body"})
	}
	out, err := h.merchantUsecase.RegisterMerchant(c.Request().Context(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetMerchant handles GET /api/merchants/:domain.
func (h *MerchantHandler) GetMerchant(c echo.Context) error {
	out, err := h.merchantUsecase.GetMerchantByDomain(c.Request().Context(), c.Param("domain"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
