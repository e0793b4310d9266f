package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/labstack/echo/v4"
)

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSignatureInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, response.ErrorResponse{Error: msg})
}

func outcomeOf(err error) string {
	switch errorStatus(err) {
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusForbidden:
		return "forbidden"
	default:
		return "error"
	}
}
