package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/dto"
	"ucp-merchant-demo/internal/repository"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// errorStatus maps a service error to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, strings.ToLower(strings.ReplaceAll(http.StatusText(he.Code), " ", "_"))
	case errors.Is(err, checkout.ErrSessionNotFound), errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrProductNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, checkout.ErrPaymentRejected):
		return http.StatusPaymentRequired, "payment_rejected"
	case errors.Is(err, checkout.ErrSessionAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, checkout.ErrInvalidSelection):
		return http.StatusUnprocessableEntity, "invalid_selection"
	case errors.Is(err, repository.ErrIdempotencyKeyReused):
		return http.StatusUnprocessableEntity, "idempotency_key_reused"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func errorMessage(err error, status int) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

// NewHTTPErrorHandler renders every handler error as an ErrorResponse.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code := errorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		resp := dto.ErrorResponse{Code: code, Message: errorMessage(err, status)}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}
