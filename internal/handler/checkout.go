package handler

import (
	"context"
	"net/http"

	"ucp-merchant-demo/internal/dto"
	"ucp-merchant-demo/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	merchantService service.MerchantService
}

func NewCheckoutHandler(merchantService service.MerchantService) *CheckoutHandler {
	return &CheckoutHandler{
		merchantService: merchantService,
	}
}

const headerIdempotencyKey = "Idempotency-Key"

// idempotentContext carries the request's Idempotency-Key into the service.
func idempotentContext(c echo.Context) context.Context {
	return service.WithIdempotencyKey(c.Request().Context(), c.Request().Header.Get(headerIdempotencyKey))
}

func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	ctx := idempotentContext(c)

	var req dto.CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.merchantService.CreateCheckout(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *CheckoutHandler) GetCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.merchantService.GetCheckout(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) UpdateCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	checkoutID := c.Param("id")

	var req dto.UpdateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ID != "" && req.ID != checkoutID {
		return echo.NewHTTPError(http.StatusBadRequest, "body id does not match path id")
	}

	result, err := h.merchantService.UpdateCheckout(ctx, checkoutID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) CompleteCheckout(c echo.Context) error {
	ctx := idempotentContext(c)

	var req dto.CompleteCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.merchantService.CompleteCheckout(ctx, c.Param("id"), req.Payment())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.merchantService.GetOrder(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}
