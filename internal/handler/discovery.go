package handler

import (
	"net/http"

	"ucp-merchant-demo/internal/service"

	"github.com/labstack/echo/v4"
)

type DiscoveryHandler struct {
	merchantService service.MerchantService
}

func NewDiscoveryHandler(merchantService service.MerchantService) *DiscoveryHandler {
	return &DiscoveryHandler{
		merchantService: merchantService,
	}
}

func (h *DiscoveryHandler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.merchantService.Discover(ctx, c.QueryParam("query"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *DiscoveryHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.merchantService.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *DiscoveryHandler) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, h.merchantService.Profile())
}
