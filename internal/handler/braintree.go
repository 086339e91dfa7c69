package handler

import (
	"net/http"
	"reviewpromax/internal/dto"
	"reviewpromax/internal/middleware"
	"reviewpromax/internal/service"

	"github.com/labstack/echo/v4"
)

type BraintreeHandler struct {
	checkoutService service.CardCheckoutService
}

func NewBraintreeHandler(checkoutService service.CardCheckoutService) *BraintreeHandler {
	return &BraintreeHandler{
		checkoutService: checkoutService,
	}
}

func (h *BraintreeHandler) ProcessCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CardCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.checkoutService.Checkout(ctx, middleware.UserID(c), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}
