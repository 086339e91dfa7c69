package handler

import (
	"net/http"
	"reviewpromax/internal/middleware"
	"reviewpromax/internal/service"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

func (h *AccountHandler) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()

	payments, err := h.accountService.ListPayments(ctx, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, payments)
}

func (h *AccountHandler) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()

	plans, err := h.accountService.ListPlans(ctx, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, plans)
}
