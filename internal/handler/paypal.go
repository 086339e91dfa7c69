package handler

import (
	"errors"
	"io"
	"net/http"
	"reviewpromax/internal/dto"
	"reviewpromax/internal/middleware"
	"reviewpromax/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PaypalHandler struct {
	paypalService service.PaypalService
	log           *zap.Logger
}

func NewPaypalHandler(paypalService service.PaypalService, log *zap.Logger) *PaypalHandler {
	return &PaypalHandler{
		paypalService: paypalService,
		log:           log,
	}
}

func (h *PaypalHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.paypalService.CreateOrder(ctx, middleware.UserID(c), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// CreateOrderLegacy answers every failure with 400, as the function route did.
func (h *PaypalHandler) CreateOrderLegacy(c echo.Context) error {
	err := h.CreateOrder(c)
	if err == nil {
		return nil
	}

	he := toHTTPError(err)
	msg := message(he)
	if he.Code >= http.StatusInternalServerError {
		h.log.Error("create paypal order", zap.Error(err))
		msg = "Failed to create PayPal order"
	}
	return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
}

func (h *PaypalHandler) CaptureOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CaptureOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.paypalService.CaptureOrder(ctx, middleware.UserID(c), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// CaptureOrderLegacy keeps the function route's contract: failures are
// reported with HTTP 200 and success=false.
func (h *PaypalHandler) CaptureOrderLegacy(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CaptureOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusOK, &dto.CaptureOrderResponse{Error: message(toHTTPError(err))})
	}

	result, err := h.paypalService.CaptureOrder(ctx, middleware.UserID(c), &req)
	if err != nil {
		he := toHTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			h.log.Error("capture paypal order", zap.String("order_id", req.OrderID), zap.Error(err))
		}
		return c.JSON(http.StatusOK, &dto.CaptureOrderResponse{Error: message(he)})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaypalHandler) ReconcilePending(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.paypalService.ReconcilePending(ctx, middleware.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaypalHandler) PayPalWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}

	err = h.paypalService.HandleWebhook(ctx, c.Request().Header, body)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			h.log.Warn("rejected paypal webhook", zap.Error(err))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook").SetInternal(err)
		}
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusOK)
}
