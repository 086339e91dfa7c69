package handler

import (
	"errors"
	"net/http"
	"reviewpromax/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestValidator plugs validator/v10 into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

// bindAndValidate reports every decode or validation problem as a 400.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return c.Validate(req)
}

// toHTTPError maps service sentinels to HTTP statuses. Gateway errors get a
// generic message; the wrapped error stays internal for the logs.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "Forbidden: admin access required"
	case errors.Is(err, service.ErrPaymentNotFound):
		status, msg = http.StatusNotFound, "Payment not found"
	case errors.Is(err, service.ErrOrderMismatch):
		status, msg = http.StatusBadRequest, "Order does not match payment"
	case errors.Is(err, service.ErrCaptureNotCompleted):
		status, msg = http.StatusPaymentRequired, "Payment not completed"
	case errors.Is(err, service.ErrPaymentDeclined):
		status, msg = http.StatusPaymentRequired, "Payment declined"
	case errors.Is(err, service.ErrSweepInProgress):
		status, msg = http.StatusConflict, "Reconciliation already in progress"
	case errors.Is(err, service.ErrGatewayNotConfigured):
		status, msg = http.StatusServiceUnavailable, "Payment gateway not configured"
	case errors.Is(err, service.ErrGatewayFailure):
		status, msg = http.StatusBadGateway, "Payment gateway error"
	}

	return echo.NewHTTPError(status, msg).SetInternal(err)
}

func message(he *echo.HTTPError) string {
	if s, ok := he.Message.(string); ok {
		return s
	}
	return http.StatusText(he.Code)
}

// NewHTTPErrorHandler renders every error as {"error": "..."}.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := toHTTPError(err)
		if he.Code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", he.Code),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, map[string]string{"error": message(he)})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
