package service

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrForbidden            = errors.New("forbidden")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrOrderMismatch        = errors.New("order does not belong to payment")
	ErrCaptureNotCompleted  = errors.New("payment capture not completed")
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrGatewayFailure       = errors.New("payment gateway request failed")
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrSweepInProgress      = errors.New("a reconciliation is already running for this user")
)
