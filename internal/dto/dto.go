package dto

import "github.com/shopspring/decimal"

type CreateOrderRequest struct {
	PlanType     string           `json:"planType" validate:"required,oneof=verified unverified"`
	PlanName     string           `json:"planName" validate:"required"`
	Amount       decimal.Decimal  `json:"amount"`
	BookPrice    *decimal.Decimal `json:"bookPrice"`
	TotalReviews int              `json:"totalReviews" validate:"gt=0"`
}

type CreateOrderResponse struct {
	OrderID    string `json:"orderID"`
	PaymentID  string `json:"paymentId"`
	ApproveURL string `json:"approveUrl,omitempty"`
}

type CaptureOrderRequest struct {
	OrderID   string `json:"orderID" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
}

type CaptureOrderResponse struct {
	Success     bool   `json:"success"`
	PlanID      string `json:"planId,omitempty"`
	CaptureData any    `json:"captureData,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Reconciliation outcomes.
const (
	ActionCredited            = "credited"
	ActionCapturedAndCredited = "captured_and_credited"
	ActionNotCompleted        = "not_completed"
	ActionError               = "error"
)

type ProcessedPayment struct {
	PaymentID    string `json:"paymentId"`
	OrderID      string `json:"orderId"`
	PaypalStatus string `json:"paypalStatus,omitempty"`
	Action       string `json:"action"`
	PlanID       string `json:"planId,omitempty"`
	Error        string `json:"error,omitempty"`
}

type ReconcileResponse struct {
	Success           bool                `json:"success"`
	ProcessedPayments []*ProcessedPayment `json:"processedPayments"`
	TotalProcessed    int                 `json:"totalProcessed"`
}

type CardCheckoutRequest struct {
	Nonce        string           `json:"nonce" validate:"required"`
	PlanType     string           `json:"planType" validate:"required,oneof=verified unverified"`
	PlanName     string           `json:"planName" validate:"required"`
	Amount       decimal.Decimal  `json:"amount"`
	BookPrice    *decimal.Decimal `json:"bookPrice"`
	TotalReviews int              `json:"totalReviews" validate:"gt=0"`
}

type CardCheckoutResponse struct {
	Success       bool   `json:"success"`
	PaymentID     string `json:"paymentId"`
	TransactionID string `json:"transactionId"`
	PlanID        string `json:"planId"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

type DeleteUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
