package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PlanType string

const (
	PlanTypeVerified   PlanType = "verified"
	PlanTypeUnverified PlanType = "unverified"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type PaymentProvider string

const (
	ProviderPaypal    PaymentProvider = "paypal"
	ProviderBraintree PaymentProvider = "braintree"
)

type Payment struct {
	ID       string          `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID   string          `gorm:"size:36;index;not null" json:"user_id"`
	PlanType PlanType        `gorm:"size:16;not null" json:"plan_type"`
	PlanName string          `gorm:"size:64;not null" json:"plan_name"`
	Amount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	// price of the reviewed book, optional
	BookPrice decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"book_price"`
	Provider  PaymentProvider     `gorm:"size:16;not null;default:'paypal'" json:"provider"`
	// paypal order id, or braintree transaction id for card payments
	PaypalPaymentID string         `gorm:"size:64;index" json:"paypal_payment_id"`
	PaypalPayerID   string         `gorm:"size:32" json:"paypal_payer_id"`
	Status          PaymentStatus  `gorm:"size:16;index;not null" json:"status"`
	PaymentData     datatypes.JSON `json:"payment_data"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusExpired   PlanStatus = "expired"
)

type ReviewPlan struct {
	ID           string     `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID       string     `gorm:"size:36;index;not null" json:"user_id"`
	BookID       *string    `gorm:"size:36" json:"book_id"`
	PlanType     PlanType   `gorm:"size:16;not null" json:"plan_type"`
	PlanName     string     `gorm:"size:64;not null" json:"plan_name"`
	TotalReviews int        `gorm:"not null" json:"total_reviews"`
	UsedReviews  int        `gorm:"not null;default:0" json:"used_reviews"`
	Status       PlanStatus `gorm:"size:16;not null" json:"status"`
	// one plan per payment, enforced by the unique index
	PaymentID   string     `gorm:"size:36;uniqueIndex;not null" json:"payment_id"`
	PurchasedAt time.Time  `json:"purchased_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type UserRole struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"size:36;index;not null"`
	Role   Role   `gorm:"size:16;not null"`
}

type Profile struct {
	ID        string `gorm:"primaryKey;size:36;not null"` // same as the auth user id
	Email     string `gorm:"size:255;index"`
	FullName  string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Book struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	UserID    string `gorm:"size:36;index;not null"`
	Title     string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

type LeadStatus string

const LeadStatusBanned LeadStatus = "banned"

type CustomerLead struct {
	ID        uint       `gorm:"primaryKey"`
	Email     string     `gorm:"size:255;index;not null"`
	Name      string     `gorm:"size:255"`
	Status    LeadStatus `gorm:"size:32;not null;default:'new'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All lists every table owned by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Payment{},
		&ReviewPlan{},
		&WebhookEvent{},
		&UserRole{},
		&Profile{},
		&Book{},
		&CustomerLead{},
	}
}
