package model

import "encoding/json"

// PayPal Orders v2 statuses this service reacts to.
const (
	PaypalStatusCreated   = "CREATED"
	PaypalStatusApproved  = "APPROVED"
	PaypalStatusCompleted = "COMPLETED"
)

const EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"

type Payer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type Amount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type Capture struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CreateTime string `json:"create_time"`
	Final      bool   `json:"final_capture"`
	Amount     Amount `json:"amount"`
}

type Payments struct {
	Captures []Capture `json:"captures"`
}

type PurchaseUnit struct {
	ReferenceID string   `json:"reference_id"`
	Description string   `json:"description"`
	Amount      *Amount  `json:"amount,omitempty"`
	Payments    Payments `json:"payments"`
}

// PaypalOrder is the order resource returned by create, get and capture.
// Raw keeps the untouched response body for payment_data.
type PaypalOrder struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Payer         Payer           `json:"payer"`
	PurchaseUnits []PurchaseUnit  `json:"purchase_units"`
	Links         []PaypalLink    `json:"links"`
	Raw           json.RawMessage `json:"-"`
}

// ApproveURL returns the buyer approval link, if PayPal sent one.
func (o *PaypalOrder) ApproveURL() string {
	for _, link := range o.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}

// CaptureID returns the id of the first capture, empty before capture.
func (o *PaypalOrder) CaptureID() string {
	for _, unit := range o.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			return capture.ID
		}
	}
	return ""
}

type RelatedIDs struct {
	OrderID string `json:"order_id"`
}

type SupplementaryData struct {
	RelatedIDs RelatedIDs `json:"related_ids"`
}

type PaypalResource struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	Amount            Amount            `json:"amount"`
	SupplementaryData SupplementaryData `json:"supplementary_data"`
}

type PayPalWebhookEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	CreateTime string         `json:"create_time"`
	Resource   PaypalResource `json:"resource"`
}
