package client

import (
	"context"
	"errors"
	"fmt"
	"reviewpromax/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

var ErrCardDeclined = errors.New("card transaction declined")

type BraintreeCharge struct {
	TransactionID string
	Status        string
}

type BraintreeClient interface {
	// Charge settles a one-time sale for a client-side payment method nonce.
	Charge(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (*BraintreeCharge, error)
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Charge(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (*BraintreeCharge, error) {
	// Braintree wants NewDecimal(unscaled, scale): 159.00 USD -> NewDecimal(15900, 2)
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		OrderId:            orderID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		// declines come back as a 422 api error carrying the transaction
		var btErr *braintree.BraintreeError
		if errors.As(err, &btErr) && btErr.Transaction != nil && isDeclined(btErr.Transaction.Status) {
			return nil, fmt.Errorf("%w: %s", ErrCardDeclined, btErr.Transaction.ProcessorResponseText)
		}
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}
	if isDeclined(tx.Status) {
		return nil, fmt.Errorf("%w: %s", ErrCardDeclined, tx.ProcessorResponseText)
	}

	return &BraintreeCharge{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
	}, nil
}

func isDeclined(status braintree.TransactionStatus) bool {
	switch status {
	case braintree.TransactionStatusProcessorDeclined, braintree.TransactionStatusGatewayRejected:
		return true
	}
	return false
}
