package gateway

import (
	"context"
	"fmt"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// Stripe backs wallet top-ups with PaymentIntents. The order reference is the
// PaymentIntent id; verification re-reads the intent from Stripe.
type Stripe struct {
	currency  string
	newIntent func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	getIntent func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripe(secretKey, currency string) *Stripe {
	stripe.Key = secretKey
	return &Stripe{
		currency:  currency,
		newIntent: paymentintent.New,
		getIntent: paymentintent.Get,
	}
}

func (g *Stripe) CreateOrder(ctx context.Context, amount int64, receipt string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(g.currency),
	}
	params.Context = ctx
	params.SetIdempotencyKey(receipt)
	params.AddMetadata("receipt", receipt)

	logger.ExternalServiceCall("stripe", "paymentintent.New", "amount", amount, "receipt", receipt)
	pi, err := g.newIntent(params)
	logger.ExternalServiceResult("stripe", "paymentintent.New", err)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ID, nil
}

func (g *Stripe) Verify(ctx context.Context, orderRef string, amount int64, proof domain.PaymentProof) (bool, error) {
	if proof.PaymentID != "" && proof.PaymentID != orderRef {
		return false, nil
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	logger.ExternalServiceCall("stripe", "paymentintent.Get", "orderRef", orderRef)
	pi, err := g.getIntent(orderRef, params)
	logger.ExternalServiceResult("stripe", "paymentintent.Get", err)
	if err != nil {
		return false, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded && pi.Amount == amount, nil
}
