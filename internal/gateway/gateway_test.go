package gateway

import (
	"context"
	"errors"
	"testing"

	"farmshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestTestMode(t *testing.T) {
	g := NewTestMode()
	ctx := context.Background()

	ref, err := g.CreateOrder(ctx, 50000, "wallet_1")
	require.NoError(t, err)

	ok, err := g.Verify(ctx, ref, 50000, domain.PaymentProof{PaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Verify(ctx, ref, 1, domain.PaymentProof{})
	assert.False(t, ok)

	ok, _ = g.Verify(ctx, "order_unknown", 50000, domain.PaymentProof{})
	assert.False(t, ok)
}

func TestStripe_CreateOrder(t *testing.T) {
	g := NewStripe("sk_test_x", "inr")
	var captured *stripe.PaymentIntentParams
	g.newIntent = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		captured = params
		return &stripe.PaymentIntent{ID: "pi_123"}, nil
	}

	ref, err := g.CreateOrder(context.Background(), 25000, "wallet_abc")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", ref)
	assert.Equal(t, int64(25000), *captured.Amount)
	assert.Equal(t, "inr", *captured.Currency)
	assert.Equal(t, "wallet_abc", captured.Metadata["receipt"])
}

func TestStripe_Verify(t *testing.T) {
	g := NewStripe("sk_test_x", "inr")
	ctx := context.Background()

	t.Run("Succeeded", func(t *testing.T) {
		g.getIntent = func(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			return &stripe.PaymentIntent{ID: id, Amount: 25000, Status: stripe.PaymentIntentStatusSucceeded}, nil
		}
		ok, err := g.Verify(ctx, "pi_123", 25000, domain.PaymentProof{PaymentID: "pi_123"})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Still processing", func(t *testing.T) {
		g.getIntent = func(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			return &stripe.PaymentIntent{ID: id, Amount: 25000, Status: stripe.PaymentIntentStatusProcessing}, nil
		}
		ok, err := g.Verify(ctx, "pi_123", 25000, domain.PaymentProof{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Proof for another intent", func(t *testing.T) {
		ok, err := g.Verify(ctx, "pi_123", 25000, domain.PaymentProof{PaymentID: "pi_999"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Stripe error", func(t *testing.T) {
		g.getIntent = func(string, *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			return nil, errors.New("network")
		}
		_, err := g.Verify(ctx, "pi_123", 25000, domain.PaymentProof{})
		assert.Error(t, err)
	})
}
