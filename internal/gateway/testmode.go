// Package gateway holds PaymentGateway implementations.
package gateway

import (
	"context"
	"sync"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"

	"github.com/google/uuid"
)

// TestMode accepts every proof for an order it issued. Used when no real
// gateway is configured.
type TestMode struct {
	mu     sync.Mutex
	orders map[string]int64
}

func NewTestMode() *TestMode {
	return &TestMode{orders: make(map[string]int64)}
}

func (g *TestMode) CreateOrder(ctx context.Context, amount int64, receipt string) (string, error) {
	ref := "order_test_" + uuid.NewString()
	g.mu.Lock()
	g.orders[ref] = amount
	g.mu.Unlock()
	logger.Debug("Test-mode order created", "orderRef", ref, "amount", amount, "receipt", receipt)
	return ref, nil
}

func (g *TestMode) Verify(ctx context.Context, orderRef string, amount int64, proof domain.PaymentProof) (bool, error) {
	g.mu.Lock()
	issued, ok := g.orders[orderRef]
	g.mu.Unlock()
	if !ok {
		return false, nil
	}
	return issued == amount, nil
}
