package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmshare-backend/internal/config"
	"farmshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEscrowService only implements the methods the jobs call.
type MockEscrowService struct {
	service.EscrowService
	mock.Mock
}

func (m *MockEscrowService) RetrySettlements(ctx context.Context, limit int32) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockEscrowService) ExpireStaleTopUps(ctx context.Context, olderThan time.Time, limit int32) (int, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Int(0), args.Error(1)
}

func newRunner(escrow *MockEscrowService) *JobRunner {
	cfg := &config.Config{Wallet: config.WalletConfig{PendingTopUpTTLMinutes: 30}}
	return NewJobRunner(&Services{Escrow: escrow}, cfg)
}

func TestRetryEscrowSettlements(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		escrow := new(MockEscrowService)
		escrow.On("RetrySettlements", mock.Anything, int32(jobBatchSize)).Return(2, nil).Once()

		newRunner(escrow).RetryEscrowSettlements()
		escrow.AssertExpectations(t)
	})

	t.Run("ErrorIsLogged", func(t *testing.T) {
		escrow := new(MockEscrowService)
		escrow.On("RetrySettlements", mock.Anything, int32(jobBatchSize)).Return(0, errors.New("db down")).Once()

		assert.NotPanics(t, newRunner(escrow).RetryEscrowSettlements)
		escrow.AssertExpectations(t)
	})
}

func TestExpireStaleTopUps(t *testing.T) {
	escrow := new(MockEscrowService)
	before := time.Now().UTC()
	escrow.On("ExpireStaleTopUps", mock.Anything, mock.MatchedBy(func(olderThan time.Time) bool {
		cutoff := before.Add(-30 * time.Minute)
		return !olderThan.Before(cutoff) && olderThan.Before(before)
	}), int32(jobBatchSize)).Return(3, nil).Once()

	newRunner(escrow).ExpireStaleTopUps()
	escrow.AssertExpectations(t)
}

func TestRunWithRecovery(t *testing.T) {
	jr := newRunner(new(MockEscrowService))
	assert.NotPanics(t, func() {
		jr.runWithRecovery("panics", func() { panic("boom") })
	})
}

func TestRunAll(t *testing.T) {
	escrow := new(MockEscrowService)
	escrow.On("RetrySettlements", mock.Anything, mock.Anything).Return(0, nil).Once()
	escrow.On("ExpireStaleTopUps", mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Once()

	newRunner(escrow).RunAll()
	escrow.AssertExpectations(t)
}
