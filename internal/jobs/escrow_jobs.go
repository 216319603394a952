package jobs

import (
	"context"
	"time"

	"farmshare-backend/internal/logger"
)

const (
	jobBatchSize = 100
	jobTimeout   = 2 * time.Minute
)

// RetryEscrowSettlements re-drives releases and refunds whose booking
// transition committed but whose money movement failed.
func (jr *JobRunner) RetryEscrowSettlements() {
	jr.runWithRecovery("RetryEscrowSettlements", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		settled, err := jr.services.Escrow.RetrySettlements(ctx, jobBatchSize)
		if err != nil {
			logger.Error("Failed to retry escrow settlements", "error", err)
			return
		}
		if settled > 0 {
			logger.Info("Escrow settlements retried", "settled", settled)
		}
	})
}

// ExpireStaleTopUps fails wallet top-ups that were never verified within the TTL.
func (jr *JobRunner) ExpireStaleTopUps() {
	jr.runWithRecovery("ExpireStaleTopUps", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		olderThan := time.Now().UTC().Add(-jr.config.PendingTopUpTTL())
		expired, err := jr.services.Escrow.ExpireStaleTopUps(ctx, olderThan, jobBatchSize)
		if err != nil {
			logger.Error("Failed to expire stale top-ups", "error", err)
			return
		}
		logger.Info("Stale top-ups expired", "count", expired, "older_than", olderThan)
	})
}
