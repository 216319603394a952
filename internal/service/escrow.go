package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	recentPaymentsLimit = 10
)

// TopUpLimits bounds a single wallet top-up, in minor units.
type TopUpLimits struct {
	Min int64
	Max int64
}

type escrowService struct {
	store   repository.Store
	gateway PaymentGateway
	limits  TopUpLimits
}

func NewEscrowService(store repository.Store, gateway PaymentGateway, limits TopUpLimits) EscrowService {
	return &escrowService{
		store:   store,
		gateway: gateway,
		limits:  limits,
	}
}

func (s *escrowService) Fund(ctx context.Context, bookingID, renterID uuid.UUID) (*EscrowResult, error) {
	logger.EnterMethod("escrowService.Fund", "bookingID", bookingID, "renterID", renterID)

	var result EscrowResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.RenterID != renterID {
			return fmt.Errorf("%w: only the renter can fund a booking", domain.ErrUnauthorized)
		}
		switch {
		case b.PaymentStatus == domain.PaymentStatusHeld || b.PaymentStatus == domain.PaymentStatusPaid:
			return fmt.Errorf("%w: booking is already funded", domain.ErrAlreadyProcessed)
		case b.PaymentStatus != domain.PaymentStatusPending:
			return fmt.Errorf("%w: payment status is %s", domain.ErrInvalidState, b.PaymentStatus)
		case b.Status != domain.BookingStatusAccepted:
			return fmt.Errorf("%w: booking must be accepted before funding, status is %s", domain.ErrInvalidState, b.Status)
		}

		w, err := repos.Wallets.GetForUpdate(ctx, renterID)
		if err != nil {
			return err
		}
		prev := w.Balance
		if err := w.Debit(b.TotalAmount); err != nil {
			return err
		}

		b.PaymentStatus = domain.PaymentStatusHeld
		if err := domain.CheckStatusPair(b.Status, b.PaymentStatus); err != nil {
			return err
		}
		if err := repos.Wallets.UpdateBalance(ctx, renterID, w.Balance); err != nil {
			return err
		}
		p := &domain.PaymentRecord{
			UserID:          renterID,
			BookingID:       &b.ID,
			Type:            domain.PaymentTypeBookingPayment,
			Amount:          b.TotalAmount,
			Status:          domain.PaymentRecordCompleted,
			PreviousBalance: prev,
			NewBalance:      w.Balance,
			Description:     "Payment for booking #" + domain.ShortID(b.ID),
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		result = EscrowResult{Booking: b.WithoutSecrets(), Payment: p}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("escrowService.Fund", err, "bookingID", bookingID)
		return nil, err
	}

	logger.EscrowMovement("fund", bookingID, renterID, result.Payment.Amount, result.Payment.NewBalance)
	logger.ExitMethod("escrowService.Fund", "bookingID", bookingID)
	return &result, nil
}

func (s *escrowService) Release(ctx context.Context, bookingID uuid.UUID) (*EscrowResult, error) {
	logger.EnterMethod("escrowService.Release", "bookingID", bookingID)

	var result EscrowResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		switch {
		case b.PaymentStatus == domain.PaymentStatusReleased:
			return fmt.Errorf("%w: earnings already released", domain.ErrAlreadyProcessed)
		case b.Status != domain.BookingStatusCompleted:
			return fmt.Errorf("%w: booking must be completed before release, status is %s", domain.ErrInvalidState, b.Status)
		case b.PaymentStatus != domain.PaymentStatusHeld:
			return fmt.Errorf("%w: no held funds, payment status is %s", domain.ErrInvalidState, b.PaymentStatus)
		}

		w, err := repos.Wallets.GetForUpdate(ctx, b.OwnerID)
		if err != nil {
			return err
		}
		prev := w.Balance
		w.Credit(b.OwnerEarnings)

		b.PaymentStatus = domain.PaymentStatusReleased
		if err := domain.CheckStatusPair(b.Status, b.PaymentStatus); err != nil {
			return err
		}
		if err := repos.Wallets.UpdateBalance(ctx, b.OwnerID, w.Balance); err != nil {
			return err
		}
		p := &domain.PaymentRecord{
			UserID:          b.OwnerID,
			BookingID:       &b.ID,
			Type:            domain.PaymentTypeOwnerPayout,
			Amount:          b.OwnerEarnings,
			Status:          domain.PaymentRecordCompleted,
			PreviousBalance: prev,
			NewBalance:      w.Balance,
			Description:     "Earnings from booking #" + domain.ShortID(b.ID),
			Metadata: map[string]string{
				"total_amount": fmt.Sprint(b.TotalAmount),
				"platform_fee": fmt.Sprint(b.PlatformFee),
			},
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		result = EscrowResult{Booking: b.WithoutSecrets(), Payment: p}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("escrowService.Release", err, "bookingID", bookingID)
		return nil, err
	}

	logger.EscrowMovement("release", bookingID, result.Payment.UserID, result.Payment.Amount, result.Payment.NewBalance,
		"platformFee", result.Booking.PlatformFee)
	logger.ExitMethod("escrowService.Release", "bookingID", bookingID)
	return &result, nil
}

func (s *escrowService) Refund(ctx context.Context, bookingID uuid.UUID, reason string) (*EscrowResult, error) {
	logger.EnterMethod("escrowService.Refund", "bookingID", bookingID, "reason", reason)

	var result EscrowResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		b, err := repos.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.PaymentStatus == domain.PaymentStatusRefunded {
			return fmt.Errorf("%w: booking already refunded", domain.ErrAlreadyProcessed)
		}
		if !b.PaymentStatus.IsRefundable() {
			return fmt.Errorf("%w: nothing to refund, payment status is %s", domain.ErrInvalidState, b.PaymentStatus)
		}
		b.PaymentStatus = domain.PaymentStatusRefunded
		if err := domain.CheckStatusPair(b.Status, b.PaymentStatus); err != nil {
			return err
		}

		w, err := repos.Wallets.GetForUpdate(ctx, b.RenterID)
		if err != nil {
			return err
		}
		prev := w.Balance
		w.Credit(b.TotalAmount)
		if err := repos.Wallets.UpdateBalance(ctx, b.RenterID, w.Balance); err != nil {
			return err
		}

		desc := "Refund for booking #" + domain.ShortID(b.ID)
		if reason != "" {
			desc += " - " + reason
		}
		p := &domain.PaymentRecord{
			UserID:          b.RenterID,
			BookingID:       &b.ID,
			Type:            domain.PaymentTypeBookingRefund,
			Amount:          b.TotalAmount,
			Status:          domain.PaymentRecordCompleted,
			PreviousBalance: prev,
			NewBalance:      w.Balance,
			Description:     desc,
		}
		if err := repos.Payments.Create(ctx, p); err != nil {
			return err
		}
		if err := repos.Bookings.Update(ctx, b); err != nil {
			return err
		}
		result = EscrowResult{Booking: b.WithoutSecrets(), Payment: p}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("escrowService.Refund", err, "bookingID", bookingID)
		return nil, err
	}

	logger.EscrowMovement("refund", bookingID, result.Payment.UserID, result.Payment.Amount, result.Payment.NewBalance)
	logger.ExitMethod("escrowService.Refund", "bookingID", bookingID)
	return &result, nil
}

func (s *escrowService) CreateTopUp(ctx context.Context, userID uuid.UUID, amount int64) (*TopUpOrder, error) {
	if amount < s.limits.Min || amount > s.limits.Max {
		return nil, fmt.Errorf("%w: top-up must be between %d and %d", domain.ErrInvalidInput, s.limits.Min, s.limits.Max)
	}

	receipt := fmt.Sprintf("wallet_%s_%d", domain.ShortID(userID), time.Now().UnixMilli())
	orderRef, err := s.gateway.CreateOrder(ctx, amount, receipt)
	if err != nil {
		logger.Error("Failed to create gateway order", "userID", userID, "amount", amount, "error", err)
		return nil, err
	}

	p := &domain.PaymentRecord{
		UserID:         userID,
		Type:           domain.PaymentTypeWalletCredit,
		Amount:         amount,
		Status:         domain.PaymentRecordPending,
		Description:    "Wallet top-up",
		GatewayOrderID: orderRef,
		Metadata:       map[string]string{"receipt": receipt},
	}
	if err := s.store.Repos().Payments.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("Top-up order created", "userID", userID, "orderRef", orderRef, "amount", amount)
	return &TopUpOrder{OrderRef: orderRef, Amount: amount, Payment: p}, nil
}

func (s *escrowService) VerifyTopUp(ctx context.Context, userID uuid.UUID, orderRef string, proof domain.PaymentProof) (*TopUpResult, error) {
	logger.EnterMethod("escrowService.VerifyTopUp", "userID", userID, "orderRef", orderRef)

	p, err := s.store.Repos().Payments.GetByGatewayOrderForUpdate(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if err := checkPendingTopUp(p, userID); err != nil {
		return nil, err
	}

	// The gateway is consulted outside the transaction.
	verified, err := s.gateway.Verify(ctx, orderRef, p.Amount, proof)
	if err != nil {
		logger.ExitMethodWithError("escrowService.VerifyTopUp", err, "orderRef", orderRef)
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentVerification, err)
	}

	var result TopUpResult
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		p, err := repos.Payments.GetByGatewayOrderForUpdate(ctx, orderRef)
		if err != nil {
			return err
		}
		if err := checkPendingTopUp(p, userID); err != nil {
			return err
		}
		p.GatewayPaymentID = proof.PaymentID

		if !verified {
			p.Status = domain.PaymentRecordFailed
			p.ErrorMessage = "Payment verification failed"
			p.FailureReason = "verification_failed"
			result.Payment = p
			return repos.Payments.Update(ctx, p)
		}

		w, err := repos.Wallets.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		p.PreviousBalance = w.Balance
		w.Credit(p.Amount)
		p.NewBalance = w.Balance
		p.Status = domain.PaymentRecordCompleted
		if err := repos.Wallets.UpdateBalance(ctx, userID, w.Balance); err != nil {
			return err
		}
		if err := repos.Payments.Update(ctx, p); err != nil {
			return err
		}
		result = TopUpResult{Payment: p, Balance: w.Balance}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("escrowService.VerifyTopUp", err, "orderRef", orderRef)
		return nil, err
	}
	if !verified {
		logger.Warn("Top-up verification failed", "userID", userID, "orderRef", orderRef)
		return nil, domain.ErrPaymentVerification
	}

	logger.EscrowMovement("top_up", nil, userID, result.Payment.Amount, result.Balance, "orderRef", orderRef)
	logger.ExitMethod("escrowService.VerifyTopUp", "orderRef", orderRef)
	return &result, nil
}

func checkPendingTopUp(p *domain.PaymentRecord, userID uuid.UUID) error {
	if p.UserID != userID {
		return fmt.Errorf("%w: top-up belongs to another user", domain.ErrUnauthorized)
	}
	if p.Type != domain.PaymentTypeWalletCredit {
		return fmt.Errorf("%w: not a wallet top-up", domain.ErrInvalidInput)
	}
	switch {
	case p.Status == domain.PaymentRecordCompleted:
		return fmt.Errorf("%w: payment already processed", domain.ErrAlreadyProcessed)
	case p.Status.IsTerminal():
		return fmt.Errorf("%w: top-up is %s", domain.ErrInvalidState, p.Status)
	}
	return nil
}

func (s *escrowService) PaymentHistory(ctx context.Context, userID uuid.UUID, filter domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, filter.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	return s.store.Repos().Payments.ListByUser(ctx, userID, filter)
}

func (s *escrowService) BookingPayments(ctx context.Context, bookingID, actorID uuid.UUID) ([]domain.PaymentRecord, error) {
	repos := s.store.Repos()
	b, err := repos.Bookings.GetByID(ctx, bookingID, domain.ProjectionDefault)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actorID) {
		return nil, fmt.Errorf("%w: not a party to this booking", domain.ErrUnauthorized)
	}

	records, err := repos.Payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// Each side only sees its own wallet movements.
	mine := make([]domain.PaymentRecord, 0, len(records))
	for _, p := range records {
		if p.UserID == actorID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

func (s *escrowService) WalletSummary(ctx context.Context, userID uuid.UUID) (*domain.WalletSummary, error) {
	repos := s.store.Repos()

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := repos.Payments.TotalsByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := repos.Payments.ListByUser(ctx, userID, domain.PaymentFilter{Limit: recentPaymentsLimit})
	if err != nil {
		return nil, err
	}
	return &domain.WalletSummary{
		Balance:        balance,
		TotalCredits:   totals[domain.PaymentTypeWalletCredit],
		TotalDebits:    totals[domain.PaymentTypeBookingPayment],
		TotalRefunds:   totals[domain.PaymentTypeBookingRefund],
		TotalEarnings:  totals[domain.PaymentTypeOwnerPayout],
		RecentPayments: recent,
	}, nil
}

func (s *escrowService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	w, err := s.store.Repos().Wallets.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

func (s *escrowService) RetrySettlements(ctx context.Context, limit int32) (int, error) {
	stuck, err := s.store.Repos().Bookings.ListPendingSettlement(ctx, limit)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, b := range stuck {
		var err error
		if b.Status == domain.BookingStatusCompleted {
			_, err = s.Release(ctx, b.ID)
		} else {
			_, err = s.Refund(ctx, b.ID, b.CancellationReason)
		}
		if err != nil {
			logger.SideEffectFailed("retry_settlement", err, "bookingID", b.ID, "status", b.Status)
			continue
		}
		settled++
	}
	return settled, nil
}

func (s *escrowService) ExpireStaleTopUps(ctx context.Context, olderThan time.Time, limit int32) (int, error) {
	stale, err := s.store.Repos().Payments.ListStalePending(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, rec := range stale {
		if rec.GatewayOrderID == "" {
			continue
		}
		changed := false
		err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			p, err := repos.Payments.GetByGatewayOrderForUpdate(ctx, rec.GatewayOrderID)
			if err != nil {
				return err
			}
			if p.Status.IsTerminal() {
				return nil
			}
			p.Status = domain.PaymentRecordFailed
			p.FailureReason = "expired"
			p.ErrorMessage = "Top-up was not verified in time"
			if err := repos.Payments.Update(ctx, p); err != nil {
				return err
			}
			changed = true
			return nil
		})
		if err != nil {
			logger.Error("Failed to expire top-up", "paymentID", rec.ID, "error", err)
			continue
		}
		if changed {
			expired++
		}
	}
	return expired, nil
}
