package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidStatusPair(t *testing.T) {
	assert.True(t, ValidStatusPair(BookingStatusPending, PaymentStatusPending))
	assert.True(t, ValidStatusPair(BookingStatusAccepted, PaymentStatusHeld))
	assert.True(t, ValidStatusPair(BookingStatusCompleted, PaymentStatusReleased))
	assert.True(t, ValidStatusPair(BookingStatusCancelled, PaymentStatusRefunded))

	assert.False(t, ValidStatusPair(BookingStatusPending, PaymentStatusHeld))
	assert.False(t, ValidStatusPair(BookingStatusInProgress, PaymentStatusPending))
	assert.False(t, ValidStatusPair(BookingStatusCompleted, PaymentStatusRefunded))
	assert.False(t, ValidStatusPair(BookingStatusRejected, PaymentStatusReleased))

	err := CheckStatusPair(BookingStatusAccepted, PaymentStatusReleased)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBookingStatusHelpers(t *testing.T) {
	for _, s := range ActiveBookingStatuses {
		assert.True(t, s.IsActive())
		assert.False(t, s.IsTerminal())
	}
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatus("archived").Valid())
	assert.True(t, PaymentStatusPaid.IsRefundable())
	assert.False(t, PaymentStatusReleased.IsRefundable())
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	hour := time.Hour

	assert.True(t, Overlaps(base, base.Add(4*hour), base.Add(2*hour), base.Add(6*hour)))
	// touching endpoints count as overlapping
	assert.True(t, Overlaps(base, base.Add(4*hour), base.Add(4*hour), base.Add(6*hour)))
	assert.False(t, Overlaps(base, base.Add(4*hour), base.Add(5*hour), base.Add(6*hour)))
	assert.True(t, Overlaps(base.Add(hour), base.Add(2*hour), base, base.Add(4*hour)))
}

func TestInsufficientFundsError(t *testing.T) {
	w := &Wallet{UserID: uuid.New(), Balance: 500}
	err := w.Debit(1000)

	var ife *InsufficientFundsError
	assert.True(t, errors.As(err, &ife))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(500), ife.Shortfall())
	assert.Equal(t, int64(500), w.Balance)

	assert.NoError(t, w.Debit(500))
	assert.Equal(t, int64(0), w.Balance)
}

func TestBookingHelpers(t *testing.T) {
	renter, owner := uuid.New(), uuid.New()
	b := &Booking{RenterID: renter, OwnerID: owner, StartOTP: "1234", EndOTP: "5678"}

	assert.True(t, b.IsParty(renter))
	assert.False(t, b.IsParty(uuid.New()))
	assert.Equal(t, owner, b.Counterparty(renter))
	assert.Equal(t, renter, b.Counterparty(owner))

	clean := b.WithoutSecrets()
	assert.Empty(t, clean.StartOTP)
	assert.Empty(t, clean.EndOTP)
	assert.Equal(t, "1234", b.StartOTP)
}

func TestNextAverage(t *testing.T) {
	assert.InDelta(t, 4.0, NextAverage(0, 0, 4), 1e-9)
	assert.InDelta(t, 4.5, NextAverage(4, 1, 5), 1e-9)
}
