package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultFeeRate is the platform's share of every booking.
var DefaultFeeRate = decimal.RequireFromString("0.15")

// Policy holds the tunable booking rules.
type Policy struct {
	FeeRate   decimal.Decimal
	OTPLength int
}

func DefaultPolicy() Policy {
	return Policy{FeeRate: DefaultFeeRate, OTPLength: 4}
}

func (p Policy) Validate() error {
	if p.FeeRate.IsNegative() || p.FeeRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: fee rate %s must be within [0, 1]", ErrInvalidInput, p.FeeRate)
	}
	if p.OTPLength < 4 || p.OTPLength > 6 {
		return fmt.Errorf("%w: otp length %d must be between 4 and 6", ErrInvalidInput, p.OTPLength)
	}
	return nil
}

// ComputeSplit divides total into the platform fee and the owner's earnings.
// The larger share is rounded half away from zero and the smaller one takes the
// remainder, so fee + earnings == total always holds.
func ComputeSplit(total int64, feeRate decimal.Decimal) (fee, earnings int64) {
	t := decimal.NewFromInt(total)
	if feeRate.LessThanOrEqual(decimal.NewFromFloat(0.5)) {
		earnings = t.Mul(decimal.NewFromInt(1).Sub(feeRate)).Round(0).IntPart()
		return total - earnings, earnings
	}
	fee = t.Mul(feeRate).Round(0).IntPart()
	return fee, total - fee
}

// BookingTotal is the price of a booking before the split.
func BookingTotal(hourlyRate int64, durationHours int) int64 {
	return hourlyRate * int64(durationHours)
}
