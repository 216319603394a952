package utils

import (
	"testing"

	"farmshare-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteBooking(t *testing.T) {
	t.Run("Default fee", func(t *testing.T) {
		q, err := QuoteBooking(500, 2, domain.DefaultFeeRate)
		assert.NoError(t, err)
		assert.Equal(t, int64(1000), q.TotalAmount)
		assert.Equal(t, int64(150), q.PlatformFee)
		assert.Equal(t, int64(850), q.OwnerEarnings)
	})

	t.Run("Rounding keeps the sum", func(t *testing.T) {
		q, err := QuoteBooking(333, 1, decimal.RequireFromString("0.15"))
		assert.NoError(t, err)
		assert.Equal(t, q.TotalAmount, q.PlatformFee+q.OwnerEarnings)
		assert.Equal(t, int64(283), q.OwnerEarnings)
	})

	t.Run("Zero hours", func(t *testing.T) {
		_, err := QuoteBooking(500, 0, domain.DefaultFeeRate)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹0.00", FormatRupees(0))
	assert.Equal(t, "₹8.50", FormatRupees(850))
	assert.Equal(t, "₹999.99", FormatRupees(99999))
	assert.Equal(t, "₹1,000.00", FormatRupees(100000))
	assert.Equal(t, "₹1,00,000.50", FormatRupees(10000050))
	assert.Equal(t, "₹12,34,567.00", FormatRupees(123456700))
	assert.Equal(t, "-₹150.00", FormatRupees(-15000))
}
