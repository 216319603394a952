package utils

import (
	"fmt"
	"strings"

	"farmshare-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// paisePerRupee is the number of minor units in one rupee.
const paisePerRupee = 100

// BookingQuote provides the price breakdown of a prospective booking
type BookingQuote struct {
	Hours         int   `json:"hours"`
	HourlyRate    int64 `json:"hourly_rate"`
	TotalAmount   int64 `json:"total_amount"`
	PlatformFee   int64 `json:"platform_fee"`
	OwnerEarnings int64 `json:"owner_earnings"`
}

// QuoteBooking prices hours of tractor time using the same split as booking creation
func QuoteBooking(hourlyRate int64, hours int, feeRate decimal.Decimal) (BookingQuote, error) {
	if hours < 1 {
		return BookingQuote{}, fmt.Errorf("%w: duration must be at least one hour", domain.ErrInvalidInput)
	}
	if hourlyRate < 0 {
		return BookingQuote{}, fmt.Errorf("%w: hourly rate cannot be negative", domain.ErrInvalidInput)
	}

	total := domain.BookingTotal(hourlyRate, hours)
	fee, earnings := domain.ComputeSplit(total, feeRate)
	return BookingQuote{
		Hours:         hours,
		HourlyRate:    hourlyRate,
		TotalAmount:   total,
		PlatformFee:   fee,
		OwnerEarnings: earnings,
	}, nil
}

// FormatRupees renders paise with Indian digit grouping, e.g. 10000050 -> "₹1,00,000.50"
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	whole := paise / paisePerRupee
	frac := paise % paisePerRupee
	return fmt.Sprintf("%s₹%s.%02d", sign, groupIndian(fmt.Sprint(whole)), frac)
}

// groupIndian groups the last three digits, then every two digits before them
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
