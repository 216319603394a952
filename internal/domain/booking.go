package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusRejected   BookingStatus = "rejected"
	BookingStatusInProgress BookingStatus = "in-progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusRejected || s == BookingStatusCancelled
}

// IsActive reports whether a booking in this status occupies its tractor's schedule.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusAccepted || s == BookingStatusInProgress
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected,
		BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// ActiveBookingStatuses are the statuses checked for schedule conflicts.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusAccepted,
	BookingStatusInProgress,
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusHeld     PaymentStatus = "held"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsRefundable reports whether money for the booking is sitting with the platform.
func (s PaymentStatus) IsRefundable() bool {
	return s == PaymentStatusHeld || s == PaymentStatusPaid
}

type WorkType string

const (
	WorkTypePlowing        WorkType = "plowing"
	WorkTypeSowing         WorkType = "sowing"
	WorkTypeHarvesting     WorkType = "harvesting"
	WorkTypeSpraying       WorkType = "spraying"
	WorkTypeTransportation WorkType = "transportation"
	WorkTypeOther          WorkType = "other"
)

func (w WorkType) Valid() bool {
	switch w {
	case WorkTypePlowing, WorkTypeSowing, WorkTypeHarvesting,
		WorkTypeSpraying, WorkTypeTransportation, WorkTypeOther:
		return true
	}
	return false
}

// WorkDetails describes the field work requested with a booking.
type WorkDetails struct {
	WorkType        WorkType `json:"work_type"`
	Acres           float64  `json:"acres"`
	WorkDescription string   `json:"work_description"`
	FarmAddress     string   `json:"farm_address"`
	Notes           string   `json:"notes"`
}

type Ratings struct {
	FarmerRating *int   `json:"farmer_rating,omitempty"` // farmer rates the owner
	FarmerReview string `json:"farmer_review,omitempty"`
	OwnerRating  *int   `json:"owner_rating,omitempty"` // owner rates the farmer
	OwnerReview  string `json:"owner_review,omitempty"`
}

type Booking struct {
	ID        uuid.UUID `json:"id"`
	RenterID  uuid.UUID `json:"renter_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	TractorID uuid.UUID `json:"tractor_id"`

	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	DurationHours   int        `json:"duration_hours"`
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`

	WorkDetails

	// Amounts are minor currency units, fixed at creation.
	TotalAmount   int64 `json:"total_amount"`
	PlatformFee   int64 `json:"platform_fee"`
	OwnerEarnings int64 `json:"owner_earnings"`

	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	// Only populated when read with BookingProjection.IncludeOTPs.
	StartOTP string `json:"start_otp,omitempty"`
	EndOTP   string `json:"end_otp,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	Ratings Ratings `json:"ratings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingProjection selects optional columns when reading a booking.
type BookingProjection struct {
	IncludeOTPs bool
}

var (
	ProjectionDefault  = BookingProjection{}
	ProjectionWithOTPs = BookingProjection{IncludeOTPs: true}
)

// IsParty reports whether the user is the renter or the owner of the booking.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return b.RenterID == userID || b.OwnerID == userID
}

// Counterparty returns the other side of the booking from the given user.
func (b *Booking) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == b.RenterID {
		return b.OwnerID
	}
	return b.RenterID
}

// WithoutSecrets returns a copy of the booking with OTP fields cleared.
func (b *Booking) WithoutSecrets() *Booking {
	c := *b
	c.StartOTP = ""
	c.EndOTP = ""
	return &c
}

// Overlaps reports whether the closed windows [aStart, aEnd] and [bStart, bEnd] intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// BookingRole filters bookings by the side the user is on.
type BookingRole string

const (
	BookingRoleAny    BookingRole = ""
	BookingRoleRenter BookingRole = "renter"
	BookingRoleOwner  BookingRole = "owner"
)

type BookingFilter struct {
	Role     BookingRole
	Status   BookingStatus
	Page     int32
	PageSize int32
}
