package http

import (
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/service"
)

type createBookingRequest struct {
	TractorID       string    `json:"tractor_id" validate:"required,uuid"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationHours   int       `json:"duration_hours" validate:"required,min=1,max=720"`
	WorkType        string    `json:"work_type" validate:"required,oneof=plowing sowing harvesting spraying transportation other"`
	Acres           float64   `json:"acres" validate:"required,gt=0"`
	WorkDescription string    `json:"work_description" validate:"max=300"`
	FarmAddress     string    `json:"farm_address" validate:"max=500"`
	Notes           string    `json:"notes" validate:"max=500"`
}

func (r createBookingRequest) toInput() service.CreateBookingInput {
	return service.CreateBookingInput{
		TractorID:     mustParseUUID(r.TractorID),
		StartTime:     r.StartTime,
		DurationHours: r.DurationHours,
		WorkDetails: domain.WorkDetails{
			WorkType:        domain.WorkType(r.WorkType),
			Acres:           r.Acres,
			WorkDescription: r.WorkDescription,
			FarmAddress:     r.FarmAddress,
			Notes:           r.Notes,
		},
	}
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type otpRequest struct {
	OTP string `json:"otp" validate:"required,numeric,min=4,max=6"`
}

type rateRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

type topUpRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type verifyTopUpRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature"`
}

type balanceResponse struct {
	Balance int64  `json:"balance"`
	Display string `json:"display"`
}

type sideEffectResponse struct {
	Attempted  bool                  `json:"attempted"`
	MoneyMoved bool                  `json:"money_moved"`
	Error      string                `json:"error,omitempty"`
	Payment    *domain.PaymentRecord `json:"payment,omitempty"`
}

type transitionResponse struct {
	Booking    *domain.Booking     `json:"booking"`
	SideEffect *sideEffectResponse `json:"side_effect,omitempty"`
}

func newTransitionResponse(res *service.TransitionResult) transitionResponse {
	out := transitionResponse{Booking: res.Booking}
	if se := res.SideEffect; se != nil {
		out.SideEffect = &sideEffectResponse{Attempted: se.Attempted, MoneyMoved: se.MoneyMoved, Payment: se.Payment}
		if se.Err != nil {
			out.SideEffect.Error = se.Err.Error()
		}
	}
	return out
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int32 `json:"total"`
}

type availabilityResponse struct {
	Available bool      `json:"available"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}
