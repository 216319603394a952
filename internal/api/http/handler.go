package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/security"
	"farmshare-backend/internal/service"
	"farmshare-backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type TractorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tractor, error)
}

type AvailabilityChecker interface {
	HasConflict(ctx context.Context, tractorID uuid.UUID, start, end time.Time) (bool, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP API is served from.
type Deps struct {
	Bookings      service.BookingService
	Escrow        service.EscrowService
	Notifications service.NotificationService
	Tractors      TractorLookup
	Availability  AvailabilityChecker
	Health        Pinger
	FeeRate       decimal.Decimal
	// ExposeOTPs lets renters read their OTPs over the API.
	ExposeOTPs bool
}

type Handler struct {
	deps     Deps
	validate *validator.Validate
}

func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// decode reads a JSON body into dst and validates it. An empty body is
// treated as an empty object.
func (h *Handler) decode(r *http.Request, dst any) error {
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidInput, err)
		}
	}
	return h.validate.Struct(dst)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func mustParseUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func queryInt32(r *http.Request, name string) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return int32(n), nil
}

func caller(r *http.Request) uuid.UUID {
	u, ok := security.UserFromContext(r.Context())
	if !ok {
		return uuid.Nil
	}
	return u.UserID
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Bookings

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.deps.Bookings.Create(r.Context(), caller(r), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryInt32(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := queryInt32(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := domain.BookingFilter{
		Role:     domain.BookingRole(q.Get("role")),
		Status:   domain.BookingStatus(q.Get("status")),
		Page:     page,
		PageSize: size,
	}
	items, total, err := h.deps.Bookings.List(r.Context(), caller(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Booking]{Items: items, Total: total})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	proj := domain.ProjectionDefault
	if h.deps.ExposeOTPs && r.URL.Query().Get("include_otps") == "true" {
		proj = domain.ProjectionWithOTPs
	}
	b, err := h.deps.Bookings.Get(r.Context(), id, caller(r), proj)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.deps.Bookings.Accept(r.Context(), id, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.deps.Bookings.Reject(r.Context(), id, caller(r), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) FundBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Escrow.Fund(r.Context(), id, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) StartBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req otpRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.deps.Bookings.Start(r.Context(), id, caller(r), req.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req otpRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Bookings.Complete(r.Context(), id, caller(r), req.OTP)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransitionResponse(res))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Bookings.Cancel(r.Context(), id, caller(r), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransitionResponse(res))
}

func (h *Handler) RateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rateRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.deps.Bookings.Rate(r.Context(), id, caller(r), req.Rating, req.Review)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) ReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Escrow.Release(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RefundEscrow(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Escrow.Refund(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Tractors

func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: start must be an RFC 3339 timestamp", domain.ErrInvalidInput))
		return
	}
	hours, err := queryInt32(r, "hours")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tractor, err := h.deps.Tractors.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	quote, err := utils.QuoteBooking(tractor.HourlyRate, int(hours), h.deps.FeeRate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end := start.Add(time.Duration(hours) * time.Hour)
	conflict, err := h.deps.Availability.HasConflict(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		availabilityResponse
		Quote utils.BookingQuote `json:"quote"`
	}{
		availabilityResponse: availabilityResponse{Available: tractor.IsActive && !conflict, Start: start, End: end},
		Quote:                quote,
	})
}

// Wallet

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	bal, err := h.deps.Escrow.Balance(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: bal, Display: utils.FormatRupees(bal)})
}

func (h *Handler) GetWalletSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Escrow.WalletSummary(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) CreateTopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.deps.Escrow.CreateTopUp(r.Context(), caller(r), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) VerifyTopUp(w http.ResponseWriter, r *http.Request) {
	orderRef := mux.Vars(r)["orderRef"]
	var req verifyTopUpRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Escrow.VerifyTopUp(r.Context(), caller(r), orderRef,
		domain.PaymentProof{PaymentID: req.PaymentID, Signature: req.Signature})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt32(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := domain.PaymentFilter{
		Type:   domain.PaymentType(q.Get("type")),
		Status: domain.PaymentRecordStatus(q.Get("status")),
		Limit:  limit,
	}
	items, err := h.deps.Escrow.PaymentHistory(r.Context(), caller(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.PaymentRecord]{Items: items, Total: int32(len(items))})
}

func (h *Handler) BookingPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.deps.Escrow.BookingPayments(r.Context(), id, caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.PaymentRecord]{Items: items, Total: int32(len(items))})
}

// Notifications

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt32(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := queryInt32(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, total, err := h.deps.Notifications.GetNotifications(r.Context(), caller(r), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Notification]{Items: items, Total: total})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Notifications.MarkAsRead(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
