package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers every endpoint under its route name; the name selects
// the security level applied by the auth middleware.
func NewRouter(h *Handler, auth *AuthMiddleware) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, auth.Handler)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name("Health")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost).Name("CreateBooking")
	api.HandleFunc("/bookings", h.ListMyBookings).Methods(http.MethodGet).Name("ListMyBookings")
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	api.HandleFunc("/bookings/{id}/accept", h.AcceptBooking).Methods(http.MethodPost).Name("AcceptBooking")
	api.HandleFunc("/bookings/{id}/reject", h.RejectBooking).Methods(http.MethodPost).Name("RejectBooking")
	api.HandleFunc("/bookings/{id}/fund", h.FundBooking).Methods(http.MethodPost).Name("FundBooking")
	api.HandleFunc("/bookings/{id}/start", h.StartBooking).Methods(http.MethodPost).Name("StartBooking")
	api.HandleFunc("/bookings/{id}/complete", h.CompleteBooking).Methods(http.MethodPost).Name("CompleteBooking")
	api.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost).Name("CancelBooking")
	api.HandleFunc("/bookings/{id}/rate", h.RateBooking).Methods(http.MethodPost).Name("RateBooking")
	api.HandleFunc("/bookings/{id}/payments", h.BookingPayments).Methods(http.MethodGet).Name("BookingPayments")
	api.HandleFunc("/bookings/{id}/release", h.ReleaseEscrow).Methods(http.MethodPost).Name("ReleaseEscrow")
	api.HandleFunc("/bookings/{id}/refund", h.RefundEscrow).Methods(http.MethodPost).Name("RefundEscrow")

	api.HandleFunc("/tractors/{id}/availability", h.CheckAvailability).Methods(http.MethodGet).Name("CheckAvailability")

	api.HandleFunc("/wallet", h.GetWallet).Methods(http.MethodGet).Name("GetWallet")
	api.HandleFunc("/wallet/summary", h.GetWalletSummary).Methods(http.MethodGet).Name("GetWalletSummary")
	api.HandleFunc("/wallet/payments", h.PaymentHistory).Methods(http.MethodGet).Name("PaymentHistory")
	api.HandleFunc("/wallet/topups", h.CreateTopUp).Methods(http.MethodPost).Name("CreateTopUp")
	api.HandleFunc("/wallet/topups/{orderRef}/verify", h.VerifyTopUp).Methods(http.MethodPost).Name("VerifyTopUp")

	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name("ListNotifications")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name("MarkNotificationRead")

	return router
}
