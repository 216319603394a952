package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"farmshare-backend/internal/domain"
	"farmshare-backend/internal/logger"

	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	Shortfall int64             `json:"shortfall,omitempty"`
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{domain.ErrInvalidOTP, http.StatusUnprocessableEntity, "invalid_otp"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
	{domain.ErrAlreadyProcessed, http.StatusConflict, "already_processed"},
	{domain.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrPaymentVerification, http.StatusPaymentRequired, "payment_verification_failed"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognised is
// logged and reported as an internal error without its message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr))
		for _, fe := range verr {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Code: "invalid_input", Fields: fields})
		return
	}

	for _, ec := range errorCodes {
		if !errors.Is(err, ec.err) {
			continue
		}
		resp := errorResponse{Error: err.Error(), Code: ec.code}
		var short *domain.InsufficientFundsError
		if errors.As(err, &short) {
			resp.Shortfall = short.Shortfall()
		}
		writeJSON(w, ec.status, resp)
		return
	}

	logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
}
