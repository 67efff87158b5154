package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidCredentials):
		appErr = ErrInvalidCredentials
	case errors.Is(err, domain.ErrForbidden):
		appErr = ErrForbidden
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrInvalidCurrency):
		appErr = ErrInvalidCurrency
	case errors.Is(err, domain.ErrQuotationAccepted):
		appErr = ErrQuotationAccepted
	case errors.Is(err, domain.ErrQuotationNotAccepted):
		appErr = ErrQuotationNotAccepted
	case errors.Is(err, domain.ErrQuotationNotSent):
		appErr = ErrQuotationNotSent
	case errors.Is(err, domain.ErrQuotationExpired):
		appErr = ErrQuotationExpired
	case errors.Is(err, domain.ErrContractExists):
		appErr = ErrContractExists
	case errors.Is(err, domain.ErrContractNotDraft):
		appErr = ErrContractNotDraft
	case errors.Is(err, domain.ErrContractNotActive):
		appErr = ErrContractNotActive
	case errors.Is(err, domain.ErrInvalidContractDates):
		appErr = ErrInvalidContractDates
	case errors.Is(err, domain.ErrDuplicateParticipation):
		appErr = ErrDuplicateParticipation
	case errors.Is(err, domain.ErrExceedsRemaining):
		appErr = ErrExceedsRemaining
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		appErr = ErrDailyLimitExceeded
	case errors.Is(err, domain.ErrAccountInactive):
		appErr = ErrAccountInactive
	case errors.Is(err, domain.ErrTransactionNotOpen):
		appErr = ErrTransactionNotOpen
	case errors.Is(err, domain.ErrCompanyExists):
		appErr = ErrCompanyExists
	case errors.Is(err, domain.ErrEmailTaken):
		appErr = ErrEmailTaken
	case errors.Is(err, domain.ErrRegistrationDecided):
		appErr = ErrRegistrationDecided
	case errors.Is(err, domain.ErrNoValidOffers):
		appErr = ErrNoValidOffers
	case errors.Is(err, domain.ErrCompanySuspended):
		appErr = ErrCompanySuspended
	case errors.Is(err, domain.ErrProfileInactive):
		appErr = ErrProfileInactive
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
