package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount          = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidCurrency        = &AppError{http.StatusBadRequest, "INVALID_CURRENCY", "Invalid currency"}
	ErrQuotationAccepted      = &AppError{http.StatusBadRequest, "QUOTATION_ALREADY_ACCEPTED", "Request already has an accepted quotation"}
	ErrQuotationNotAccepted   = &AppError{http.StatusBadRequest, "QUOTATION_NOT_ACCEPTED", "Quotation is not accepted"}
	ErrQuotationNotSent       = &AppError{http.StatusBadRequest, "QUOTATION_NOT_SENT", "Only sent quotations can be decided"}
	ErrQuotationExpired       = &AppError{http.StatusBadRequest, "QUOTATION_EXPIRED", "Quotation has expired"}
	ErrContractExists         = &AppError{http.StatusConflict, "CONTRACT_ALREADY_EXISTS", "Quotation already has a contract"}
	ErrContractNotDraft       = &AppError{http.StatusBadRequest, "CONTRACT_NOT_DRAFT", "Only draft contracts can be accepted"}
	ErrContractNotActive      = &AppError{http.StatusBadRequest, "CONTRACT_NOT_ACTIVE", "Only active contracts can be completed"}
	ErrInvalidContractDates   = &AppError{http.StatusBadRequest, "INVALID_CONTRACT_DATES", "Start date must precede end date"}
	ErrDuplicateParticipation = &AppError{http.StatusConflict, "DUPLICATE_PARTICIPATION", "Cashier already participates in this quotation"}
	ErrExceedsRemaining       = &AppError{http.StatusBadRequest, "EXCEEDS_REMAINING_BALANCE", "Amount exceeds remaining quotation balance"}
	ErrDailyLimitExceeded     = &AppError{http.StatusBadRequest, "DAILY_LIMIT_EXCEEDED", "Amount exceeds account daily limit"}
	ErrAccountInactive        = &AppError{http.StatusBadRequest, "ACCOUNT_INACTIVE", "No active cashier account available"}
	ErrTransactionNotOpen     = &AppError{http.StatusBadRequest, "TRANSACTION_NOT_OPEN", "Transaction is not open"}
	ErrCompanyExists          = &AppError{http.StatusConflict, "COMPANY_ALREADY_EXISTS", "Company with this tax id already exists"}
	ErrEmailTaken             = &AppError{http.StatusConflict, "EMAIL_ALREADY_REGISTERED", "Email already registered"}
	ErrRegistrationDecided    = &AppError{http.StatusConflict, "REGISTRATION_ALREADY_REVIEWED", "Registration request already reviewed"}
	ErrNoValidOffers          = &AppError{http.StatusBadRequest, "NO_VALID_OFFERS", "No valid offers for requested amount"}
	ErrCompanySuspended       = &AppError{http.StatusBadRequest, "COMPANY_SUSPENDED", "Company is suspended"}
	ErrProfileInactive        = &AppError{http.StatusBadRequest, "PROFILE_INACTIVE", "Profile is inactive"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
