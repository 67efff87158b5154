package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidCurrency        = errors.New("invalid currency")
	ErrQuotationAccepted      = errors.New("request already has an accepted quotation")
	ErrQuotationNotAccepted   = errors.New("quotation is not accepted")
	ErrQuotationNotSent       = errors.New("only sent quotations can be decided")
	ErrQuotationExpired       = errors.New("quotation has expired")
	ErrContractExists         = errors.New("quotation already has a contract")
	ErrContractNotDraft       = errors.New("only draft contracts can be accepted")
	ErrContractNotActive      = errors.New("only active contracts can be completed")
	ErrInvalidContractDates   = errors.New("start date must precede end date")
	ErrDuplicateParticipation = errors.New("cashier already participates in this quotation")
	ErrExceedsRemaining       = errors.New("amount exceeds remaining quotation balance")
	ErrDailyLimitExceeded     = errors.New("amount exceeds account daily limit")
	ErrAccountInactive        = errors.New("cashier account is inactive")
	ErrTransactionNotOpen     = errors.New("transaction is not open")
	ErrCompanyExists          = errors.New("company with this tax id already exists")
	ErrEmailTaken             = errors.New("email already registered")
	ErrRegistrationDecided    = errors.New("registration request already reviewed")
	ErrNoValidOffers          = errors.New("no valid offers for requested amount")
	ErrCompanySuspended       = errors.New("company is suspended")
	ErrProfileInactive        = errors.New("profile is inactive")
)
