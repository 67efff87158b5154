package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

type cashierAccountRepository interface {
	Create(ctx context.Context, a *domain.CashierAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CashierAccount, error)
	List(ctx context.Context) ([]domain.CashierAccount, error)
	Update(ctx context.Context, a *domain.CashierAccount) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type CashierAccountHandler struct {
	accounts cashierAccountRepository
}

func NewCashierAccountHandler(accounts cashierAccountRepository) *CashierAccountHandler {
	return &CashierAccountHandler{accounts: accounts}
}

type cashierAccountRequest struct {
	Name              string  `json:"name"`
	Bank              string  `json:"bank"`
	Holder            string  `json:"holder"`
	DailyLimitBs      string  `json:"daily_limit_bs"`
	AssignedCashierID *string `json:"assigned_cashier_id"`
	IsDefault         bool    `json:"is_default"`
}

func (r cashierAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Bank == "" {
		errs = append(errs, FieldError{Field: "bank", Message: "required"})
	}
	if r.DailyLimitBs == "" {
		errs = append(errs, FieldError{Field: "daily_limit_bs", Message: "required"})
	} else if d, err := decimal.NewFromString(r.DailyLimitBs); err != nil || !d.IsPositive() {
		errs = append(errs, FieldError{Field: "daily_limit_bs", Message: "must be a positive number"})
	}
	if r.AssignedCashierID != nil {
		if _, err := uuid.Parse(*r.AssignedCashierID); err != nil {
			errs = append(errs, FieldError{Field: "assigned_cashier_id", Message: "must be a UUID"})
		}
	}
	return errs
}

type cashierAccountDTO struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Bank              string     `json:"bank"`
	Holder            string     `json:"holder"`
	DailyLimitBs      string     `json:"daily_limit_bs"`
	AssignedCashierID *uuid.UUID `json:"assigned_cashier_id,omitempty"`
	IsDefault         bool       `json:"is_default"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toCashierAccountDTO(a *domain.CashierAccount) cashierAccountDTO {
	return cashierAccountDTO{
		ID:                a.ID,
		Name:              a.Name,
		Bank:              a.Bank,
		Holder:            a.Holder,
		DailyLimitBs:      a.DailyLimitBs.String(),
		AssignedCashierID: a.AssignedCashierID,
		IsDefault:         a.IsDefault,
		Active:            a.Active,
		CreatedAt:         a.CreatedAt,
	}
}

func (h *CashierAccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cashierAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	a := &domain.CashierAccount{
		ID:           uuid.New(),
		Name:         req.Name,
		Bank:         req.Bank,
		Holder:       req.Holder,
		DailyLimitBs: decimal.RequireFromString(req.DailyLimitBs),
		IsDefault:    req.IsDefault,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if req.AssignedCashierID != nil {
		id := uuid.MustParse(*req.AssignedCashierID)
		a.AssignedCashierID = &id
	}

	if err := h.accounts.Create(r.Context(), a); err != nil {
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/admin/cashier-accounts/%s", a.ID))
	RespondSuccess(w, http.StatusCreated, toCashierAccountDTO(a))
}

func (h *CashierAccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	a, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCashierAccountDTO(a))
}

func (h *CashierAccountHandler) List(w http.ResponseWriter, r *http.Request) {
	as, err := h.accounts.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]cashierAccountDTO, 0, len(as))
	for i := range as {
		dtos = append(dtos, toCashierAccountDTO(&as[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *CashierAccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req cashierAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	a, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	a.Name = req.Name
	a.Bank = req.Bank
	a.Holder = req.Holder
	a.DailyLimitBs = decimal.RequireFromString(req.DailyLimitBs)
	a.IsDefault = req.IsDefault
	a.AssignedCashierID = nil
	if req.AssignedCashierID != nil {
		cashierID := uuid.MustParse(*req.AssignedCashierID)
		a.AssignedCashierID = &cashierID
	}

	if err := h.accounts.Update(r.Context(), a); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCashierAccountDTO(a))
}

func (h *CashierAccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.accounts.Deactivate(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]bool{"active": false})
}
