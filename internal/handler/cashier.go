package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/auth"
	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/report"
	"github.com/nordex-trade/mercury-api/internal/service"
)

type cashierService interface {
	Participate(ctx context.Context, params service.ParticipateParams) (*domain.CashierTransaction, error)
	Complete(ctx context.Context, transactionID, actorID uuid.UUID, delivered decimal.Decimal) (*domain.CashierTransaction, error)
	Cancel(ctx context.Context, transactionID, actorID uuid.UUID) (*domain.CashierTransaction, error)
	ListForCashier(ctx context.Context, cashierID uuid.UUID) ([]domain.CashierTransaction, error)
	Sync(ctx context.Context, actorID uuid.UUID) (int, error)
	Report(ctx context.Context, from, to time.Time) ([]service.ReportRow, error)
}

type CashierHandler struct {
	cashier cashierService
}

func NewCashierHandler(cashier cashierService) *CashierHandler {
	return &CashierHandler{cashier: cashier}
}

type participateRequest struct {
	Amount string `json:"amount"`
}

func (r participateRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if d, err := decimal.NewFromString(r.Amount); err != nil || !d.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a positive number"})
	}
	return errs
}

type cashierTransactionDTO struct {
	ID               uuid.UUID  `json:"id"`
	QuotationID      uuid.UUID  `json:"quotation_id"`
	CashierID        uuid.UUID  `json:"cashier_id"`
	AccountID        uuid.UUID  `json:"account_id"`
	AssignedAmountBs string     `json:"assigned_amount_bs"`
	ExpectedUsdt     string     `json:"expected_usdt"`
	DeliveredUsdt    *string    `json:"delivered_usdt,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func toCashierTransactionDTO(t *domain.CashierTransaction) cashierTransactionDTO {
	dto := cashierTransactionDTO{
		ID:               t.ID,
		QuotationID:      t.QuotationID,
		CashierID:        t.CashierID,
		AccountID:        t.AccountID,
		AssignedAmountBs: t.AssignedAmountBs.String(),
		ExpectedUsdt:     t.ExpectedUsdt.String(),
		Status:           string(t.Status),
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
	}
	if t.DeliveredUsdt != nil {
		s := t.DeliveredUsdt.String()
		dto.DeliveredUsdt = &s
	}
	return dto
}

func (h *CashierHandler) Participate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	quotationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req participateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.cashier.Participate(r.Context(), service.ParticipateParams{
		ActorID:     claims.ProfileID,
		QuotationID: quotationID,
		AmountBs:    decimal.RequireFromString(req.Amount),
	})
	if err != nil {
		log.Warn("cashier participation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/cashier/transactions/%s", t.ID))
	RespondSuccess(w, http.StatusCreated, toCashierTransactionDTO(t))
}

type completeTransactionRequest struct {
	DeliveredUsdt string `json:"delivered_usdt"`
}

func (r completeTransactionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.DeliveredUsdt == "" {
		errs = append(errs, FieldError{Field: "delivered_usdt", Message: "required"})
	} else if d, err := decimal.NewFromString(r.DeliveredUsdt); err != nil || !d.IsPositive() {
		errs = append(errs, FieldError{Field: "delivered_usdt", Message: "must be a positive number"})
	}
	return errs
}

func (h *CashierHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req completeTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	t, err := h.cashier.Complete(r.Context(), transactionID, claims.ProfileID,
		decimal.RequireFromString(req.DeliveredUsdt))
	if err != nil {
		log.Warn("cashier transaction completion failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCashierTransactionDTO(t))
}

func (h *CashierHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	t, err := h.cashier.Cancel(r.Context(), transactionID, claims.ProfileID)
	if err != nil {
		log.Warn("cashier transaction cancellation failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCashierTransactionDTO(t))
}

func (h *CashierHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	ts, err := h.cashier.ListForCashier(r.Context(), claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]cashierTransactionDTO, 0, len(ts))
	for i := range ts {
		dtos = append(dtos, toCashierTransactionDTO(&ts[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *CashierHandler) Sync(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	created, err := h.cashier.Sync(r.Context(), claims.ProfileID)
	if err != nil {
		log.Error("cashier transaction sync failed", "error", err, "created", created)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]int{"created": created})
}

type reportRowDTO struct {
	TransactionID    uuid.UUID  `json:"transaction_id"`
	QuotationCode    string     `json:"quotation_code"`
	CashierEmail     string     `json:"cashier_email"`
	AccountName      string     `json:"account_name"`
	AssignedAmountBs string     `json:"assigned_amount_bs"`
	ExpectedUsdt     string     `json:"expected_usdt"`
	DeliveredUsdt    *string    `json:"delivered_usdt,omitempty"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Report serves the cashier activity report as JSON, or CSV when
// ?format=csv. The window defaults to the last 30 days.
func (h *CashierHandler) Report(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "from", Message: "must be a YYYY-MM-DD date"}})
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "to", Message: "must be a YYYY-MM-DD date"}})
			return
		}
		// Inclusive end of day.
		to = t.AddDate(0, 0, 1)
	}

	rows, err := h.cashier.Report(r.Context(), from, to)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="cashier-report.csv"`)
		if err := report.WriteCSV(w, rows); err != nil {
			log.Error("cashier report csv write failed", "error", err)
		}
		return
	}

	dtos := make([]reportRowDTO, 0, len(rows))
	for _, row := range rows {
		dto := reportRowDTO{
			TransactionID:    row.TransactionID,
			QuotationCode:    row.QuotationCode,
			CashierEmail:     row.CashierEmail,
			AccountName:      row.AccountName,
			AssignedAmountBs: row.AssignedAmountBs.String(),
			ExpectedUsdt:     row.ExpectedUsdt.String(),
			Status:           string(row.Status),
			CreatedAt:        row.CreatedAt,
			CompletedAt:      row.CompletedAt,
		}
		if row.DeliveredUsdt != nil {
			s := row.DeliveredUsdt.String()
			dto.DeliveredUsdt = &s
		}
		dtos = append(dtos, dto)
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
