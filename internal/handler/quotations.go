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
	"github.com/nordex-trade/mercury-api/internal/service"
)

type quotationService interface {
	Create(ctx context.Context, params service.CreateQuotationParams) (*domain.Quotation, error)
	ListByRequest(ctx context.Context, requestID, actorID uuid.UUID) ([]domain.Quotation, error)
	Decide(ctx context.Context, quotationID, actorID uuid.UUID, accept bool) (*domain.Quotation, error)
}

type QuotationHandler struct {
	quotations quotationService
}

func NewQuotationHandler(quotations quotationService) *QuotationHandler {
	return &QuotationHandler{quotations: quotations}
}

type createQuotationRequest struct {
	Amount       string  `json:"amount"`
	ExchangeRate string  `json:"exchange_rate"`
	ServiceFee   string  `json:"service_fee"`
	HandlingFee  string  `json:"handling_fee"`
	ValidUntil   *string `json:"valid_until"`
}

func (r createQuotationRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if d, err := decimal.NewFromString(r.Amount); err != nil || !d.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a positive number"})
	}

	if r.ExchangeRate == "" {
		errs = append(errs, FieldError{Field: "exchange_rate", Message: "required"})
	} else if d, err := decimal.NewFromString(r.ExchangeRate); err != nil || !d.IsPositive() {
		errs = append(errs, FieldError{Field: "exchange_rate", Message: "must be a positive number"})
	}

	for field, value := range map[string]string{"service_fee": r.ServiceFee, "handling_fee": r.HandlingFee} {
		if value == "" {
			continue
		}
		if d, err := decimal.NewFromString(value); err != nil || d.IsNegative() {
			errs = append(errs, FieldError{Field: field, Message: "must be a non-negative number"})
		}
	}

	if r.ValidUntil != nil {
		if _, err := time.Parse(time.RFC3339, *r.ValidUntil); err != nil {
			errs = append(errs, FieldError{Field: "valid_until", Message: "must be an RFC3339 timestamp"})
		}
	}

	return errs
}

type quotationDTO struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	RequestID    uuid.UUID  `json:"request_id"`
	Amount       string     `json:"amount"`
	Currency     string     `json:"currency"`
	ExchangeRate string     `json:"exchange_rate"`
	ServiceFee   string     `json:"service_fee"`
	HandlingFee  string     `json:"handling_fee"`
	Total        string     `json:"total"`
	TotalInBs    string     `json:"total_in_bs"`
	Status       string     `json:"status"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toQuotationDTO(q *domain.Quotation) quotationDTO {
	return quotationDTO{
		ID:           q.ID,
		Code:         q.Code,
		RequestID:    q.RequestID,
		Amount:       q.Amount.String(),
		Currency:     string(q.Currency),
		ExchangeRate: q.ExchangeRate.String(),
		ServiceFee:   q.ServiceFee.String(),
		HandlingFee:  q.HandlingFee.String(),
		Total:        q.Total.String(),
		TotalInBs:    q.TotalInBs.String(),
		Status:       string(q.Status),
		ValidUntil:   q.ValidUntil,
		CreatedAt:    q.CreatedAt,
	}
}

func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}

func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req createQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	params := service.CreateQuotationParams{
		ActorID:      claims.ProfileID,
		RequestID:    requestID,
		Amount:       decimal.RequireFromString(req.Amount),
		ExchangeRate: decimal.RequireFromString(req.ExchangeRate),
		ServiceFee:   decimalOrZero(req.ServiceFee),
		HandlingFee:  decimalOrZero(req.HandlingFee),
	}
	if req.ValidUntil != nil {
		t, _ := time.Parse(time.RFC3339, *req.ValidUntil)
		params.ValidUntil = &t
	}

	q, err := h.quotations.Create(r.Context(), params)
	if err != nil {
		log.Warn("quotation creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/quotations/%s", q.ID))
	RespondSuccess(w, http.StatusCreated, toQuotationDTO(q))
}

func (h *QuotationHandler) ListByRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	quotations, err := h.quotations.ListByRequest(r.Context(), requestID, claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]quotationDTO, 0, len(quotations))
	for i := range quotations {
		dtos = append(dtos, toQuotationDTO(&quotations[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *QuotationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *QuotationHandler) decide(w http.ResponseWriter, r *http.Request, accept bool) {
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

	q, err := h.quotations.Decide(r.Context(), quotationID, claims.ProfileID, accept)
	if err != nil {
		log.Warn("quotation decision failed", "error", err, "accept", accept)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toQuotationDTO(q))
}
