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

type requestService interface {
	Create(ctx context.Context, params service.CreateRequestParams) (*domain.Request, error)
	GetForActor(ctx context.Context, requestID, actorID uuid.UUID) (*domain.Request, error)
	ListForActor(ctx context.Context, actorID uuid.UUID) ([]domain.Request, error)
}

type RequestHandler struct {
	requests requestService
}

func NewRequestHandler(requests requestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type createRequestRequest struct {
	CompanyID   string  `json:"company_id"`
	ProviderID  string  `json:"provider_id"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Description *string `json:"description"`
}

func (r createRequestRequest) Validate() []FieldError {
	var errs []FieldError

	if r.ProviderID == "" {
		errs = append(errs, FieldError{Field: "provider_id", Message: "required"})
	} else if _, err := uuid.Parse(r.ProviderID); err != nil {
		errs = append(errs, FieldError{Field: "provider_id", Message: "must be a UUID"})
	}

	if r.CompanyID != "" {
		if _, err := uuid.Parse(r.CompanyID); err != nil {
			errs = append(errs, FieldError{Field: "company_id", Message: "must be a UUID"})
		}
	}

	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if d, err := decimal.NewFromString(r.Amount); err != nil || !d.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a positive number"})
	}

	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.Currency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "must be USD, EUR, or CNY"})
	}

	return errs
}

type requestDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	CompanyID   uuid.UUID `json:"company_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	CreatedBy   uuid.UUID `json:"created_by"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRequestDTO(req *domain.Request) requestDTO {
	return requestDTO{
		ID:          req.ID,
		Code:        req.Code,
		CompanyID:   req.CompanyID,
		ProviderID:  req.ProviderID,
		CreatedBy:   req.CreatedBy,
		Amount:      req.Amount.String(),
		Currency:    string(req.Currency),
		Description: req.Description,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	params := service.CreateRequestParams{
		ActorID:     claims.ProfileID,
		ProviderID:  uuid.MustParse(req.ProviderID),
		Amount:      decimal.RequireFromString(req.Amount),
		Currency:    domain.Currency(req.Currency),
		Description: req.Description,
	}
	if req.CompanyID != "" {
		params.CompanyID = uuid.MustParse(req.CompanyID)
	}

	created, err := h.requests.Create(r.Context(), params)
	if err != nil {
		log.Warn("request creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/requests/%s", created.ID))
	RespondSuccess(w, http.StatusCreated, toRequestDTO(created))
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	req, err := h.requests.GetForActor(r.Context(), requestID, claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRequestDTO(req))
}

func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	reqs, err := h.requests.ListForActor(r.Context(), claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]requestDTO, 0, len(reqs))
	for i := range reqs {
		dtos = append(dtos, toRequestDTO(&reqs[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
