package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/auth"
	"github.com/nordex-trade/mercury-api/internal/docgen"
	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/service"
)

type contractService interface {
	Generate(ctx context.Context, params service.GenerateContractParams) (*domain.Contract, error)
	Accept(ctx context.Context, contractID, actorID uuid.UUID) (*domain.Contract, error)
	Complete(ctx context.Context, params service.CompleteContractParams) (*domain.Contract, error)
	GetForActor(ctx context.Context, contractID, actorID uuid.UUID) (*domain.Contract, error)
	ListForActor(ctx context.Context, actorID uuid.UUID) ([]domain.Contract, error)
	DocumentData(ctx context.Context, contractID, actorID uuid.UUID) (*docgen.ContractData, error)
}

type docxRenderer interface {
	Render(data docgen.ContractData, w io.Writer) error
}

type ContractHandler struct {
	contracts contractService
	renderer  docxRenderer
}

func NewContractHandler(contracts contractService, renderer docxRenderer) *ContractHandler {
	return &ContractHandler{contracts: contracts, renderer: renderer}
}

type generateContractRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r generateContractRequest) Validate() []FieldError {
	var errs []FieldError
	for field, value := range map[string]string{"start_date": r.StartDate, "end_date": r.EndDate} {
		if value == "" {
			errs = append(errs, FieldError{Field: field, Message: "required"})
			continue
		}
		if _, err := time.Parse("2006-01-02", value); err != nil {
			errs = append(errs, FieldError{Field: field, Message: "must be a YYYY-MM-DD date"})
		}
	}
	return errs
}

type contractDTO struct {
	ID              uuid.UUID  `json:"id"`
	QuotationID     uuid.UUID  `json:"quotation_id"`
	RequestID       uuid.UUID  `json:"request_id"`
	CompanyID       uuid.UUID  `json:"company_id"`
	Status          string     `json:"status"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`
	CompletedBy     *uuid.UUID `json:"completed_by,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletionNotes *string    `json:"completion_notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toContractDTO(c *domain.Contract) contractDTO {
	return contractDTO{
		ID:              c.ID,
		QuotationID:     c.QuotationID,
		RequestID:       c.RequestID,
		CompanyID:       c.CompanyID,
		Status:          string(c.Status),
		StartDate:       c.StartDate.Format("2006-01-02"),
		EndDate:         c.EndDate.Format("2006-01-02"),
		SignedAt:        c.SignedAt,
		CompletedBy:     c.CompletedBy,
		CompletedAt:     c.CompletedAt,
		CompletionNotes: c.CompletionNotes,
		CreatedAt:       c.CreatedAt,
	}
}

func (h *ContractHandler) Generate(w http.ResponseWriter, r *http.Request) {
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

	var req generateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)

	c, err := h.contracts.Generate(r.Context(), service.GenerateContractParams{
		ActorID:     claims.ProfileID,
		QuotationID: quotationID,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		log.Warn("contract generation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/contracts/%s", c.ID))
	RespondSuccess(w, http.StatusCreated, toContractDTO(c))
}

func (h *ContractHandler) Accept(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	contractID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	c, err := h.contracts.Accept(r.Context(), contractID, claims.ProfileID)
	if err != nil {
		log.Warn("contract acceptance failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toContractDTO(c))
}

type completeContractRequest struct {
	Notes *string `json:"notes"`
}

func (h *ContractHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	contractID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req completeContractRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondAppError(w, ErrInvalidRequest, nil)
			return
		}
	}

	c, err := h.contracts.Complete(r.Context(), service.CompleteContractParams{
		ActorID:    claims.ProfileID,
		ContractID: contractID,
		Notes:      req.Notes,
	})
	if err != nil {
		log.Warn("contract completion failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toContractDTO(c))
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	contractID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	c, err := h.contracts.GetForActor(r.Context(), contractID, claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toContractDTO(c))
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	cs, err := h.contracts.ListForActor(r.Context(), claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]contractDTO, 0, len(cs))
	for i := range cs {
		dtos = append(dtos, toContractDTO(&cs[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

// Document streams the filled contract template as a DOCX download.
func (h *ContractHandler) Document(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	contractID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	data, err := h.contracts.DocumentData(r.Context(), contractID, claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="contract-%s.docx"`, contractID))
	if err := h.renderer.Render(*data, w); err != nil {
		// Headers are already out; all we can do is log.
		log.Error("contract document rendering failed", "error", err, "contract_id", contractID)
	}
}
