package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/auth"
	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/service"
)

type registrationService interface {
	Submit(ctx context.Context, params service.SubmitRegistrationParams) (*domain.RegistrationRequest, error)
	Approve(ctx context.Context, registrationID, actorID uuid.UUID) (*service.ApprovalResult, error)
	Reject(ctx context.Context, registrationID, actorID uuid.UUID) (*domain.RegistrationRequest, error)
	List(ctx context.Context) ([]domain.RegistrationRequest, error)
}

type RegistrationHandler struct {
	registrations registrationService
}

func NewRegistrationHandler(registrations registrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

type submitRegistrationRequest struct {
	CompanyName string  `json:"company_name"`
	TaxID       string  `json:"tax_id"`
	ContactName string  `json:"contact_name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
}

func (r submitRegistrationRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CompanyName == "" {
		errs = append(errs, FieldError{Field: "company_name", Message: "required"})
	}
	if r.TaxID == "" {
		errs = append(errs, FieldError{Field: "tax_id", Message: "required"})
	}
	if r.ContactName == "" {
		errs = append(errs, FieldError{Field: "contact_name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	return errs
}

type registrationDTO struct {
	ID          uuid.UUID  `json:"id"`
	CompanyName string     `json:"company_name"`
	TaxID       string     `json:"tax_id"`
	ContactName string     `json:"contact_name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Status      string     `json:"status"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toRegistrationDTO(reg *domain.RegistrationRequest) registrationDTO {
	return registrationDTO{
		ID:          reg.ID,
		CompanyName: reg.CompanyName,
		TaxID:       reg.TaxID,
		ContactName: reg.ContactName,
		Email:       reg.Email,
		Phone:       reg.Phone,
		Status:      string(reg.Status),
		ReviewedBy:  reg.ReviewedBy,
		ReviewedAt:  reg.ReviewedAt,
		CreatedAt:   reg.CreatedAt,
	}
}

func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req submitRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	reg, err := h.registrations.Submit(r.Context(), service.SubmitRegistrationParams{
		CompanyName: req.CompanyName,
		TaxID:       req.TaxID,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		log.Warn("registration submission failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, toRegistrationDTO(reg))
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]registrationDTO, 0, len(regs))
	for i := range regs {
		dtos = append(dtos, toRegistrationDTO(&regs[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type approvalResponse struct {
	Registration registrationDTO `json:"registration"`
	Company      companyDTO      `json:"company"`
	Profile      profileDTO      `json:"profile"`
	TempPassword string          `json:"temp_password"`
}

func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	result, err := h.registrations.Approve(r.Context(), id, claims.ProfileID)
	if err != nil {
		log.Warn("registration approval failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, approvalResponse{
		Registration: toRegistrationDTO(result.Registration),
		Company:      toCompanyDTO(result.Company),
		Profile:      toProfileDTO(result.Profile),
		TempPassword: result.TempPassword,
	})
}

func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	reg, err := h.registrations.Reject(r.Context(), id, claims.ProfileID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRegistrationDTO(reg))
}
