package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

type companyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
	Update(ctx context.Context, c *domain.Company) error
	Suspend(ctx context.Context, id uuid.UUID) error
}

type CompanyHandler struct {
	companies companyRepository
	isUnique  func(error) bool
}

func NewCompanyHandler(companies companyRepository, isUnique func(error) bool) *CompanyHandler {
	return &CompanyHandler{companies: companies, isUnique: isUnique}
}

type companyRequest struct {
	Name    string  `json:"name"`
	TaxID   string  `json:"tax_id"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

func (r companyRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.TaxID == "" {
		errs = append(errs, FieldError{Field: "tax_id", Message: "required"})
	}
	return errs
}

type companyDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toCompanyDTO(c *domain.Company) companyDTO {
	return companyDTO{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c := &domain.Company{
		ID:        uuid.New(),
		Name:      req.Name,
		TaxID:     req.TaxID,
		Address:   req.Address,
		Phone:     req.Phone,
		Email:     req.Email,
		Status:    domain.CompanyStatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.companies.Create(r.Context(), c); err != nil {
		if h.isUnique != nil && h.isUnique(err) {
			RespondAppError(w, ErrCompanyExists, nil)
			return
		}
		log.Error("company creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/admin/companies/%s", c.ID))
	RespondSuccess(w, http.StatusCreated, toCompanyDTO(c))
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	c, err := h.companies.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCompanyDTO(c))
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.companies.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]companyDTO, 0, len(cs))
	for i := range cs {
		dtos = append(dtos, toCompanyDTO(&cs[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.companies.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	c.Name = req.Name
	c.TaxID = req.TaxID
	c.Address = req.Address
	c.Phone = req.Phone
	c.Email = req.Email

	if err := h.companies.Update(r.Context(), c); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toCompanyDTO(c))
}

// Suspend is the delete operation for companies; rows stay for audit and
// foreign keys.
func (h *CompanyHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.companies.Suspend(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"status": string(domain.CompanyStatusSuspended)})
}
