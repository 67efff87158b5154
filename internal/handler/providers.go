package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

type providerRepository interface {
	Create(ctx context.Context, p *domain.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
	List(ctx context.Context) ([]domain.Provider, error)
	Update(ctx context.Context, p *domain.Provider) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ProviderHandler struct {
	providers providerRepository
}

func NewProviderHandler(providers providerRepository) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

type providerRequest struct {
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	ContactEmail *string `json:"contact_email"`
	Phone        *string `json:"phone"`
}

func (r providerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Country == "" {
		errs = append(errs, FieldError{Field: "country", Message: "required"})
	}
	return errs
}

type providerDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toProviderDTO(p *domain.Provider) providerDTO {
	return providerDTO{
		ID:           p.ID,
		Name:         p.Name,
		Country:      p.Country,
		ContactEmail: p.ContactEmail,
		Phone:        p.Phone,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p := &domain.Provider{
		ID:           uuid.New(),
		Name:         req.Name,
		Country:      req.Country,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Status:       domain.ProviderStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.providers.Create(r.Context(), p); err != nil {
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/admin/providers/%s", p.ID))
	RespondSuccess(w, http.StatusCreated, toProviderDTO(p))
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	p, err := h.providers.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProviderDTO(p))
}

func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	ps, err := h.providers.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]providerDTO, 0, len(ps))
	for i := range ps {
		dtos = append(dtos, toProviderDTO(&ps[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req providerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p, err := h.providers.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	p.Name = req.Name
	p.Country = req.Country
	p.ContactEmail = req.ContactEmail
	p.Phone = req.Phone

	if err := h.providers.Update(r.Context(), p); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProviderDTO(p))
}

func (h *ProviderHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.providers.Deactivate(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"status": string(domain.ProviderStatusInactive)})
}
