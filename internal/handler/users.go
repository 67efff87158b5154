package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/service"
)

type userService interface {
	Create(ctx context.Context, params service.CreateUserParams) (*domain.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, params service.UpdateUserParams) (*domain.Profile, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	CompanyID *string `json:"company_id"`
}

func (r createUserRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	if r.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "required"})
	} else if !domain.Role(r.Role).IsValid() {
		errs = append(errs, FieldError{Field: "role", Message: "must be SUPERADMIN, IMPORTADOR, or CAJERO"})
	}
	if r.CompanyID != nil {
		if _, err := uuid.Parse(*r.CompanyID); err != nil {
			errs = append(errs, FieldError{Field: "company_id", Message: "must be a UUID"})
		}
	}
	return errs
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	params := service.CreateUserParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}
	if req.CompanyID != nil {
		id := uuid.MustParse(*req.CompanyID)
		params.CompanyID = &id
	}

	p, err := h.users.Create(r.Context(), params)
	if err != nil {
		log.Warn("user creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/admin/users/%s", p.ID))
	RespondSuccess(w, http.StatusCreated, toProfileDTO(p))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	p, err := h.users.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProfileDTO(p))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ps, err := h.users.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]profileDTO, 0, len(ps))
	for i := range ps {
		dtos = append(dtos, toProfileDTO(&ps[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type updateUserRequest struct {
	Name      *string `json:"name"`
	Role      *string `json:"role"`
	CompanyID *string `json:"company_id"`
	Password  *string `json:"password"`
}

func (r updateUserRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Role != nil && !domain.Role(*r.Role).IsValid() {
		errs = append(errs, FieldError{Field: "role", Message: "must be SUPERADMIN, IMPORTADOR, or CAJERO"})
	}
	if r.CompanyID != nil {
		if _, err := uuid.Parse(*r.CompanyID); err != nil {
			errs = append(errs, FieldError{Field: "company_id", Message: "must be a UUID"})
		}
	}
	if r.Password != nil && len(*r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	return errs
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	params := service.UpdateUserParams{
		ID:       id,
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		params.Role = &role
	}
	if req.CompanyID != nil {
		companyID := uuid.MustParse(*req.CompanyID)
		params.CompanyID = &companyID
	}

	p, err := h.users.Update(r.Context(), params)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toProfileDTO(p))
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.users.Deactivate(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"status": string(domain.ProfileStatusInactive)})
}
