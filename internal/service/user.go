package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

type userRepo interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	users     userRepo
	companies companyGetter
	isUnique  uniqueViolationChecker
}

func NewUserService(users userRepo, companies companyGetter, isUnique uniqueViolationChecker) *UserService {
	return &UserService{users: users, companies: companies, isUnique: isUnique}
}

type CreateUserParams struct {
	Email     string
	Name      string
	Password  string
	Role      domain.Role
	CompanyID *uuid.UUID
}

func (s *UserService) Create(ctx context.Context, params CreateUserParams) (*domain.Profile, error) {
	if !params.Role.IsValid() {
		return nil, fmt.Errorf("CreateUser: %w", domain.ErrInvalidRequest)
	}
	if params.Role == domain.RoleImportador {
		if params.CompanyID == nil {
			return nil, fmt.Errorf("CreateUser: importer needs a company: %w", domain.ErrInvalidRequest)
		}
		if _, err := s.companies.GetByID(ctx, *params.CompanyID); err != nil {
			return nil, fmt.Errorf("CreateUser: company: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("CreateUser: hash password: %w", err)
	}

	p := &domain.Profile{
		ID:           uuid.New(),
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: string(hash),
		Role:         params.Role,
		CompanyID:    params.CompanyID,
		Status:       domain.ProfileStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, p); err != nil {
		if s.isUnique != nil && s.isUnique(err) {
			return nil, fmt.Errorf("CreateUser: %w", domain.ErrEmailTaken)
		}
		return nil, fmt.Errorf("CreateUser: %w", err)
	}

	logging.FromContext(ctx).Info("user created", "profile_id", p.ID, "role", p.Role)
	return p, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return p, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.Profile, error) {
	ps, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return ps, nil
}

type UpdateUserParams struct {
	ID        uuid.UUID
	Name      *string
	Role      *domain.Role
	CompanyID *uuid.UUID
	Password  *string
}

func (s *UserService) Update(ctx context.Context, params UpdateUserParams) (*domain.Profile, error) {
	p, err := s.users.GetByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateUser: %w", err)
	}

	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Role != nil {
		if !params.Role.IsValid() {
			return nil, fmt.Errorf("UpdateUser: %w", domain.ErrInvalidRequest)
		}
		p.Role = *params.Role
	}
	if params.CompanyID != nil {
		if _, err := s.companies.GetByID(ctx, *params.CompanyID); err != nil {
			return nil, fmt.Errorf("UpdateUser: company: %w", err)
		}
		p.CompanyID = params.CompanyID
	}

	if err := s.users.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("UpdateUser: %w", err)
	}

	if params.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("UpdateUser: hash password: %w", err)
		}
		if err := s.users.UpdatePassword(ctx, p.ID, string(hash)); err != nil {
			return nil, fmt.Errorf("UpdateUser: %w", err)
		}
	}

	return p, nil
}

func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("DeactivateUser: %w", err)
	}
	logging.FromContext(ctx).Info("user deactivated", "profile_id", id)
	return nil
}
