package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nordex-trade/mercury-api/internal/auth"
	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

type profileByEmail interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

type tokenIssuer interface {
	GenerateToken(profile *domain.Profile) (string, error)
}

// JWTIssuer adapts the auth package to the tokenIssuer interface.
type JWTIssuer struct {
	Secret string
	Expiry time.Duration
}

func (i JWTIssuer) GenerateToken(p *domain.Profile) (string, error) {
	return auth.GenerateToken(p.ID, p.Email, p.Role, i.Secret, i.Expiry)
}

type AuthService struct {
	profiles profileByEmail
	issuer   tokenIssuer
}

func NewAuthService(profiles profileByEmail, issuer tokenIssuer) *AuthService {
	return &AuthService{profiles: profiles, issuer: issuer}
}

// Login verifies credentials and issues a signed token. Lookup misses and
// password mismatches collapse into the same error so the response does
// not leak which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}
	if p.Status != domain.ProfileStatusActive {
		return "", nil, fmt.Errorf("Login: %w", domain.ErrProfileInactive)
	}

	token, err := s.issuer.GenerateToken(p)
	if err != nil {
		return "", nil, fmt.Errorf("Login: %w", err)
	}

	logging.FromContext(ctx).Info("login succeeded", "profile_id", p.ID, "role", p.Role)
	return token, p, nil
}
