package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

type registrationRepo interface {
	Create(ctx context.Context, reg *domain.RegistrationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RegistrationRequest, error)
	List(ctx context.Context) ([]domain.RegistrationRequest, error)
	Decide(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.RegistrationStatus, reviewedBy uuid.UUID, reviewedAt time.Time) error
}

type companyCreator interface {
	CreateTx(ctx context.Context, tx *sql.Tx, c *domain.Company) error
}

type profileCreator interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *domain.Profile) error
}

type RegistrationService struct {
	registrations registrationRepo
	companies     companyCreator
	profiles      profileCreator
	profileReader profileRepo
	audits        auditRepo
	notifier      dispatcher
	db            *sql.DB
	isUnique      uniqueViolationChecker
}

func NewRegistrationService(
	registrations registrationRepo,
	companies companyCreator,
	profiles profileCreator,
	profileReader profileRepo,
	audits auditRepo,
	notifier dispatcher,
	db *sql.DB,
	isUnique uniqueViolationChecker,
) *RegistrationService {
	return &RegistrationService{
		registrations: registrations,
		companies:     companies,
		profiles:      profiles,
		profileReader: profileReader,
		audits:        audits,
		notifier:      notifier,
		db:            db,
		isUnique:      isUnique,
	}
}

type SubmitRegistrationParams struct {
	CompanyName string
	TaxID       string
	ContactName string
	Email       string
	Phone       *string
}

// Submit files a public registration request for admin review.
func (s *RegistrationService) Submit(ctx context.Context, params SubmitRegistrationParams) (*domain.RegistrationRequest, error) {
	log := logging.FromContext(ctx)

	reg := &domain.RegistrationRequest{
		ID:          uuid.New(),
		CompanyName: params.CompanyName,
		TaxID:       params.TaxID,
		ContactName: params.ContactName,
		Email:       params.Email,
		Phone:       params.Phone,
		Status:      domain.RegistrationStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("SubmitRegistration: %w", err)
	}

	log.Info("registration request submitted", "registration_id", reg.ID, "company", reg.CompanyName)

	admins, err := s.profileReader.ListByRole(ctx, domain.RoleSuperadmin, domain.ProfileStatusActive)
	if err != nil {
		log.Error("registration notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, admins, domain.NotificationTypeRegistration,
			"New registration request",
			fmt.Sprintf("%s (%s) requested access", reg.CompanyName, reg.Email),
			map[string]string{"registration_id": reg.ID.String()},
		)
	}

	return reg, nil
}

// ApprovalResult carries the credentials created for the new importer. The
// temporary password is returned once and never stored in clear.
type ApprovalResult struct {
	Registration *domain.RegistrationRequest
	Company      *domain.Company
	Profile      *domain.Profile
	TempPassword string
}

// Approve turns a pending registration into a company plus an importer
// profile in one transaction. A second decision on the same request fails
// with ErrRegistrationDecided.
func (s *RegistrationService) Approve(ctx context.Context, registrationID, actorID uuid.UUID) (*ApprovalResult, error) {
	log := logging.FromContext(ctx)

	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("ApproveRegistration: %w", err)
	}
	if reg.Status != domain.RegistrationStatusPending {
		return nil, fmt.Errorf("ApproveRegistration: %w", domain.ErrRegistrationDecided)
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("ApproveRegistration: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ApproveRegistration: hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ApproveRegistration: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := s.registrations.Decide(ctx, tx, reg.ID, domain.RegistrationStatusApproved, actorID, now); err != nil {
		return nil, fmt.Errorf("ApproveRegistration: %w", err)
	}

	company := &domain.Company{
		ID:        uuid.New(),
		Name:      reg.CompanyName,
		TaxID:     reg.TaxID,
		Phone:     reg.Phone,
		Email:     &reg.Email,
		Status:    domain.CompanyStatusActive,
		CreatedAt: now,
	}
	if err := s.companies.CreateTx(ctx, tx, company); err != nil {
		if s.isUnique != nil && s.isUnique(err) {
			return nil, fmt.Errorf("ApproveRegistration: %w", domain.ErrCompanyExists)
		}
		return nil, fmt.Errorf("ApproveRegistration: %w", err)
	}

	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        reg.Email,
		Name:         reg.ContactName,
		PasswordHash: string(hash),
		Role:         domain.RoleImportador,
		CompanyID:    &company.ID,
		Status:       domain.ProfileStatusActive,
		CreatedAt:    now,
	}
	if err := s.profiles.CreateTx(ctx, tx, profile); err != nil {
		if s.isUnique != nil && s.isUnique(err) {
			return nil, fmt.Errorf("ApproveRegistration: %w", domain.ErrEmailTaken)
		}
		return nil, fmt.Errorf("ApproveRegistration: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "registration.approved", "registration_request", reg.ID,
		map[string]string{"company_id": company.ID.String(), "profile_id": profile.ID.String()}, actorID); err != nil {
		return nil, fmt.Errorf("ApproveRegistration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ApproveRegistration: commit: %w", err)
	}

	reg.Status = domain.RegistrationStatusApproved
	reg.ReviewedBy = &actorID
	reg.ReviewedAt = &now

	log.Info("registration approved",
		"registration_id", reg.ID,
		"company_id", company.ID,
		"profile_id", profile.ID,
	)

	s.notifier.Send(ctx, []domain.Profile{*profile}, domain.NotificationTypeRegistration,
		"Welcome to Mercury",
		fmt.Sprintf("Your company %s was approved. Sign in with your registered email.", company.Name),
		map[string]string{"company_id": company.ID.String()},
	)

	return &ApprovalResult{
		Registration: reg,
		Company:      company,
		Profile:      profile,
		TempPassword: tempPassword,
	}, nil
}

// Reject marks a pending registration as rejected.
func (s *RegistrationService) Reject(ctx context.Context, registrationID, actorID uuid.UUID) (*domain.RegistrationRequest, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("RejectRegistration: %w", err)
	}
	if reg.Status != domain.RegistrationStatusPending {
		return nil, fmt.Errorf("RejectRegistration: %w", domain.ErrRegistrationDecided)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("RejectRegistration: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := s.registrations.Decide(ctx, tx, reg.ID, domain.RegistrationStatusRejected, actorID, now); err != nil {
		return nil, fmt.Errorf("RejectRegistration: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "registration.rejected", "registration_request", reg.ID,
		map[string]string{"status": string(domain.RegistrationStatusRejected)}, actorID); err != nil {
		return nil, fmt.Errorf("RejectRegistration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("RejectRegistration: commit: %w", err)
	}

	reg.Status = domain.RegistrationStatusRejected
	reg.ReviewedBy = &actorID
	reg.ReviewedAt = &now

	logging.FromContext(ctx).Info("registration rejected", "registration_id", reg.ID)
	return reg, nil
}

func (s *RegistrationService) List(ctx context.Context) ([]domain.RegistrationRequest, error) {
	regs, err := s.registrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: %w", err)
	}
	return regs, nil
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generateTempPassword: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
