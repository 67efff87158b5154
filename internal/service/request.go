package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/service/codes"
)

type requestRepo interface {
	Create(ctx context.Context, tx *sql.Tx, req *domain.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	List(ctx context.Context) ([]domain.Request, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Request, error)
	LastCodeMatching(ctx context.Context, tx *sql.Tx, prefix string) (string, error)
}

type companyGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)
}

type providerGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
}

type profileRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	ListByRole(ctx context.Context, role domain.Role, status domain.ProfileStatus) ([]domain.Profile, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Profile, error)
}

type dispatcher interface {
	Send(ctx context.Context, recipients []domain.Profile, nType domain.NotificationType, title, message string, metadata any)
}

// uniqueViolationChecker lets the services retry a code-generation insert
// once after losing the race for the next sequence number.
type uniqueViolationChecker func(error) bool

type RequestService struct {
	requests  requestRepo
	companies companyGetter
	providers providerGetter
	profiles  profileRepo
	audits    auditRepo
	notifier  dispatcher
	db        *sql.DB
	isUnique  uniqueViolationChecker
}

func NewRequestService(
	requests requestRepo,
	companies companyGetter,
	providers providerGetter,
	profiles profileRepo,
	audits auditRepo,
	notifier dispatcher,
	db *sql.DB,
	isUnique uniqueViolationChecker,
) *RequestService {
	return &RequestService{
		requests:  requests,
		companies: companies,
		providers: providers,
		profiles:  profiles,
		audits:    audits,
		notifier:  notifier,
		db:        db,
		isUnique:  isUnique,
	}
}

type CreateRequestParams struct {
	ActorID     uuid.UUID
	CompanyID   uuid.UUID
	ProviderID  uuid.UUID
	Amount      decimal.Decimal
	Currency    domain.Currency
	Description *string
}

func (s *RequestService) Create(ctx context.Context, params CreateRequestParams) (*domain.Request, error) {
	log := logging.FromContext(ctx)

	actor, err := s.profiles.GetByID(ctx, params.ActorID)
	if err != nil {
		return nil, fmt.Errorf("CreateRequest: %w", err)
	}

	companyID := params.CompanyID
	if actor.Role == domain.RoleImportador {
		// Importers always file against their own company.
		if actor.CompanyID == nil {
			return nil, fmt.Errorf("CreateRequest: importer has no company: %w", domain.ErrForbidden)
		}
		companyID = *actor.CompanyID
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("CreateRequest: %w", err)
	}
	if company.Status != domain.CompanyStatusActive {
		return nil, fmt.Errorf("CreateRequest: %w", domain.ErrCompanySuspended)
	}

	if _, err := s.providers.GetByID(ctx, params.ProviderID); err != nil {
		return nil, fmt.Errorf("CreateRequest: provider: %w", err)
	}

	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("CreateRequest: %w", domain.ErrInvalidAmount)
	}
	if !params.Currency.IsValid() {
		return nil, fmt.Errorf("CreateRequest: %w", domain.ErrInvalidCurrency)
	}

	var req *domain.Request
	// One retry: a concurrent creation for the same company can take our
	// sequence number, which surfaces as a unique violation on code.
	for attempt := 0; attempt < 2; attempt++ {
		req, err = s.insertRequest(ctx, params, company, actor.ID)
		if err == nil {
			break
		}
		if s.isUnique != nil && s.isUnique(err) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("CreateRequest: %w", err)
	}

	log.Info("request created",
		"request_id", req.ID,
		"code", req.Code,
		"company_id", companyID,
		"amount", req.Amount,
		"currency", req.Currency,
	)

	admins, err := s.profiles.ListByRole(ctx, domain.RoleSuperadmin, domain.ProfileStatusActive)
	if err != nil {
		log.Error("request notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, admins, domain.NotificationTypeRequest,
			"New import request",
			fmt.Sprintf("%s filed request %s for %s %s", company.Name, req.Code, req.Amount, req.Currency),
			map[string]string{"request_id": req.ID.String()},
		)
	}

	return req, nil
}

func (s *RequestService) insertRequest(ctx context.Context, params CreateRequestParams, company *domain.Company, actorID uuid.UUID) (*domain.Request, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insertRequest: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	monthPrefix := codes.MonthPrefix(company.Name, now)
	last, err := s.requests.LastCodeMatching(ctx, tx, monthPrefix)
	if err != nil {
		return nil, fmt.Errorf("insertRequest: %w", err)
	}
	code, err := codes.Next(monthPrefix, last)
	if err != nil {
		return nil, fmt.Errorf("insertRequest: %w", err)
	}

	req := &domain.Request{
		ID:          uuid.New(),
		Code:        code,
		CompanyID:   company.ID,
		ProviderID:  params.ProviderID,
		CreatedBy:   actorID,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Description: params.Description,
		Status:      domain.RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.requests.Create(ctx, tx, req); err != nil {
		return nil, fmt.Errorf("insertRequest: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "request.created", "request", req.ID, req, actorID); err != nil {
		return nil, fmt.Errorf("insertRequest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insertRequest: commit: %w", err)
	}
	return req, nil
}

// GetForActor returns the request if the actor may see it: admins and
// cashiers see everything, importers only their company's requests.
func (s *RequestService) GetForActor(ctx context.Context, requestID, actorID uuid.UUID) (*domain.Request, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("GetRequest: %w", err)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("GetRequest: %w", err)
	}

	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil || *actor.CompanyID != req.CompanyID {
			return nil, fmt.Errorf("GetRequest: %w", domain.ErrNotFound)
		}
	}
	return req, nil
}

func (s *RequestService) ListForActor(ctx context.Context, actorID uuid.UUID) ([]domain.Request, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("ListRequests: %w", err)
	}

	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil {
			return nil, nil
		}
		reqs, err := s.requests.ListByCompany(ctx, *actor.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("ListRequests: %w", err)
		}
		return reqs, nil
	}

	reqs, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRequests: %w", err)
	}
	return reqs, nil
}
