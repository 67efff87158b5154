package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nordex-trade/mercury-api/internal/docgen"
	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/service/codes"
)

type contractRepo interface {
	Create(ctx context.Context, tx *sql.Tx, c *domain.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*domain.Contract, error)
	List(ctx context.Context) ([]domain.Contract, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Contract, error)
	MarkActive(ctx context.Context, tx *sql.Tx, id uuid.UUID, signedAt time.Time) error
	MarkCompleted(ctx context.Context, tx *sql.Tx, id uuid.UUID, by uuid.UUID, at time.Time, notes *string) error
}

type quotationGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error)
}

type paymentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, p *domain.Payment) error
	LastCodeMatching(ctx context.Context, tx *sql.Tx, prefix string) (string, error)
}

type ContractService struct {
	contracts  contractRepo
	quotations quotationGetter
	requests   requestStatusRepo
	payments   paymentRepo
	companies  companyGetter
	providers  providerGetter
	profiles   profileRepo
	audits     auditRepo
	notifier   dispatcher
	db         *sql.DB
	isUnique   uniqueViolationChecker
}

func NewContractService(
	contracts contractRepo,
	quotations quotationGetter,
	requests requestStatusRepo,
	payments paymentRepo,
	companies companyGetter,
	providers providerGetter,
	profiles profileRepo,
	audits auditRepo,
	notifier dispatcher,
	db *sql.DB,
	isUnique uniqueViolationChecker,
) *ContractService {
	return &ContractService{
		contracts:  contracts,
		quotations: quotations,
		requests:   requests,
		payments:   payments,
		companies:  companies,
		providers:  providers,
		profiles:   profiles,
		audits:     audits,
		notifier:   notifier,
		db:         db,
		isUnique:   isUnique,
	}
}

type GenerateContractParams struct {
	ActorID     uuid.UUID
	QuotationID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
}

// Generate creates a draft contract from an accepted quotation. The unique
// constraint on quotation_id backs the one-contract-per-quotation rule.
func (s *ContractService) Generate(ctx context.Context, params GenerateContractParams) (*domain.Contract, error) {
	log := logging.FromContext(ctx)

	if !params.StartDate.Before(params.EndDate) {
		return nil, fmt.Errorf("GenerateContract: %w", domain.ErrInvalidContractDates)
	}

	q, err := s.quotations.GetByID(ctx, params.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("GenerateContract: %w", err)
	}
	if q.Status != domain.QuotationStatusAccepted {
		return nil, fmt.Errorf("GenerateContract: %w", domain.ErrQuotationNotAccepted)
	}

	req, err := s.requests.GetByID(ctx, q.RequestID)
	if err != nil {
		return nil, fmt.Errorf("GenerateContract: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("GenerateContract: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	c := &domain.Contract{
		ID:          uuid.New(),
		QuotationID: q.ID,
		RequestID:   req.ID,
		CompanyID:   req.CompanyID,
		Status:      domain.ContractStatusDraft,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.contracts.Create(ctx, tx, c); err != nil {
		return nil, fmt.Errorf("GenerateContract: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "contract.generated", "contract", c.ID, c, params.ActorID); err != nil {
		return nil, fmt.Errorf("GenerateContract: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("GenerateContract: commit: %w", err)
	}

	log.Info("contract generated", "contract_id", c.ID, "quotation_id", q.ID)

	importers, err := s.profiles.ListByCompany(ctx, req.CompanyID)
	if err != nil {
		log.Error("contract notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, importers, domain.NotificationTypeContract,
			"Contract ready",
			fmt.Sprintf("A contract for quotation %s is ready to sign", q.Code),
			map[string]string{"contract_id": c.ID.String()},
		)
	}

	return c, nil
}

// Accept signs a draft contract on behalf of an importer of the owning
// company. The request moves to approved in the same transaction.
func (s *ContractService) Accept(ctx context.Context, contractID, actorID uuid.UUID) (*domain.Contract, error) {
	log := logging.FromContext(ctx)

	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("AcceptContract: %w", err)
	}

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("AcceptContract: %w", err)
	}

	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil || *actor.CompanyID != c.CompanyID {
			return nil, fmt.Errorf("AcceptContract: %w", domain.ErrForbidden)
		}
	}
	if c.Status != domain.ContractStatusDraft {
		return nil, fmt.Errorf("AcceptContract: %w", domain.ErrContractNotDraft)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("AcceptContract: begin tx: %w", err)
	}
	defer tx.Rollback()

	signedAt := time.Now().UTC()
	if err := s.contracts.MarkActive(ctx, tx, c.ID, signedAt); err != nil {
		return nil, fmt.Errorf("AcceptContract: %w", err)
	}

	if err := s.requests.UpdateStatus(ctx, tx, c.RequestID, domain.RequestStatusApproved); err != nil {
		return nil, fmt.Errorf("AcceptContract: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "contract.accepted", "contract", c.ID,
		map[string]string{"status": string(domain.ContractStatusActive)}, actorID); err != nil {
		return nil, fmt.Errorf("AcceptContract: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("AcceptContract: commit: %w", err)
	}
	c.Status = domain.ContractStatusActive
	c.SignedAt = &signedAt

	log.Info("contract accepted", "contract_id", c.ID, "request_id", c.RequestID)

	admins, err := s.profiles.ListByRole(ctx, domain.RoleSuperadmin, domain.ProfileStatusActive)
	if err != nil {
		log.Error("contract notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, admins, domain.NotificationTypeContract,
			"Contract signed",
			fmt.Sprintf("Contract %s was signed", c.ID),
			map[string]string{"contract_id": c.ID.String()},
		)
	}

	return c, nil
}

type CompleteContractParams struct {
	ActorID    uuid.UUID
	ContractID uuid.UUID
	Notes      *string
}

// Complete closes an active contract, moves the request to completed and
// records the payment for the contract amount.
func (s *ContractService) Complete(ctx context.Context, params CompleteContractParams) (*domain.Contract, error) {
	log := logging.FromContext(ctx)

	c, err := s.contracts.GetByID(ctx, params.ContractID)
	if err != nil {
		return nil, fmt.Errorf("CompleteContract: %w", err)
	}
	if c.Status != domain.ContractStatusActive {
		return nil, fmt.Errorf("CompleteContract: %w", domain.ErrContractNotActive)
	}
	if !c.StartDate.Before(c.EndDate) {
		return nil, fmt.Errorf("CompleteContract: %w", domain.ErrInvalidContractDates)
	}

	q, err := s.quotations.GetByID(ctx, c.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("CompleteContract: %w", err)
	}
	company, err := s.companies.GetByID(ctx, c.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("CompleteContract: %w", err)
	}

	var payment *domain.Payment
	for attempt := 0; attempt < 2; attempt++ {
		payment, err = s.completeTx(ctx, params, c, q, company)
		if err == nil {
			break
		}
		if s.isUnique != nil && s.isUnique(err) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("CompleteContract: %w", err)
	}

	c.Status = domain.ContractStatusCompleted
	log.Info("contract completed",
		"contract_id", c.ID,
		"payment_code", payment.Code,
		"amount", payment.Amount,
	)

	importers, err := s.profiles.ListByCompany(ctx, c.CompanyID)
	if err != nil {
		log.Error("contract notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, importers, domain.NotificationTypePayment,
			"Contract completed",
			fmt.Sprintf("Contract for quotation %s completed, payment %s recorded", q.Code, payment.Code),
			map[string]string{"contract_id": c.ID.String(), "payment_id": payment.ID.String()},
		)
	}

	return c, nil
}

func (s *ContractService) completeTx(ctx context.Context, params CompleteContractParams, c *domain.Contract, q *domain.Quotation, company *domain.Company) (*domain.Payment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("completeTx: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := s.contracts.MarkCompleted(ctx, tx, c.ID, params.ActorID, now, params.Notes); err != nil {
		return nil, fmt.Errorf("completeTx: %w", err)
	}

	if err := s.requests.UpdateStatus(ctx, tx, c.RequestID, domain.RequestStatusCompleted); err != nil {
		return nil, fmt.Errorf("completeTx: %w", err)
	}

	monthPrefix := codes.MonthPrefix(company.Name, now)
	last, err := s.payments.LastCodeMatching(ctx, tx, monthPrefix)
	if err != nil {
		return nil, fmt.Errorf("completeTx: %w", err)
	}
	code, err := codes.Next(monthPrefix, last)
	if err != nil {
		return nil, fmt.Errorf("completeTx: %w", err)
	}

	payment := &domain.Payment{
		ID:         uuid.New(),
		Code:       code,
		ContractID: c.ID,
		CompanyID:  c.CompanyID,
		Amount:     q.Total,
		Currency:   q.Currency,
		Status:     domain.PaymentStatusCompleted,
		CreatedAt:  now,
	}
	if err := s.payments.Create(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("completeTx: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "contract.completed", "contract", c.ID,
		map[string]any{"payment_code": payment.Code, "notes": params.Notes}, params.ActorID); err != nil {
		return nil, fmt.Errorf("completeTx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("completeTx: commit: %w", err)
	}
	return payment, nil
}

// GetForActor applies the same visibility rule as requests: importers see
// only their own company's contracts.
func (s *ContractService) GetForActor(ctx context.Context, contractID, actorID uuid.UUID) (*domain.Contract, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("GetContract: %w", err)
	}

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("GetContract: %w", err)
	}

	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil || *actor.CompanyID != c.CompanyID {
			return nil, fmt.Errorf("GetContract: %w", domain.ErrNotFound)
		}
	}
	return c, nil
}

// DocumentData gathers everything the DOCX template needs for a contract.
func (s *ContractService) DocumentData(ctx context.Context, contractID, actorID uuid.UUID) (*docgen.ContractData, error) {
	c, err := s.GetForActor(ctx, contractID, actorID)
	if err != nil {
		return nil, fmt.Errorf("ContractDocument: %w", err)
	}

	q, err := s.quotations.GetByID(ctx, c.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("ContractDocument: %w", err)
	}
	req, err := s.requests.GetByID(ctx, c.RequestID)
	if err != nil {
		return nil, fmt.Errorf("ContractDocument: %w", err)
	}
	company, err := s.companies.GetByID(ctx, c.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("ContractDocument: %w", err)
	}
	provider, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("ContractDocument: %w", err)
	}

	return &docgen.ContractData{
		CompanyName:   company.Name,
		CompanyTaxID:  company.TaxID,
		ProviderName:  provider.Name,
		QuotationCode: q.Code,
		Amount:        q.Amount,
		Currency:      string(q.Currency),
		ExchangeRate:  q.ExchangeRate,
		Total:         q.Total,
		TotalInBs:     q.TotalInBs,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
	}, nil
}

func (s *ContractService) ListForActor(ctx context.Context, actorID uuid.UUID) ([]domain.Contract, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("ListContracts: %w", err)
	}

	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil {
			return nil, nil
		}
		cs, err := s.contracts.ListByCompany(ctx, *actor.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("ListContracts: %w", err)
		}
		return cs, nil
	}

	cs, err := s.contracts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListContracts: %w", err)
	}
	return cs, nil
}
