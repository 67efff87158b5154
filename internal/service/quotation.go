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

type quotationRepo interface {
	Create(ctx context.Context, tx *sql.Tx, q *domain.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Quotation, error)
	CountAccepted(ctx context.Context, tx *sql.Tx, requestID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.QuotationStatus) error
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	LastCodeMatching(ctx context.Context, tx *sql.Tx, prefix string) (string, error)
}

type requestStatusRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.RequestStatus) error
}

type QuotationService struct {
	quotations quotationRepo
	requests   requestStatusRepo
	companies  companyGetter
	profiles   profileRepo
	audits     auditRepo
	notifier   dispatcher
	db         *sql.DB
	isUnique   uniqueViolationChecker
}

func NewQuotationService(
	quotations quotationRepo,
	requests requestStatusRepo,
	companies companyGetter,
	profiles profileRepo,
	audits auditRepo,
	notifier dispatcher,
	db *sql.DB,
	isUnique uniqueViolationChecker,
) *QuotationService {
	return &QuotationService{
		quotations: quotations,
		requests:   requests,
		companies:  companies,
		profiles:   profiles,
		audits:     audits,
		notifier:   notifier,
		db:         db,
		isUnique:   isUnique,
	}
}

type CreateQuotationParams struct {
	ActorID      uuid.UUID
	RequestID    uuid.UUID
	Amount       decimal.Decimal
	ExchangeRate decimal.Decimal
	ServiceFee   decimal.Decimal
	HandlingFee  decimal.Decimal
	ValidUntil   *time.Time
}

// QuotationTotals is the derived money breakdown stored on a quotation.
type QuotationTotals struct {
	Total     decimal.Decimal
	TotalInBs decimal.Decimal
}

// ComputeTotals derives total and bolivar total from the quoted amount,
// fees and exchange rate. Kept pure so the arithmetic is testable without
// a database.
func ComputeTotals(amount, serviceFee, handlingFee, exchangeRate decimal.Decimal) QuotationTotals {
	total := amount.Add(serviceFee).Add(handlingFee)
	return QuotationTotals{
		Total:     total,
		TotalInBs: total.Mul(exchangeRate).Round(2),
	}
}

func (s *QuotationService) Create(ctx context.Context, params CreateQuotationParams) (*domain.Quotation, error) {
	log := logging.FromContext(ctx)

	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("CreateQuotation: %w", domain.ErrInvalidAmount)
	}
	if !params.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("CreateQuotation: exchange rate: %w", domain.ErrInvalidAmount)
	}

	req, err := s.requests.GetByID(ctx, params.RequestID)
	if err != nil {
		return nil, fmt.Errorf("CreateQuotation: %w", err)
	}

	company, err := s.companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("CreateQuotation: %w", err)
	}

	var q *domain.Quotation
	for attempt := 0; attempt < 2; attempt++ {
		q, err = s.insertQuotation(ctx, params, req, company)
		if err == nil {
			break
		}
		if s.isUnique != nil && s.isUnique(err) && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("CreateQuotation: %w", err)
	}

	log.Info("quotation created",
		"quotation_id", q.ID,
		"code", q.Code,
		"request_id", req.ID,
		"total_in_bs", q.TotalInBs,
	)

	importers, err := s.profiles.ListByCompany(ctx, req.CompanyID)
	if err != nil {
		log.Error("quotation notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, importers, domain.NotificationTypeQuotation,
			"Quotation received",
			fmt.Sprintf("Request %s has a new quotation %s", req.Code, q.Code),
			map[string]string{"quotation_id": q.ID.String(), "request_id": req.ID.String()},
		)
	}

	return q, nil
}

func (s *QuotationService) insertQuotation(ctx context.Context, params CreateQuotationParams, req *domain.Request, company *domain.Company) (*domain.Quotation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insertQuotation: begin tx: %w", err)
	}
	defer tx.Rollback()

	accepted, err := s.quotations.CountAccepted(ctx, tx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("insertQuotation: %w", err)
	}
	if accepted > 0 {
		return nil, fmt.Errorf("insertQuotation: %w", domain.ErrQuotationAccepted)
	}

	now := time.Now().UTC()
	monthPrefix := codes.MonthPrefix(company.Name, now)
	last, err := s.quotations.LastCodeMatching(ctx, tx, monthPrefix)
	if err != nil {
		return nil, fmt.Errorf("insertQuotation: %w", err)
	}
	code, err := codes.Next(monthPrefix, last)
	if err != nil {
		return nil, fmt.Errorf("insertQuotation: %w", err)
	}

	totals := ComputeTotals(params.Amount, params.ServiceFee, params.HandlingFee, params.ExchangeRate)

	q := &domain.Quotation{
		ID:           uuid.New(),
		Code:         code,
		RequestID:    req.ID,
		Amount:       params.Amount,
		Currency:     req.Currency,
		ExchangeRate: params.ExchangeRate,
		ServiceFee:   params.ServiceFee,
		HandlingFee:  params.HandlingFee,
		Total:        totals.Total,
		TotalInBs:    totals.TotalInBs,
		Status:       domain.QuotationStatusSent,
		ValidUntil:   params.ValidUntil,
		CreatedBy:    params.ActorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.quotations.Create(ctx, tx, q); err != nil {
		return nil, fmt.Errorf("insertQuotation: %w", err)
	}

	if req.Status == domain.RequestStatusPending {
		if err := s.requests.UpdateStatus(ctx, tx, req.ID, domain.RequestStatusInReview); err != nil {
			return nil, fmt.Errorf("insertQuotation: %w", err)
		}
	}

	if err := writeAudit(ctx, tx, s.audits, "quotation.created", "quotation", q.ID, q, params.ActorID); err != nil {
		return nil, fmt.Errorf("insertQuotation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insertQuotation: commit: %w", err)
	}
	return q, nil
}

func (s *QuotationService) ListByRequest(ctx context.Context, requestID, actorID uuid.UUID) ([]domain.Quotation, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("ListQuotations: %w", err)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("ListQuotations: %w", err)
	}
	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil || *actor.CompanyID != req.CompanyID {
			return nil, fmt.Errorf("ListQuotations: %w", domain.ErrNotFound)
		}
	}

	// Expiry is applied lazily; there is no scheduler.
	if _, err := s.quotations.MarkExpired(ctx, time.Now().UTC()); err != nil {
		logging.FromContext(ctx).Error("quotation expiry sweep failed", "error", err)
	}

	quotations, err := s.quotations.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("ListQuotations: %w", err)
	}
	return quotations, nil
}

// Decide accepts or rejects a sent quotation on behalf of an importer of
// the owning company.
func (s *QuotationService) Decide(ctx context.Context, quotationID, actorID uuid.UUID, accept bool) (*domain.Quotation, error) {
	log := logging.FromContext(ctx)

	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("DecideQuotation: %w", err)
	}

	q, err := s.quotations.GetByID(ctx, quotationID)
	if err != nil {
		return nil, fmt.Errorf("DecideQuotation: %w", err)
	}

	req, err := s.requests.GetByID(ctx, q.RequestID)
	if err != nil {
		return nil, fmt.Errorf("DecideQuotation: %w", err)
	}

	if actor.Role == domain.RoleImportador {
		if actor.CompanyID == nil || *actor.CompanyID != req.CompanyID {
			return nil, fmt.Errorf("DecideQuotation: %w", domain.ErrForbidden)
		}
	}

	if q.Status != domain.QuotationStatusSent {
		return nil, fmt.Errorf("DecideQuotation: %w", domain.ErrQuotationNotSent)
	}
	if q.Expired(time.Now().UTC()) {
		return nil, fmt.Errorf("DecideQuotation: %w", domain.ErrQuotationExpired)
	}

	status := domain.QuotationStatusRejected
	action := "quotation.rejected"
	if accept {
		status = domain.QuotationStatusAccepted
		action = "quotation.accepted"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("DecideQuotation: begin tx: %w", err)
	}
	defer tx.Rollback()

	if accept {
		// Friendly pre-check; the partial unique index on accepted
		// quotations is what actually holds under concurrency.
		accepted, err := s.quotations.CountAccepted(ctx, tx, q.RequestID)
		if err != nil {
			return nil, fmt.Errorf("DecideQuotation: %w", err)
		}
		if accepted > 0 {
			return nil, fmt.Errorf("DecideQuotation: %w", domain.ErrQuotationAccepted)
		}
	}

	if err := s.quotations.UpdateStatus(ctx, tx, q.ID, status); err != nil {
		if accept && s.isUnique != nil && s.isUnique(err) {
			return nil, fmt.Errorf("DecideQuotation: %w", domain.ErrQuotationAccepted)
		}
		return nil, fmt.Errorf("DecideQuotation: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, action, "quotation", q.ID,
		map[string]string{"status": string(status)}, actorID); err != nil {
		return nil, fmt.Errorf("DecideQuotation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("DecideQuotation: commit: %w", err)
	}
	q.Status = status

	log.Info("quotation decided", "quotation_id", q.ID, "status", status)

	admins, err := s.profiles.ListByRole(ctx, domain.RoleSuperadmin, domain.ProfileStatusActive)
	if err != nil {
		log.Error("quotation notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, admins, domain.NotificationTypeQuotation,
			"Quotation "+string(status),
			fmt.Sprintf("Quotation %s was %s", q.Code, status),
			map[string]string{"quotation_id": q.ID.String()},
		)
	}

	return q, nil
}
