package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/logging"
)

type cashierAccountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CashierAccount, error)
	AccountForCashier(ctx context.Context, cashierID uuid.UUID) (*domain.CashierAccount, error)
}

type cashierTransactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.CashierTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CashierTransaction, error)
	ExistsForQuotationAndCashier(ctx context.Context, tx *sql.Tx, quotationID, cashierID uuid.UUID) (bool, error)
	SumAssignedForQuotation(ctx context.Context, tx *sql.Tx, quotationID uuid.UUID) (decimal.Decimal, error)
	SumAssignedForAccountDay(ctx context.Context, tx *sql.Tx, cashierID, accountID uuid.UUID, ts time.Time) (decimal.Decimal, error)
	ListByCashier(ctx context.Context, cashierID uuid.UUID) ([]domain.CashierTransaction, error)
	ListForReport(ctx context.Context, from, to time.Time) ([]domain.CashierTransaction, error)
	MarkCompleted(ctx context.Context, tx *sql.Tx, id uuid.UUID, delivered decimal.Decimal, at time.Time) error
	MarkCancelled(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type quotationLockRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Quotation, error)
	ListAcceptedWithoutCashier(ctx context.Context, cashierID uuid.UUID) ([]domain.Quotation, error)
}

type CashierService struct {
	transactions cashierTransactionRepo
	accounts     cashierAccountRepo
	quotations   quotationLockRepo
	profiles     profileRepo
	audits       auditRepo
	notifier     dispatcher
	db           *sql.DB
}

func NewCashierService(
	transactions cashierTransactionRepo,
	accounts cashierAccountRepo,
	quotations quotationLockRepo,
	profiles profileRepo,
	audits auditRepo,
	notifier dispatcher,
	db *sql.DB,
) *CashierService {
	return &CashierService{
		transactions: transactions,
		accounts:     accounts,
		quotations:   quotations,
		profiles:     profiles,
		audits:       audits,
		notifier:     notifier,
		db:           db,
	}
}

// CheckParticipation validates a requested assignment against the
// quotation's remaining bolivar balance and the account's remaining daily
// limit. Pure so the balance arithmetic is testable in isolation.
func CheckParticipation(amount, quotationTotalBs, assignedBs, dailyLimitBs, assignedTodayBs decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if assignedBs.Add(amount).GreaterThan(quotationTotalBs) {
		return domain.ErrExceedsRemaining
	}
	if assignedTodayBs.Add(amount).GreaterThan(dailyLimitBs) {
		return domain.ErrDailyLimitExceeded
	}
	return nil
}

// ExpectedUsdt converts an assigned bolivar amount at the quotation's
// exchange rate.
func ExpectedUsdt(amountBs, exchangeRate decimal.Decimal) decimal.Decimal {
	return amountBs.DivRound(exchangeRate, 2)
}

type ParticipateParams struct {
	ActorID     uuid.UUID
	QuotationID uuid.UUID
	AmountBs    decimal.Decimal
}

// Participate assigns part of an accepted quotation's bolivar total to the
// acting cashier. The quotation row is locked for the duration of the
// balance checks so concurrent participations serialize.
func (s *CashierService) Participate(ctx context.Context, params ParticipateParams) (*domain.CashierTransaction, error) {
	log := logging.FromContext(ctx)

	actor, err := s.profiles.GetByID(ctx, params.ActorID)
	if err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}
	if actor.Status != domain.ProfileStatusActive {
		return nil, fmt.Errorf("Participate: %w", domain.ErrProfileInactive)
	}

	account, err := s.accounts.AccountForCashier(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Participate: %w", domain.ErrAccountInactive)
		}
		return nil, fmt.Errorf("Participate: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Participate: begin tx: %w", err)
	}
	defer tx.Rollback()

	q, err := s.quotations.GetForUpdate(ctx, tx, params.QuotationID)
	if err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}
	if q.Status != domain.QuotationStatusAccepted {
		return nil, fmt.Errorf("Participate: %w", domain.ErrQuotationNotAccepted)
	}

	exists, err := s.transactions.ExistsForQuotationAndCashier(ctx, tx, q.ID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("Participate: %w", domain.ErrDuplicateParticipation)
	}

	assigned, err := s.transactions.SumAssignedForQuotation(ctx, tx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}

	now := time.Now().UTC()
	assignedToday, err := s.transactions.SumAssignedForAccountDay(ctx, tx, actor.ID, account.ID, now)
	if err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}

	if err := CheckParticipation(params.AmountBs, q.TotalInBs, assigned, account.DailyLimitBs, assignedToday); err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}

	t := &domain.CashierTransaction{
		ID:               uuid.New(),
		QuotationID:      q.ID,
		CashierID:        actor.ID,
		AccountID:        account.ID,
		AssignedAmountBs: params.AmountBs,
		ExpectedUsdt:     ExpectedUsdt(params.AmountBs, q.ExchangeRate),
		Status:           domain.CashierTransactionStatusPending,
		CreatedAt:        now,
	}
	if err := s.transactions.Create(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "cashier.participated", "cashier_transaction", t.ID, t, actor.ID); err != nil {
		return nil, fmt.Errorf("Participate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Participate: commit: %w", err)
	}

	log.Info("cashier participation registered",
		"transaction_id", t.ID,
		"quotation_id", q.ID,
		"cashier_id", actor.ID,
		"assigned_bs", t.AssignedAmountBs,
		"expected_usdt", t.ExpectedUsdt,
	)

	admins, err := s.profiles.ListByRole(ctx, domain.RoleSuperadmin, domain.ProfileStatusActive)
	if err != nil {
		log.Error("cashier notification recipients lookup failed", "error", err)
	} else {
		s.notifier.Send(ctx, admins, domain.NotificationTypeCashier,
			"Cashier participation",
			fmt.Sprintf("%s took %s Bs of quotation %s", actor.Email, t.AssignedAmountBs, q.Code),
			map[string]string{"transaction_id": t.ID.String()},
		)
	}

	return t, nil
}

// Complete records the USDT actually delivered for an open transaction.
// Cashiers may only close their own transactions.
func (s *CashierService) Complete(ctx context.Context, transactionID, actorID uuid.UUID, delivered decimal.Decimal) (*domain.CashierTransaction, error) {
	if !delivered.IsPositive() {
		return nil, fmt.Errorf("CompleteTransaction: %w", domain.ErrInvalidAmount)
	}

	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("CompleteTransaction: %w", err)
	}

	t, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("CompleteTransaction: %w", err)
	}
	if actor.Role == domain.RoleCajero && t.CashierID != actor.ID {
		return nil, fmt.Errorf("CompleteTransaction: %w", domain.ErrForbidden)
	}
	if !t.Status.Open() {
		return nil, fmt.Errorf("CompleteTransaction: %w", domain.ErrTransactionNotOpen)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CompleteTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if err := s.transactions.MarkCompleted(ctx, tx, t.ID, delivered, now); err != nil {
		return nil, fmt.Errorf("CompleteTransaction: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "cashier.completed", "cashier_transaction", t.ID,
		map[string]string{"delivered_usdt": delivered.String()}, actorID); err != nil {
		return nil, fmt.Errorf("CompleteTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CompleteTransaction: commit: %w", err)
	}

	t.Status = domain.CashierTransactionStatusCompleted
	t.DeliveredUsdt = &delivered
	t.CompletedAt = &now

	logging.FromContext(ctx).Info("cashier transaction completed",
		"transaction_id", t.ID, "delivered_usdt", delivered)
	return t, nil
}

// Cancel voids an open transaction, releasing its slice of the quotation
// balance and the day's limit.
func (s *CashierService) Cancel(ctx context.Context, transactionID, actorID uuid.UUID) (*domain.CashierTransaction, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("CancelTransaction: %w", err)
	}

	t, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("CancelTransaction: %w", err)
	}
	if actor.Role == domain.RoleCajero && t.CashierID != actor.ID {
		return nil, fmt.Errorf("CancelTransaction: %w", domain.ErrForbidden)
	}
	if !t.Status.Open() {
		return nil, fmt.Errorf("CancelTransaction: %w", domain.ErrTransactionNotOpen)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CancelTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.transactions.MarkCancelled(ctx, tx, t.ID); err != nil {
		return nil, fmt.Errorf("CancelTransaction: %w", err)
	}

	if err := writeAudit(ctx, tx, s.audits, "cashier.cancelled", "cashier_transaction", t.ID,
		map[string]string{"status": string(domain.CashierTransactionStatusCancelled)}, actorID); err != nil {
		return nil, fmt.Errorf("CancelTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CancelTransaction: commit: %w", err)
	}

	t.Status = domain.CashierTransactionStatusCancelled
	logging.FromContext(ctx).Info("cashier transaction cancelled", "transaction_id", t.ID)
	return t, nil
}

func (s *CashierService) ListForCashier(ctx context.Context, cashierID uuid.UUID) ([]domain.CashierTransaction, error) {
	ts, err := s.transactions.ListByCashier(ctx, cashierID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return ts, nil
}

// Sync backfills pending participations: every active cashier with a
// usable account gets a pending transaction for each accepted quotation it
// has not touched, sized to the remaining balance clamped to the account's
// remaining daily limit. Zero-sized assignments are skipped.
func (s *CashierService) Sync(ctx context.Context, actorID uuid.UUID) (int, error) {
	log := logging.FromContext(ctx)

	cashiers, err := s.profiles.ListByRole(ctx, domain.RoleCajero, domain.ProfileStatusActive)
	if err != nil {
		return 0, fmt.Errorf("SyncTransactions: %w", err)
	}

	created := 0
	for _, cashier := range cashiers {
		quotations, err := s.quotations.ListAcceptedWithoutCashier(ctx, cashier.ID)
		if err != nil {
			return created, fmt.Errorf("SyncTransactions: %w", err)
		}
		for _, q := range quotations {
			n, err := s.syncOne(ctx, &cashier, q.ID, actorID)
			if err != nil {
				// A lost race with a live participation is fine; skip and move on.
				if errors.Is(err, domain.ErrDuplicateParticipation) || errors.Is(err, domain.ErrAccountInactive) {
					continue
				}
				return created, fmt.Errorf("SyncTransactions: %w", err)
			}
			created += n
		}
	}

	log.Info("cashier transactions synced", "created", created)
	return created, nil
}

func (s *CashierService) syncOne(ctx context.Context, cashier *domain.Profile, quotationID, actorID uuid.UUID) (int, error) {
	account, err := s.accounts.AccountForCashier(ctx, cashier.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrAccountInactive
		}
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("syncOne: begin tx: %w", err)
	}
	defer tx.Rollback()

	q, err := s.quotations.GetForUpdate(ctx, tx, quotationID)
	if err != nil {
		return 0, err
	}
	if q.Status != domain.QuotationStatusAccepted {
		return 0, nil
	}

	exists, err := s.transactions.ExistsForQuotationAndCashier(ctx, tx, q.ID, cashier.ID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, domain.ErrDuplicateParticipation
	}

	assigned, err := s.transactions.SumAssignedForQuotation(ctx, tx, q.ID)
	if err != nil {
		return 0, err
	}
	remaining := q.TotalInBs.Sub(assigned)

	now := time.Now().UTC()
	assignedToday, err := s.transactions.SumAssignedForAccountDay(ctx, tx, cashier.ID, account.ID, now)
	if err != nil {
		return 0, err
	}
	limitLeft := account.DailyLimitBs.Sub(assignedToday)

	amount := decimal.Min(remaining, limitLeft)
	if !amount.IsPositive() {
		return 0, nil
	}

	t := &domain.CashierTransaction{
		ID:               uuid.New(),
		QuotationID:      q.ID,
		CashierID:        cashier.ID,
		AccountID:        account.ID,
		AssignedAmountBs: amount,
		ExpectedUsdt:     ExpectedUsdt(amount, q.ExchangeRate),
		Status:           domain.CashierTransactionStatusPending,
		CreatedAt:        now,
	}
	if err := s.transactions.Create(ctx, tx, t); err != nil {
		return 0, err
	}

	if err := writeAudit(ctx, tx, s.audits, "cashier.synced", "cashier_transaction", t.ID, t, actorID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("syncOne: commit: %w", err)
	}
	return 1, nil
}

// ReportRow is a cashier transaction joined with display names for export.
type ReportRow struct {
	TransactionID    uuid.UUID
	QuotationCode    string
	CashierEmail     string
	AccountName      string
	AssignedAmountBs decimal.Decimal
	ExpectedUsdt     decimal.Decimal
	DeliveredUsdt    *decimal.Decimal
	Status           domain.CashierTransactionStatus
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

func (s *CashierService) Report(ctx context.Context, from, to time.Time) ([]ReportRow, error) {
	ts, err := s.transactions.ListForReport(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("CashierReport: %w", err)
	}

	quotationCodes := map[uuid.UUID]string{}
	cashierEmails := map[uuid.UUID]string{}
	accountNames := map[uuid.UUID]string{}

	rows := make([]ReportRow, 0, len(ts))
	for _, t := range ts {
		code, ok := quotationCodes[t.QuotationID]
		if !ok {
			q, err := s.quotations.GetByID(ctx, t.QuotationID)
			if err != nil {
				return nil, fmt.Errorf("CashierReport: %w", err)
			}
			code = q.Code
			quotationCodes[t.QuotationID] = code
		}

		email, ok := cashierEmails[t.CashierID]
		if !ok {
			p, err := s.profiles.GetByID(ctx, t.CashierID)
			if err != nil {
				return nil, fmt.Errorf("CashierReport: %w", err)
			}
			email = p.Email
			cashierEmails[t.CashierID] = email
		}

		name, ok := accountNames[t.AccountID]
		if !ok {
			a, err := s.accounts.GetByID(ctx, t.AccountID)
			if err != nil {
				return nil, fmt.Errorf("CashierReport: %w", err)
			}
			name = a.Name
			accountNames[t.AccountID] = name
		}

		rows = append(rows, ReportRow{
			TransactionID:    t.ID,
			QuotationCode:    code,
			CashierEmail:     email,
			AccountName:      name,
			AssignedAmountBs: t.AssignedAmountBs,
			ExpectedUsdt:     t.ExpectedUsdt,
			DeliveredUsdt:    t.DeliveredUsdt,
			Status:           t.Status,
			CreatedAt:        t.CreatedAt,
			CompletedAt:      t.CompletedAt,
		})
	}
	return rows, nil
}
