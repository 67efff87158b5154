package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/repository"
	"github.com/nordex-trade/mercury-api/internal/service"
	"github.com/nordex-trade/mercury-api/internal/testutil"
)

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, recipients []domain.Profile, nType domain.NotificationType, title, message string, metadata any) {
}

func setupCashierService(t *testing.T, db *sql.DB) *service.CashierService {
	t.Helper()
	return service.NewCashierService(
		repository.NewCashierTransactionRepository(db),
		repository.NewCashierAccountRepository(db),
		repository.NewQuotationRepository(db),
		repository.NewProfileRepository(db),
		repository.NewAuditRepository(db),
		noopNotifier{},
		db,
	)
}

type participationFixture struct {
	quotation *domain.Quotation
	cashier   *domain.Profile
	admin     *domain.Profile
}

// Seeds an accepted quotation with a bolivar total of 10000 (1000 at rate 10)
// and one active cashier with the given daily limit.
func seedParticipation(t *testing.T, db *sql.DB, dailyLimitBs decimal.Decimal) participationFixture {
	t.Helper()

	company := testutil.SeedCompany(t, db, "Importadora Test")
	provider := testutil.SeedProvider(t, db, "Shenzhen Trading")
	admin := testutil.SeedProfile(t, db, "admin@test.com", domain.RoleSuperadmin, nil)
	importer := testutil.SeedProfile(t, db, "importer@test.com", domain.RoleImportador, &company.ID)
	cashier := testutil.SeedProfile(t, db, "cashier@test.com", domain.RoleCajero, nil)
	testutil.SeedCashierAccount(t, db, cashier.ID, dailyLimitBs)

	req := testutil.SeedRequest(t, db, company.ID, provider.ID, importer.ID, domain.RequestStatusApproved)
	q := testutil.SeedQuotation(t, db, req.ID, admin.ID, domain.QuotationStatusAccepted,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	return participationFixture{quotation: q, cashier: cashier, admin: admin}
}

func TestParticipate_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(50000))

	tx, err := svc.Participate(ctx, service.ParticipateParams{
		ActorID:     fx.cashier.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(4000),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.CashierTransactionStatusPending, tx.Status)
	assert.True(t, decimal.NewFromInt(4000).Equal(tx.AssignedAmountBs))
	assert.True(t, decimal.NewFromInt(400).Equal(tx.ExpectedUsdt), "expected 400 USDT, got %s", tx.ExpectedUsdt)
	assert.Nil(t, tx.DeliveredUsdt)
}

func TestParticipate_ExceedsRemainingBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(50000))

	_, err := svc.Participate(ctx, service.ParticipateParams{
		ActorID:     fx.cashier.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(4000),
	})
	require.NoError(t, err)

	second := testutil.SeedProfile(t, db, "cashier2@test.com", domain.RoleCajero, nil)
	testutil.SeedCashierAccount(t, db, second.ID, decimal.NewFromInt(50000))

	// 4000 of 10000 is already assigned, so 7000 no longer fits.
	_, err = svc.Participate(ctx, service.ParticipateParams{
		ActorID:     second.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(7000),
	})
	require.ErrorIs(t, err, domain.ErrExceedsRemaining)

	// 6000 exactly consumes the remainder.
	tx, err := svc.Participate(ctx, service.ParticipateParams{
		ActorID:     second.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(6000),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(tx.AssignedAmountBs))
}

func TestParticipate_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(50000))

	params := service.ParticipateParams{
		ActorID:     fx.cashier.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(1000),
	}

	_, err := svc.Participate(ctx, params)
	require.NoError(t, err)

	_, err = svc.Participate(ctx, params)
	require.ErrorIs(t, err, domain.ErrDuplicateParticipation)
}

func TestParticipate_QuotationNotAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Importadora Test")
	provider := testutil.SeedProvider(t, db, "Shenzhen Trading")
	admin := testutil.SeedProfile(t, db, "admin@test.com", domain.RoleSuperadmin, nil)
	importer := testutil.SeedProfile(t, db, "importer@test.com", domain.RoleImportador, &company.ID)
	cashier := testutil.SeedProfile(t, db, "cashier@test.com", domain.RoleCajero, nil)
	testutil.SeedCashierAccount(t, db, cashier.ID, decimal.NewFromInt(50000))

	req := testutil.SeedRequest(t, db, company.ID, provider.ID, importer.ID, domain.RequestStatusInReview)
	q := testutil.SeedQuotation(t, db, req.ID, admin.ID, domain.QuotationStatusSent,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	_, err := svc.Participate(ctx, service.ParticipateParams{
		ActorID:     cashier.ID,
		QuotationID: q.ID,
		AmountBs:    decimal.NewFromInt(1000),
	})
	require.ErrorIs(t, err, domain.ErrQuotationNotAccepted)
}

func TestParticipate_DailyLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(5000))

	_, err := svc.Participate(ctx, service.ParticipateParams{
		ActorID:     fx.cashier.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	// A second quotation so the per-quotation duplicate guard does not fire.
	company2 := testutil.SeedCompany(t, db, "Importadora Dos")
	provider2 := testutil.SeedProvider(t, db, "Guangzhou Exports")
	importer2 := testutil.SeedProfile(t, db, "importer2@test.com", domain.RoleImportador, &company2.ID)
	req2 := testutil.SeedRequest(t, db, company2.ID, provider2.ID, importer2.ID, domain.RequestStatusApproved)
	q2 := testutil.SeedQuotation(t, db, req2.ID, fx.admin.ID, domain.QuotationStatusAccepted,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	_, err = svc.Participate(ctx, service.ParticipateParams{
		ActorID:     fx.cashier.ID,
		QuotationID: q2.ID,
		AmountBs:    decimal.NewFromInt(2500),
	})
	require.ErrorIs(t, err, domain.ErrDailyLimitExceeded)
}

func TestParticipate_ConcurrentOverassignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(50000))
	second := testutil.SeedProfile(t, db, "cashier2@test.com", domain.RoleCajero, nil)
	testutil.SeedCashierAccount(t, db, second.ID, decimal.NewFromInt(50000))

	cashiers := []*domain.Profile{fx.cashier, second}

	var wg sync.WaitGroup
	results := make(chan error, len(cashiers))

	for _, c := range cashiers {
		wg.Add(1)
		go func(actorID uuid.UUID) {
			defer wg.Done()
			_, err := svc.Participate(ctx, service.ParticipateParams{
				ActorID:     actorID,
				QuotationID: fx.quotation.ID,
				AmountBs:    decimal.NewFromInt(7000),
			})
			results <- err
		}(c.ID)
	}

	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrExceedsRemaining)
			failures++
		}
	}

	assert.Equal(t, 1, successes, "exactly one participation should succeed")
	assert.Equal(t, 1, failures, "exactly one participation should fail")
}

func TestComplete_RecordsDelivery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(50000))

	tx, err := svc.Participate(ctx, service.ParticipateParams{
		ActorID:     fx.cashier.ID,
		QuotationID: fx.quotation.ID,
		AmountBs:    decimal.NewFromInt(4000),
	})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, tx.ID, fx.cashier.ID, decimal.NewFromInt(395))
	require.NoError(t, err)
	assert.Equal(t, domain.CashierTransactionStatusCompleted, done.Status)
	require.NotNil(t, done.DeliveredUsdt)
	assert.True(t, decimal.NewFromInt(395).Equal(*done.DeliveredUsdt))
	assert.NotNil(t, done.CompletedAt)

	// Completed transactions cannot be completed or cancelled again.
	_, err = svc.Complete(ctx, tx.ID, fx.cashier.ID, decimal.NewFromInt(400))
	require.Error(t, err)
	_, err = svc.Cancel(ctx, tx.ID, fx.cashier.ID)
	require.Error(t, err)
}

func TestSync_CreatesMissingAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupCashierService(t, db)
	ctx := context.Background()

	fx := seedParticipation(t, db, decimal.NewFromInt(50000))

	created, err := svc.Sync(ctx, fx.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// The newly assigned transaction consumes what remains, so a second
	// sweep finds nothing to do.
	created, err = svc.Sync(ctx, fx.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	list, err := svc.ListForCashier(ctx, fx.cashier.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.CashierTransactionStatusPending, list[0].Status)
	assert.True(t, decimal.NewFromInt(10000).Equal(list[0].AssignedAmountBs))
}
