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

func setupQuotationService(t *testing.T, db *sql.DB) *service.QuotationService {
	t.Helper()
	return service.NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewRequestRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewProfileRepository(db),
		repository.NewAuditRepository(db),
		noopNotifier{},
		db,
		repository.IsUniqueViolation,
	)
}

type quotationFixture struct {
	request  *domain.Request
	importer *domain.Profile
	admin    *domain.Profile
}

func seedQuotationFlow(t *testing.T, db *sql.DB, reqStatus domain.RequestStatus) quotationFixture {
	t.Helper()

	company := testutil.SeedCompany(t, db, "Importadora Andina")
	provider := testutil.SeedProvider(t, db, "Shenzhen Trading")
	admin := testutil.SeedProfile(t, db, "admin@test.com", domain.RoleSuperadmin, nil)
	importer := testutil.SeedProfile(t, db, "importer@test.com", domain.RoleImportador, &company.ID)
	req := testutil.SeedRequest(t, db, company.ID, provider.ID, importer.ID, reqStatus)

	return quotationFixture{request: req, importer: importer, admin: admin}
}

func TestQuotationCreate_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupQuotationService(t, db)
	ctx := context.Background()

	fx := seedQuotationFlow(t, db, domain.RequestStatusPending)

	q, err := svc.Create(ctx, service.CreateQuotationParams{
		ActorID:      fx.admin.ID,
		RequestID:    fx.request.ID,
		Amount:       decimal.NewFromInt(1000),
		ExchangeRate: decimal.NewFromFloat(36.5),
		ServiceFee:   decimal.NewFromInt(30),
		HandlingFee:  decimal.NewFromInt(20),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusSent, q.Status)
	assert.True(t, decimal.NewFromInt(1050).Equal(q.Total))
	assert.True(t, decimal.NewFromFloat(38325).Equal(q.TotalInBs), "got %s", q.TotalInBs)
	assert.NotEmpty(t, q.Code)

	// Quoting a pending request moves it into review.
	var status string
	err = db.QueryRow(`SELECT status FROM requests WHERE id = $1`, fx.request.ID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RequestStatusInReview), status)
}

func TestQuotationCreate_AfterAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupQuotationService(t, db)
	ctx := context.Background()

	fx := seedQuotationFlow(t, db, domain.RequestStatusInReview)
	testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusAccepted,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	_, err := svc.Create(ctx, service.CreateQuotationParams{
		ActorID:      fx.admin.ID,
		RequestID:    fx.request.ID,
		Amount:       decimal.NewFromInt(900),
		ExchangeRate: decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, domain.ErrQuotationAccepted)
}

func TestQuotationDecide_Accept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupQuotationService(t, db)
	ctx := context.Background()

	fx := seedQuotationFlow(t, db, domain.RequestStatusInReview)
	q := testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusSent,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	decided, err := svc.Decide(ctx, q.ID, fx.importer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusAccepted, decided.Status)

	// A second decision on the same quotation is no longer possible.
	_, err = svc.Decide(ctx, q.ID, fx.importer.ID, false)
	require.ErrorIs(t, err, domain.ErrQuotationNotSent)
}

func TestQuotationDecide_SecondAcceptRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupQuotationService(t, db)
	ctx := context.Background()

	fx := seedQuotationFlow(t, db, domain.RequestStatusInReview)
	first := testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusSent,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))
	second := testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusSent,
		decimal.NewFromInt(950), decimal.NewFromInt(10))

	_, err := svc.Decide(ctx, first.ID, fx.importer.ID, true)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, second.ID, fx.importer.ID, true)
	require.ErrorIs(t, err, domain.ErrQuotationAccepted)

	// Rejecting the leftover quotation is still fine.
	rejected, err := svc.Decide(ctx, second.ID, fx.importer.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusRejected, rejected.Status)
}

func TestQuotationDecide_ConcurrentAccepts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupQuotationService(t, db)
	ctx := context.Background()

	fx := seedQuotationFlow(t, db, domain.RequestStatusInReview)
	quotations := []*domain.Quotation{
		testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusSent,
			decimal.NewFromInt(1000), decimal.NewFromInt(10)),
		testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusSent,
			decimal.NewFromInt(950), decimal.NewFromInt(10)),
	}

	var wg sync.WaitGroup
	results := make(chan error, len(quotations))

	for _, q := range quotations {
		wg.Add(1)
		go func(quotationID uuid.UUID) {
			defer wg.Done()
			_, err := svc.Decide(ctx, quotationID, fx.importer.ID, true)
			results <- err
		}(q.ID)
	}

	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrQuotationAccepted)
			failures++
		}
	}

	assert.Equal(t, 1, successes, "exactly one accept should succeed")
	assert.Equal(t, 1, failures, "exactly one accept should fail")

	var accepted int
	err := db.QueryRow(`SELECT count(*) FROM quotations WHERE request_id = $1 AND status = 'accepted'`,
		fx.request.ID).Scan(&accepted)
	require.NoError(t, err)
	assert.Equal(t, 1, accepted)
}

func TestQuotationDecide_ForeignImporter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupQuotationService(t, db)
	ctx := context.Background()

	fx := seedQuotationFlow(t, db, domain.RequestStatusInReview)
	q := testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusSent,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	other := testutil.SeedCompany(t, db, "Importadora Caribe")
	outsider := testutil.SeedProfile(t, db, "outsider@test.com", domain.RoleImportador, &other.ID)

	_, err := svc.Decide(ctx, q.ID, outsider.ID, true)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
