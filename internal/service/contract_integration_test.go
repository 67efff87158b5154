package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/repository"
	"github.com/nordex-trade/mercury-api/internal/service"
	"github.com/nordex-trade/mercury-api/internal/testutil"
)

func setupContractService(t *testing.T, db *sql.DB) *service.ContractService {
	t.Helper()
	return service.NewContractService(
		repository.NewContractRepository(db),
		repository.NewQuotationRepository(db),
		repository.NewRequestRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewCompanyRepository(db),
		repository.NewProviderRepository(db),
		repository.NewProfileRepository(db),
		repository.NewAuditRepository(db),
		noopNotifier{},
		db,
		repository.IsUniqueViolation,
	)
}

type contractFixture struct {
	quotation *domain.Quotation
	request   *domain.Request
	importer  *domain.Profile
	admin     *domain.Profile
	start     time.Time
	end       time.Time
}

// Seeds an accepted quotation ready for contract generation.
func seedContractFlow(t *testing.T, db *sql.DB) contractFixture {
	t.Helper()

	company := testutil.SeedCompany(t, db, "Importadora Andina")
	provider := testutil.SeedProvider(t, db, "Shenzhen Trading")
	admin := testutil.SeedProfile(t, db, "admin@test.com", domain.RoleSuperadmin, nil)
	importer := testutil.SeedProfile(t, db, "importer@test.com", domain.RoleImportador, &company.ID)
	req := testutil.SeedRequest(t, db, company.ID, provider.ID, importer.ID, domain.RequestStatusInReview)
	q := testutil.SeedQuotation(t, db, req.ID, admin.ID, domain.QuotationStatusAccepted,
		decimal.NewFromInt(1000), decimal.NewFromInt(10))

	start := time.Now().UTC().Truncate(24 * time.Hour)
	return contractFixture{
		quotation: q,
		request:   req,
		importer:  importer,
		admin:     admin,
		start:     start,
		end:       start.AddDate(0, 3, 0),
	}
}

func TestContractGenerate_InvalidDates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)

	_, err := svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.end,
		EndDate:     fx.start,
	})
	require.ErrorIs(t, err, domain.ErrInvalidContractDates)

	// Equal dates are just as invalid as reversed ones.
	_, err = svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.start,
		EndDate:     fx.start,
	})
	require.ErrorIs(t, err, domain.ErrInvalidContractDates)
}

func TestContractGenerate_QuotationNotAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)
	rejected := testutil.SeedQuotation(t, db, fx.request.ID, fx.admin.ID, domain.QuotationStatusRejected,
		decimal.NewFromInt(900), decimal.NewFromInt(10))

	_, err := svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: rejected.ID,
		StartDate:   fx.start,
		EndDate:     fx.end,
	})
	require.ErrorIs(t, err, domain.ErrQuotationNotAccepted)
}

func TestContractGenerate_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)

	params := service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.start,
		EndDate:     fx.end,
	}

	c, err := svc.Generate(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusDraft, c.Status)

	_, err = svc.Generate(ctx, params)
	require.ErrorIs(t, err, domain.ErrContractExists)
}

func TestContractAccept_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)

	c, err := svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.start,
		EndDate:     fx.end,
	})
	require.NoError(t, err)

	signed, err := svc.Accept(ctx, c.ID, fx.importer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, signed.Status)
	require.NotNil(t, signed.SignedAt)

	var reqStatus string
	err = db.QueryRow(`SELECT status FROM requests WHERE id = $1`, fx.request.ID).Scan(&reqStatus)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RequestStatusApproved), reqStatus)

	// Signing is one-shot.
	_, err = svc.Accept(ctx, c.ID, fx.importer.ID)
	require.ErrorIs(t, err, domain.ErrContractNotDraft)
}

func TestContractAccept_ForeignImporter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)
	c, err := svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.start,
		EndDate:     fx.end,
	})
	require.NoError(t, err)

	other := testutil.SeedCompany(t, db, "Importadora Caribe")
	outsider := testutil.SeedProfile(t, db, "outsider@test.com", domain.RoleImportador, &other.ID)

	_, err = svc.Accept(ctx, c.ID, outsider.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestContractComplete_FromDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)
	c, err := svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.start,
		EndDate:     fx.end,
	})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, service.CompleteContractParams{
		ActorID:    fx.admin.ID,
		ContractID: c.ID,
	})
	require.ErrorIs(t, err, domain.ErrContractNotActive)
}

func TestContractComplete_RecordsPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupContractService(t, db)
	ctx := context.Background()

	fx := seedContractFlow(t, db)
	c, err := svc.Generate(ctx, service.GenerateContractParams{
		ActorID:     fx.admin.ID,
		QuotationID: fx.quotation.ID,
		StartDate:   fx.start,
		EndDate:     fx.end,
	})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, c.ID, fx.importer.ID)
	require.NoError(t, err)

	notes := "goods received"
	done, err := svc.Complete(ctx, service.CompleteContractParams{
		ActorID:    fx.admin.ID,
		ContractID: c.ID,
		Notes:      &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusCompleted, done.Status)

	var reqStatus string
	err = db.QueryRow(`SELECT status FROM requests WHERE id = $1`, fx.request.ID).Scan(&reqStatus)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RequestStatusCompleted), reqStatus)

	var amount decimal.Decimal
	var payStatus, code string
	err = db.QueryRow(`SELECT amount, status, code FROM payments WHERE contract_id = $1`, c.ID).
		Scan(&amount, &payStatus, &code)
	require.NoError(t, err)
	assert.True(t, fx.quotation.Total.Equal(amount), "payment %s should match quotation total", amount)
	assert.Equal(t, string(domain.PaymentStatusCompleted), payStatus)
	assert.NotEmpty(t, code)

	// Completion is terminal.
	_, err = svc.Complete(ctx, service.CompleteContractParams{
		ActorID:    fx.admin.ID,
		ContractID: c.ID,
	})
	require.ErrorIs(t, err, domain.ErrContractNotActive)
}
