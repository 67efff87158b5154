package repository_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/repository"
	"github.com/nordex-trade/mercury-api/internal/testutil"
)

// Codes are textual, so the latest in a month series must be picked by
// length before value or AI032699 would sort after AI0326100.
func TestQuotationLastCodeMatching_ThreeDigitSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	company := testutil.SeedCompany(t, db, "Andina Imports")
	provider := testutil.SeedProvider(t, db, "Shenzhen Trading")
	admin := testutil.SeedProfile(t, db, "admin@test.com", domain.RoleSuperadmin, nil)
	importer := testutil.SeedProfile(t, db, "importer@test.com", domain.RoleImportador, &company.ID)
	req := testutil.SeedRequest(t, db, company.ID, provider.ID, importer.ID, domain.RequestStatusInReview)

	for _, code := range []string{"AI032698", "AI032699", "AI0326100"} {
		q := testutil.SeedQuotation(t, db, req.ID, admin.ID, domain.QuotationStatusRejected,
			decimal.NewFromInt(100), decimal.NewFromInt(10))
		_, err := db.Exec(`UPDATE quotations SET code = $1 WHERE id = $2`, code, q.ID)
		require.NoError(t, err)
	}

	repo := repository.NewQuotationRepository(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	last, err := repo.LastCodeMatching(ctx, tx, "AI0326")
	require.NoError(t, err)
	assert.Equal(t, "AI0326100", last)

	none, err := repo.LastCodeMatching(ctx, tx, "ZZ0326")
	require.NoError(t, err)
	assert.Empty(t, none)
}
