package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

// Business-precondition failures respond 400; only auth, lookup and
// unexpected failures use 401/403/404/500.
func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrQuotationAccepted, http.StatusBadRequest, "QUOTATION_ALREADY_ACCEPTED"},
		{domain.ErrQuotationNotAccepted, http.StatusBadRequest, "QUOTATION_NOT_ACCEPTED"},
		{domain.ErrQuotationExpired, http.StatusBadRequest, "QUOTATION_EXPIRED"},
		{domain.ErrContractExists, http.StatusConflict, "CONTRACT_ALREADY_EXISTS"},
		{domain.ErrContractNotDraft, http.StatusBadRequest, "CONTRACT_NOT_DRAFT"},
		{domain.ErrContractNotActive, http.StatusBadRequest, "CONTRACT_NOT_ACTIVE"},
		{domain.ErrExceedsRemaining, http.StatusBadRequest, "EXCEEDS_REMAINING_BALANCE"},
		{domain.ErrDailyLimitExceeded, http.StatusBadRequest, "DAILY_LIMIT_EXCEEDED"},
		{domain.ErrDuplicateParticipation, http.StatusConflict, "DUPLICATE_PARTICIPATION"},
		{domain.ErrNoValidOffers, http.StatusBadRequest, "NO_VALID_OFFERS"},
		{fmt.Errorf("op: %w", domain.ErrQuotationAccepted), http.StatusBadRequest, "QUOTATION_ALREADY_ACCEPTED"},
		{fmt.Errorf("something unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()

			RespondDomainError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}
