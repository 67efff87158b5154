package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

type mockAuthService struct {
	token   string
	profile *domain.Profile
	err     error
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (string, *domain.Profile, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.token, m.profile, nil
}

func TestLogin(t *testing.T) {
	activeProfile := &domain.Profile{
		ID:     uuid.New(),
		Email:  "admin@nordex.com",
		Name:   "Admin",
		Role:   domain.RoleSuperadmin,
		Status: domain.ProfileStatusActive,
	}

	tests := []struct {
		name       string
		body       string
		svc        *mockAuthService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid credentials",
			body:       `{"email":"admin@nordex.com","password":"secret123"}`,
			svc:        &mockAuthService{token: "signed-token", profile: activeProfile},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "missing password",
			body:       `{"email":"admin@nordex.com"}`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "wrong password",
			body:       `{"email":"admin@nordex.com","password":"wrong"}`,
			svc:        &mockAuthService{err: domain.ErrInvalidCredentials},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "inactive profile",
			body:       `{"email":"old@nordex.com","password":"secret123"}`,
			svc:        &mockAuthService{err: domain.ErrProfileInactive},
			wantStatus: http.StatusBadRequest,
			wantCode:   "PROFILE_INACTIVE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(tc.svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.Login(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

			if tc.wantCode != "" {
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
				return
			}

			assert.True(t, resp.Success)
			data, ok := resp.Data.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "signed-token", data["token"])

			profile, ok := data["profile"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "admin@nordex.com", profile["email"])
			assert.Equal(t, "SUPERADMIN", profile["role"])
		})
	}
}
