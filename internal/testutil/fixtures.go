package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/nordex-trade/mercury-api/internal/domain"
)

func SeedCompany(t *testing.T, db *sql.DB, name string) *domain.Company {
	t.Helper()

	c := &domain.Company{
		ID:     uuid.New(),
		Name:   name,
		TaxID:  fmt.Sprintf("J-%s", uuid.NewString()[:8]),
		Status: domain.CompanyStatusActive,
	}
	_, err := db.Exec(
		`INSERT INTO companies (id, name, tax_id, status) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.TaxID, c.Status,
	)
	if err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return c
}

func SeedProvider(t *testing.T, db *sql.DB, name string) *domain.Provider {
	t.Helper()

	p := &domain.Provider{
		ID:      uuid.New(),
		Name:    name,
		Country: "CN",
		Status:  domain.ProviderStatusActive,
	}
	_, err := db.Exec(
		`INSERT INTO providers (id, name, country, status) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Country, p.Status,
	)
	if err != nil {
		t.Fatalf("seed provider: %v", err)
	}
	return p
}

func SeedProfile(t *testing.T, db *sql.DB, email string, role domain.Role, companyID *uuid.UUID) *domain.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	p := &domain.Profile{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         role,
		CompanyID:    companyID,
		Status:       domain.ProfileStatusActive,
	}
	_, err = db.Exec(
		`INSERT INTO profiles (id, email, name, password_hash, role, company_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Email, p.Name, p.PasswordHash, p.Role, p.CompanyID, p.Status,
	)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedRequest(t *testing.T, db *sql.DB, companyID, providerID, createdBy uuid.UUID, status domain.RequestStatus) *domain.Request {
	t.Helper()

	r := &domain.Request{
		ID:         uuid.New(),
		Code:       fmt.Sprintf("SOL-%s", uuid.NewString()[:8]),
		CompanyID:  companyID,
		ProviderID: providerID,
		CreatedBy:  createdBy,
		Amount:     decimal.NewFromInt(1000),
		Currency:   domain.CurrencyUSD,
		Status:     status,
	}
	_, err := db.Exec(
		`INSERT INTO requests (id, code, company_id, provider_id, created_by, amount, currency, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Code, r.CompanyID, r.ProviderID, r.CreatedBy, r.Amount, r.Currency, r.Status,
	)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return r
}

func SeedQuotation(t *testing.T, db *sql.DB, requestID, createdBy uuid.UUID, status domain.QuotationStatus, total, exchangeRate decimal.Decimal) *domain.Quotation {
	t.Helper()

	q := &domain.Quotation{
		ID:           uuid.New(),
		Code:         fmt.Sprintf("COT-%s", uuid.NewString()[:8]),
		RequestID:    requestID,
		Amount:       total,
		Currency:     domain.CurrencyUSD,
		ExchangeRate: exchangeRate,
		Total:        total,
		TotalInBs:    total.Mul(exchangeRate).Round(2),
		Status:       status,
		CreatedBy:    createdBy,
	}
	_, err := db.Exec(
		`INSERT INTO quotations (id, code, request_id, amount, currency, exchange_rate, service_fee, handling_fee, total, total_in_bs, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8, $9, $10)`,
		q.ID, q.Code, q.RequestID, q.Amount, q.Currency, q.ExchangeRate, q.Total, q.TotalInBs, q.Status, q.CreatedBy,
	)
	if err != nil {
		t.Fatalf("seed quotation: %v", err)
	}
	return q
}

func SeedCashierAccount(t *testing.T, db *sql.DB, cashierID uuid.UUID, dailyLimitBs decimal.Decimal) *domain.CashierAccount {
	t.Helper()

	a := &domain.CashierAccount{
		ID:                uuid.New(),
		Name:              "Test Account",
		Bank:              "Banesco",
		Holder:            "Test Holder",
		DailyLimitBs:      dailyLimitBs,
		AssignedCashierID: &cashierID,
		Active:            true,
	}
	_, err := db.Exec(
		`INSERT INTO cashier_accounts (id, name, bank, holder, daily_limit_bs, assigned_cashier_id, is_default, active)
		 VALUES ($1, $2, $3, $4, $5, $6, false, true)`,
		a.ID, a.Name, a.Bank, a.Holder, a.DailyLimitBs, a.AssignedCashierID,
	)
	if err != nil {
		t.Fatalf("seed cashier account: %v", err)
	}
	return a
}
