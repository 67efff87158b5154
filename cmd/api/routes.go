package main

import (
	"net/http"

	"github.com/nordex-trade/mercury-api/internal/domain"
	"github.com/nordex-trade/mercury-api/internal/handler"
	"github.com/nordex-trade/mercury-api/internal/middleware"
)

type handlers struct {
	health          *handler.HealthHandler
	auth            *handler.AuthHandler
	requests        *handler.RequestHandler
	quotations      *handler.QuotationHandler
	contracts       *handler.ContractHandler
	cashier         *handler.CashierHandler
	companies       *handler.CompanyHandler
	providers       *handler.ProviderHandler
	users           *handler.UserHandler
	cashierAccounts *handler.CashierAccountHandler
	registrations   *handler.RegistrationHandler
	notifications   *handler.NotificationHandler
	documents       *handler.DocumentHandler
	audits          *handler.AuditHandler
	rates           *handler.RateHandler
}

type mw = func(http.Handler) http.Handler

func chain(h http.Handler, mws ...mw) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func buildRouter(h handlers, jwtSecret string, idempotency mw) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.Auth(jwtSecret)
	admin := middleware.RequireRole(domain.RoleSuperadmin)
	importer := middleware.RequireRole(domain.RoleImportador, domain.RoleSuperadmin)
	cashier := middleware.RequireRole(domain.RoleCajero, domain.RoleSuperadmin)

	public := func(hf http.HandlerFunc) http.Handler { return hf }
	protected := func(hf http.HandlerFunc, extra ...mw) http.Handler {
		return chain(hf, append([]mw{authn}, extra...)...)
	}

	mux.Handle("GET /health", public(h.health.Liveness))
	mux.Handle("GET /health/ready", public(h.health.Readiness))

	mux.Handle("POST /api/v1/auth/login", public(h.auth.Login))
	mux.Handle("POST /api/v1/registration-requests", public(h.registrations.Submit))

	mux.Handle("GET /api/v1/exchange-rate", protected(h.rates.Get))

	mux.Handle("GET /api/v1/notifications", protected(h.notifications.List))
	mux.Handle("POST /api/v1/notifications/{id}/read", protected(h.notifications.MarkRead))

	mux.Handle("GET /api/v1/requests", protected(h.requests.List))
	mux.Handle("POST /api/v1/requests", protected(h.requests.Create, importer))
	mux.Handle("GET /api/v1/requests/{id}", protected(h.requests.Get))
	mux.Handle("GET /api/v1/requests/{id}/quotations", protected(h.quotations.ListByRequest))
	mux.Handle("POST /api/v1/requests/{id}/quotations", protected(h.quotations.Create, admin))

	mux.Handle("POST /api/v1/quotations/{id}/accept", protected(h.quotations.Accept, importer))
	mux.Handle("POST /api/v1/quotations/{id}/reject", protected(h.quotations.Reject, importer))
	mux.Handle("POST /api/v1/quotations/{id}/contract", protected(h.contracts.Generate, admin))

	mux.Handle("GET /api/v1/contracts", protected(h.contracts.List))
	mux.Handle("GET /api/v1/contracts/{id}", protected(h.contracts.Get))
	mux.Handle("POST /api/v1/contracts/{id}/accept", protected(h.contracts.Accept, importer))
	mux.Handle("POST /api/v1/contracts/{id}/complete", protected(h.contracts.Complete, admin))
	mux.Handle("GET /api/v1/contracts/{id}/document", protected(h.contracts.Document))

	mux.Handle("POST /api/v1/cashier/quotations/{id}/participate",
		protected(h.cashier.Participate, cashier, idempotency))
	mux.Handle("GET /api/v1/cashier/transactions", protected(h.cashier.ListMine, cashier))
	mux.Handle("POST /api/v1/cashier/transactions/{id}/complete", protected(h.cashier.Complete, cashier))
	mux.Handle("POST /api/v1/cashier/transactions/{id}/cancel", protected(h.cashier.Cancel, cashier))

	mux.Handle("POST /api/v1/documents", protected(h.documents.Upload))
	mux.Handle("GET /api/v1/documents", protected(h.documents.ListByEntity))

	mux.Handle("GET /api/v1/admin/companies", protected(h.companies.List, admin))
	mux.Handle("POST /api/v1/admin/companies", protected(h.companies.Create, admin))
	mux.Handle("GET /api/v1/admin/companies/{id}", protected(h.companies.Get, admin))
	mux.Handle("PUT /api/v1/admin/companies/{id}", protected(h.companies.Update, admin))
	mux.Handle("DELETE /api/v1/admin/companies/{id}", protected(h.companies.Suspend, admin))

	mux.Handle("GET /api/v1/admin/providers", protected(h.providers.List, admin))
	mux.Handle("POST /api/v1/admin/providers", protected(h.providers.Create, admin))
	mux.Handle("GET /api/v1/admin/providers/{id}", protected(h.providers.Get, admin))
	mux.Handle("PUT /api/v1/admin/providers/{id}", protected(h.providers.Update, admin))
	mux.Handle("DELETE /api/v1/admin/providers/{id}", protected(h.providers.Deactivate, admin))

	mux.Handle("GET /api/v1/admin/users", protected(h.users.List, admin))
	mux.Handle("POST /api/v1/admin/users", protected(h.users.Create, admin))
	mux.Handle("GET /api/v1/admin/users/{id}", protected(h.users.Get, admin))
	mux.Handle("PUT /api/v1/admin/users/{id}", protected(h.users.Update, admin))
	mux.Handle("DELETE /api/v1/admin/users/{id}", protected(h.users.Deactivate, admin))

	mux.Handle("GET /api/v1/admin/cashier-accounts", protected(h.cashierAccounts.List, admin))
	mux.Handle("POST /api/v1/admin/cashier-accounts", protected(h.cashierAccounts.Create, admin))
	mux.Handle("GET /api/v1/admin/cashier-accounts/{id}", protected(h.cashierAccounts.Get, admin))
	mux.Handle("PUT /api/v1/admin/cashier-accounts/{id}", protected(h.cashierAccounts.Update, admin))
	mux.Handle("DELETE /api/v1/admin/cashier-accounts/{id}", protected(h.cashierAccounts.Deactivate, admin))

	mux.Handle("GET /api/v1/admin/registration-requests", protected(h.registrations.List, admin))
	mux.Handle("POST /api/v1/admin/registration-requests/{id}/approve", protected(h.registrations.Approve, admin))
	mux.Handle("POST /api/v1/admin/registration-requests/{id}/reject", protected(h.registrations.Reject, admin))

	mux.Handle("POST /api/v1/admin/cashier-transactions/sync", protected(h.cashier.Sync, admin))
	mux.Handle("GET /api/v1/admin/cashier-reports", protected(h.cashier.Report, admin))
	mux.Handle("GET /api/v1/admin/audit-logs", protected(h.audits.List, admin))

	return chain(mux, middleware.Tracing, middleware.Logging, middleware.Recovery)
}
