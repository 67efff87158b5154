package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nordex-trade/mercury-api/internal/config"
	"github.com/nordex-trade/mercury-api/internal/docgen"
	"github.com/nordex-trade/mercury-api/internal/handler"
	"github.com/nordex-trade/mercury-api/internal/logging"
	"github.com/nordex-trade/mercury-api/internal/middleware"
	"github.com/nordex-trade/mercury-api/internal/notify"
	"github.com/nordex-trade/mercury-api/internal/rates"
	"github.com/nordex-trade/mercury-api/internal/repository"
	"github.com/nordex-trade/mercury-api/internal/service"
	"github.com/nordex-trade/mercury-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("mercury-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	producer := notify.NewProducer(cfg.KafkaBrokers, cfg.KafkaNotificationTopic)
	defer producer.Close()

	store, err := storage.NewS3Store(context.Background(), storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		logger.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	profiles := repository.NewProfileRepository(db)
	companies := repository.NewCompanyRepository(db)
	providers := repository.NewProviderRepository(db)
	requests := repository.NewRequestRepository(db)
	quotations := repository.NewQuotationRepository(db)
	contracts := repository.NewContractRepository(db)
	payments := repository.NewPaymentRepository(db)
	cashierAccounts := repository.NewCashierAccountRepository(db)
	cashierTxs := repository.NewCashierTransactionRepository(db)
	documents := repository.NewDocumentRepository(db)
	notifications := repository.NewNotificationRepository(db)
	audits := repository.NewAuditRepository(db)
	registrations := repository.NewRegistrationRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	notifier := notify.NewDispatcher(notifications, producer)
	isUnique := repository.IsUniqueViolation

	issuer := service.JWTIssuer{
		Secret: cfg.JWTSecret,
		Expiry: time.Duration(cfg.JWTExpiryH) * time.Hour,
	}

	authSvc := service.NewAuthService(profiles, issuer)
	requestSvc := service.NewRequestService(requests, companies, providers, profiles, audits, notifier, db, isUnique)
	quotationSvc := service.NewQuotationService(quotations, requests, companies, profiles, audits, notifier, db, isUnique)
	contractSvc := service.NewContractService(contracts, quotations, requests, payments, companies, providers, profiles, audits, notifier, db, isUnique)
	cashierSvc := service.NewCashierService(cashierTxs, cashierAccounts, quotations, profiles, audits, notifier, db)
	registrationSvc := service.NewRegistrationService(registrations, companies, profiles, profiles, audits, notifier, db, isUnique)
	userSvc := service.NewUserService(profiles, companies, isUnique)

	aggregator := rates.NewAggregator(rates.NewClient(cfg.RateSourceURL, cfg.RatePageRows), cfg.RateTopOffers)
	renderer := docgen.NewRenderer(cfg.ContractTemplatePath)

	router := buildRouter(handlers{
		health:          handler.NewHealthHandler(db),
		auth:            handler.NewAuthHandler(authSvc),
		requests:        handler.NewRequestHandler(requestSvc),
		quotations:      handler.NewQuotationHandler(quotationSvc),
		contracts:       handler.NewContractHandler(contractSvc, renderer),
		cashier:         handler.NewCashierHandler(cashierSvc),
		companies:       handler.NewCompanyHandler(companies, isUnique),
		providers:       handler.NewProviderHandler(providers),
		users:           handler.NewUserHandler(userSvc),
		cashierAccounts: handler.NewCashierAccountHandler(cashierAccounts),
		registrations:   handler.NewRegistrationHandler(registrationSvc),
		notifications:   handler.NewNotificationHandler(notifications),
		documents:       handler.NewDocumentHandler(documents, store),
		audits:          handler.NewAuditHandler(audits),
		rates:           handler.NewRateHandler(aggregator),
	}, cfg.JWTSecret, middleware.Idempotency(idempotency))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// connectDB retries because the database container often comes up after the
// API in compose environments.
func connectDB(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var lastErr error
	for attempt := 1; attempt <= 30; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database not ready", "attempt", attempt, "error", err)
		time.Sleep(time.Second)
	}
	return nil, lastErr
}
