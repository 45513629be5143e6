package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/adapters/database/pgsql"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/adapters/gateway/intasend"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/handlers"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/metrics"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/middleware"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/utils"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/worker"
	"github.com/samuelmanoizy/intuipay-dashboard/pkg/config"
	"github.com/samuelmanoizy/intuipay-dashboard/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Intuipay Wallet Backend API
// @version 1.0
// @description Balance ledger and payment settlement backend for the Intuipay wallet.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics.Init()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	// Wire the settlement pipeline: ledger repository, gateway client,
	// orchestrator and the worker pool that runs workflows off-request.
	txnRepo := pgsql.NewPgxTransactionRepository(dbPool)
	gatewayClient := intasend.NewClient(intasend.Config{
		BaseURL:   cfg.IntaSendBaseURL,
		PublicKey: cfg.IntaSendPublicKey,
		SecretKey: cfg.IntaSendSecretKey,
		Currency:  cfg.Currency,
		Timeout:   cfg.GatewayTimeout,
	}, logger)
	settlementSvc := services.NewSettlementService(txnRepo, gatewayClient, services.SettlementConfig{
		DispatchAttempts:   cfg.SettlementDispatchAttempts,
		DispatchBackoff:    cfg.SettlementDispatchBackoff,
		DispatchBackoffCap: cfg.SettlementBackoffCap,
		PollInterval:       cfg.SettlementPollInterval,
		PollBudget:         cfg.SettlementPollBudget,
	}, logger)
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, logger)
	walletSvc := services.NewWalletService(txnRepo, settlementSvc, pool, cfg.CountryCode, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), middleware.Metrics(), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, walletSvc, settlementSvc, posthogClient)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	// Drain in-flight settlement workflows so no transaction is left PENDING
	// without an owning process.
	pool.Stop()
	logger.Info("Shutdown complete.")
}

// runMigrations applies all pending "up" migrations. It opens a temporary
// database/sql connection via the pgx stdlib driver to stay compatible with
// the main pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	if sourceErr, dbErr := m.Close(); sourceErr != nil {
		return sourceErr
	} else if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
