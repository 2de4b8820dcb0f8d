// Customer Core - customer management backend
//
// This is the main entry point for the Customer Core service: the
// authentication, authorisation, and customer-registry backend for
// OrionTek backoffice tooling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oriontek/customer-core/internal/api"
	"github.com/oriontek/customer-core/internal/audit"
	"github.com/oriontek/customer-core/internal/auth"
	"github.com/oriontek/customer-core/internal/customer"
	"github.com/oriontek/customer-core/internal/infrastructure/config"
	"github.com/oriontek/customer-core/internal/infrastructure/database"
	"github.com/oriontek/customer-core/internal/infrastructure/logging"
	"github.com/oriontek/customer-core/internal/metrics"
	"github.com/oriontek/customer-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Customer Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "environment", cfg.Environment)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and bring the schema up to date
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories and audit trail
	userRepo := auth.NewUserRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo, log)
	customerRepo := customer.NewRepository(db.DB)

	// Bootstrap accounts. Idempotent: existing accounts are left alone.
	if seedErr := auth.Seed(ctx, userRepo, auth.SeedParams{
		SuperAdminEmail:    cfg.Security.Seed.SuperAdminEmail,
		SuperAdminPassword: cfg.Security.Seed.SuperAdminPassword,
		AdminEmail:         cfg.Security.Seed.AdminEmail,
		AdminPassword:      cfg.Security.Seed.AdminPassword,
		Environment:        cfg.Environment,
	}, log); seedErr != nil {
		return fmt.Errorf("seeding accounts: %w", seedErr)
	}

	// Metrics registry with process and Go runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Token codec and services
	signingKey, err := cfg.Security.JWT.SigningKey()
	if err != nil {
		return fmt.Errorf("loading JWT signing key: %w", err)
	}
	codec := auth.NewTokenCodec(signingKey, cfg.Security.JWT.TokenTTL())

	authSvc := auth.NewService(userRepo, codec, recorder, collector, log)
	accountSvc := auth.NewAccountService(userRepo, recorder, log)
	customerSvc := customer.NewService(customerRepo, recorder, log)

	// HTTP API
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log,
		DB:        db,
		Auth:      authSvc,
		Accounts:  accountSvc,
		Customers: customerSvc,
		AuditRepo: auditRepo,
		Metrics:   collector,
		Gatherer:  registry,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Customer Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CUSTOMERCORE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CUSTOMERCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
