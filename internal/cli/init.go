// Package cli provides the initialization helpers shared by cmd/tabung,
// cmd/tabung-worker and cmd/tabungctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tabung/internal/config"
	"tabung/internal/log"
	"tabung/internal/services"
	"tabung/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if os.Getenv("LOG_FORMAT") == "json" {
		cfg.Format = "json"
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository, applying pending migrations.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// LedgerOptions translates configuration into ledger options.
func LedgerOptions(cfg *config.Config) ([]services.Option, error) {
	policy, err := services.GetBillsBudgetPolicy(cfg.BillsBudgetPolicy, cfg.BillsLookaheadDays)
	if err != nil {
		return nil, fmt.Errorf("bills budget policy: %w", err)
	}
	return []services.Option{
		services.WithBillsBudgetPolicy(policy),
		services.WithAutoRevertWindow(cfg.AutoRevertWindowDays),
	}, nil
}

// InitLedger builds the ledger on repo with the configured options plus extra.
// Returns the ledger or exits the process on failure.
func InitLedger(ctx context.Context, logger *log.Logger, cfg *config.Config, repo services.Store, extra ...services.Option) *services.Ledger {
	opts, err := LedgerOptions(cfg)
	if err != nil {
		logger.Error("Invalid ledger configuration", log.FieldError, err)
		os.Exit(1)
	}
	ledger, err := services.NewLedger(ctx, repo, append(opts, extra...)...)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err)
		os.Exit(1)
	}
	return ledger
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
// cleanup runs after cancellation and is bounded by timeout; done closes when it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}
