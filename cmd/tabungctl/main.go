package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tabung/internal/cli"
	"tabung/internal/config"
	"tabung/internal/log"
	"tabung/internal/services"
	"tabung/internal/storage"
)

func newRootCmd() *cobra.Command {
	var dbFlag string
	root := &cobra.Command{
		Use:           "tabungctl",
		Short:         "Administer a tabung ledger",
		Long:          "tabungctl inspects and maintains the tabung ledger database directly, without the HTTP server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if dbFlag != "" {
				_ = os.Setenv("SQLITE_DB_PATH", dbFlag)
			}
		},
	}
	root.PersistentFlags().StringVar(&dbFlag, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")

	root.AddCommand(balancesCmd())
	root.AddCommand(billsCmd())
	root.AddCommand(resetCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(revertPrematureCmd())
	return root
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentCLI)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		logger.Debug("Command failed", log.FieldError, err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// databasePath returns the configured database path, creating its directory.
func databasePath() (string, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return cfg.SQLiteDBPath, nil
}

// openLedger loads configuration and opens the ledger. The returned close
// function releases the database.
func openLedger(ctx context.Context) (*services.Ledger, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	opts, err := cli.LedgerOptions(cfg)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	ledger, err := services.NewLedger(ctx, repo, opts...)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return ledger, func() { repo.Close() }, nil
}
