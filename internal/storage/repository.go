package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tabung/internal/core"
	"tabung/internal/services"

	_ "modernc.org/sqlite"
)

var _ services.Store = (*SQLiteRepository)(nil)
var _ services.Tx = (*Queries)(nil)

// SQLiteRepository is the ledger store. Write transactions begin with
// BEGIN IMMEDIATE so concurrent writers serialize on the database lock.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the pooled connection exists
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database is reachable. Used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// View runs fn in a transaction that is always rolled back.
func (r *SQLiteRepository) View(ctx context.Context, fn func(services.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Persistence("begin read transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(r.queries.WithTx(tx))
}

// Update runs fn in a transaction committed only when fn returns nil.
func (r *SQLiteRepository) Update(ctx context.Context, fn func(services.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Persistence("begin transaction", err)
	}

	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr, "cause", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return core.Persistence("commit transaction", err)
	}
	return nil
}
