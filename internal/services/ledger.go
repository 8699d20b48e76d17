// Package services holds the ledger consistency engine: balance derivation,
// category budgets, the bill lifecycle and the period reset. Every operation
// runs against a Store transaction; nothing is cached across calls.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tabung/internal/core"
)

// ReservedCategories holds the ids of the two reserved categories, resolved
// once when the ledger is built.
type ReservedCategories struct {
	OthersID int64
	BillsID  int64
}

// Contains reports whether id is one of the reserved categories.
func (r ReservedCategories) Contains(id int64) bool {
	return id == r.OthersID || id == r.BillsID
}

type Ledger struct {
	store       Store
	events      EventPublisher
	now         func() time.Time
	billsPolicy BillsBudgetPolicy
	revertDays  int
	reserved    ReservedCategories
}

type Option func(*Ledger)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithEvents publishes committed mutations to p.
func WithEvents(p EventPublisher) Option {
	return func(l *Ledger) { l.events = p }
}

// WithBillsBudgetPolicy selects how the Bills budget is derived when
// categories are listed. The default is AllUnpaidPolicy.
func WithBillsBudgetPolicy(p BillsBudgetPolicy) Option {
	return func(l *Ledger) {
		if p != nil {
			l.billsPolicy = p
		}
	}
}

// WithAutoRevertWindow enables reverting bills paid more than days before
// their due date. Zero disables it.
func WithAutoRevertWindow(days int) Option {
	return func(l *Ledger) { l.revertDays = days }
}

// NewLedger resolves the reserved categories, creating any that are missing.
func NewLedger(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:       store,
		now:         time.Now,
		billsPolicy: AllUnpaidPolicy{},
	}
	for _, opt := range opts {
		opt(l)
	}

	err := store.Update(ctx, func(tx Tx) error {
		var err error
		if l.reserved.OthersID, err = ensureCategory(ctx, tx, core.CategoryOthers); err != nil {
			return err
		}
		l.reserved.BillsID, err = ensureCategory(ctx, tx, core.CategoryBills)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve reserved categories: %w", err)
	}

	slog.InfoContext(ctx, "Ledger initialized",
		"others_id", l.reserved.OthersID,
		"bills_id", l.reserved.BillsID,
		"bills_policy", l.billsPolicy.Name(),
		"auto_revert_days", l.revertDays)

	return l, nil
}

func ensureCategory(ctx context.Context, tx Tx, name string) (int64, error) {
	c, err := tx.GetCategoryByName(ctx, name)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, err
	}
	return tx.InsertCategory(ctx, core.Category{Name: name})
}

// Reserved returns the ids of Others and Bills.
func (l *Ledger) Reserved() ReservedCategories {
	return l.reserved
}

func (l *Ledger) clock() time.Time {
	return l.now().UTC()
}

// publish is best-effort: the mutation already committed.
func (l *Ledger) publish(ctx context.Context, ev Event) {
	if l.events == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.clock()
	}
	if err := l.events.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type, "id", ev.ID, "error", err)
	}
}
