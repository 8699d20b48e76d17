package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tabung/internal/core"
)

type ResetResult struct {
	ArchiveDate  time.Time
	Archived     int64
	BillsCleared int64
	BillsBudget  core.Money
	Budgets      map[int64]core.Money // new budget per user category
}

// carryover returns the budget of the next period: the unused part of the
// budget is added on top, an overspend is taken off, never below zero.
func carryover(budget, spent core.Money) core.Money {
	next := budget.Cents + (budget.Cents - spent.Cents)
	if next < 0 {
		next = 0
	}
	return core.Money{Cents: next}
}

// ResetPeriod closes the current period in one transaction: it archives
// every expense, carries budgets over, clears bill payments, recomputes the
// Bills budget and empties the expense table. On failure nothing changes
// and the error wraps core.ErrPersistence.
func (l *Ledger) ResetPeriod(ctx context.Context) (ResetResult, error) {
	res := ResetResult{ArchiveDate: l.clock(), Budgets: make(map[int64]core.Money)}

	err := l.store.Update(ctx, func(tx Tx) error {
		var err error
		if res.Archived, err = tx.ArchiveExpenses(ctx, res.ArchiveDate); err != nil {
			return err
		}

		cats, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		sums, err := tx.SumExpensesByCategory(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			if l.reserved.Contains(c.ID) {
				continue
			}
			next := carryover(c.Budget, sums[c.ID])
			if err := tx.SetCategoryBudget(ctx, c.ID, next); err != nil {
				return err
			}
			res.Budgets[c.ID] = next
		}

		if res.BillsCleared, err = tx.ClearAllBillPayments(ctx); err != nil {
			return err
		}

		bills, err := tx.ListBills(ctx)
		if err != nil {
			return err
		}
		for _, b := range bills {
			res.BillsBudget = res.BillsBudget.Add(b.Amount)
		}
		if err := tx.SetCategoryBudget(ctx, l.reserved.BillsID, res.BillsBudget); err != nil {
			return err
		}

		_, err = tx.DeleteAllExpenses(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, core.ErrPersistence) {
			err = core.Persistence("reset period", err)
		}
		slog.ErrorContext(ctx, "Period reset rolled back", "error", err)
		return ResetResult{}, err
	}

	slog.InfoContext(ctx, "Period reset",
		"archive_date", res.ArchiveDate,
		"archived", res.Archived,
		"bills_cleared", res.BillsCleared,
		"bills_budget_cents", res.BillsBudget.Cents)
	l.publish(ctx, Event{Type: EventPeriodReset, ArchiveDate: res.ArchiveDate})
	return res, nil
}

// ListArchive returns archived expenses, newest archive first.
func (l *Ledger) ListArchive(ctx context.Context) ([]core.ArchivedExpense, error) {
	var items []core.ArchivedExpense
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		items, err = tx.ListArchive(ctx)
		return err
	})
	return items, err
}

// ArchiveByDate returns the expenses archived by the reset at archiveDate.
func (l *Ledger) ArchiveByDate(ctx context.Context, archiveDate time.Time) ([]core.ArchivedExpense, error) {
	var items []core.ArchivedExpense
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		items, err = tx.ListArchiveByDate(ctx, archiveDate)
		return err
	})
	return items, err
}
