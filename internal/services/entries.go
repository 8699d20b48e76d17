package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tabung/internal/core"
)

// MoneyInput is a money entry as submitted. A zero Date means now.
type MoneyInput struct {
	Amount      core.Money
	Location    core.Location
	Source      core.IncomeSource
	Description string
	Date        time.Time
}

// ExpenseInput is an expense as submitted. CategoryID 0 files it under
// Others. Confirm admits an expense that takes its category over budget.
type ExpenseInput struct {
	Amount      core.Money
	Description string
	Source      core.ExpenseSource
	CategoryID  int64
	Date        time.Time
	Confirm     bool
}

type ExpenseResult struct {
	ID      int64
	Warning *BudgetWarning
}

func (l *Ledger) dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return l.clock()
	}
	return t.UTC()
}

func (l *Ledger) ListMoney(ctx context.Context) ([]core.MoneyEntry, error) {
	var items []core.MoneyEntry
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		items, err = tx.ListMoney(ctx)
		return err
	})
	return items, err
}

func (l *Ledger) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var items []core.Expense
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		items, err = tx.ListExpenses(ctx)
		return err
	})
	return items, err
}

// RecordMoney credits a location.
func (l *Ledger) RecordMoney(ctx context.Context, in MoneyInput) (int64, error) {
	m := core.MoneyEntry{
		Amount:      in.Amount,
		Location:    in.Location,
		Source:      in.Source,
		Description: in.Description,
		Date:        l.dateOrNow(in.Date),
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := l.store.Update(ctx, func(tx Tx) error {
		money, err := tx.ListMoney(ctx)
		if err != nil {
			return err
		}
		if err := checkCredits(append(money, m)); err != nil {
			return err
		}
		id, err = tx.InsertMoney(ctx, m)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Money recorded",
		"id", id, "amount_cents", m.Amount.Cents, "location", m.Location, "source", m.Source)
	return id, nil
}

// UpdateMoney edits a money entry. The edit is refused when it would leave
// cash or bank negative.
func (l *Ledger) UpdateMoney(ctx context.Context, id int64, in MoneyInput) error {
	m := core.MoneyEntry{
		ID:          id,
		Amount:      in.Amount,
		Location:    in.Location,
		Source:      in.Source,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := m.Validate(); err != nil {
		return err
	}

	return l.store.Update(ctx, func(tx Tx) error {
		old, err := tx.GetMoney(ctx, id)
		if err != nil {
			return err
		}
		if m.Date.IsZero() {
			m.Date = old.Date
		}

		_, money, expenses, err := balancesTx(ctx, tx)
		if err != nil {
			return err
		}
		for i := range money {
			if money[i].ID == id {
				money[i] = m
			}
		}
		if err := checkCredits(money); err != nil {
			return err
		}
		after := ComputeBalances(money, expenses)
		if after.Cash.Cents < 0 || after.Bank.Cents < 0 {
			return fmt.Errorf("editing money entry %d: %w", id, core.ErrInsufficientFunds)
		}
		return tx.UpdateMoney(ctx, m)
	})
}

// resolveExpenseCategory maps a submitted category id onto a category that
// may receive manual expenses.
func (l *Ledger) resolveExpenseCategory(ctx context.Context, tx Tx, id int64) (core.Category, error) {
	if id == 0 {
		id = l.reserved.OthersID
	}
	if id == l.reserved.BillsID {
		return core.Category{}, fmt.Errorf("%w: the %s category only receives bill payments", core.ErrValidation, core.CategoryBills)
	}
	c, err := tx.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}
	return c, nil
}

// checkBudget applies the threshold policy to the category total after the
// expense. Reserved categories never warn.
func (l *Ledger) checkBudget(c core.Category, spentAfter core.Money, confirm bool) (*BudgetWarning, error) {
	if l.reserved.Contains(c.ID) {
		return nil, nil
	}
	level := CheckBudget(c.Budget, spentAfter)
	if level == BudgetOK {
		return nil, nil
	}
	w := &BudgetWarning{
		CategoryID: c.ID,
		Category:   c.Name,
		Level:      level,
		Percent:    Percent(spentAfter, c.Budget),
	}
	if level == BudgetOverLimit && !confirm {
		return w, fmt.Errorf("%s at %.0f%%: %w", c.Name, w.Percent, core.ErrBudgetExceeded)
	}
	return w, nil
}

// RecordExpense admits an expense after checking funds on its source and the
// budget of its category.
func (l *Ledger) RecordExpense(ctx context.Context, in ExpenseInput) (ExpenseResult, error) {
	e := core.Expense{
		Amount:      in.Amount,
		Description: in.Description,
		Source:      in.Source,
		Date:        l.dateOrNow(in.Date),
	}
	if err := e.Validate(); err != nil {
		return ExpenseResult{}, err
	}

	var res ExpenseResult
	err := l.store.Update(ctx, func(tx Tx) error {
		c, err := l.resolveExpenseCategory(ctx, tx, in.CategoryID)
		if err != nil {
			return err
		}
		e.CategoryID = c.ID

		bal, _, _, err := balancesTx(ctx, tx)
		if err != nil {
			return err
		}
		if !covers(bal.Of(e.Source), e.Amount) {
			return fmt.Errorf("%s balance %s cannot cover %s: %w", e.Source, bal.Of(e.Source), e.Amount, core.ErrInsufficientFunds)
		}

		sums, err := tx.SumExpensesByCategory(ctx)
		if err != nil {
			return err
		}
		if res.Warning, err = l.checkBudget(c, sums[c.ID].Add(e.Amount), in.Confirm); err != nil {
			return err
		}

		res.ID, err = tx.InsertExpense(ctx, e)
		return err
	})
	if err != nil {
		return ExpenseResult{}, err
	}

	slog.InfoContext(ctx, "Expense recorded",
		"id", res.ID, "amount_cents", e.Amount.Cents, "source", e.Source, "category_id", e.CategoryID)
	if res.Warning != nil {
		slog.WarnContext(ctx, "Category budget threshold reached",
			"category", res.Warning.Category, "level", res.Warning.Level.String(), "percent", res.Warning.Percent)
	}
	return res, nil
}

// UpdateExpense edits a manual expense. Expenses created by bill payments
// change only through the bill.
func (l *Ledger) UpdateExpense(ctx context.Context, id int64, in ExpenseInput) (ExpenseResult, error) {
	e := core.Expense{
		ID:          id,
		Amount:      in.Amount,
		Description: in.Description,
		Source:      in.Source,
		Date:        in.Date,
	}
	if err := e.Validate(); err != nil {
		return ExpenseResult{}, err
	}

	var res ExpenseResult
	err := l.store.Update(ctx, func(tx Tx) error {
		old, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if old.BillID != 0 {
			return fmt.Errorf("expense %d belongs to bill %d: %w", id, old.BillID, core.ErrLinkedExpense)
		}
		if e.Date.IsZero() {
			e.Date = old.Date
		}
		c, err := l.resolveExpenseCategory(ctx, tx, in.CategoryID)
		if err != nil {
			return err
		}
		e.CategoryID = c.ID

		bal, _, _, err := balancesTx(ctx, tx)
		if err != nil {
			return err
		}
		available := bal.Of(e.Source)
		if old.Source == e.Source {
			available = available.Add(old.Amount)
		}
		if !covers(available, e.Amount) {
			return fmt.Errorf("%s balance %s cannot cover %s: %w", e.Source, available, e.Amount, core.ErrInsufficientFunds)
		}

		sums, err := tx.SumExpensesByCategory(ctx)
		if err != nil {
			return err
		}
		spent := sums[c.ID]
		if old.CategoryID == c.ID {
			spent = spent.Sub(old.Amount)
		}
		if res.Warning, err = l.checkBudget(c, spent.Add(e.Amount), in.Confirm); err != nil {
			return err
		}

		res.ID = id
		return tx.UpdateExpense(ctx, e)
	})
	if err != nil {
		return ExpenseResult{}, err
	}
	return res, nil
}

// DeleteExpense removes a manual expense.
func (l *Ledger) DeleteExpense(ctx context.Context, id int64) error {
	return l.store.Update(ctx, func(tx Tx) error {
		e, err := tx.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if e.BillID != 0 {
			return fmt.Errorf("expense %d belongs to bill %d: %w", id, e.BillID, core.ErrLinkedExpense)
		}
		return tx.DeleteExpense(ctx, id)
	})
}
