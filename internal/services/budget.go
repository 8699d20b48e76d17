package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tabung/internal/core"
)

// BudgetLevel classifies spend against a category budget.
type BudgetLevel int

const (
	BudgetOK BudgetLevel = iota
	// BudgetNearLimit is advisory: spend reached 80% of the budget.
	BudgetNearLimit
	// BudgetOverLimit needs explicit confirmation: spend reached 100%.
	BudgetOverLimit
)

func (l BudgetLevel) String() string {
	switch l {
	case BudgetNearLimit:
		return "near_limit"
	case BudgetOverLimit:
		return "over_limit"
	default:
		return "ok"
	}
}

// Percent returns spent as a percentage of budget, 0 when there is no budget.
func Percent(spent, budget core.Money) float64 {
	if budget.Cents <= 0 {
		return 0
	}
	return float64(spent.Cents) / float64(budget.Cents) * 100
}

// CheckBudget classifies spent against budget. A zero budget is never exceeded.
func CheckBudget(budget, spent core.Money) BudgetLevel {
	switch {
	case budget.Cents <= 0:
		return BudgetOK
	case spent.Cents >= budget.Cents:
		return BudgetOverLimit
	case spent.Cents*5 >= budget.Cents*4:
		return BudgetNearLimit
	default:
		return BudgetOK
	}
}

// BudgetWarning is returned alongside an admitted expense that pushed its
// category to or past a threshold.
type BudgetWarning struct {
	CategoryID int64
	Category   string
	Level      BudgetLevel
	Percent    float64
}

// ListCategories returns every category with its spend. The Bills budget is
// derived from the current bills by the configured policy.
func (l *Ledger) ListCategories(ctx context.Context) ([]core.CategoryStatus, error) {
	var out []core.CategoryStatus
	err := l.store.View(ctx, func(tx Tx) error {
		cats, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		sums, err := tx.SumExpensesByCategory(ctx)
		if err != nil {
			return err
		}
		bills, err := tx.ListBills(ctx)
		if err != nil {
			return err
		}

		out = make([]core.CategoryStatus, 0, len(cats))
		for _, c := range cats {
			if c.ID == l.reserved.BillsID {
				c.Budget = l.billsPolicy.BillsBudget(bills, l.clock())
			}
			spent := sums[c.ID]
			out = append(out, core.CategoryStatus{
				Category: c,
				Spent:    spent,
				Percent:  Percent(spent, c.Budget),
				Reserved: l.reserved.Contains(c.ID),
			})
		}
		return nil
	})
	return out, err
}

func normalizeCategory(name string, budget core.Money) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %w", core.ErrValidation, core.ErrEmptyName)
	}
	if budget.Cents < 0 {
		return "", fmt.Errorf("%w: budget cannot be negative", core.ErrValidation)
	}
	if budget.Cents > core.MaxAmountCents {
		return "", fmt.Errorf("%w: %w", core.ErrValidation, core.ErrInvalidAmount)
	}
	if core.IsReservedCategoryName(name) {
		return "", fmt.Errorf("%q: %w", name, core.ErrReservedNameConflict)
	}
	return name, nil
}

// AddCategory creates a user category. Reserved names are refused.
func (l *Ledger) AddCategory(ctx context.Context, name string, budget core.Money) (int64, error) {
	name, err := normalizeCategory(name, budget)
	if err != nil {
		return 0, err
	}

	var id int64
	err = l.store.Update(ctx, func(tx Tx) error {
		id, err = tx.InsertCategory(ctx, core.Category{Name: name, Budget: budget})
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Category added", "id", id, "name", name, "budget_cents", budget.Cents)
	return id, nil
}

// UpdateCategory renames a user category and sets its budget.
func (l *Ledger) UpdateCategory(ctx context.Context, id int64, name string, budget core.Money) error {
	if l.reserved.Contains(id) {
		return fmt.Errorf("category %d: %w", id, core.ErrReservedCategory)
	}
	name, err := normalizeCategory(name, budget)
	if err != nil {
		return err
	}
	return l.store.Update(ctx, func(tx Tx) error {
		return tx.UpdateCategory(ctx, core.Category{ID: id, Name: name, Budget: budget})
	})
}

// DeleteCategory removes a user category that no expense references.
func (l *Ledger) DeleteCategory(ctx context.Context, id int64) error {
	if l.reserved.Contains(id) {
		return fmt.Errorf("category %d: %w", id, core.ErrReservedCategory)
	}
	return l.store.Update(ctx, func(tx Tx) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountExpensesByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("category %d has %d expenses: %w", id, n, core.ErrCategoryInUse)
		}
		return tx.DeleteCategory(ctx, id)
	})
}
