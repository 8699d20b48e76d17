package services

import (
	"context"
	"time"

	"tabung/internal/core"
)

// Store runs fn inside a single store transaction. Update commits when fn
// returns nil and rolls back otherwise; View always rolls back.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
}

// Tx is the table-scoped view of the store available inside a transaction.
// Get* and Delete* of a missing row return an error wrapping core.ErrNotFound.
type Tx interface {
	ListMoney(ctx context.Context) ([]core.MoneyEntry, error)
	GetMoney(ctx context.Context, id int64) (core.MoneyEntry, error)
	InsertMoney(ctx context.Context, m core.MoneyEntry) (int64, error)
	UpdateMoney(ctx context.Context, m core.MoneyEntry) error

	ListExpenses(ctx context.Context) ([]core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	InsertExpense(ctx context.Context, e core.Expense) (int64, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	DeleteExpensesByBill(ctx context.Context, billID int64) (int64, error)
	CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error)
	SumExpensesByCategory(ctx context.Context) (map[int64]core.Money, error)
	ArchiveExpenses(ctx context.Context, archiveDate time.Time) (int64, error)
	DeleteAllExpenses(ctx context.Context) (int64, error)

	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	GetCategoryByName(ctx context.Context, name string) (core.Category, error)
	InsertCategory(ctx context.Context, c core.Category) (int64, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	SetCategoryBudget(ctx context.Context, id int64, budget core.Money) error
	DeleteCategory(ctx context.Context, id int64) error

	ListBills(ctx context.Context) ([]core.Bill, error)
	GetBill(ctx context.Context, id int64) (core.Bill, error)
	InsertBill(ctx context.Context, b core.Bill) (int64, error)
	// GetBillRecurrence returns the occurrence created by paying bill id.
	GetBillRecurrence(ctx context.Context, id int64) (core.Bill, error)
	UpdateBill(ctx context.Context, b core.Bill) error
	// MarkBillPaid flips an unpaid bill to paid. It reports false when the
	// bill was already paid, leaving the row untouched.
	MarkBillPaid(ctx context.Context, id int64, paidAt time.Time) (bool, error)
	MarkBillUnpaid(ctx context.Context, id int64) error
	ClearAllBillPayments(ctx context.Context) (int64, error)
	DeleteBill(ctx context.Context, id int64) error

	ListArchive(ctx context.Context) ([]core.ArchivedExpense, error)
	ListArchiveByDate(ctx context.Context, archiveDate time.Time) ([]core.ArchivedExpense, error)

	ListGoals(ctx context.Context) ([]core.Goal, error)
	InsertGoal(ctx context.Context, g core.Goal) (int64, error)
	DeleteGoal(ctx context.Context, id int64) error
}

// EventPublisher receives ledger events after their transaction committed.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev Event) error
}

// Event describes a committed ledger mutation.
type Event struct {
	Type        string
	ID          int64
	ArchiveDate time.Time
	Timestamp   time.Time
}

const (
	EventBillPaid     = "bill.paid"
	EventBillReversed = "bill.reversed"
	EventBillDeleted  = "bill.deleted"
	EventPeriodReset  = "period.reset"
)
