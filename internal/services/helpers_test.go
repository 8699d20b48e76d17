package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tabung/internal/core"
	"tabung/internal/services"
	"tabung/internal/storage"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func rm(ringgit int64) core.Money {
	return core.Money{Cents: ringgit * 100}
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newLedger(t *testing.T, opts ...services.Option) *services.Ledger {
	t.Helper()
	return newLedgerOn(t, newRepo(t), opts...)
}

func newLedgerOn(t *testing.T, store services.Store, opts ...services.Option) *services.Ledger {
	t.Helper()
	opts = append([]services.Option{services.WithClock(func() time.Time { return testNow })}, opts...)
	l, err := services.NewLedger(context.Background(), store, opts...)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func fund(t *testing.T, l *services.Ledger, loc core.Location, amount core.Money) {
	t.Helper()
	_, err := l.RecordMoney(context.Background(), services.MoneyInput{
		Amount: amount, Location: loc, Source: core.IncomeSalary, Description: "salary",
	})
	if err != nil {
		t.Fatalf("RecordMoney: %v", err)
	}
}

func addCategory(t *testing.T, l *services.Ledger, name string, budget core.Money) int64 {
	t.Helper()
	id, err := l.AddCategory(context.Background(), name, budget)
	if err != nil {
		t.Fatalf("AddCategory(%s): %v", name, err)
	}
	return id
}

func spend(t *testing.T, l *services.Ledger, categoryID int64, src core.ExpenseSource, amount core.Money) int64 {
	t.Helper()
	res, err := l.RecordExpense(context.Background(), services.ExpenseInput{
		Amount: amount, Description: "spend", Source: src, CategoryID: categoryID, Confirm: true,
	})
	if err != nil {
		t.Fatalf("RecordExpense: %v", err)
	}
	return res.ID
}

func balances(t *testing.T, l *services.Ledger) core.Balances {
	t.Helper()
	b, err := l.GetBalances(context.Background())
	if err != nil {
		t.Fatalf("GetBalances: %v", err)
	}
	return b
}

func expenses(t *testing.T, l *services.Ledger) []core.Expense {
	t.Helper()
	items, err := l.ListExpenses(context.Background())
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	return items
}

func bills(t *testing.T, l *services.Ledger) []core.Bill {
	t.Helper()
	items, err := l.ListBills(context.Background())
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	return items
}

func category(t *testing.T, l *services.Ledger, id int64) core.CategoryStatus {
	t.Helper()
	cats, err := l.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("category %d not listed", id)
	return core.CategoryStatus{}
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []services.Event
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev services.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// faultStore injects a failure into one step of write transactions.
type faultStore struct {
	services.Store
	failOn string
}

var errInjected = errors.New("injected failure")

func (s faultStore) Update(ctx context.Context, fn func(services.Tx) error) error {
	return s.Store.Update(ctx, func(tx services.Tx) error {
		return fn(faultTx{Tx: tx, failOn: s.failOn})
	})
}

type faultTx struct {
	services.Tx
	failOn string
}

func (t faultTx) ClearAllBillPayments(ctx context.Context) (int64, error) {
	if t.failOn == "clear_bills" {
		return 0, errInjected
	}
	return t.Tx.ClearAllBillPayments(ctx)
}

func (t faultTx) DeleteAllExpenses(ctx context.Context) (int64, error) {
	if t.failOn == "delete_expenses" {
		return 0, errInjected
	}
	return t.Tx.DeleteAllExpenses(ctx)
}

func (t faultTx) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	if t.failOn == "insert_expense" && e.BillID != 0 {
		return 0, errInjected
	}
	return t.Tx.InsertExpense(ctx, e)
}
