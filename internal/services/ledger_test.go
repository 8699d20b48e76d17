package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabung/internal/core"
	"tabung/internal/services"
)

func TestNewLedgerResolvesReservedCategories(t *testing.T) {
	repo := newRepo(t)
	first := newLedgerOn(t, repo)
	second := newLedgerOn(t, repo)

	r := first.Reserved()
	if r.OthersID == 0 || r.BillsID == 0 || r.OthersID == r.BillsID {
		t.Fatalf("reserved ids not resolved: %+v", r)
	}
	if second.Reserved() != r {
		t.Errorf("reserved ids changed between ledgers: %+v vs %+v", second.Reserved(), r)
	}
}

func TestBalancesFollowEntries(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	fund(t, l, core.LocationCash, rm(100))
	fund(t, l, core.LocationBank, rm(500))
	fund(t, l, core.LocationMyTabung, rm(50))
	spend(t, l, 0, core.SourceCash, rm(30))
	spend(t, l, 0, core.SourceBank, rm(120))

	b := balances(t, l)
	want := core.Balances{
		Cash:      rm(70),
		Bank:      rm(380),
		MyTabung:  rm(50),
		Spendable: rm(450),
		Total:     rm(500),
	}
	if b != want {
		t.Fatalf("balances = %+v, want %+v", b, want)
	}

	// Overdrawing either source is refused and leaves no trace.
	for _, src := range []core.ExpenseSource{core.SourceCash, core.SourceBank} {
		_, err := l.RecordExpense(ctx, services.ExpenseInput{
			Amount: rm(1000), Description: "too much", Source: src,
		})
		if !errors.Is(err, core.ErrInsufficientFunds) {
			t.Errorf("%s: expected insufficient funds, got %v", src, err)
		}
	}
	if got := balances(t, l); got != want {
		t.Errorf("balances changed after refused expenses: %+v", got)
	}
	if n := len(expenses(t, l)); n != 2 {
		t.Errorf("expected 2 expenses, got %d", n)
	}
}

func TestSavingsNeverFundExpenses(t *testing.T) {
	l := newLedger(t)
	fund(t, l, core.LocationMyTabung, rm(1000))

	_, err := l.RecordExpense(context.Background(), services.ExpenseInput{
		Amount: rm(1), Description: "coffee", Source: core.SourceCash,
	})
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	_, err = l.RecordExpense(context.Background(), services.ExpenseInput{
		Amount: rm(1), Description: "coffee", Source: core.ExpenseSource(core.LocationMyTabung),
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error for MyTabung source, got %v", err)
	}
}

func TestRecordMoneyValidation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   services.MoneyInput
	}{
		{"zero amount", services.MoneyInput{Location: core.LocationCash, Source: core.IncomeSalary, Description: "x"}},
		{"unknown location", services.MoneyInput{Amount: rm(1), Location: "Wallet", Source: core.IncomeSalary, Description: "x"}},
		{"unknown source", services.MoneyInput{Amount: rm(1), Location: core.LocationCash, Source: "Gift", Description: "x"}},
		{"no description", services.MoneyInput{Amount: rm(1), Location: core.LocationCash, Source: core.IncomeSalary}},
		{"amount above limit", services.MoneyInput{Amount: core.Money{Cents: core.MaxAmountCents + 1}, Location: core.LocationCash, Source: core.IncomeSalary, Description: "x"}},
		{"near int64 max", services.MoneyInput{Amount: core.Money{Cents: (1<<63 - 1) / 100 * 100}, Location: core.LocationCash, Source: core.IncomeSalary, Description: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.RecordMoney(ctx, tt.in); !errors.Is(err, core.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	items, err := l.ListMoney(ctx)
	if err != nil {
		t.Fatalf("ListMoney: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("invalid entries were persisted: %+v", items)
	}
}

func TestCreditsStayWithinBalanceLimit(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	ceiling := core.Money{Cents: core.MaxAmountCents}

	n := core.MaxBalanceCents / core.MaxAmountCents
	for i := int64(0); i < n; i++ {
		fund(t, l, core.LocationCash, ceiling)
	}
	if _, err := l.RecordMoney(ctx, services.MoneyInput{
		Amount: rm(1), Location: core.LocationCash, Source: core.IncomeSalary, Description: "one more",
	}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("credit past the limit: expected validation error, got %v", err)
	}

	items, err := l.ListMoney(ctx)
	if err != nil {
		t.Fatalf("ListMoney: %v", err)
	}
	if err := l.UpdateMoney(ctx, items[0].ID, services.MoneyInput{
		Amount: ceiling, Location: core.LocationCash, Source: core.IncomeSalary, Description: "edit",
	}); err != nil {
		t.Fatalf("edit at the limit: %v", err)
	}

	b := balances(t, l)
	if b.Cash.Cents != core.MaxBalanceCents || b.Total.Cents != core.MaxBalanceCents {
		t.Errorf("balances = %+v, want cash and total at %d cents", b, core.MaxBalanceCents)
	}
}

func TestListsAreNewestFirst(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	for i, day := range []int{3, 9, 5} {
		_, err := l.RecordMoney(ctx, services.MoneyInput{
			Amount: rm(int64(i + 1)), Location: core.LocationCash, Source: core.IncomeOthers,
			Description: "entry", Date: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("RecordMoney: %v", err)
		}
	}

	items, err := l.ListMoney(ctx)
	if err != nil {
		t.Fatalf("ListMoney: %v", err)
	}
	var days []int
	for _, m := range items {
		days = append(days, m.Date.Day())
	}
	if len(days) != 3 || days[0] != 9 || days[1] != 5 || days[2] != 3 {
		t.Errorf("money order = %v, want [9 5 3]", days)
	}
}

func TestUpdateMoneyKeepsBalancesNonNegative(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	id, err := l.RecordMoney(ctx, services.MoneyInput{
		Amount: rm(100), Location: core.LocationCash, Source: core.IncomeSalary, Description: "pay",
	})
	if err != nil {
		t.Fatalf("RecordMoney: %v", err)
	}
	spend(t, l, 0, core.SourceCash, rm(60))

	err = l.UpdateMoney(ctx, id, services.MoneyInput{
		Amount: rm(50), Location: core.LocationCash, Source: core.IncomeSalary, Description: "pay",
	})
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	err = l.UpdateMoney(ctx, id, services.MoneyInput{
		Amount: rm(80), Location: core.LocationCash, Source: core.IncomeFreelance, Description: "gig",
	})
	if err != nil {
		t.Fatalf("UpdateMoney: %v", err)
	}
	if b := balances(t, l); b.Cash != rm(20) {
		t.Errorf("cash = %s, want RM 20.00", b.Cash)
	}

	if err := l.UpdateMoney(ctx, 999, services.MoneyInput{
		Amount: rm(1), Location: core.LocationCash, Source: core.IncomeSalary, Description: "x",
	}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	fund(t, l, core.LocationCash, rm(100))
	id := spend(t, l, 0, core.SourceCash, rm(40))

	// The old amount is released before the new one is checked.
	res, err := l.UpdateExpense(ctx, id, services.ExpenseInput{
		Amount: rm(100), Description: "bigger", Source: core.SourceCash,
	})
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if res.ID != id {
		t.Errorf("UpdateExpense id = %d, want %d", res.ID, id)
	}
	if b := balances(t, l); b.Cash.Cents != 0 {
		t.Errorf("cash = %s, want 0", b.Cash)
	}

	if err := l.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if b := balances(t, l); b.Cash != rm(100) {
		t.Errorf("cash = %s, want RM 100.00", b.Cash)
	}
	if err := l.DeleteExpense(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestTodaySummary(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	fund(t, l, core.LocationCash, rm(100))
	spend(t, l, 0, core.SourceCash, rm(15))
	_, err := l.RecordExpense(ctx, services.ExpenseInput{
		Amount: rm(5), Description: "yesterday", Source: core.SourceCash, Date: testNow.AddDate(0, 0, -1),
	})
	if err != nil {
		t.Fatalf("RecordExpense: %v", err)
	}

	sum, err := l.TodaySummary(ctx)
	if err != nil {
		t.Fatalf("TodaySummary: %v", err)
	}
	if sum.Added != rm(100) || sum.Spent != rm(15) || sum.Day.String() != "2024-01-10" {
		t.Errorf("TodaySummary = %+v", sum)
	}
}

func TestGoals(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	if _, err := l.AddGoal(ctx, services.GoalInput{Name: "Laptop"}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	id, err := l.AddGoal(ctx, services.GoalInput{Name: "Laptop", TargetAmount: rm(4000), Deadline: core.NewDate(2024, 6, 1)})
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}
	goals, err := l.ListGoals(ctx)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != id || goals[0].Deadline.String() != "2024-06-01" {
		t.Fatalf("ListGoals = %+v", goals)
	}
	if err := l.DeleteGoal(ctx, id); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if err := l.DeleteGoal(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
