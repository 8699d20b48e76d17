package services

import (
	"testing"
	"time"

	"tabung/internal/core"
)

func TestBillsBudgetPolicies(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	bills := []core.Bill{
		{Name: "Overdue", Amount: core.Money{Cents: 100}, DueDate: core.NewDate(2024, 1, 5)},
		{Name: "Soon", Amount: core.Money{Cents: 200}, DueDate: core.NewDate(2024, 1, 15)},
		{Name: "Later", Amount: core.Money{Cents: 400}, DueDate: core.NewDate(2024, 2, 20)},
		{Name: "Paid", Amount: core.Money{Cents: 800}, DueDate: core.NewDate(2024, 1, 12), Paid: true},
		{Name: "Dynamic", DueDate: core.NewDate(2024, 1, 11)},
	}

	tests := []struct {
		name   string
		policy BillsBudgetPolicy
		want   int64
	}{
		{"all unpaid", AllUnpaidPolicy{}, 700},
		{"due within a week", DueWithinPolicy{Days: 7}, 300},
		{"due within zero days counts overdue only", DueWithinPolicy{Days: 0}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.BillsBudget(bills, now); got.Cents != tt.want {
				t.Errorf("%s.BillsBudget() = %d, want %d", tt.policy.Name(), got.Cents, tt.want)
			}
		})
	}
}

func TestGetBillsBudgetPolicy(t *testing.T) {
	p, err := GetBillsBudgetPolicy(PolicyDueWithin, 14)
	if err != nil {
		t.Fatalf("GetBillsBudgetPolicy() error = %v", err)
	}
	if dw, ok := p.(DueWithinPolicy); !ok || dw.Days != 14 {
		t.Errorf("GetBillsBudgetPolicy() = %#v, want DueWithinPolicy{14}", p)
	}

	if _, err := GetBillsBudgetPolicy(PolicyAllUnpaid, 0); err != nil {
		t.Errorf("all_unpaid should be registered: %v", err)
	}

	if _, err := GetBillsBudgetPolicy("weekly", 0); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestRegisterBillsBudgetPolicy(t *testing.T) {
	RegisterBillsBudgetPolicy("nothing", func(int) BillsBudgetPolicy { return DueWithinPolicy{Days: -1 << 30} })
	defer delete(billsBudgetPolicies, "nothing")

	p, err := GetBillsBudgetPolicy("nothing", 0)
	if err != nil {
		t.Fatalf("GetBillsBudgetPolicy() error = %v", err)
	}
	bills := []core.Bill{{Amount: core.Money{Cents: 5}, DueDate: core.NewDate(2024, 1, 1)}}
	if got := p.BillsBudget(bills, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); got.Cents != 0 {
		t.Errorf("custom policy BillsBudget() = %d, want 0", got.Cents)
	}
}
