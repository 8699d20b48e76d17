// This file implements the Strategy Pattern for deriving the Bills category budget.
// The ledger rule counts every unpaid bill; due-date filtering is a separate,
// opt-in display policy and never replaces the ledger rule silently.

package services

import (
	"fmt"
	"time"

	"tabung/internal/core"
)

const (
	PolicyAllUnpaid = "all_unpaid"
	PolicyDueWithin = "due_within"
)

// BillsBudgetPolicy is the strategy interface for deriving the Bills budget
// from the current bills.
type BillsBudgetPolicy interface {
	Name() string
	// BillsBudget returns the budget the Bills category shows at now.
	BillsBudget(bills []core.Bill, now time.Time) core.Money
}

// AllUnpaidPolicy sums the amount of every unpaid bill.
type AllUnpaidPolicy struct{}

func (AllUnpaidPolicy) Name() string { return PolicyAllUnpaid }

func (AllUnpaidPolicy) BillsBudget(bills []core.Bill, _ time.Time) core.Money {
	var total core.Money
	for _, b := range bills {
		if !b.Paid {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// DueWithinPolicy sums unpaid bills due within Days of now. Overdue bills count.
type DueWithinPolicy struct {
	Days int
}

func (p DueWithinPolicy) Name() string { return PolicyDueWithin }

func (p DueWithinPolicy) BillsBudget(bills []core.Bill, now time.Time) core.Money {
	var total core.Money
	for _, b := range bills {
		if !b.Paid && b.DueDate.DaysUntil(now) <= p.Days {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// billsBudgetPolicies maps policy names to constructors taking the lookahead in days.
var billsBudgetPolicies = map[string]func(lookaheadDays int) BillsBudgetPolicy{
	PolicyAllUnpaid: func(int) BillsBudgetPolicy { return AllUnpaidPolicy{} },
	PolicyDueWithin: func(days int) BillsBudgetPolicy { return DueWithinPolicy{Days: days} },
}

// GetBillsBudgetPolicy returns the policy registered under name.
func GetBillsBudgetPolicy(name string, lookaheadDays int) (BillsBudgetPolicy, error) {
	factory, ok := billsBudgetPolicies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bills budget policy: %s", name)
	}
	return factory(lookaheadDays), nil
}

// RegisterBillsBudgetPolicy adds or replaces a named policy.
func RegisterBillsBudgetPolicy(name string, factory func(lookaheadDays int) BillsBudgetPolicy) {
	billsBudgetPolicies[name] = factory
}
