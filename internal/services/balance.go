package services

import (
	"context"
	"fmt"

	"tabung/internal/core"
)

// ComputeBalances derives every balance from the raw rows. MyTabung is only
// ever credited: expenses cannot be drawn from it.
func ComputeBalances(money []core.MoneyEntry, expenses []core.Expense) core.Balances {
	var b core.Balances
	var in, out int64
	for _, m := range money {
		in += m.Amount.Cents
		switch m.Location {
		case core.LocationCash:
			b.Cash.Cents += m.Amount.Cents
		case core.LocationBank:
			b.Bank.Cents += m.Amount.Cents
		case core.LocationMyTabung:
			b.MyTabung.Cents += m.Amount.Cents
		}
	}
	for _, e := range expenses {
		out += e.Amount.Cents
		switch e.Source {
		case core.SourceCash:
			b.Cash.Cents -= e.Amount.Cents
		case core.SourceBank:
			b.Bank.Cents -= e.Amount.Cents
		}
	}
	b.Spendable = b.Cash.Add(b.Bank)
	b.Total = core.Money{Cents: in - out}
	return b
}

// checkCredits refuses a set of money entries whose sum exceeds
// core.MaxBalanceCents. Each addition is checked before it happens.
func checkCredits(money []core.MoneyEntry) error {
	var in int64
	for _, m := range money {
		if m.Amount.Cents > core.MaxBalanceCents-in {
			return fmt.Errorf("%w: credits would exceed %s", core.ErrValidation, core.Money{Cents: core.MaxBalanceCents})
		}
		in += m.Amount.Cents
	}
	return nil
}

func balancesTx(ctx context.Context, tx Tx) (core.Balances, []core.MoneyEntry, []core.Expense, error) {
	money, err := tx.ListMoney(ctx)
	if err != nil {
		return core.Balances{}, nil, nil, err
	}
	expenses, err := tx.ListExpenses(ctx)
	if err != nil {
		return core.Balances{}, nil, nil, err
	}
	return ComputeBalances(money, expenses), money, expenses, nil
}

// GetBalances recomputes balances from the store on every call.
func (l *Ledger) GetBalances(ctx context.Context) (core.Balances, error) {
	var b core.Balances
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		b, _, _, err = balancesTx(ctx, tx)
		return err
	})
	return b, err
}

// TodaySummary totals what was added and spent on the current day.
func (l *Ledger) TodaySummary(ctx context.Context) (core.DaySummary, error) {
	today := core.DateOf(l.clock())
	sum := core.DaySummary{Day: today}
	err := l.store.View(ctx, func(tx Tx) error {
		_, money, expenses, err := balancesTx(ctx, tx)
		if err != nil {
			return err
		}
		for _, m := range money {
			if core.DateOf(m.Date).Equal(today.Time) {
				sum.Added = sum.Added.Add(m.Amount)
			}
		}
		for _, e := range expenses {
			if core.DateOf(e.Date).Equal(today.Time) {
				sum.Spent = sum.Spent.Add(e.Amount)
			}
		}
		return nil
	})
	return sum, err
}

func covers(balance, amount core.Money) bool {
	return balance.Cents >= amount.Cents
}
