package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tabung/internal/core"
)

// BillInput is the user-editable part of a bill. Paid state changes only
// through PayBill and ReverseBill.
type BillInput struct {
	Name    string
	Amount  core.Money
	IsFixed bool
	DueDate core.Date
}

// PayOptions carries the amount of a dynamic bill, which is only known when
// it is paid. It is ignored for bills with a set amount.
type PayOptions struct {
	Amount core.Money
}

type PayResult struct {
	BillID     int64
	ExpenseID  int64
	Source     core.ExpenseSource
	Amount     core.Money
	NextBillID int64 // zero unless the bill is fixed
}

func (in BillInput) bill() core.Bill {
	return core.Bill{
		Name:    strings.TrimSpace(in.Name),
		Amount:  in.Amount,
		IsFixed: in.IsFixed,
		DueDate: in.DueDate,
	}
}

// ListBills returns bills by ascending due date. When auto-revert is
// enabled, premature payments are reverted first.
func (l *Ledger) ListBills(ctx context.Context) ([]core.Bill, error) {
	if l.revertDays > 0 {
		if _, err := l.RevertPrematurePayments(ctx); err != nil {
			return nil, err
		}
	}

	var bills []core.Bill
	err := l.store.View(ctx, func(tx Tx) error {
		var err error
		bills, err = tx.ListBills(ctx)
		return err
	})
	return bills, err
}

func (l *Ledger) AddBill(ctx context.Context, in BillInput) (int64, error) {
	b := in.bill()
	if err := b.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := l.store.Update(ctx, func(tx Tx) error {
		var err error
		id, err = tx.InsertBill(ctx, b)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Bill added", "id", id, "name", b.Name, "due_date", b.DueDate.String(), "fixed", b.IsFixed)
	return id, nil
}

// UpdateBill edits a bill. The amount of a paid bill is fixed by its
// payment; reverse it first to change the amount. Renaming a paid bill
// renames its synthetic expense.
func (l *Ledger) UpdateBill(ctx context.Context, id int64, in BillInput) error {
	b := in.bill()
	b.ID = id
	if err := b.Validate(); err != nil {
		return err
	}

	return l.store.Update(ctx, func(tx Tx) error {
		old, err := tx.GetBill(ctx, id)
		if err != nil {
			return err
		}
		if old.Paid && old.Amount != b.Amount {
			return fmt.Errorf("%w: cannot change the amount of paid bill %d", core.ErrValidation, id)
		}
		if err := tx.UpdateBill(ctx, b); err != nil {
			return err
		}
		if !old.Paid || old.Name == b.Name {
			return nil
		}
		return renameSyntheticExpense(ctx, tx, b)
	})
}

func renameSyntheticExpense(ctx context.Context, tx Tx, b core.Bill) error {
	expenses, err := tx.ListExpenses(ctx)
	if err != nil {
		return err
	}
	for _, e := range expenses {
		if e.BillID == b.ID {
			e.Description = core.SyntheticExpenseDescription(b.Name)
			return tx.UpdateExpense(ctx, e)
		}
	}
	return nil
}

// PayBill marks a bill paid and records its synthetic expense on Cash when
// cash covers it, otherwise on Bank. Fixed bills get their next occurrence
// one calendar month later. All of it commits or none of it does.
func (l *Ledger) PayBill(ctx context.Context, id int64, opts PayOptions) (PayResult, error) {
	now := l.clock()
	res := PayResult{BillID: id}

	err := l.store.Update(ctx, func(tx Tx) error {
		b, err := tx.GetBill(ctx, id)
		if err != nil {
			return err
		}
		if b.Paid {
			return fmt.Errorf("bill %d: %w", id, core.ErrAlreadyPaid)
		}

		res.Amount = b.Amount
		if b.IsDynamic() {
			if opts.Amount.Validate() != nil {
				return fmt.Errorf("%w: bill %q needs a payment amount", core.ErrValidation, b.Name)
			}
			res.Amount = opts.Amount
		}

		bal, _, _, err := balancesTx(ctx, tx)
		if err != nil {
			return err
		}
		res.Source = core.SourceCash
		if !covers(bal.Cash, res.Amount) {
			res.Source = core.SourceBank
		}
		if !covers(bal.Of(res.Source), res.Amount) {
			return fmt.Errorf("paying %s from %s (balance %s): %w", res.Amount, res.Source, bal.Of(res.Source), core.ErrInsufficientFunds)
		}

		ok, err := tx.MarkBillPaid(ctx, id, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("bill %d: %w", id, core.ErrAlreadyPaid)
		}

		res.ExpenseID, err = tx.InsertExpense(ctx, core.Expense{
			Amount:      res.Amount,
			Description: core.SyntheticExpenseDescription(b.Name),
			Source:      res.Source,
			CategoryID:  l.reserved.BillsID,
			Date:        now,
			BillID:      id,
		})
		if err != nil {
			return err
		}

		if b.IsFixed {
			res.NextBillID, err = nextOccurrence(ctx, tx, b)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return PayResult{}, err
	}

	slog.InfoContext(ctx, "Bill paid",
		"id", id, "amount_cents", res.Amount.Cents, "source", res.Source,
		"expense_id", res.ExpenseID, "next_bill_id", res.NextBillID)
	l.publish(ctx, Event{Type: EventBillPaid, ID: id, Timestamp: now})
	return res, nil
}

// nextOccurrence returns the bill due one month after b, creating it unless
// an earlier payment of b already did.
func nextOccurrence(ctx context.Context, tx Tx, b core.Bill) (int64, error) {
	next, err := tx.GetBillRecurrence(ctx, b.ID)
	if err == nil {
		return next.ID, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, err
	}
	return tx.InsertBill(ctx, core.Bill{
		Name:       b.Name,
		Amount:     b.Amount,
		IsFixed:    true,
		DueDate:    b.DueDate.AddMonth(),
		RecursFrom: b.ID,
	})
}

// ReverseBill undoes a payment. A missing or unpaid bill is left alone.
// An unpaid occurrence created by the payment is removed with it.
func (l *Ledger) ReverseBill(ctx context.Context, id int64) error {
	var reversed bool
	err := l.store.Update(ctx, func(tx Tx) error {
		b, err := tx.GetBill(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !b.Paid {
			return nil
		}
		reversed = true
		return reverseTx(ctx, tx, id)
	})
	if err != nil || !reversed {
		return err
	}

	slog.InfoContext(ctx, "Bill payment reversed", "id", id)
	l.publish(ctx, Event{Type: EventBillReversed, ID: id})
	return nil
}

// reverseTx deletes the synthetic expense of bill id, clears its payment and
// drops the occurrence the payment created while that one is still unpaid.
func reverseTx(ctx context.Context, tx Tx, id int64) error {
	if _, err := tx.DeleteExpensesByBill(ctx, id); err != nil {
		return err
	}
	if err := tx.MarkBillUnpaid(ctx, id); err != nil {
		return err
	}
	next, err := tx.GetBillRecurrence(ctx, id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return err
	case next.Paid:
		return nil
	}
	return tx.DeleteBill(ctx, next.ID)
}

// DeleteBill removes a bill together with the expense its payment created.
func (l *Ledger) DeleteBill(ctx context.Context, id int64) error {
	err := l.store.Update(ctx, func(tx Tx) error {
		if _, err := tx.GetBill(ctx, id); err != nil {
			return err
		}
		if _, err := tx.DeleteExpensesByBill(ctx, id); err != nil {
			return err
		}
		return tx.DeleteBill(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Bill deleted", "id", id)
	l.publish(ctx, Event{Type: EventBillDeleted, ID: id})
	return nil
}

// RevertPrematurePayments reverts every paid bill whose due date is more
// than the auto-revert window away. It is idempotent and returns the
// number of bills reverted.
func (l *Ledger) RevertPrematurePayments(ctx context.Context) (int, error) {
	if l.revertDays <= 0 {
		return 0, nil
	}
	now := l.clock()

	var reverted []int64
	err := l.store.Update(ctx, func(tx Tx) error {
		bills, err := tx.ListBills(ctx)
		if err != nil {
			return err
		}
		for _, b := range bills {
			if !b.Paid || b.DueDate.DaysUntil(now) <= l.revertDays {
				continue
			}
			if err := reverseTx(ctx, tx, b.ID); err != nil {
				return err
			}
			reverted = append(reverted, b.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range reverted {
		slog.InfoContext(ctx, "Premature bill payment reverted", "id", id, "window_days", l.revertDays)
		l.publish(ctx, Event{Type: EventBillReversed, ID: id})
	}
	return len(reverted), nil
}
