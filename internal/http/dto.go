package http

import (
	"time"

	"tabung/internal/core"
	"tabung/internal/services"
)

// Amounts go out as decimal strings so clients never see float rounding.

type balancesDTO struct {
	Cash      string `json:"cash"`
	Bank      string `json:"bank"`
	MyTabung  string `json:"my_tabung"`
	Spendable string `json:"spendable"`
	Total     string `json:"total"`
}

func toBalances(b core.Balances) balancesDTO {
	return balancesDTO{
		Cash:      b.Cash.Decimal(),
		Bank:      b.Bank.Decimal(),
		MyTabung:  b.MyTabung.Decimal(),
		Spendable: b.Spendable.Decimal(),
		Total:     b.Total.Decimal(),
	}
}

type daySummaryDTO struct {
	Day   string `json:"day"`
	Spent string `json:"spent"`
	Added string `json:"added"`
}

type moneyDTO struct {
	ID          int64     `json:"id"`
	Amount      string    `json:"amount"`
	Location    string    `json:"location"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

func toMoney(e core.MoneyEntry) moneyDTO {
	return moneyDTO{
		ID:          e.ID,
		Amount:      e.Amount.Decimal(),
		Location:    string(e.Location),
		Source:      string(e.Source),
		Description: e.Description,
		Date:        e.Date,
	}
}

type expenseDTO struct {
	ID          int64     `json:"id"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	CategoryID  int64     `json:"category_id"`
	Date        time.Time `json:"date"`
	BillID      int64     `json:"bill_id,omitempty"`
}

func toExpense(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Amount:      e.Amount.Decimal(),
		Description: e.Description,
		Source:      string(e.Source),
		CategoryID:  e.CategoryID,
		Date:        e.Date,
		BillID:      e.BillID,
	}
}

type warningDTO struct {
	CategoryID int64   `json:"category_id"`
	Category   string  `json:"category"`
	Level      string  `json:"level"`
	Percent    float64 `json:"percent"`
}

type expenseResultDTO struct {
	ID      int64       `json:"id"`
	Warning *warningDTO `json:"warning,omitempty"`
}

func toExpenseResult(res services.ExpenseResult) expenseResultDTO {
	out := expenseResultDTO{ID: res.ID}
	if w := res.Warning; w != nil {
		out.Warning = &warningDTO{
			CategoryID: w.CategoryID,
			Category:   w.Category,
			Level:      w.Level.String(),
			Percent:    w.Percent,
		}
	}
	return out
}

type categoryDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Budget   string  `json:"budget"`
	Spent    string  `json:"spent"`
	Percent  float64 `json:"percent"`
	Reserved bool    `json:"reserved"`
}

func toCategory(c core.CategoryStatus) categoryDTO {
	return categoryDTO{
		ID:       c.ID,
		Name:     c.Name,
		Budget:   c.Budget.Decimal(),
		Spent:    c.Spent.Decimal(),
		Percent:  c.Percent,
		Reserved: c.Reserved,
	}
}

type billDTO struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Amount     string     `json:"amount"`
	IsFixed    bool       `json:"is_fixed"`
	DueDate    string     `json:"due_date"`
	Paid       bool       `json:"paid"`
	PaidDate   *time.Time `json:"paid_date,omitempty"`
	RecursFrom int64      `json:"recurs_from,omitempty"`
}

func toBill(b core.Bill) billDTO {
	out := billDTO{
		ID:         b.ID,
		Name:       b.Name,
		Amount:     b.Amount.Decimal(),
		IsFixed:    b.IsFixed,
		DueDate:    b.DueDate.String(),
		Paid:       b.Paid,
		RecursFrom: b.RecursFrom,
	}
	if !b.PaidDate.IsZero() {
		pd := b.PaidDate
		out.PaidDate = &pd
	}
	return out
}

type payResultDTO struct {
	BillID     int64  `json:"bill_id"`
	ExpenseID  int64  `json:"expense_id"`
	Source     string `json:"source"`
	Amount     string `json:"amount"`
	NextBillID int64  `json:"next_bill_id,omitempty"`
}

type goalDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	TargetAmount string `json:"target_amount"`
	Deadline     string `json:"deadline,omitempty"`
}

func toGoal(g core.Goal) goalDTO {
	return goalDTO{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount.Decimal(),
		Deadline:     g.Deadline.String(),
	}
}

type archivedDTO struct {
	ID          int64     `json:"id"`
	ExpenseID   int64     `json:"expense_id"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	CategoryID  int64     `json:"category_id"`
	Date        time.Time `json:"date"`
	BillID      int64     `json:"bill_id,omitempty"`
	ArchiveDate time.Time `json:"archive_date"`
}

func toArchived(a core.ArchivedExpense) archivedDTO {
	return archivedDTO{
		ID:          a.ID,
		ExpenseID:   a.ExpenseID,
		Amount:      a.Amount.Decimal(),
		Description: a.Description,
		Source:      string(a.Source),
		CategoryID:  a.CategoryID,
		Date:        a.Date,
		BillID:      a.BillID,
		ArchiveDate: a.ArchiveDate,
	}
}

type resetResultDTO struct {
	ArchiveDate  time.Time        `json:"archive_date"`
	Archived     int64            `json:"archived"`
	BillsCleared int64            `json:"bills_cleared"`
	BillsBudget  string           `json:"bills_budget"`
	Budgets      map[int64]string `json:"budgets"`
}

func toResetResult(res services.ResetResult) resetResultDTO {
	out := resetResultDTO{
		ArchiveDate:  res.ArchiveDate,
		Archived:     res.Archived,
		BillsCleared: res.BillsCleared,
		BillsBudget:  res.BillsBudget.Decimal(),
		Budgets:      make(map[int64]string, len(res.Budgets)),
	}
	for id, b := range res.Budgets {
		out.Budgets[id] = b.Decimal()
	}
	return out
}

// mapSlice converts a slice, returning an empty (not nil) slice so JSON shows [].
func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
