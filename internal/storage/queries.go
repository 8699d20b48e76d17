package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tabung/internal/core"
)

// Timestamps are stored as fixed-width UTC text so that ORDER BY on the
// column follows chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// mapError classifies a driver error. Unique violations become
// core.ErrNameConflict, sql.ErrNoRows becomes core.ErrNotFound and
// everything else is a persistence failure.
func mapError(op, kind string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return core.NotFound(kind, id)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w", op, core.ErrNameConflict)
	default:
		return core.Persistence(op, err)
	}
}

func affected(op, kind string, id int64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.Persistence(op, err)
	}
	if n == 0 {
		return core.NotFound(kind, id)
	}
	return nil
}

// Money

const moneyColumns = `id, amount_cents, location, source, date, description`

func scanMoney(s rowScanner) (core.MoneyEntry, error) {
	var (
		m    core.MoneyEntry
		date string
	)
	if err := s.Scan(&m.ID, &m.Amount.Cents, &m.Location, &m.Source, &date, &m.Description); err != nil {
		return m, err
	}
	t, err := parseTime(date)
	if err != nil {
		return m, err
	}
	m.Date = t
	return m, nil
}

func (q *Queries) ListMoney(ctx context.Context) ([]core.MoneyEntry, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+moneyColumns+` FROM money ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, core.Persistence("list money", err)
	}
	defer rows.Close()

	var items []core.MoneyEntry
	for rows.Next() {
		m, err := scanMoney(rows)
		if err != nil {
			return nil, core.Persistence("scan money", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence("list money", err)
	}
	return items, nil
}

func (q *Queries) GetMoney(ctx context.Context, id int64) (core.MoneyEntry, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+moneyColumns+` FROM money WHERE id = ?`, id)
	m, err := scanMoney(row)
	if err != nil {
		return m, mapError("get money", "money entry", id, err)
	}
	return m, nil
}

func (q *Queries) InsertMoney(ctx context.Context, m core.MoneyEntry) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO money (amount_cents, location, source, date, description) VALUES (?, ?, ?, ?, ?)`,
		m.Amount.Cents, string(m.Location), string(m.Source), formatTime(m.Date), m.Description)
	if err != nil {
		return 0, core.Persistence("insert money", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.Persistence("insert money", err)
	}
	return id, nil
}

func (q *Queries) UpdateMoney(ctx context.Context, m core.MoneyEntry) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE money SET amount_cents = ?, location = ?, source = ?, date = ?, description = ? WHERE id = ?`,
		m.Amount.Cents, string(m.Location), string(m.Source), formatTime(m.Date), m.Description, m.ID)
	if err != nil {
		return core.Persistence("update money", err)
	}
	return affected("update money", "money entry", m.ID, res)
}

// Expenses

const expenseColumns = `id, amount_cents, description, source, category_id, date, bill_id`

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e      core.Expense
		date   string
		billID sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.Amount.Cents, &e.Description, &e.Source, &e.CategoryID, &date, &billID); err != nil {
		return e, err
	}
	t, err := parseTime(date)
	if err != nil {
		return e, err
	}
	e.Date = t
	e.BillID = billID.Int64
	return e, nil
}

func (q *Queries) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, core.Persistence("list expenses", err)
	}
	defer rows.Close()

	var items []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, core.Persistence("scan expense", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence("list expenses", err)
	}
	return items, nil
}

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		return e, mapError("get expense", "expense", id, err)
	}
	return e, nil
}

func (q *Queries) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO expenses (amount_cents, description, source, category_id, date, bill_id) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Amount.Cents, e.Description, string(e.Source), e.CategoryID, formatTime(e.Date), nullInt(e.BillID))
	if err != nil {
		return 0, core.Persistence("insert expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.Persistence("insert expense", err)
	}
	return id, nil
}

func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, description = ?, source = ?, category_id = ?, date = ? WHERE id = ?`,
		e.Amount.Cents, e.Description, string(e.Source), e.CategoryID, formatTime(e.Date), e.ID)
	if err != nil {
		return core.Persistence("update expense", err)
	}
	return affected("update expense", "expense", e.ID, res)
}

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return core.Persistence("delete expense", err)
	}
	return affected("delete expense", "expense", id, res)
}

func (q *Queries) DeleteExpensesByBill(ctx context.Context, billID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses WHERE bill_id = ?`, billID)
	if err != nil {
		return 0, core.Persistence("delete bill expense", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.Persistence("delete bill expense", err)
	}
	return n, nil
}

func (q *Queries) CountExpensesByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return 0, core.Persistence("count category expenses", err)
	}
	return n, nil
}

func (q *Queries) SumExpensesByCategory(ctx context.Context) (map[int64]core.Money, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT category_id, COALESCE(SUM(amount_cents), 0) FROM expenses GROUP BY category_id`)
	if err != nil {
		return nil, core.Persistence("sum expenses by category", err)
	}
	defer rows.Close()

	sums := make(map[int64]core.Money)
	for rows.Next() {
		var id, cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, core.Persistence("scan category sum", err)
		}
		sums[id] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence("sum expenses by category", err)
	}
	return sums, nil
}

func (q *Queries) ArchiveExpenses(ctx context.Context, archiveDate time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO expenses_archive (expense_id, amount_cents, description, source, category_id, date, bill_id, archive_date)
		SELECT id, amount_cents, description, source, category_id, date, bill_id, ?
		FROM expenses
		ORDER BY id`, formatTime(archiveDate))
	if err != nil {
		return 0, core.Persistence("archive expenses", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.Persistence("archive expenses", err)
	}
	return n, nil
}

func (q *Queries) DeleteAllExpenses(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM expenses`)
	if err != nil {
		return 0, core.Persistence("delete all expenses", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.Persistence("delete all expenses", err)
	}
	return n, nil
}

// Categories

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, budget_cents FROM categories ORDER BY id`)
	if err != nil {
		return nil, core.Persistence("list categories", err)
	}
	defer rows.Close()

	var items []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Budget.Cents); err != nil {
			return nil, core.Persistence("scan category", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence("list categories", err)
	}
	return items, nil
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx, `SELECT id, name, budget_cents FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Budget.Cents)
	return c, mapError("get category", "category", id, err)
}

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := q.db.QueryRowContext(ctx, `SELECT id, name, budget_cents FROM categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Budget.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
	}
	return c, mapError("get category by name", "category", 0, err)
}

func (q *Queries) InsertCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO categories (name, budget_cents) VALUES (?, ?)`, c.Name, c.Budget.Cents)
	if err != nil {
		return 0, mapError("insert category", "category", 0, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.Persistence("insert category", err)
	}
	return id, nil
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx, `UPDATE categories SET name = ?, budget_cents = ? WHERE id = ?`, c.Name, c.Budget.Cents, c.ID)
	if err != nil {
		return mapError("update category", "category", c.ID, err)
	}
	return affected("update category", "category", c.ID, res)
}

func (q *Queries) SetCategoryBudget(ctx context.Context, id int64, budget core.Money) error {
	res, err := q.db.ExecContext(ctx, `UPDATE categories SET budget_cents = ? WHERE id = ?`, budget.Cents, id)
	if err != nil {
		return core.Persistence("set category budget", err)
	}
	return affected("set category budget", "category", id, res)
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return core.Persistence("delete category", err)
	}
	return affected("delete category", "category", id, res)
}

// Bills

const billColumns = `id, name, amount_cents, is_fixed, due_date, paid, paid_date, recurs_from`

func scanBill(s rowScanner) (core.Bill, error) {
	var (
		b        core.Bill
		due      string
		paidDate sql.NullString
		from     sql.NullInt64
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Amount.Cents, &b.IsFixed, &due, &b.Paid, &paidDate, &from); err != nil {
		return b, err
	}
	b.RecursFrom = from.Int64
	d, err := parseDate(due)
	if err != nil {
		return b, err
	}
	b.DueDate = d
	if paidDate.Valid {
		t, err := parseTime(paidDate.String)
		if err != nil {
			return b, err
		}
		b.PaidDate = t
	}
	return b, nil
}

func (q *Queries) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+billColumns+` FROM bills ORDER BY due_date ASC, id ASC`)
	if err != nil {
		return nil, core.Persistence("list bills", err)
	}
	defer rows.Close()

	var items []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, core.Persistence("scan bill", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence("list bills", err)
	}
	return items, nil
}

func (q *Queries) GetBill(ctx context.Context, id int64) (core.Bill, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if err != nil {
		return b, mapError("get bill", "bill", id, err)
	}
	return b, nil
}

func (q *Queries) InsertBill(ctx context.Context, b core.Bill) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO bills (name, amount_cents, is_fixed, due_date, paid, paid_date, recurs_from) VALUES (?, ?, ?, ?, 0, NULL, ?)`,
		b.Name, b.Amount.Cents, b.IsFixed, b.DueDate.String(), nullInt(b.RecursFrom))
	if err != nil {
		return 0, core.Persistence("insert bill", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.Persistence("insert bill", err)
	}
	return id, nil
}

// GetBillRecurrence returns the occurrence created by paying bill id.
func (q *Queries) GetBillRecurrence(ctx context.Context, id int64) (core.Bill, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE recurs_from = ?`, id)
	b, err := scanBill(row)
	if err != nil {
		return b, mapError("get bill recurrence", "recurrence of bill", id, err)
	}
	return b, nil
}

// UpdateBill edits the descriptive fields of a bill. Paid state is only
// changed through MarkBillPaid and MarkBillUnpaid.
func (q *Queries) UpdateBill(ctx context.Context, b core.Bill) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount_cents = ?, is_fixed = ?, due_date = ? WHERE id = ?`,
		b.Name, b.Amount.Cents, b.IsFixed, b.DueDate.String(), b.ID)
	if err != nil {
		return core.Persistence("update bill", err)
	}
	return affected("update bill", "bill", b.ID, res)
}

func (q *Queries) MarkBillPaid(ctx context.Context, id int64, paidAt time.Time) (bool, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE bills SET paid = 1, paid_date = ? WHERE id = ? AND paid = 0`, formatTime(paidAt), id)
	if err != nil {
		return false, core.Persistence("mark bill paid", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.Persistence("mark bill paid", err)
	}
	return n == 1, nil
}

func (q *Queries) MarkBillUnpaid(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `UPDATE bills SET paid = 0, paid_date = NULL WHERE id = ?`, id)
	if err != nil {
		return core.Persistence("mark bill unpaid", err)
	}
	return affected("mark bill unpaid", "bill", id, res)
}

func (q *Queries) ClearAllBillPayments(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE bills SET paid = 0, paid_date = NULL`)
	if err != nil {
		return 0, core.Persistence("clear bill payments", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.Persistence("clear bill payments", err)
	}
	return n, nil
}

// DeleteBill removes a bill and detaches the occurrence its payment created.
func (q *Queries) DeleteBill(ctx context.Context, id int64) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE bills SET recurs_from = NULL WHERE recurs_from = ?`, id); err != nil {
		return core.Persistence("detach bill recurrence", err)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return core.Persistence("delete bill", err)
	}
	return affected("delete bill", "bill", id, res)
}

// Archive

const archiveColumns = `id, expense_id, amount_cents, description, source, category_id, date, bill_id, archive_date`

func scanArchived(s rowScanner) (core.ArchivedExpense, error) {
	var (
		a                 core.ArchivedExpense
		date, archiveDate string
		billID            sql.NullInt64
	)
	if err := s.Scan(&a.ID, &a.ExpenseID, &a.Amount.Cents, &a.Description, &a.Source, &a.CategoryID, &date, &billID, &archiveDate); err != nil {
		return a, err
	}
	var err error
	if a.Date, err = parseTime(date); err != nil {
		return a, err
	}
	if a.ArchiveDate, err = parseTime(archiveDate); err != nil {
		return a, err
	}
	a.BillID = billID.Int64
	return a, nil
}

func (q *Queries) queryArchive(ctx context.Context, op, query string, args ...any) ([]core.ArchivedExpense, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.Persistence(op, err)
	}
	defer rows.Close()

	var items []core.ArchivedExpense
	for rows.Next() {
		a, err := scanArchived(rows)
		if err != nil {
			return nil, core.Persistence("scan archived expense", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence(op, err)
	}
	return items, nil
}

func (q *Queries) ListArchive(ctx context.Context) ([]core.ArchivedExpense, error) {
	return q.queryArchive(ctx, "list archive",
		`SELECT `+archiveColumns+` FROM expenses_archive ORDER BY archive_date DESC, date DESC, id DESC`)
}

func (q *Queries) ListArchiveByDate(ctx context.Context, archiveDate time.Time) ([]core.ArchivedExpense, error) {
	return q.queryArchive(ctx, "list archive by date",
		`SELECT `+archiveColumns+` FROM expenses_archive WHERE archive_date = ? ORDER BY id`, formatTime(archiveDate))
}

// Goals

func (q *Queries) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, target_cents, deadline FROM goals ORDER BY id`)
	if err != nil {
		return nil, core.Persistence("list goals", err)
	}
	defer rows.Close()

	var items []core.Goal
	for rows.Next() {
		var (
			g        core.Goal
			deadline sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &deadline); err != nil {
			return nil, core.Persistence("scan goal", err)
		}
		if deadline.Valid && deadline.String != "" {
			d, err := parseDate(deadline.String)
			if err != nil {
				return nil, core.Persistence("scan goal", err)
			}
			g.Deadline = d
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Persistence("list goals", err)
	}
	return items, nil
}

func (q *Queries) InsertGoal(ctx context.Context, g core.Goal) (int64, error) {
	var deadline sql.NullString
	if !g.Deadline.IsEmpty() {
		deadline = sql.NullString{String: g.Deadline.String(), Valid: true}
	}
	res, err := q.db.ExecContext(ctx, `INSERT INTO goals (name, target_cents, deadline) VALUES (?, ?, ?)`,
		g.Name, g.TargetAmount.Cents, deadline)
	if err != nil {
		return 0, core.Persistence("insert goal", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, core.Persistence("insert goal", err)
	}
	return id, nil
}

func (q *Queries) DeleteGoal(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return core.Persistence("delete goal", err)
	}
	return affected("delete goal", "goal", id, res)
}
