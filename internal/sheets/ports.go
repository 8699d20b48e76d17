package sheets

import (
	"context"
	"time"

	"tabung/internal/core"
)

// ArchiveRow is one archived expense as exported to a spreadsheet.
type ArchiveRow struct {
	ArchiveDate time.Time
	Date        time.Time
	Description string
	Category    string
	Source      core.ExpenseSource
	Amount      core.Money
	FromBill    bool
}

// Ports for outbound adapters.
type (
	// ArchiveWriter appends the rows of one period reset to an export target.
	ArchiveWriter interface {
		AppendArchive(ctx context.Context, rows []ArchiveRow) (ref string, err error)
	}
)

// NewArchiveRows resolves category names for the export. Unknown ids fall
// back to the Others category.
func NewArchiveRows(items []core.ArchivedExpense, categories map[int64]string) []ArchiveRow {
	rows := make([]ArchiveRow, 0, len(items))
	for _, a := range items {
		name, ok := categories[a.CategoryID]
		if !ok {
			name = core.CategoryOthers
		}
		rows = append(rows, ArchiveRow{
			ArchiveDate: a.ArchiveDate,
			Date:        a.Date,
			Description: a.Description,
			Category:    name,
			Source:      a.Source,
			Amount:      a.Amount,
			FromBill:    a.BillID != 0,
		})
	}
	return rows
}
