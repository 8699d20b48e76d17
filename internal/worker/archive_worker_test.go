package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabung/internal/amqp"
	"tabung/internal/core"
	"tabung/internal/services"
	"tabung/internal/sheets"
	"tabung/internal/sheets/memory"
)

type fakeArchive struct {
	items   map[time.Time][]core.ArchivedExpense
	cats    []core.CategoryStatus
	readErr error
	reads   int
}

func (f *fakeArchive) ArchiveByDate(_ context.Context, at time.Time) ([]core.ArchivedExpense, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.items[at], nil
}

func (f *fakeArchive) ListCategories(context.Context) ([]core.CategoryStatus, error) {
	return f.cats, nil
}

type failingWriter struct{}

func (failingWriter) AppendArchive(context.Context, []sheets.ArchiveRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestArchiveWorker_HandleLedgerEvent(t *testing.T) {
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	archive := &fakeArchive{
		items: map[time.Time][]core.ArchivedExpense{
			at: {
				{ExpenseID: 1, Amount: core.Money{Cents: 500}, Description: "lunch", Source: core.SourceCash, CategoryID: 3, ArchiveDate: at},
				{ExpenseID: 2, Amount: core.Money{Cents: 9000}, Description: "Paid: Rent", Source: core.SourceBank, CategoryID: 2, BillID: 4, ArchiveDate: at},
			},
		},
		cats: []core.CategoryStatus{
			{Category: core.Category{ID: 2, Name: "Bills"}},
			{Category: core.Category{ID: 3, Name: "Food"}},
		},
	}
	writer := memory.New()
	w := NewArchiveWorker(archive, writer)
	ctx := context.Background()

	if err := w.HandleLedgerEvent(ctx, &amqp.LedgerEvent{Type: services.EventBillPaid, ID: 4}); err != nil {
		t.Fatalf("bill event: %v", err)
	}
	if archive.reads != 0 {
		t.Fatal("non-reset events must not read the archive")
	}

	if err := w.HandleLedgerEvent(ctx, &amqp.LedgerEvent{Type: services.EventPeriodReset, ArchiveDate: at}); err != nil {
		t.Fatalf("reset event: %v", err)
	}
	rows := writer.Rows()
	if len(rows) != 2 {
		t.Fatalf("exported %d rows, want 2", len(rows))
	}
	if rows[0].Category != "Food" || rows[1].Category != "Bills" || !rows[1].FromBill {
		t.Errorf("unexpected rows: %+v", rows)
	}

	// A reset with an empty archive exports nothing.
	if err := w.HandleLedgerEvent(ctx, &amqp.LedgerEvent{Type: services.EventPeriodReset, ArchiveDate: at.Add(time.Hour)}); err != nil {
		t.Fatalf("empty reset: %v", err)
	}
	if len(writer.Rows()) != 2 {
		t.Error("empty archive produced rows")
	}
}

func TestArchiveWorker_Errors(t *testing.T) {
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	reset := &amqp.LedgerEvent{Type: services.EventPeriodReset, ArchiveDate: at}

	broken := &fakeArchive{readErr: core.Persistence("list archive by date", errors.New("disk I/O error"))}
	if err := NewArchiveWorker(broken, memory.New()).HandleLedgerEvent(ctx, reset); !errors.Is(err, core.ErrPersistence) {
		t.Errorf("expected persistence error to propagate, got %v", err)
	}

	archive := &fakeArchive{items: map[time.Time][]core.ArchivedExpense{at: {{ExpenseID: 1, Amount: core.Money{Cents: 1}}}}}
	if err := NewArchiveWorker(archive, failingWriter{}).HandleLedgerEvent(ctx, reset); err == nil {
		t.Error("expected writer failure to be returned for requeue")
	}

	if err := NewArchiveWorker(archive, memory.New()).HandleLedgerEvent(ctx, &amqp.LedgerEvent{Type: services.EventPeriodReset}); err != nil {
		t.Errorf("reset without archive date should be dropped, got %v", err)
	}
}
