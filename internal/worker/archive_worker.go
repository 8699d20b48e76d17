package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tabung/internal/amqp"
	"tabung/internal/core"
	"tabung/internal/services"
	"tabung/internal/sheets"
)

// ArchiveReader is the part of the ledger the worker reads from.
type ArchiveReader interface {
	ArchiveByDate(ctx context.Context, archiveDate time.Time) ([]core.ArchivedExpense, error)
	ListCategories(ctx context.Context) ([]core.CategoryStatus, error)
}

// ArchiveWorker exports the expenses archived by a period reset.
type ArchiveWorker struct {
	ledger ArchiveReader
	writer sheets.ArchiveWriter
}

func NewArchiveWorker(ledger ArchiveReader, writer sheets.ArchiveWriter) *ArchiveWorker {
	return &ArchiveWorker{
		ledger: ledger,
		writer: writer,
	}
}

// HandleLedgerEvent exports the archive of a period.reset event. Other
// events are acknowledged without work. A returned error requeues the message.
func (w *ArchiveWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error {
	if msg.Type != services.EventPeriodReset {
		slog.DebugContext(ctx, "Ignoring ledger event", "type", msg.Type, "id", msg.ID)
		return nil
	}
	if msg.ArchiveDate.IsZero() {
		slog.WarnContext(ctx, "Reset event without archive date, skipping", "timestamp", msg.Timestamp)
		return nil
	}

	items, err := w.ledger.ArchiveByDate(ctx, msg.ArchiveDate)
	if err != nil {
		return fmt.Errorf("read archive %s: %w", msg.ArchiveDate.Format(time.RFC3339), err)
	}
	if len(items) == 0 {
		slog.InfoContext(ctx, "Reset archived no expenses", "archive_date", msg.ArchiveDate)
		return nil
	}

	cats, err := w.ledger.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	ref, err := w.writer.AppendArchive(ctx, sheets.NewArchiveRows(items, names))
	if err != nil {
		return fmt.Errorf("export archive: %w", err)
	}

	slog.InfoContext(ctx, "Archive exported",
		"archive_date", msg.ArchiveDate,
		"rows", len(items),
		"ref", ref)
	return nil
}
