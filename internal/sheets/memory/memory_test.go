package memory

import (
	"context"
	"testing"

	"tabung/internal/core"
	"tabung/internal/sheets"
)

func TestMemoryStoreAppendArchive(t *testing.T) {
	s := New()

	ref, err := s.AppendArchive(context.Background(), []sheets.ArchiveRow{
		{Description: "a", Amount: core.Money{Cents: 100}},
		{Description: "b", Amount: core.Money{Cents: 200}},
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	ref, err = s.AppendArchive(context.Background(), nil)
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected empty append: ref=%q err=%v", ref, err)
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[1].Description != "b" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	// Rows returns a copy.
	rows[0].Description = "changed"
	if s.Rows()[0].Description != "a" {
		t.Error("Rows() leaked internal state")
	}
}
