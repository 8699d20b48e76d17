package memory

import (
	"context"
	"fmt"
	"sync"

	"tabung/internal/sheets"
)

var _ sheets.ArchiveWriter = (*Store)(nil)

// Store keeps exported archive rows in memory. The worker falls back to it
// when no spreadsheet is configured.
type Store struct {
	mu      sync.Mutex
	batches int
	rows    []sheets.ArchiveRow
}

func New() *Store {
	return &Store{}
}

// AppendArchive stores the rows and returns a synthetic batch reference.
func (s *Store) AppendArchive(_ context.Context, rows []sheets.ArchiveRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	s.rows = append(s.rows, rows...)
	return fmt.Sprintf("mem:%d", s.batches), nil
}

// Rows returns a copy of everything exported so far.
func (s *Store) Rows() []sheets.ArchiveRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.ArchiveRow(nil), s.rows...)
}
