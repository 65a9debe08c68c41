package sheetsync

import (
	"context"
	"slices"
	"sync"
)

// MemorySheet is an in-memory Sheet used in tests and as a stand-in when
// no spreadsheet is configured.
type MemorySheet struct {
	mu   sync.Mutex
	rows [][]string
}

func NewMemorySheet() *MemorySheet {
	return &MemorySheet{}
}

// Seed replaces the sheet contents wholesale, rows are copied.
func (m *MemorySheet) Seed(rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	for _, row := range rows {
		m.rows = append(m.rows, slices.Clone(row))
	}
}

// Rows returns a copy of the current sheet contents.
func (m *MemorySheet) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, row := range m.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

func (m *MemorySheet) ReadRow(ctx context.Context, row int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 1 || row > len(m.rows) {
		return nil, nil
	}
	return slices.Clone(m.rows[row-1]), nil
}

func (m *MemorySheet) ReadColumn(ctx context.Context, col int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, row := range m.rows {
		if col < 1 || col > len(row) {
			out = append(out, "")
			continue
		}
		out = append(out, row[col-1])
	}
	return out, nil
}

func (m *MemorySheet) WriteRow(ctx context.Context, row int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.rows) < row {
		m.rows = append(m.rows, nil)
	}
	m.rows[row-1] = slices.Clone(values)
	return nil
}

func (m *MemorySheet) Append(ctx context.Context, values []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, slices.Clone(values))
	return len(m.rows), nil
}
