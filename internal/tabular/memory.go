package tabular

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests. Grids grow on write and
// reads reproduce the short-row behavior of formatted reads: trailing empty
// cells are trimmed.
type MemoryStore struct {
	mu    sync.Mutex
	books map[string]*memBook
}

type memBook struct {
	order  []string
	sheets map[string][][]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[string]*memBook)}
}

// Seed replaces the contents of a sheet, creating book and sheet as needed.
func (m *MemoryStore) Seed(storeID, sheet string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.book(storeID)
	if _, ok := b.sheets[sheet]; !ok {
		b.order = append(b.order, sheet)
	}
	b.sheets[sheet] = rows
}

// Sheet returns a copy of the raw stored values of a sheet.
func (m *MemoryStore) Sheet(storeID, sheet string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[storeID]
	if !ok {
		return nil
	}
	rows := b.sheets[sheet]
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

func (m *MemoryStore) book(storeID string) *memBook {
	if m.books == nil {
		m.books = make(map[string]*memBook)
	}
	b, ok := m.books[storeID]
	if !ok {
		b = &memBook{sheets: make(map[string][][]any)}
		m.books[storeID] = b
	}
	return b
}

func (m *MemoryStore) GetValues(ctx context.Context, storeID, rangeSpec string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sheet, cells := SplitRange(rangeSpec)
	b, ok := m.books[storeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, rangeSpec)
	}
	rows, ok := b.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	formatted := make([][]string, len(rows))
	for i, row := range rows {
		cellsRow := make([]string, 0, len(row))
		for _, v := range row {
			if v == nil {
				cellsRow = append(cellsRow, "")
				continue
			}
			cellsRow = append(cellsRow, fmt.Sprint(v))
		}
		// formatted reads drop trailing empty cells
		for len(cellsRow) > 0 && cellsRow[len(cellsRow)-1] == "" {
			cellsRow = cellsRow[:len(cellsRow)-1]
		}
		formatted[i] = cellsRow
	}

	if cells == "" {
		return formatted, nil
	}
	r, err := parseRect(cells)
	if err != nil {
		return nil, err
	}
	return clipRows(formatted, r), nil
}

func (m *MemoryStore) UpdateValues(ctx context.Context, storeID, rangeSpec string, values [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sheet, cells := SplitRange(rangeSpec)
	b := m.book(storeID)
	rows, ok := b.sheets[sheet]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	startCol, startRow := 1, 1
	if cells != "" {
		r, err := parseRect(cells)
		if err != nil {
			return err
		}
		startCol, startRow = r.startCol, r.startRow
	}

	for i, src := range values {
		rowIdx := startRow - 1 + i
		for rowIdx >= len(rows) {
			rows = append(rows, nil)
		}
		row := rows[rowIdx]
		for j, v := range src {
			colIdx := startCol - 1 + j
			for colIdx >= len(row) {
				row = append(row, nil)
			}
			row[colIdx] = v
		}
		rows[rowIdx] = row
	}
	b.sheets[sheet] = rows
	return nil
}

func (m *MemoryStore) ClearRange(ctx context.Context, storeID, rangeSpec string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sheet, cells := SplitRange(rangeSpec)
	if cells == "" {
		return fmt.Errorf("refusing whole-sheet clear of %s", rangeSpec)
	}
	b, ok := m.books[storeID]
	if !ok {
		return nil
	}
	rows, ok := b.sheets[sheet]
	if !ok {
		return nil
	}

	r, err := parseRect(cells)
	if err != nil {
		return err
	}
	for rowIdx := r.startRow - 1; rowIdx < r.endRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := r.startCol - 1; colIdx < r.endCol && colIdx < len(row); colIdx++ {
			row[colIdx] = nil
		}
	}
	return nil
}

func (m *MemoryStore) ListSheetTitles(ctx context.Context, storeID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[storeID]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), b.order...), nil
}

func (m *MemoryStore) EnsureSheetExists(ctx context.Context, storeID, title string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.book(storeID)
	for _, t := range b.order {
		if strings.EqualFold(t, title) {
			return t, nil
		}
	}
	b.order = append(b.order, title)
	b.sheets[title] = nil
	return title, nil
}
