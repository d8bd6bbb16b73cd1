package tabular

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// WorkbookStore implements Store over local xlsx files; the store id is the
// workbook path. It backs tests and offline dry runs with the same range
// semantics as the Sheets backend.
type WorkbookStore struct {
	mu sync.Mutex
}

func NewWorkbookStore() *WorkbookStore {
	return &WorkbookStore{}
}

func (w *WorkbookStore) GetValues(ctx context.Context, storeID, rangeSpec string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(storeID)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", storeID, err)
	}
	defer f.Close()

	sheet, cells := SplitRange(rangeSpec)
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if cells == "" {
		return rows, nil
	}

	r, err := parseRect(cells)
	if err != nil {
		return nil, err
	}
	return clipRows(rows, r), nil
}

func (w *WorkbookStore) UpdateValues(ctx context.Context, storeID, rangeSpec string, values [][]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := openOrCreate(storeID)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, cells := SplitRange(rangeSpec)
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
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

	for i, row := range values {
		cell, err := excelize.CoordinatesToCellName(startCol, startRow+i)
		if err != nil {
			return fmt.Errorf("range %s: %w", rangeSpec, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", startRow+i, rangeSpec, err)
		}
	}

	return f.SaveAs(storeID)
}

func (w *WorkbookStore) ClearRange(ctx context.Context, storeID, rangeSpec string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(storeID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open workbook %s: %w", storeID, err)
	}
	defer f.Close()

	sheet, cells := SplitRange(rangeSpec)
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil
	}
	if cells == "" {
		return fmt.Errorf("refusing whole-sheet clear of %s", rangeSpec)
	}

	r, err := parseRect(cells)
	if err != nil {
		return err
	}

	for row := r.startRow; row <= r.endRow; row++ {
		for col := r.startCol; col <= r.endCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return fmt.Errorf("range %s: %w", rangeSpec, err)
			}
			if err := f.SetCellValue(sheet, cell, nil); err != nil {
				return fmt.Errorf("clear %s!%s: %w", sheet, cell, err)
			}
		}
	}

	return f.SaveAs(storeID)
}

func (w *WorkbookStore) ListSheetTitles(ctx context.Context, storeID string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(storeID)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", storeID, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func (w *WorkbookStore) EnsureSheetExists(ctx context.Context, storeID, title string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := openOrCreate(storeID)
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, t := range f.GetSheetList() {
		if strings.EqualFold(t, title) {
			return t, nil
		}
	}

	if _, err := f.NewSheet(title); err != nil {
		return "", fmt.Errorf("create sheet %s: %w", title, err)
	}
	return title, f.SaveAs(storeID)
}

// openOrCreate opens the workbook, creating a fresh file when the destination
// does not exist yet.
func openOrCreate(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, nil
	}
	if os.IsNotExist(err) {
		return excelize.NewFile(), nil
	}
	return nil, fmt.Errorf("open workbook %s: %w", path, err)
}

// rect is a parsed A1 rectangle. endRow == 0 means unbounded: ranges like
// "A2:B" run to the bottom of the sheet.
type rect struct {
	startCol, startRow, endCol, endRow int
}

func parseRect(cells string) (rect, error) {
	start, end, ok := strings.Cut(cells, ":")
	if !ok {
		end = start
	}
	sc, sr, err := parseRef(start)
	if err != nil {
		return rect{}, fmt.Errorf("parse range %q: %w", cells, err)
	}
	ec, er, err := parseRef(end)
	if err != nil {
		return rect{}, fmt.Errorf("parse range %q: %w", cells, err)
	}
	if sr == 0 {
		sr = 1
	}
	return rect{startCol: sc, startRow: sr, endCol: ec, endRow: er}, nil
}

// parseRef parses "M42" into (13, 42) and a bare column ref "M" into (13, 0).
func parseRef(ref string) (col, row int, err error) {
	if i := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' }); i < 0 {
		col, err = excelize.ColumnNameToNumber(ref)
		return col, 0, err
	}
	return excelize.CellNameToCoordinates(ref)
}

// clipRows cuts a full-sheet row dump down to the requested rectangle,
// preserving the short-row behavior of formatted reads.
func clipRows(rows [][]string, r rect) [][]string {
	endRow := r.endRow
	if endRow == 0 || endRow > len(rows) {
		endRow = len(rows)
	}
	out := make([][]string, 0)
	for rowNum := r.startRow; rowNum <= endRow; rowNum++ {
		row := rows[rowNum-1]
		lo := r.startCol - 1
		hi := r.endCol
		if lo >= len(row) {
			out = append(out, []string{})
			continue
		}
		if hi > len(row) {
			hi = len(row)
		}
		out = append(out, row[lo:hi])
	}
	return out
}
