package model

// Row is one spreadsheet row of display-formatted cell strings. Spreadsheet
// exports omit trailing empty cells, so all index access goes through Cell.
type Row []string

// Cell returns the cell at column i, or "" when the row is too short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}
