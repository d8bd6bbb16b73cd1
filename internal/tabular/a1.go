package tabular

import (
	"fmt"
	"strings"
)

// ColumnName converts a 1-based column number to its A1 letters.
func ColumnName(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// RangeRef builds the A1 reference covering rows×cols cells from A1.
func RangeRef(sheet string, rows, cols int) string {
	return fmt.Sprintf("%s!A1:%s%d", sheet, ColumnName(cols), rows)
}

// CellRef builds the A1 reference of a single cell (1-based row and column).
func CellRef(sheet string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", sheet, ColumnName(col), row)
}

// SplitRange splits "Sheet!A1:M42" into sheet name and cell range. A bare
// sheet name yields an empty cell range, meaning the whole sheet.
func SplitRange(rangeSpec string) (sheet, cells string) {
	if i := strings.IndexByte(rangeSpec, '!'); i >= 0 {
		return rangeSpec[:i], rangeSpec[i+1:]
	}
	return rangeSpec, ""
}
