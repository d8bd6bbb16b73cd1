// Package summary runs one full aggregation-and-maybe-write pass: resolve the
// source sheets, aggregate both grids, assemble the combined report and let
// the throttle gate decide whether it reaches the destination spreadsheet.
package summary

import (
	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
)

// ReportHeaders are the fixed column labels of a summary block.
var ReportHeaders = []any{
	"Менеджеры", "Офферты всего", "ИП", "ТОО", "Договор есть", "Акцепт/Оплата",
	"Акцепт %", "Метка nib_sales", "Метка nib", "Метка 0", "Пусто", "Другое", "Красные",
}

// NoDataRow replaces an empty aggregation result.
const NoDataRow = "Нет данных"

// BuildReportValues arranges the two aggregation outputs into one grid:
// title, headers, data (or a padded diagnostic row), gapRows blank rows, then
// the same block for the second source. Range writes are shape-sensitive, so
// every row leaves here padded to exactly 13 cells.
func BuildReportValues(ourTitle string, ourData [][]any, yandexTitle string, yandexData [][]any, gapRows int) [][]any {
	var values [][]any

	values = appendBlock(values, ourTitle, ourData)
	for i := 0; i < gapRows; i++ {
		values = append(values, blankRow())
	}
	values = appendBlock(values, yandexTitle, yandexData)

	return values
}

func appendBlock(values [][]any, title string, data [][]any) [][]any {
	values = append(values, padRow([]any{title}))
	values = append(values, padRow(ReportHeaders))

	switch {
	case len(data) > 0 && len(data[0]) == 1:
		// diagnostic short row
		values = append(values, padRow(data[0]))
	case len(data) > 0:
		for _, row := range data {
			values = append(values, padRow(row))
		}
	default:
		values = append(values, padRow([]any{NoDataRow}))
	}
	return values
}

func padRow(row []any) []any {
	out := make([]any, model.ReportColumns)
	for i := range out {
		if i < len(row) {
			out[i] = row[i]
		} else {
			out[i] = ""
		}
	}
	return out
}

func blankRow() []any {
	return padRow(nil)
}
