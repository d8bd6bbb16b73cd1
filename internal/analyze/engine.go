package analyze

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
)

// Diagnostic messages substituted for a full result when a sheet cannot be
// analyzed. They are single short rows; the assembler pads them to full width.
const (
	DiagEmptySheet      = "Лист пуст"
	DiagNoManagerColumn = `Не найдена колонка "Менеджер"`
)

// redMarker flags a row as red regardless of zone when it appears anywhere in
// the row text ("красный", "красная" etc).
const redMarker = "красн"

// contractNegatives are contract-cell values that do not count as a contract.
var contractNegatives = map[string]struct{}{
	"": {}, "нет": {}, "0": {}, "-": {}, "—": {},
}

// acceptNegatives reject an acceptance cell when contained in its text.
var acceptNegatives = []string{"нет", "отказ", "ошибка"}

// Engine scans the data rows of one sheet and accumulates per-manager
// counters. The scan is a two-state machine: it starts in the normal zone and
// switches to the red zone after GapRows consecutive rows with an empty
// manager cell. The red zone is terminal: a structural gap that wide means
// everything below it is exceptional, even if manager cells reappear.
type Engine struct {
	// GapRows is the consecutive-empty-row threshold for entering the red zone.
	GapRows int
}

func NewEngine(gapRows int) *Engine {
	return &Engine{GapRows: gapRows}
}

// Analyze aggregates the given sheet rows (row 0 is the header) into sorted
// 13-column report rows. Sheets with fewer than two rows or without a
// resolvable manager column yield a single diagnostic row instead.
func (e *Engine) Analyze(rows []model.Row) [][]any {
	if len(rows) < 2 {
		return [][]any{{DiagEmptySheet}}
	}

	idx, ok := LocateHeader(rows)
	if !ok {
		return [][]any{{DiagNoManagerColumn}}
	}

	stats := make(map[string]*model.ManagerStats)
	redZone := false
	consecutiveEmpty := 0

	for _, row := range rows[1:] {
		managerRaw := row.Cell(idx.Manager)

		if strings.TrimSpace(managerRaw) == "" {
			consecutiveEmpty++
			if consecutiveEmpty >= e.GapRows {
				redZone = true
			}
			continue
		}
		consecutiveEmpty = 0

		manager, ok := NormalizeName(managerRaw)
		if !ok || strings.ToLower(manager) == headerEcho {
			continue
		}

		s := stats[manager]
		if s == nil {
			s = &model.ManagerStats{}
			stats[manager] = s
		}

		if redZone {
			s.Red++
			continue
		}

		s.Total++
		e.countRow(s, row, idx)
	}

	result := make([][]any, 0, len(stats))
	for manager, s := range stats {
		result = append(result, s.ReportRow(manager))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i][0].(string) < result[j][0].(string)
	})
	return result
}

// countRow applies the normal-zone counters to one row.
func (e *Engine) countRow(s *model.ManagerStats, row model.Row, idx HeaderIndex) {
	rowText := joinLower(row)

	// Legal form is matched against the dedicated cell plus the whole row,
	// because the form often lives inside the company-name cell.
	formText := strings.ToLower(row.Cell(idx.LegalForm)) + " " + rowText
	if strings.Contains(formText, "ип ") || strings.Contains(formText, `ип"`) || strings.Contains(formText, "жк ") {
		s.IP++
	}
	if strings.Contains(formText, "тоо") {
		s.TOO++
	}

	if idx.Contract != -1 {
		val := strings.TrimSpace(strings.ToLower(row.Cell(idx.Contract)))
		if _, negative := contractNegatives[val]; !negative {
			s.Contract++
		}
	}

	if idx.Accept != -1 {
		val := strings.ToLower(row.Cell(idx.Accept))
		if utf8.RuneCountInString(val) > 1 && !containsAny(val, acceptNegatives) {
			s.Accept++
		}
	}

	switch tag := strings.TrimSpace(strings.ToLower(row.Cell(idx.Tags))); {
	case strings.Contains(tag, "nib_sale"):
		s.NibSale++
	case tag == "nib" || strings.Contains(" "+tag+" ", " nib "):
		s.Nib++
	case tag == "0" || tag == "0.0":
		s.Zero++
	case tag == "":
		s.EmptyTag++
	default:
		s.OtherTag++
	}

	// Row-wide red marker counts in addition to the zone counter.
	if strings.Contains(rowText, redMarker) {
		s.Red++
	}
}

func joinLower(row model.Row) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = strings.ToLower(c)
	}
	return strings.Join(parts, " ")
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
