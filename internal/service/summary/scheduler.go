package summary

import (
	"strings"
	"time"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
)

// Pair names the two source sheets feeding one monthly report.
type Pair struct {
	Our    string
	Yandex string
}

// ReportName derives the destination sheet title for this pair.
func (p Pair) ReportName() string {
	raw := strings.TrimSpace(p.Our)
	if raw == "" {
		raw = strings.TrimSpace(p.Yandex)
	}
	return "Сводная - " + raw
}

// ParseSettings reads the month pairs from the Settings sheet rows (A2:B).
// Rows with both cells blank are skipped.
func ParseSettings(rows []model.Row) []Pair {
	var pairs []Pair
	for _, row := range rows {
		p := Pair{
			Our:    strings.TrimSpace(row.Cell(0)),
			Yandex: strings.TrimSpace(row.Cell(1)),
		}
		if p.Our == "" && p.Yandex == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// SelectPairs picks up to maxPerCycle pairs starting at the cursor, wrapping
// modulo the list length, and returns the advanced cursor. maxPerCycle <= 0
// selects every pair.
func SelectPairs(pairs []Pair, cursor, maxPerCycle int) (selected []Pair, next int) {
	if len(pairs) == 0 {
		return nil, 0
	}
	if maxPerCycle <= 0 || maxPerCycle > len(pairs) {
		maxPerCycle = len(pairs)
	}

	cursor %= len(pairs)
	if cursor < 0 {
		cursor += len(pairs)
	}

	for i := 0; i < maxPerCycle; i++ {
		selected = append(selected, pairs[(cursor+i)%len(pairs)])
	}
	return selected, (cursor + maxPerCycle) % len(pairs)
}

// WritePolicy selects the minimum write interval per report identity.
// With neither a hot report nor a cold list configured, every report gets the
// default interval. Once either is set, unlisted reports are skipped: only
// the current month stays hot while archive months refresh daily.
type WritePolicy struct {
	DefaultInterval time.Duration
	HotReport       string
	HotInterval     time.Duration
	ColdReports     []string
	ColdInterval    time.Duration
}

// IntervalFor returns the write interval for a report, or ok=false when the
// policy says the report should not be written at all.
func (p WritePolicy) IntervalFor(report string) (time.Duration, bool) {
	if p.HotReport == "" && len(p.ColdReports) == 0 {
		return p.DefaultInterval, true
	}
	if p.HotReport != "" && strings.EqualFold(report, p.HotReport) {
		return p.HotInterval, true
	}
	for _, cold := range p.ColdReports {
		if strings.EqualFold(report, cold) {
			return p.ColdInterval, true
		}
	}
	return 0, false
}
