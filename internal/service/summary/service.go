package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/analyze"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/state"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/tabular"
)

// Diagnostic rows produced at the resolution stage.
const diagNoSheetConfigured = "Нет листа (пусто в Settings)"

func diagSheetNotFound(name string) string {
	return fmt.Sprintf("❌ Лист %q не найден", name)
}

// Options carries everything one sync cycle needs to know.
type Options struct {
	SummaryID     string
	OurGridID     string
	YandexGridID  string
	SettingsSheet string

	Location      *time.Location
	WorkStartHour int
	WorkEndHour   int

	RedGapRows  int
	GapRows     int
	MaxDataRows int

	MaxReportsPerCycle int
	Policy             WritePolicy
}

// CycleInfo describes the outcome of the most recent cycle for the status
// endpoint.
type CycleInfo struct {
	Time     time.Time `json:"time"`
	Duration string    `json:"duration"`
	Reports  int       `json:"reports"`
	Written  int       `json:"written"`
	Err      string    `json:"error,omitempty"`
}

// Service runs sync cycles. A single instance runs one cycle at a time; all
// transport suspension happens inside the Store.
type Service struct {
	opts    Options
	store   tabular.Store
	states  *state.Store
	history *state.History // optional
	gate    *Gate
	engine  *analyze.Engine
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	lastCycle CycleInfo
}

func NewService(opts Options, store tabular.Store, states *state.Store, history *state.History, log *slog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		opts:    opts,
		store:   store,
		states:  states,
		history: history,
		gate:    NewGate(states),
		engine:  analyze.NewEngine(opts.RedGapRows),
		log:     log,
		now:     time.Now,
	}
}

// LastCycle returns the outcome of the most recent cycle.
func (s *Service) LastCycle() CycleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCycle
}

// RunCycle executes one full pass: read settings, refresh the scheduled
// reports, advance the cursor. Errors abort the cycle (the outer loop logs
// and retries next tick); work already committed stays committed.
func (s *Service) RunCycle(ctx context.Context) error {
	started := s.now()
	cycleID := uuid.NewString()
	log := s.log.With("cycle_id", cycleID)

	info := CycleInfo{Time: started}
	err := s.runCycle(ctx, cycleID, log, &info)
	info.Duration = s.now().Sub(started).Round(time.Millisecond).String()
	if err != nil {
		info.Err = err.Error()
	}

	s.mu.Lock()
	s.lastCycle = info
	s.mu.Unlock()
	return err
}

func (s *Service) runCycle(ctx context.Context, cycleID string, log *slog.Logger, info *CycleInfo) error {
	if !s.inWorkWindow(s.now().In(s.opts.Location)) {
		log.Info("outside work window, skipping cycle")
		return nil
	}

	settingsRange := s.opts.SettingsSheet + "!A2:B"
	settingsRows, err := s.store.GetValues(ctx, s.opts.SummaryID, settingsRange)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	pairs := ParseSettings(toRows(settingsRows))
	if len(pairs) == 0 {
		log.Warn("settings sheet has no month pairs", "range", settingsRange)
		return nil
	}

	cursor := s.states.LoadCursor()
	selected, next := SelectPairs(pairs, cursor, s.opts.MaxReportsPerCycle)

	for i, pair := range selected {
		if err := s.syncReport(ctx, cycleID, log, pair, info); err != nil {
			// Advance past what was processed so a poisoned pair cannot
			// starve the ones behind it.
			_ = s.states.SaveCursor((cursor + i + 1) % len(pairs))
			return fmt.Errorf("sync %s: %w", pair.ReportName(), err)
		}
		info.Reports++
	}

	if err := s.states.SaveCursor(next); err != nil {
		log.Warn("persist cursor", "err", err)
	}
	return nil
}

func (s *Service) inWorkWindow(t time.Time) bool {
	return t.Hour() >= s.opts.WorkStartHour && t.Hour() < s.opts.WorkEndHour
}

// syncReport refreshes one report pair end to end.
func (s *Service) syncReport(ctx context.Context, cycleID string, log *slog.Logger, pair Pair, info *CycleInfo) error {
	report := pair.ReportName()
	log = log.With("report", report)

	interval, ok := s.opts.Policy.IntervalFor(report)
	if !ok {
		log.Debug("report not in refresh policy, skipping")
		return nil
	}

	ourData, err := s.analyzeSource(ctx, s.opts.OurGridID, pair.Our)
	if err != nil {
		return fmt.Errorf("analyze our grid: %w", err)
	}
	yandexData, err := s.analyzeSource(ctx, s.opts.YandexGridID, pair.Yandex)
	if err != nil {
		return fmt.Errorf("analyze yandex grid: %w", err)
	}

	values := BuildReportValues(
		fmt.Sprintf("НАША СЕТКА (%s)", orDash(pair.Our)), ourData,
		fmt.Sprintf("ЯНДЕКС СЕТКА (%s)", orDash(pair.Yandex)), yandexData,
		s.opts.GapRows,
	)

	hash := Fingerprint(values)
	decision := s.gate.Check(report, hash, interval)
	if decision != DecisionWrite {
		log.Info("skipping write", "decision", decision.String())
		return nil
	}

	if err := s.writeReport(ctx, report, values); err != nil {
		return err
	}

	if err := s.gate.Commit(report, hash); err != nil {
		return fmt.Errorf("persist sync state: %w", err)
	}
	if s.history != nil {
		if err := s.history.Record(report, hash, cycleID, len(values)); err != nil {
			log.Warn("record history", "err", err)
		}
	}

	info.Written++
	log.Info("report written", "rows", len(values))
	return nil
}

// analyzeSource resolves and aggregates one source sheet. Resolution misses
// come back as diagnostic rows inside the report; only transport failures
// become errors, so a broken read can never blank a previously good report.
func (s *Service) analyzeSource(ctx context.Context, gridID, sheetName string) ([][]any, error) {
	if strings.TrimSpace(sheetName) == "" {
		return [][]any{{diagNoSheetConfigured}}, nil
	}

	titles, err := s.store.ListSheetTitles(ctx, gridID)
	if err != nil {
		return nil, fmt.Errorf("list sheets of %s: %w", gridID, err)
	}

	realName, ok := tabular.NewTitleCache(titles).Resolve(sheetName)
	if !ok {
		return [][]any{{diagSheetNotFound(sheetName)}}, nil
	}

	rows, err := s.store.GetValues(ctx, gridID, realName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", realName, err)
	}

	return s.engine.Analyze(toRows(rows)), nil
}

// writeReport ensures the destination sheet, clears the bounded report
// rectangle and writes the new grid plus the update stamp. Clearing is
// limited to MaxDataRows so manual formatting outside the report area
// survives.
func (s *Service) writeReport(ctx context.Context, report string, values [][]any) error {
	actual, err := s.store.EnsureSheetExists(ctx, s.opts.SummaryID, report)
	if err != nil {
		return fmt.Errorf("ensure report sheet: %w", err)
	}

	clearRows := s.opts.MaxDataRows
	if len(values) > clearRows {
		clearRows = len(values)
	}
	clearRange := tabular.RangeRef(actual, clearRows, model.ReportColumns)
	if err := s.store.ClearRange(ctx, s.opts.SummaryID, clearRange); err != nil {
		return fmt.Errorf("clear report range: %w", err)
	}

	writeRange := tabular.RangeRef(actual, len(values), model.ReportColumns)
	if err := s.store.UpdateValues(ctx, s.opts.SummaryID, writeRange, values); err != nil {
		return fmt.Errorf("write report values: %w", err)
	}

	stamp := "Обновлено: " + s.now().In(s.opts.Location).Format("02.01 15:04")
	stampRange := tabular.CellRef(actual, 1, model.ReportColumns+1)
	if err := s.store.UpdateValues(ctx, s.opts.SummaryID, stampRange, [][]any{{stamp}}); err != nil {
		return fmt.Errorf("write update stamp: %w", err)
	}
	return nil
}

func toRows(raw [][]string) []model.Row {
	rows := make([]model.Row, len(raw))
	for i, r := range raw {
		rows[i] = model.Row(r)
	}
	return rows
}

func orDash(name string) string {
	if strings.TrimSpace(name) == "" {
		return "-"
	}
	return name
}
