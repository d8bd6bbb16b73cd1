package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/config"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/server"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/service/summary"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/state"
	"github.com/877555666zzz-ai/Checking-15sTR/internal/tabular"
)

var (
	once     = flag.Bool("once", false, "run a single sync cycle and exit")
	stateDir = flag.String("stateDir", "", "state directory (overrides config)")
	debug    = flag.Bool("debug", false, "debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	if *stateDir != "" {
		cfg.State.Dir = *stateDir
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Summary.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using local", "tz", cfg.Summary.Timezone)
		loc = time.Local
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("build tabular store", "err", err)
		os.Exit(1)
	}

	states, err := state.New(cfg.State.Dir)
	if err != nil {
		log.Error("open state store", "err", err)
		os.Exit(1)
	}

	history, err := state.OpenHistory(filepath.Join(cfg.State.Dir, "history.db"))
	if err != nil {
		log.Warn("history disabled", "err", err)
		history = nil
	} else {
		defer history.Close()
	}

	svc := summary.NewService(summary.Options{
		SummaryID:          cfg.Sources.SummaryID,
		OurGridID:          cfg.Sources.OurGridID,
		YandexGridID:       cfg.Sources.YandexGridID,
		SettingsSheet:      cfg.Sources.SettingsSheet,
		Location:           loc,
		WorkStartHour:      cfg.Summary.WorkStartHour,
		WorkEndHour:        cfg.Summary.WorkEndHour,
		RedGapRows:         cfg.Summary.RedGapRows,
		GapRows:            cfg.Summary.GapRows,
		MaxDataRows:        cfg.Summary.MaxDataRows,
		MaxReportsPerCycle: cfg.Schedule.MaxReportsPerCycle,
		Policy: summary.WritePolicy{
			DefaultInterval: time.Duration(cfg.Summary.MinWriteIntervalSec) * time.Second,
			HotReport:       cfg.Schedule.HotReport,
			HotInterval:     time.Duration(cfg.Schedule.HotIntervalSec) * time.Second,
			ColdReports:     cfg.Schedule.ColdReports,
			ColdInterval:    time.Duration(cfg.Schedule.ColdIntervalSec) * time.Second,
		},
	}, store, states, history, log)

	if cfg.Server.Enabled {
		srv := server.NewServer(svc, history)
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			log.Info("status server listening", "addr", addr)
			if err := srv.Run(addr); err != nil {
				log.Error("status server stopped", "err", err)
			}
		}()
	}

	if *once {
		if err := svc.RunCycle(ctx); err != nil {
			log.Error("cycle failed", "err", err)
			os.Exit(1)
		}
		return
	}

	// The loop outlives any single bad cycle: errors are logged and the next
	// tick starts fresh.
	interval := time.Duration(cfg.Summary.PollIntervalSec) * time.Second
	log.Info("worker started", "poll_interval", interval.String())
	for {
		if err := svc.RunCycle(ctx); err != nil {
			log.Error("cycle failed", "err", err)
		}

		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// buildStore wires the configured backend behind the retry/rate decorator.
func buildStore(ctx context.Context, cfg *config.AppConfig) (tabular.Store, error) {
	var base tabular.Store
	switch cfg.Sources.Backend {
	case "workbook":
		base = tabular.NewWorkbookStore()
	case "sheets", "":
		s, err := tabular.NewSheetsStore(ctx)
		if err != nil {
			return nil, err
		}
		base = s
	default:
		return nil, fmt.Errorf("unknown tabular backend %q", cfg.Sources.Backend)
	}

	policy := tabular.Policy{
		MaxAttempts: cfg.Transport.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Transport.BaseDelayMS) * time.Millisecond,
		Multiplier:  cfg.Transport.Multiplier,
	}
	return tabular.WithRetry(base, policy, cfg.Transport.RequestsPerSec), nil
}
