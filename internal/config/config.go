// Package config loads worker configuration from config.toml next to the
// executable, with environment variables overriding every option. The env
// names match the historical deployment, so an existing Railway setup keeps
// working without a config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the full configuration surface of the worker.
type AppConfig struct {
	Sources   SourcesConfig   `toml:"sources"`
	Summary   SummaryConfig   `toml:"summary"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Transport TransportConfig `toml:"transport"`
	State     StateConfig     `toml:"state"`
	Server    ServerConfig    `toml:"server"`
}

// SourcesConfig names the spreadsheets involved in one sync.
type SourcesConfig struct {
	// Backend selects the tabular transport: "sheets" or "workbook".
	Backend string `toml:"backend"`
	// SummaryID is the destination spreadsheet holding Settings and reports.
	SummaryID string `toml:"summary_id"`
	// OurGridID / YandexGridID are the two source spreadsheets.
	OurGridID    string `toml:"our_grid_id"`
	YandexGridID string `toml:"yandex_grid_id"`
	// SettingsSheet lists the month pairs to sync (A2:B).
	SettingsSheet string `toml:"settings_sheet"`
}

// SummaryConfig tunes the aggregation and write throttling.
type SummaryConfig struct {
	Timezone            string `toml:"timezone"`
	MinWriteIntervalSec int    `toml:"min_write_interval_sec"`
	RedGapRows          int    `toml:"red_gap_rows"`
	WorkStartHour       int    `toml:"work_start_hour"`
	WorkEndHour         int    `toml:"work_end_hour"`
	// MaxDataRows bounds the rectangle cleared before each write. The rest of
	// the sheet keeps its manual formatting.
	MaxDataRows     int `toml:"max_data_rows"`
	GapRows         int `toml:"gap_rows"`
	PollIntervalSec int `toml:"poll_interval_sec"`
}

// ScheduleConfig controls which reports refresh per cycle and how often each
// identity may be written.
type ScheduleConfig struct {
	// MaxReportsPerCycle limits work per cycle; 0 refreshes every pair.
	MaxReportsPerCycle int `toml:"max_reports_per_cycle"`
	// HotReport refreshes at HotIntervalSec; ColdReports at ColdIntervalSec;
	// when either is set, everything unlisted is skipped.
	HotReport       string   `toml:"hot_report"`
	HotIntervalSec  int      `toml:"hot_interval_sec"`
	ColdReports     []string `toml:"cold_reports"`
	ColdIntervalSec int      `toml:"cold_interval_sec"`
}

// TransportConfig bounds API retries and request rate.
type TransportConfig struct {
	MaxAttempts    int     `toml:"max_attempts"`
	BaseDelayMS    int     `toml:"base_delay_ms"`
	Multiplier     float64 `toml:"multiplier"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// StateConfig locates the durable local state.
type StateConfig struct {
	Dir string `toml:"dir"`
}

// ServerConfig configures the optional status HTTP server.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// DefaultConfig mirrors the historical deployment defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Sources: SourcesConfig{
			Backend:       "sheets",
			SettingsSheet: "Settings",
		},
		Summary: SummaryConfig{
			Timezone:            "Asia/Almaty",
			MinWriteIntervalSec: 30,
			RedGapRows:          5,
			WorkStartHour:       0,
			WorkEndHour:         24,
			MaxDataRows:         1000,
			GapRows:             5,
			PollIntervalSec:     15,
		},
		Schedule: ScheduleConfig{
			MaxReportsPerCycle: 0,
			HotIntervalSec:     30,
			ColdIntervalSec:    86400,
		},
		Transport: TransportConfig{
			MaxAttempts:    5,
			BaseDelayMS:    500,
			Multiplier:     2.0,
			RequestsPerSec: 1.0,
		},
		State: StateConfig{
			Dir: "state",
		},
		Server: ServerConfig{
			Enabled: false,
			Port:    20262,
		},
	}
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig loads config.toml from the executable directory (when present)
// and applies environment overrides on top of defaults.
func LoadConfig() (*AppConfig, error) {
	cfg := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// Validate checks the parts without workable defaults.
func (c *AppConfig) Validate() error {
	if c.Sources.SummaryID == "" {
		return fmt.Errorf("sources.summary_id (SUMMARY_SPREADSHEET_ID) is required")
	}
	if c.Sources.OurGridID == "" && c.Sources.YandexGridID == "" {
		return fmt.Errorf("at least one of sources.our_grid_id / sources.yandex_grid_id is required")
	}
	if c.Summary.WorkStartHour < 0 || c.Summary.WorkEndHour > 24 || c.Summary.WorkStartHour >= c.Summary.WorkEndHour {
		return fmt.Errorf("invalid work window %d-%d", c.Summary.WorkStartHour, c.Summary.WorkEndHour)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	c.Sources.Backend = envString("TABULAR_BACKEND", c.Sources.Backend)
	c.Sources.SummaryID = envString("SUMMARY_SPREADSHEET_ID", c.Sources.SummaryID)
	c.Sources.OurGridID = envString("OUR_GRID_ID", c.Sources.OurGridID)
	c.Sources.YandexGridID = envString("YANDEX_GRID_ID", c.Sources.YandexGridID)
	c.Sources.SettingsSheet = envString("SUMMARY_SETTINGS_SHEET_NAME", c.Sources.SettingsSheet)

	c.Summary.Timezone = envString("TZ", c.Summary.Timezone)
	c.Summary.MinWriteIntervalSec = envInt("SUMMARY_MIN_WRITE_INTERVAL_SEC", c.Summary.MinWriteIntervalSec)
	c.Summary.RedGapRows = envInt("RED_GAP_ROWS", c.Summary.RedGapRows)
	c.Summary.WorkStartHour = envInt("WORK_START_HOUR", c.Summary.WorkStartHour)
	c.Summary.WorkEndHour = envInt("WORK_END_HOUR", c.Summary.WorkEndHour)
	c.Summary.MaxDataRows = envInt("SUMMARY_MAX_DATA_ROWS", c.Summary.MaxDataRows)
	c.Summary.PollIntervalSec = envInt("SUMMARY_POLL_INTERVAL_SEC", c.Summary.PollIntervalSec)

	c.Schedule.MaxReportsPerCycle = envInt("MAX_REPORTS_PER_CYCLE", c.Schedule.MaxReportsPerCycle)
	c.Schedule.HotReport = envString("HOT_REPORT", c.Schedule.HotReport)
	c.Schedule.HotIntervalSec = envInt("HOT_INTERVAL_SEC", c.Schedule.HotIntervalSec)
	c.Schedule.ColdIntervalSec = envInt("COLD_INTERVAL_SEC", c.Schedule.ColdIntervalSec)
	if v := envString("COLD_REPORTS", ""); v != "" {
		var cold []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cold = append(cold, part)
			}
		}
		c.Schedule.ColdReports = cold
	}

	c.Transport.MaxAttempts = envInt("TRANSPORT_MAX_ATTEMPTS", c.Transport.MaxAttempts)
	c.Transport.BaseDelayMS = envInt("TRANSPORT_BASE_DELAY_MS", c.Transport.BaseDelayMS)
	c.Transport.Multiplier = envFloat("TRANSPORT_MULTIPLIER", c.Transport.Multiplier)
	c.Transport.RequestsPerSec = envFloat("TRANSPORT_REQUESTS_PER_SEC", c.Transport.RequestsPerSec)

	c.State.Dir = envString("STATE_DIR", c.State.Dir)

	c.Server.Enabled = envBool("STATUS_SERVER_ENABLED", c.Server.Enabled)
	c.Server.Port = envInt("STATUS_SERVER_PORT", c.Server.Port)
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
