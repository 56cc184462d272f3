// Package config layers host configuration from YAML file(s) overlaid by
// environment variables, following the teacher's config-loading
// convention (read YAML, skip missing/empty files, then overlay env vars).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/goccy/go-yaml"

	"ganttcore/internal/core"
)

// Config is the CLI/TUI host's configuration: calendar defaults, the
// project window, and output preferences. The scheduling core itself
// never reads this — it is purely a host-side convenience.
type Config struct {
	ProjectStartStr string `yaml:"projectStart" env:"GANTT_PROJECT_START"`
	ProjectEndStr   string `yaml:"projectEnd" env:"GANTT_PROJECT_END"`

	Workdays      []int    `yaml:"workdays"`
	Holidays      []string `yaml:"holidays"`
	ExtraWorkdays []string `yaml:"extraWorkdays"`

	DataFile     string `yaml:"dataFile" env:"GANTT_DATA_FILE"`
	OutputFormat string `yaml:"outputFormat" env:"GANTT_OUTPUT_FORMAT"`
	CriticalMode string `yaml:"criticalPathMode" env:"GANTT_CRITICAL_MODE"`

	MaxUndoHistory int `yaml:"maxUndoHistory" env:"GANTT_MAX_UNDO_HISTORY"`
}

// New reads pathConfigs (in order, skipping missing/empty files), then
// overlays environment variables, then applies defaults.
func New(pathConfigs ...string) (Config, error) {
	var cfg Config

	for _, path := range pathConfigs {
		bts, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if len(strings.TrimSpace(string(bts))) == 0 {
			continue
		}
		if err := yaml.Unmarshal(bts, &cfg); err != nil {
			return cfg, &core.ConfigError{File: path, Message: err.Error()}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: env parse: %w", err)
	}

	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}
	if cfg.CriticalMode == "" {
		cfg.CriticalMode = "strict"
	}
	if cfg.MaxUndoHistory == 0 {
		cfg.MaxUndoHistory = 100
	}

	return cfg, nil
}

// Calendar builds a core.Calendar from the configured workdays/holidays,
// falling back to a Monday-Friday default when Workdays is empty.
func (c Config) Calendar() (core.Calendar, error) {
	cal := core.DefaultCalendar()
	if len(c.Workdays) > 0 {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			cal.Workdays[wd] = false
		}
		for _, n := range c.Workdays {
			if n < 0 || n > 6 {
				return cal, &core.ConfigError{Section: "workdays", Message: fmt.Sprintf("weekday index %d out of range [0,6]", n)}
			}
			cal.Workdays[time.Weekday(n)] = true
		}
	}
	for _, d := range c.Holidays {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return cal, &core.ConfigError{Section: "holidays", Message: fmt.Sprintf("invalid date %q: %v", d, err)}
		}
		cal.Holidays[t.Format("2006-01-02")] = true
	}
	for _, d := range c.ExtraWorkdays {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return cal, &core.ConfigError{Section: "extraWorkdays", Message: fmt.Sprintf("invalid date %q: %v", d, err)}
		}
		cal.ExtraWorkdays[t.Format("2006-01-02")] = true
	}
	return cal, nil
}

// ProjectStart parses ProjectStartStr, returning the zero time if unset.
func (c Config) ProjectStart() (time.Time, error) {
	return parseOptionalDate(c.ProjectStartStr)
}

// ProjectEnd parses ProjectEndStr, returning the zero time if unset.
func (c Config) ProjectEnd() (time.Time, error) {
	return parseOptionalDate(c.ProjectEndStr)
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &core.ConfigError{Message: fmt.Sprintf("invalid date %q: %v", s, err)}
	}
	return t, nil
}
