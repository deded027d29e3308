package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/booking-sessions/internal/period"
)

// DefaultHorizon bounds how far ahead sessions are generated.
var DefaultHorizon = period.Years(5)

// Config captures environment driven configuration values for the session generator.
type Config struct {
	HTTPPort          int
	SQLitePath        string
	LogLevel          string
	LogFormat         string
	Horizon           period.Span
	Workers           int
	RegenerateOnStart bool
}

// fileConfig mirrors the optional YAML file. Absent keys keep the defaults.
type fileConfig struct {
	HTTPPort          *int    `yaml:"http_port"`
	SQLitePath        *string `yaml:"sqlite_path"`
	LogLevel          *string `yaml:"log_level"`
	LogFormat         *string `yaml:"log_format"`
	Horizon           *string `yaml:"horizon"`
	Workers           *int    `yaml:"workers"`
	RegenerateOnStart *bool   `yaml:"regenerate_on_start"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTPPort:   8080,
		SQLitePath: "sessiongen.db",
		LogLevel:   "info",
		LogFormat:  "json",
		Horizon:    DefaultHorizon,
		Workers:    4,
	}
}

// Load parses configuration values from the optional YAML file named by
// SESSIONGEN_CONFIG and then from the current process environment.
//
// Environment values take precedence over the file. Every invalid entry is
// collected before an error is reported.
func Load() (Config, error) {
	cfg := Default()
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("SESSIONGEN_CONFIG")); path != "" {
		fileInvalid, err := applyFile(&cfg, path)
		if err != nil {
			return Config{}, err
		}
		invalid = append(invalid, fileInvalid...)
	}

	if portValue := strings.TrimSpace(os.Getenv("SESSIONGEN_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SESSIONGEN_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := strings.TrimSpace(os.Getenv("SESSIONGEN_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	if level := strings.TrimSpace(os.Getenv("SESSIONGEN_LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	if format := strings.TrimSpace(os.Getenv("SESSIONGEN_LOG_FORMAT")); format != "" {
		format = strings.ToLower(format)
		if !validFormat(format) {
			invalid = append(invalid, "SESSIONGEN_LOG_FORMAT")
		} else {
			cfg.LogFormat = format
		}
	}

	if horizonValue := strings.TrimSpace(os.Getenv("SESSIONGEN_HORIZON")); horizonValue != "" {
		horizon, err := ParseHorizon(horizonValue)
		if err != nil {
			invalid = append(invalid, "SESSIONGEN_HORIZON")
		} else {
			cfg.Horizon = horizon
		}
	}

	if workersValue := strings.TrimSpace(os.Getenv("SESSIONGEN_WORKERS")); workersValue != "" {
		workers, err := strconv.Atoi(workersValue)
		if err != nil || workers <= 0 {
			invalid = append(invalid, "SESSIONGEN_WORKERS")
		} else {
			cfg.Workers = workers
		}
	}

	if regenerateValue := strings.TrimSpace(os.Getenv("SESSIONGEN_REGENERATE_ON_START")); regenerateValue != "" {
		regenerate, err := strconv.ParseBool(regenerateValue)
		if err != nil {
			invalid = append(invalid, "SESSIONGEN_REGENERATE_ON_START")
		} else {
			cfg.RegenerateOnStart = regenerate
		}
	}

	if strings.TrimSpace(cfg.SQLitePath) == "" {
		return Config{}, fmt.Errorf("必須の設定値が設定されていません: SESSIONGEN_SQLITE_PATH")
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("設定値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	var invalid []string
	if fc.HTTPPort != nil {
		if *fc.HTTPPort <= 0 {
			invalid = append(invalid, "http_port")
		} else {
			cfg.HTTPPort = *fc.HTTPPort
		}
	}
	if fc.SQLitePath != nil {
		cfg.SQLitePath = strings.TrimSpace(*fc.SQLitePath)
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*fc.LogLevel))
	}
	if fc.LogFormat != nil {
		format := strings.ToLower(strings.TrimSpace(*fc.LogFormat))
		if !validFormat(format) {
			invalid = append(invalid, "log_format")
		} else {
			cfg.LogFormat = format
		}
	}
	if fc.Horizon != nil {
		horizon, err := ParseHorizon(*fc.Horizon)
		if err != nil {
			invalid = append(invalid, "horizon")
		} else {
			cfg.Horizon = horizon
		}
	}
	if fc.Workers != nil {
		if *fc.Workers <= 0 {
			invalid = append(invalid, "workers")
		} else {
			cfg.Workers = *fc.Workers
		}
	}
	if fc.RegenerateOnStart != nil {
		cfg.RegenerateOnStart = *fc.RegenerateOnStart
	}
	return invalid, nil
}

func validFormat(format string) bool {
	return format == "json" || format == "console"
}

// ParseHorizon accepts a count of calendar years ("5y"), months ("18m") or
// days ("90d"), or any Go duration ("720h").
func ParseHorizon(value string) (period.Span, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return period.Span{}, fmt.Errorf("empty horizon")
	}

	// A bare integer followed by "m" means months, not minutes.
	var unit func(int) period.Span
	switch value[len(value)-1] {
	case 'y':
		unit = period.Years
	case 'm':
		unit = period.Months
	case 'd':
		unit = period.Days
	}
	if unit != nil {
		if n, err := strconv.Atoi(value[:len(value)-1]); err == nil {
			if n <= 0 {
				return period.Span{}, fmt.Errorf("horizon must be positive: %q", value)
			}
			return unit(n), nil
		}
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return period.Span{}, fmt.Errorf("invalid horizon %q: %w", value, err)
	}
	if d <= 0 {
		return period.Span{}, fmt.Errorf("horizon must be positive: %q", value)
	}
	return period.Clock(d), nil
}
