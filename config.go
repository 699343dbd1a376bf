/*
Package main
File: config.go
Description: Server configuration. Every option can come from a flag,
an environment variable or its default, in that order of precedence.
*/

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds the resolved server configuration.
type ServerConfig struct {
	Addr          string
	CatalogFile   string // empty uses the built-in catalog
	SaveDir       string // "memory" keeps saves in process only
	DatabaseURL   string // takes precedence over SaveDir
	Slot          string
	TickInterval  time.Duration
	SaveInterval  time.Duration
	PulseInterval time.Duration
	Locale        string
	RatePerSecond float64
	Burst         int
	LogLevel      slog.Level
}

// configResolver defines how to resolve a single configuration value.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string) error
}

// millis parses a positive millisecond count into dst.
func millis(dst *time.Duration, v string) error {
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return fmt.Errorf("want a positive number of milliseconds, got %q", v)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}

var resolvers = []configResolver{
	{
		flagName:    "addr",
		envVarName:  "STUDY_ADDR",
		defaultVal:  ":8081",
		description: "HTTP listen address",
		setter:      func(c *ServerConfig, v string) error { c.Addr = v; return nil },
	},
	{
		flagName:    "catalog",
		envVarName:  "STUDY_CATALOG",
		defaultVal:  "",
		description: "path to a catalog YAML file; empty uses the built-in one",
		setter:      func(c *ServerConfig, v string) error { c.CatalogFile = v; return nil },
	},
	{
		flagName:    "save-dir",
		envVarName:  "STUDY_SAVE_DIR",
		defaultVal:  "./saves",
		description: `directory for save files, or "memory" to keep saves in process`,
		setter:      func(c *ServerConfig, v string) error { c.SaveDir = v; return nil },
	},
	{
		flagName:    "database-url",
		envVarName:  "STUDY_DATABASE_URL",
		defaultVal:  "",
		description: "PostgreSQL connection string; when set, saves go to the database",
		setter:      func(c *ServerConfig, v string) error { c.DatabaseURL = v; return nil },
	},
	{
		flagName:    "slot",
		envVarName:  "STUDY_SLOT",
		defaultVal:  "default",
		description: "save slot name",
		setter:      func(c *ServerConfig, v string) error { c.Slot = v; return nil },
	},
	{
		flagName:    "tick-ms",
		envVarName:  "STUDY_TICK_MS",
		defaultVal:  "100",
		description: "simulation tick interval in milliseconds",
		setter:      func(c *ServerConfig, v string) error { return millis(&c.TickInterval, v) },
	},
	{
		flagName:    "save-ms",
		envVarName:  "STUDY_SAVE_MS",
		defaultVal:  "30000",
		description: "autosave interval in milliseconds",
		setter:      func(c *ServerConfig, v string) error { return millis(&c.SaveInterval, v) },
	},
	{
		flagName:    "pulse-ms",
		envVarName:  "STUDY_PULSE_MS",
		defaultVal:  "1000",
		description: "state broadcast interval in milliseconds",
		setter:      func(c *ServerConfig, v string) error { return millis(&c.PulseInterval, v) },
	},
	{
		flagName:    "locale",
		envVarName:  "STUDY_LOCALE",
		defaultVal:  "en",
		description: "notification language",
		setter:      func(c *ServerConfig, v string) error { c.Locale = v; return nil },
	},
	{
		flagName:    "rate",
		envVarName:  "STUDY_RATE",
		defaultVal:  "20",
		description: "requests per second allowed per client address",
		setter:      func(c *ServerConfig, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("want a positive rate, got %q", v)
			}
			c.RatePerSecond = f
			return nil
		},
	},
	{
		flagName:    "burst",
		envVarName:  "STUDY_BURST",
		defaultVal:  "40",
		description: "request burst allowed per client address",
		setter:      func(c *ServerConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("want a positive burst, got %q", v)
			}
			c.Burst = n
			return nil
		},
	},
	{
		flagName:    "log-level",
		envVarName:  "STUDY_LOG_LEVEL",
		defaultVal:  "info",
		description: "log level: debug, info, warn, error",
		setter:      func(c *ServerConfig, v string) error {
			c.LogLevel = parseLogLevel(v)
			return nil
		},
	},
}

// loadServerConfig resolves every option from fs, then getenv, then its default.
func loadServerConfig(fs *flag.FlagSet, args []string, getenv func(string) string) (ServerConfig, error) {
	cfg := ServerConfig{}

	// 1. Register string flags
	flagVars := make(map[string]*string, len(resolvers))
	for _, r := range resolvers {
		flagVars[r.flagName] = fs.String(r.flagName, "", r.description)
	}

	// 2. Parse once
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	// 3. Resolve each value
	for _, r := range resolvers {
		value := r.defaultVal
		if v := *flagVars[r.flagName]; v != "" {
			value = v
		} else if v := getenv(r.envVarName); v != "" {
			value = v
		}
		if err := r.setter(&cfg, value); err != nil {
			return cfg, fmt.Errorf("%s: %w", r.flagName, err)
		}
	}
	return cfg, nil
}

// parseLogLevel maps a level name onto slog, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
