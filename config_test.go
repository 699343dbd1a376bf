package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/everforgeworks/study-ascension/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("study-ascension", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := loadServerConfig(newFlagSet(), nil, env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, "", cfg.CatalogFile)
	assert.Equal(t, "./saves", cfg.SaveDir)
	assert.Equal(t, "default", cfg.Slot)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.SaveInterval)
	assert.Equal(t, time.Second, cfg.PulseInterval)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 20.0, cfg.RatePerSecond)
	assert.Equal(t, 40, cfg.Burst)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadServerConfig_Precedence(t *testing.T) {
	vars := map[string]string{
		"STUDY_ADDR":      ":9000",
		"STUDY_SLOT":      "from-env",
		"STUDY_TICK_MS":   "250",
		"STUDY_LOG_LEVEL": "debug",
	}
	cfg, err := loadServerConfig(newFlagSet(), []string{"-slot", "from-flag", "-locale", "fr"}, env(vars))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr, "env beats default")
	assert.Equal(t, "from-flag", cfg.Slot, "flag beats env")
	assert.Equal(t, "fr", cfg.Locale)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadServerConfig_RejectsBadNumbers(t *testing.T) {
	for _, args := range [][]string{
		{"-tick-ms", "0"},
		{"-save-ms", "soon"},
		{"-rate", "-1"},
		{"-burst", "many"},
	} {
		_, err := loadServerConfig(newFlagSet(), args, env(nil))
		assert.Error(t, err, "%v", args)
	}

	_, err := loadServerConfig(newFlagSet(), []string{"-no-such-flag"}, env(nil))
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("chatty"))
}

func TestOpenStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, closeFn, err := openStore(context.Background(), ServerConfig{SaveDir: "memory"}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.MemoryStore{}, st)

	st, closeFn, err = openStore(context.Background(), ServerConfig{SaveDir: t.TempDir()}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.FileStore{}, st)
}
