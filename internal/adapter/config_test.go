package adapter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
}

func TestLoadConfigFrom_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Server.URL)
	assert.Equal(t, "/api", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.False(t, cfg.Search.RankResults)
	assert.Equal(t, 256, cfg.Cache.ItemSize)
	assert.Empty(t, cfg.Viewer.Command)
}

func TestLoadConfigFrom_File(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  url: https://warehouse.example.com
  base_url: /v2/api
  rate_limit: 2
search:
  debounce: 300ms
  min_query_length: 3
  rank_results: true
cache:
  dir: ""
viewer:
  command: feh
  args: ["--scale-down"]
`)

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://warehouse.example.com", cfg.Server.URL)
	assert.Equal(t, "/v2/api", cfg.Server.BaseURL)
	assert.Equal(t, 2.0, cfg.Server.RateLimit)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 3, cfg.Search.MinQueryLength)
	assert.True(t, cfg.Search.RankResults)
	assert.Empty(t, cfg.Cache.Dir)
	assert.Equal(t, "feh", cfg.Viewer.Command)
	assert.Equal(t, []string{"--scale-down"}, cfg.Viewer.Args)

	// Untouched keys keep their defaults
	assert.Equal(t, 5, cfg.Server.Burst)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server:\n  url: http://from-file\n")

	t.Setenv("ANBAR_SERVER_URL", "http://from-env:9000")
	t.Setenv("ANBAR_TELEGRAM_INIT_DATA", "query_id=abc")
	t.Setenv("ANBAR_SEARCH_DEBOUNCE", "1s")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9000", cfg.Server.URL)
	assert.Equal(t, "query_id=abc", cfg.Telegram.InitData)
	assert.Equal(t, time.Second, cfg.Search.Debounce)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ANBAR_SERVER_URL=http://from-dotenv\nANBAR_VIEWER_COMMAND=mpv\n"), 0644))

	// The real environment wins over the file
	t.Setenv("ANBAR_SERVER_URL", "http://from-env")
	t.Cleanup(func() { os.Unsetenv("ANBAR_VIEWER_COMMAND") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "http://from-env", os.Getenv("ANBAR_SERVER_URL"))
	assert.Equal(t, "mpv", os.Getenv("ANBAR_VIEWER_COMMAND"))

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "mpv", cfg.Viewer.Command)
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed_yaml", body: "server: [unclosed"},
		{name: "zero_min_length", body: "search:\n  min_query_length: 0\n"},
		{name: "negative_debounce", body: "search:\n  debounce: -1s\n"},
		{name: "relative_base_without_url", body: "server:\n  url: \"\"\n  base_url: /api\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)

			_, err := LoadConfigFrom(dir)
			assert.Error(t, err)
		})
	}
}

func TestValidate_AbsoluteBaseWithoutURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.URL = ""
	cfg.Server.BaseURL = "https://warehouse.example.com/api"
	assert.NoError(t, cfg.Validate())
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.URL = "https://warehouse.example.com"
	cfg.Search.Debounce = 750 * time.Millisecond
	cfg.Search.RankResults = true
	cfg.Cache.ItemTTL = time.Minute
	cfg.Viewer.Command = "mpv"
	cfg.Logging.Level = "DEBUG"
	require.NoError(t, SaveConfigTo(cfg, dir))

	loaded, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.Search, loaded.Search)
	assert.Equal(t, time.Minute, loaded.Cache.ItemTTL)
	assert.Equal(t, "mpv", loaded.Viewer.Command)
	assert.Equal(t, "DEBUG", loaded.Logging.Level)
}

func TestClearCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "abc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc", "anbar.db"), []byte("x"), 0600))

	require.NoError(t, ClearCache(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(""))
	assert.NoError(t, ClearCache(dir))
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, parseLogLevel("debug").String(), "DEBUG")
	assert.Equal(t, parseLogLevel("WARNING").String(), "WARN")
	assert.Equal(t, parseLogLevel("nonsense").String(), "INFO")
}

func TestSetupLogger_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "anbar.log")

	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "INFO"})
	require.NoError(t, err)
	logger.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
