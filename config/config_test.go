package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray .env is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	cfg, err := Load("missing.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceWait)
	assert.Equal(t, 2*time.Second, cfg.PredictionDelay)
	assert.Equal(t, 30, cfg.ChartWindow)
	assert.Equal(t, "", cfg.Redis.Addr)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9000"
tick_interval: 10s
prediction_delay: 500ms
chart_window: 20
redis:
  addr: "localhost:6379"
`), 0o644))

	t.Setenv("TICK_INTERVAL", "5s")
	t.Setenv("RNG_SEED", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.PredictionDelay)
	assert.Equal(t, 20, cfg.ChartWindow)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(42), cfg.Seed())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CHART_BASE_PRICE=9500\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CHART_BASE_PRICE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9500.0, cfg.ChartBasePrice)
}

func TestLoad_BadEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("DEBOUNCE_WAIT", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEBOUNCE_WAIT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.TickInterval = 100 * time.Millisecond
	cfg.ChartWindow = 0
	cfg.Timezone = "Mars/Olympus"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_interval")
	assert.Contains(t, err.Error(), "chart_window")
	assert.Contains(t, err.Error(), "timezone")
}

func TestValidate_TelegramNeedsBothKeys(t *testing.T) {
	cfg := Default()
	cfg.Alerts.TelegramToken = "123:abc"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")

	cfg.Alerts.TelegramChatID = "-100"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ZeroPredictionDelay(t *testing.T) {
	cfg := Default()
	cfg.PredictionDelay = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prediction_delay")
}
