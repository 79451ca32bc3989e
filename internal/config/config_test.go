package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, StrategyBatch, cfg.Strategy)
	assert.Equal(t, reconcile.HoldTotal, cfg.QuantityPolicy)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, "en", cfg.Language)
	assert.True(t, cfg.TranscriptEnabled)
	assert.NotContains(t, cfg.TranscriptPath, "~")

	assert.ErrorIs(t, cfg.RequireBackend(), common.ErrMissingConfig)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SAKHI_API_BASE_URL", "https://api.example.test")
	t.Setenv("SAKHI_STRATEGY", "ledger")
	t.Setenv("SAKHI_API_MAX_RETRIES", "0")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", cfg.BaseURL)
	assert.Equal(t, StrategyLedger, cfg.Strategy)
	assert.Equal(t, reconcile.HoldUnitPrice, cfg.QuantityPolicy, "ledger review keeps unit prices")
	assert.NoError(t, cfg.RequireBackend())

	bc := cfg.Backend()
	assert.Equal(t, "https://api.example.test", bc.BaseURL)
	assert.Equal(t, 1, bc.Retry.MaxAttempts)
}

func TestLoad_ExplicitQuantityPolicy(t *testing.T) {
	v := newViper()
	v.Set("strategy", StrategyLedger)
	v.Set("quantity_policy", "hold-total")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, reconcile.HoldTotal, cfg.QuantityPolicy)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "strategy", key: "strategy", value: "carrier-pigeon"},
		{name: "concurrency", key: "concurrency", value: 0},
		{name: "quantity policy", key: "quantity_policy", value: "sideways"},
		{name: "log level", key: "logging.level", value: "loud"},
		{name: "rps", key: "api.rps", value: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAKHI_TEST_DOTENV=from-file\n"), 0600))
	t.Setenv("SAKHI_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("SAKHI_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("SAKHI_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SAKHI_TEST_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "x.db"), ExpandPath("~/x.db"))
	assert.Equal(t, "/data/x.db", ExpandPath("$SAKHI_TEST_DIR/x.db"))
}
