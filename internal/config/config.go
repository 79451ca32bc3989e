package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/sakhi/internal/backend"
	"github.com/Veraticus/sakhi/internal/common"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SAKHI_API_BASE_URL.
const EnvPrefix = "SAKHI"

// Commit strategies.
const (
	StrategyBatch  = "batch"
	StrategyLedger = "ledger"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL           string
	TokenFile         string
	Language          string
	Strategy          string
	TranscriptPath    string
	Theme             string
	LogLevel          string
	LogFormat         string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	Concurrency       int
	QuantityPolicy    reconcile.QuantityPolicy
	TranscriptEnabled bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.token_file", "")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.rps", 5.0)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("language", "en")
	v.SetDefault("strategy", StrategyBatch)
	v.SetDefault("concurrency", 1)
	v.SetDefault("quantity_policy", "")
	v.SetDefault("transcript.enabled", true)
	v.SetDefault("transcript.path", "~/.local/share/sakhi/transcript.db")
	v.SetDefault("ui.theme", "default")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv makes SAKHI_* variables override nested keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads a .env file into the process environment. A missing
// file is not an error; variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(ExpandPath(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		BaseURL:           strings.TrimSpace(v.GetString("api.base_url")),
		TokenFile:         ExpandPath(v.GetString("api.token_file")),
		Timeout:           v.GetDuration("api.timeout"),
		RequestsPerSecond: v.GetFloat64("api.rps"),
		MaxRetries:        v.GetInt("api.max_retries"),
		Language:          strings.ToLower(strings.TrimSpace(v.GetString("language"))),
		Strategy:          strings.ToLower(strings.TrimSpace(v.GetString("strategy"))),
		Concurrency:       v.GetInt("concurrency"),
		TranscriptEnabled: v.GetBool("transcript.enabled"),
		TranscriptPath:    ExpandPath(v.GetString("transcript.path")),
		Theme:             strings.ToLower(strings.TrimSpace(v.GetString("ui.theme"))),
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
	}

	policy := strings.TrimSpace(v.GetString("quantity_policy"))
	if policy == "" {
		cfg.QuantityPolicy = DefaultQuantityPolicy(cfg.Strategy)
	} else {
		p, err := reconcile.ParseQuantityPolicy(policy)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
		}
		cfg.QuantityPolicy = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultQuantityPolicy returns the quantity policy paired with a strategy:
// the batch review keeps totals, the per-ledger receipt review keeps unit
// prices.
func DefaultQuantityPolicy(strategy string) reconcile.QuantityPolicy {
	if strategy == StrategyLedger {
		return reconcile.HoldUnitPrice
	}
	return reconcile.HoldTotal
}

// Validate checks the configuration for consistency. The base URL is only
// required by commands that reach the backend; see RequireBackend.
func (c *Config) Validate() error {
	var errs []error

	switch c.Strategy {
	case StrategyBatch, StrategyLedger:
	default:
		errs = append(errs, fmt.Errorf("strategy must be %q or %q, got %q", StrategyBatch, StrategyLedger, c.Strategy))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout cannot be negative"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("api.rps cannot be negative"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("api.max_retries cannot be negative"))
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.TranscriptEnabled && c.TranscriptPath == "" {
		errs = append(errs, fmt.Errorf("transcript.path is required when the transcript is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RequireBackend reports an error when no backend is configured.
func (c *Config) RequireBackend() error {
	if c.BaseURL == "" {
		return common.NewUserError(
			"no backend configured: set api.base_url or "+EnvPrefix+"_API_BASE_URL",
			common.ErrMissingConfig)
	}
	return nil
}

// Backend returns the HTTP client settings.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		BaseURL:           c.BaseURL,
		Language:          c.Language,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Retry: common.RetryOptions{
			MaxAttempts:  c.MaxRetries + 1,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
		},
	}
}

// DefaultConfigDir returns ~/.config/sakhi.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sakhi"), nil
}
