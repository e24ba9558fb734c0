// Package config loads the dashboard configuration from an optional YAML
// file, an optional .env file and environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty disables the mirror
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	// Alerts go to every configured sink; none configured logs only.
	Alerts struct {
		WebhookURL     string `yaml:"webhook_url"`
		TelegramToken  string `yaml:"telegram_token"`
		TelegramChatID string `yaml:"telegram_chat_id"`
	} `yaml:"alerts"`

	TickInterval    time.Duration `yaml:"tick_interval"`
	DebounceWait    time.Duration `yaml:"debounce_wait"`
	PredictionDelay time.Duration `yaml:"prediction_delay"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`

	ChartWindow    int     `yaml:"chart_window"`
	ChartBasePrice float64 `yaml:"chart_base_price"`
	ChartSpread    float64 `yaml:"chart_spread"`

	// PredictionReport is a model report file served instead of random
	// predictions when set.
	PredictionReport string `yaml:"prediction_report"`

	// RNGSeed seeds the mock data; 0 seeds from the clock.
	RNGSeed  int64  `yaml:"rng_seed"`
	Timezone string `yaml:"timezone"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		LogLevel:        "info",
		TickInterval:    30 * time.Second,
		DebounceWait:    250 * time.Millisecond,
		PredictionDelay: 2 * time.Second,
		MetricsInterval: 2 * time.Second,
		ChartWindow:     30,
		ChartBasePrice:  9100,
		ChartSpread:     200,
		Timezone:        "Europe/London",
	}
}

// Load reads path (missing file is fine), then .env in the working
// directory, then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.PredictionReport = getEnv("PREDICTION_REPORT", c.PredictionReport)
	c.Alerts.WebhookURL = getEnv("ALERT_WEBHOOK_URL", c.Alerts.WebhookURL)
	c.Alerts.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", c.Alerts.TelegramToken)
	c.Alerts.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", c.Alerts.TelegramChatID)

	var errs []error
	errs = append(errs,
		envDuration("TICK_INTERVAL", &c.TickInterval),
		envDuration("DEBOUNCE_WAIT", &c.DebounceWait),
		envDuration("PREDICTION_DELAY", &c.PredictionDelay),
		envDuration("METRICS_INTERVAL", &c.MetricsInterval),
		envInt("CHART_WINDOW", &c.ChartWindow),
		envFloat("CHART_BASE_PRICE", &c.ChartBasePrice),
		envFloat("CHART_SPREAD", &c.ChartSpread),
		envInt64("RNG_SEED", &c.RNGSeed),
		envInt("REDIS_DB", &c.Redis.DB),
	)
	return errors.Join(errs...)
}

// Validate checks ranges and the time zone.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.TickInterval < time.Second {
		errs = append(errs, fmt.Errorf("tick_interval %v: must be at least 1s", c.TickInterval))
	}
	if c.DebounceWait < 0 {
		errs = append(errs, fmt.Errorf("debounce_wait %v: must not be negative", c.DebounceWait))
	}
	if c.PredictionDelay <= 0 {
		errs = append(errs, fmt.Errorf("prediction_delay %v: must be positive", c.PredictionDelay))
	}
	if c.MetricsInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics_interval %v: must be positive", c.MetricsInterval))
	}
	if c.ChartWindow <= 0 {
		errs = append(errs, fmt.Errorf("chart_window %d: must be positive", c.ChartWindow))
	}
	if c.ChartSpread < 0 {
		errs = append(errs, fmt.Errorf("chart_spread %v: must not be negative", c.ChartSpread))
	}
	if (c.Alerts.TelegramToken == "") != (c.Alerts.TelegramChatID == "") {
		errs = append(errs, errors.New("alerts: telegram_token and telegram_chat_id must be set together"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Seed returns RNGSeed, or the current time when it is zero.
func (c *Config) Seed() int64 {
	if c.RNGSeed != 0 {
		return c.RNGSeed
	}
	return time.Now().UnixNano()
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
