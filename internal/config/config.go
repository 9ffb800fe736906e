// Package config loads service settings from defaults, an optional YAML
// file named by CONFIG_FILE, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string          `yaml:"port"`
	Environment  string          `yaml:"environment"`
	LogLevel     string          `yaml:"logLevel"`
	DatabaseURL  string          `yaml:"databaseUrl"`
	DBMigrate    bool            `yaml:"dbMigrate"`
	RedisURL     string          `yaml:"redisUrl"`
	CacheTTL     time.Duration   `yaml:"cacheTtl"`
	RateRPS      float64         `yaml:"rateRps"`
	RateBurst    int             `yaml:"rateBurst"`
	AllowOrigins []string        `yaml:"allowOrigins"`
	Optimizer    OptimizerConfig `yaml:"optimizer"`
	Webhooks     WebhookConfig   `yaml:"webhooks"`
}

// WebhookConfig lists receivers of route.planned events. Empty URLs
// disables notifications.
type WebhookConfig struct {
	URLs        []string `yaml:"urls"`
	Secret      string   `yaml:"secret"`
	MaxAttempts int      `yaml:"maxAttempts"`
}

type OptimizerConfig struct {
	// MaxGridCells rejects layouts with more than rows*cols cells.
	MaxGridCells int `yaml:"maxGridCells"`
	// MaxExpansions caps A* per segment; 0 means rows*cols.
	MaxExpansions    int   `yaml:"maxExpansions"`
	BatchConcurrency int   `yaml:"batchConcurrency"`
	MaxBatchOrders   int   `yaml:"maxBatchOrders"`
	MaxBodyBytes     int64 `yaml:"maxBodyBytes"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		Environment: "development",
		LogLevel:    "info",
		DBMigrate:   true,
		CacheTTL:    5 * time.Minute,
		RateRPS:     0,
		RateBurst:   20,
		Optimizer: OptimizerConfig{
			MaxGridCells:     250_000,
			BatchConcurrency: 4,
			MaxBatchOrders:   200,
			MaxBodyBytes:     4 << 20,
		},
		Webhooks: WebhookConfig{MaxAttempts: 10},
	}
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds a Config using getenv for every lookup, so tests can
// supply a map instead of mutating the process environment.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()
	if path := getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("ENVIRONMENT", &cfg.Environment)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_URL", &cfg.RedisURL)
	str("WEBHOOK_SECRET", &cfg.Webhooks.Secret)

	if v := getenv("DB_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DB_MIGRATE: %w", err)
		}
		cfg.DBMigrate = b
	}
	if v := getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := getenv("RATE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_RPS: %w", err)
		}
		cfg.RateRPS = f
	}
	if v := getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = splitList(v)
	}
	if v := getenv("WEBHOOK_URLS"); v != "" {
		cfg.Webhooks.URLs = splitList(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RATE_BURST", &cfg.RateBurst},
		{"MAX_GRID_CELLS", &cfg.Optimizer.MaxGridCells},
		{"MAX_EXPANSIONS", &cfg.Optimizer.MaxExpansions},
		{"BATCH_CONCURRENCY", &cfg.Optimizer.BatchConcurrency},
		{"MAX_BATCH_ORDERS", &cfg.Optimizer.MaxBatchOrders},
		{"WEBHOOK_MAX_ATTEMPTS", &cfg.Webhooks.MaxAttempts},
	}
	for _, it := range ints {
		v := getenv(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", it.key, err)
		}
		*it.dst = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.RateRPS < 0 || c.RateBurst < 0 {
		return fmt.Errorf("rate limits must be non-negative")
	}
	if c.RateRPS > 0 && c.RateBurst == 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled")
	}
	if c.Optimizer.MaxGridCells <= 0 {
		return fmt.Errorf("optimizer.maxGridCells must be positive")
	}
	if c.Optimizer.MaxExpansions < 0 {
		return fmt.Errorf("optimizer.maxExpansions must be non-negative")
	}
	if c.Optimizer.BatchConcurrency <= 0 {
		return fmt.Errorf("optimizer.batchConcurrency must be positive")
	}
	if len(c.Webhooks.URLs) > 0 && c.Webhooks.MaxAttempts <= 0 {
		return fmt.Errorf("webhooks.maxAttempts must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cacheTtl must be non-negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// RateLimited reports whether request rate limiting is on.
func (c Config) RateLimited() bool { return c.RateRPS > 0 }
