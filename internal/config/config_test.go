package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.False(t, cfg.RateLimited())
}

func TestLoadFrom_Env(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"PORT":              "9090",
		"LOG_LEVEL":         "debug",
		"DATABASE_URL":      "postgres://u:p@db/pick",
		"DB_MIGRATE":        "false",
		"REDIS_URL":         "redis://cache:6379/0",
		"CACHE_TTL":         "30s",
		"RATE_RPS":          "12.5",
		"RATE_BURST":        "40",
		"MAX_GRID_CELLS":    "10000",
		"MAX_EXPANSIONS":    "5000",
		"BATCH_CONCURRENCY": "8",
		"ALLOW_ORIGINS":     "https://a.example, https://b.example,",
		"WEBHOOK_URLS":      "https://wms.example/hooks/pick",
		"WEBHOOK_SECRET":    "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://u:p@db/pick", cfg.DatabaseURL)
	assert.False(t, cfg.DBMigrate)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.RateLimited())
	assert.Equal(t, 12.5, cfg.RateRPS)
	assert.Equal(t, 40, cfg.RateBurst)
	assert.Equal(t, 10000, cfg.Optimizer.MaxGridCells)
	assert.Equal(t, 5000, cfg.Optimizer.MaxExpansions)
	assert.Equal(t, 8, cfg.Optimizer.BatchConcurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, []string{"https://wms.example/hooks/pick"}, cfg.Webhooks.URLs)
	assert.Equal(t, "s3cret", cfg.Webhooks.Secret)
	assert.Equal(t, 10, cfg.Webhooks.MaxAttempts)
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pickpath.yaml")
	yml := `
port: "7000"
environment: staging
cacheTtl: 2m
rateRps: 5
rateBurst: 10
optimizer:
  maxGridCells: 4096
  batchConcurrency: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadFrom(envMap(map[string]string{"CONFIG_FILE": path, "PORT": "7001"}))
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Port, "env overrides file")
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5.0, cfg.RateRPS)
	assert.Equal(t, 4096, cfg.Optimizer.MaxGridCells)
	assert.Equal(t, 2, cfg.Optimizer.BatchConcurrency)
	assert.Equal(t, Default().Optimizer.MaxBatchOrders, cfg.Optimizer.MaxBatchOrders, "unset keys keep defaults")
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"bad bool":     {"DB_MIGRATE": "sometimes"},
		"bad duration": {"CACHE_TTL": "soon"},
		"bad float":    {"RATE_RPS": "fast"},
		"bad int":      {"MAX_GRID_CELLS": "lots"},
		"zero cells":   {"MAX_GRID_CELLS": "0"},
		"no burst":     {"RATE_RPS": "3", "RATE_BURST": "0"},
		"missing file": {"CONFIG_FILE": filepath.Join(t.TempDir(), "nope.yaml")},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(envMap(env))
			assert.Error(t, err)
		})
	}
}
