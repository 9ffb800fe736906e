package api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	yaml "gopkg.in/yaml.v3"

	"pickpath/internal/buildinfo"
	"pickpath/internal/metrics"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// OpenAPIHandler serves the OpenAPI document as YAML.
func (s *Server) OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPIYAML)
}

// OpenAPIJSONHandler serves the same document converted to JSON.
func (s *Server) OpenAPIJSONHandler(w http.ResponseWriter, r *http.Request) {
	var obj map[string]any
	if err := yaml.Unmarshal(openAPIYAML, &obj); err != nil {
		writeError(w, http.StatusInternalServerError, "OpenAPI parse failed")
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// DebugJSON reports build data and the effective non-secret configuration.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"PORT":              s.Cfg.Port,
			"ENVIRONMENT":       s.Cfg.Environment,
			"ALLOW_ORIGINS":     s.Cfg.AllowOrigins,
			"RATE_RPS":          s.Cfg.RateRPS,
			"RATE_BURST":        s.Cfg.RateBurst,
			"CACHE_TTL":         s.Cfg.CacheTTL.String(),
			"MAX_GRID_CELLS":    s.Cfg.Optimizer.MaxGridCells,
			"MAX_EXPANSIONS":    s.Cfg.Optimizer.MaxExpansions,
			"BATCH_CONCURRENCY": s.Cfg.Optimizer.BatchConcurrency,
			"HAS_DATABASE_URL":  s.Cfg.DatabaseURL != "",
			"HAS_REDIS_URL":     s.Cfg.RedisURL != "",
		},
	}
	writeJSON(w, http.StatusOK, info)
}

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}
