// Package api implements HTTP handlers and middleware for the pick-path service.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"pickpath/internal/cache"
	"pickpath/internal/config"
	"pickpath/internal/logging"
	"pickpath/internal/metrics"
	"pickpath/internal/opt"
	"pickpath/internal/store"
	"pickpath/internal/webhooks"
)

// Notifier receives events about completed runs.
type Notifier interface {
	Emit(ctx context.Context, eventType string, data any)
}

type Server struct {
	Cfg    config.Config
	Log    *logging.Logger
	Engine *opt.Engine
	Runs   store.RunStore
	Cache  cache.Cache
	Events Notifier
	// Hooks is set when webhook URLs are configured; the caller starts
	// its worker.
	Hooks *webhooks.Dispatcher

	limiter  *rate.Limiter
	validate *validator.Validate
	closers  []io.Closer
}

// NewServer creates a Server. If DATABASE_URL is unset, uses the in-memory
// run store; if REDIS_URL is unset, uses an in-process result cache.
func NewServer(ctx context.Context, cfg config.Config, log *logging.Logger) (*Server, error) {
	var runs store.RunStore
	var closers []io.Closer
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		runs = store.NewMemory(0)
	} else {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		runs = pg
		closers = append(closers, pg)
	}

	var c cache.Cache
	if strings.TrimSpace(cfg.RedisURL) == "" {
		c = cache.NewMemory(0)
	} else {
		rc, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			for _, cl := range closers {
				_ = cl.Close()
			}
			return nil, err
		}
		c = rc
		closers = append(closers, rc)
	}

	s := NewServerWith(cfg, log, runs, c)
	s.closers = closers
	if len(cfg.Webhooks.URLs) > 0 {
		s.Hooks = webhooks.NewDispatcher(cfg.Webhooks.URLs, cfg.Webhooks.Secret, s.Log.WithComponent("webhooks"))
		s.Events = s.Hooks
	}
	return s, nil
}

// NewServerWith builds a Server over already constructed backends.
func NewServerWith(cfg config.Config, log *logging.Logger, runs store.RunStore, c cache.Cache) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{
		Cfg:      cfg,
		Log:      log,
		Engine:   opt.NewEngine(log.WithComponent("optimizer"), cfg.Optimizer.MaxExpansions, metrics.Recorder{}),
		Runs:     runs,
		Cache:    c,
		validate: newValidator(),
	}
	if cfg.RateLimited() {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	}
	return s
}

// Close releases database and Redis connections.
func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Routes registers every endpoint and wraps the mux in middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Optimization
	mux.HandleFunc("/optimize", s.OptimizeHandler)
	mux.HandleFunc("/v1/optimize", s.OptimizeHandler)
	mux.HandleFunc("/v1/compare", s.CompareHandler)
	mux.HandleFunc("/v1/batch", s.BatchHandler)
	mux.HandleFunc("/v1/export", s.ExportHandler)
	mux.HandleFunc("/v1/zones", s.ZonesHandler)

	// Orders
	mux.HandleFunc("/v1/orders/parse", s.OrdersParseHandler)

	// Run log
	mux.HandleFunc("/v1/runs", s.RunsHandler)
	mux.HandleFunc("/v1/runs/", s.RunByIDHandler)

	// Health
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)

	// Ops
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/debug/info", s.DebugJSON)
	mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", s.OpenAPIJSONHandler)

	var h http.Handler = mux
	h = s.limitBody(h)
	h = s.rateLimit(h)
	h = s.cors(h)
	h = instrument(h)
	h = s.logRequests(h)
	h = requestID(h)
	return h
}
