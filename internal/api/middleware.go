package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pickpath/internal/logging"
	"pickpath/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// statusRecorder captures the status code and body size for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w}
}

// requestID propagates or assigns X-Request-Id and stores it on the context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)
		s.Log.HTTPRequest(r.Context(), r.Method, r.URL.Path, rec.code(), rec.bytes, time.Since(start))
	})
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)
		status := strconv.Itoa(rec.code())
		path := routeLabel(r.URL.Path)
		metrics.HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// routeLabel collapses ids out of paths to keep label cardinality bounded.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/v1/runs/") && len(path) > len("/v1/runs/") {
		return "/v1/runs/{id}"
	}
	switch path {
	case "/optimize", "/v1/optimize", "/v1/compare", "/v1/batch", "/v1/export",
		"/v1/zones", "/v1/orders/parse", "/v1/runs", "/healthz", "/readyz", "/metrics",
		"/debug/info", "/openapi.yaml", "/openapi.json":
		return path
	}
	return "other"
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && len(s.Cfg.AllowOrigins) > 0 {
			if slices.Contains(s.Cfg.AllowOrigins, "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if slices.Contains(s.Cfg.AllowOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		}
		next.ServeHTTP(w, r)
	})
}

// exempt paths are never rate limited so probes keep working under load.
func exempt(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !exempt(r.URL.Path) && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n := s.Cfg.Optimizer.MaxBodyBytes; n > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		next.ServeHTTP(w, r)
	})
}
