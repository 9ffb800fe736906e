package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"pickpath/internal/opt"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Optimizations counts completed optimize runs by strategy
	Optimizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pickpath_optimizations_total", Help: "Completed optimize runs by strategy."},
		[]string{"strategy"},
	)
	// OptimizeDuration records engine time per run in seconds
	OptimizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "pickpath_optimize_duration_seconds", Help: "Optimize engine duration in seconds.", Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}},
		[]string{"strategy"},
	)
	// StopsPerRun is the distribution of resolved stops per run
	StopsPerRun = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "pickpath_stops_per_run", Help: "Resolved stops per optimize run.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250}},
	)
	// MissingItems counts order lines whose location could not be resolved
	MissingItems = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pickpath_missing_items_total", Help: "Order lines with unknown locations."},
	)
	// DegradedSegments counts legs that collapsed because no route existed
	DegradedSegments = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pickpath_degraded_segments_total", Help: "Route legs with no path between waypoints."},
	)
	// SegmentCache counts per-call A* segment cache lookups by result
	SegmentCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pickpath_segment_cache_total", Help: "Segment cache lookups by result."},
		[]string{"result"},
	)
	// ResultCache counts shared result cache lookups by result
	ResultCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pickpath_result_cache_total", Help: "Result cache lookups by result."},
		[]string{"result"},
	)
	// WebhookDeliveries counts route notification attempts by outcome
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pickpath_webhook_deliveries_total", Help: "Webhook delivery attempts by outcome."},
		[]string{"result"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Optimizations)
		Registry.MustRegister(OptimizeDuration)
		Registry.MustRegister(StopsPerRun)
		Registry.MustRegister(MissingItems)
		Registry.MustRegister(DegradedSegments)
		Registry.MustRegister(SegmentCache)
		Registry.MustRegister(ResultCache)
		Registry.MustRegister(WebhookDeliveries)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// Recorder feeds engine run stats into the collectors above.
type Recorder struct{}

func (Recorder) ObserveRun(s opt.RunStats) {
	strategy := string(s.Strategy)
	Optimizations.WithLabelValues(strategy).Inc()
	OptimizeDuration.WithLabelValues(strategy).Observe(s.Duration.Seconds())
	StopsPerRun.Observe(float64(s.Stops))
	MissingItems.Add(float64(s.Missing))
	DegradedSegments.Add(float64(s.DegradedSegments))
	SegmentCache.WithLabelValues("hit").Add(float64(s.CacheHits))
	SegmentCache.WithLabelValues("miss").Add(float64(s.CacheMisses))
}
