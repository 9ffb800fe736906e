package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pickpath/internal/apperr"
	"pickpath/internal/cache"
	"pickpath/internal/export"
	"pickpath/internal/integrations"
	"pickpath/internal/metrics"
	"pickpath/internal/model"
	"pickpath/internal/opt"
	"pickpath/internal/store"
	"pickpath/internal/webhooks"
)

const optimizeFailed = "Failed to optimize route"

func allowOnly(w http.ResponseWriter, methods ...string) {
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// OptimizeHandler handles POST/OPTIONS /optimize and /v1/optimize.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Allow", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		writeJSON(w, http.StatusOK, struct{}{})
		return
	case http.MethodPost:
	default:
		allowOnly(w, http.MethodPost, http.MethodOptions)
		return
	}
	in, err := s.readOptimize(r)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	res, err := s.optimize(r.Context(), in)
	if err != nil {
		s.Log.WithContext(r.Context()).WithError(err).Error("optimize failed")
		writeErr(w, err, optimizeFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) readOptimize(r *http.Request) (optimizeInput, error) {
	var env optimizeEnvelope
	if err := decodeJSON(r, &env); err != nil {
		return optimizeInput{}, err
	}
	return s.parseOptimize(env)
}

// optimize serves from the result cache when possible and logs every run to
// the run store. Cache and store failures are logged and never fail the call.
func (s *Server) optimize(ctx context.Context, in optimizeInput) (model.OptimizeResult, error) {
	log := s.Log.WithContext(ctx)
	start := time.Now()
	params := in.Params.WithDefaults()

	key, err := cache.Key("optimize", in.Warehouse, in.Order, params)
	if err != nil {
		return model.OptimizeResult{}, err
	}
	if b, ok, err := s.Cache.Get(ctx, key); err != nil {
		log.WithError(err).Warn("result cache get failed")
	} else if ok {
		var res model.OptimizeResult
		if err := json.Unmarshal(b, &res); err == nil {
			metrics.ResultCache.WithLabelValues("hit").Inc()
			s.saveRun(ctx, in, res, time.Since(start))
			return res, nil
		}
		log.Warn("discarding undecodable cache entry", "key", key)
	}
	metrics.ResultCache.WithLabelValues("miss").Inc()

	res, err := s.Engine.Optimize(ctx, in.Warehouse, in.Order, params)
	if err != nil {
		return model.OptimizeResult{}, err
	}
	if b, err := json.Marshal(res); err == nil {
		if err := s.Cache.Set(ctx, key, b, s.Cfg.CacheTTL); err != nil {
			log.WithError(err).Warn("result cache set failed")
		}
	}
	s.saveRun(ctx, in, res, time.Since(start))
	return res, nil
}

func (s *Server) saveRun(ctx context.Context, in optimizeInput, res model.OptimizeResult, took time.Duration) {
	rec := store.NewRecord(in.Warehouse.Name, in.Params, res, took)
	if err := s.Runs.SaveRun(ctx, rec); err != nil {
		s.Log.WithContext(ctx).WithError(err).Warn("save run failed", "runId", rec.ID)
	}
	if s.Events != nil {
		s.Events.Emit(ctx, webhooks.EventRoutePlanned, rec)
	}
}

type compareRequest struct {
	Warehouse json.RawMessage `json:"warehouse"`
	Order     json.RawMessage `json:"order"`
	ScenarioA json.RawMessage `json:"scenarioA"`
	ScenarioB json.RawMessage `json:"scenarioB"`
}

// CompareHandler handles POST /v1/compare.
func (s *Server) CompareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		allowOnly(w, http.MethodPost)
		return
	}
	var req compareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	if !present(req.Warehouse) || !present(req.Order) || !present(req.ScenarioA) || !present(req.ScenarioB) {
		writeError(w, http.StatusBadRequest, "Missing required fields: warehouse, order, scenarioA, scenarioB")
		return
	}
	wh, err := s.decodeWarehouse(req.Warehouse)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	order, err := decodeOrder(req.Order)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	a, err := s.decodeParams(req.ScenarioA)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	b, err := s.decodeParams(req.ScenarioB)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	cmp, err := s.Engine.Compare(r.Context(), wh, order, a, b)
	if err != nil {
		s.Log.WithContext(r.Context()).WithError(err).Error("compare failed")
		writeErr(w, err, optimizeFailed)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type batchRequest struct {
	Warehouse json.RawMessage   `json:"warehouse"`
	Orders    []json.RawMessage `json:"orders"`
	Params    json.RawMessage   `json:"params"`
}

// BatchHandler handles POST /v1/batch.
func (s *Server) BatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		allowOnly(w, http.MethodPost)
		return
	}
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	if !present(req.Warehouse) || req.Orders == nil || !present(req.Params) {
		writeError(w, http.StatusBadRequest, "Missing required fields: warehouse, orders, params")
		return
	}
	if limit := s.Cfg.Optimizer.MaxBatchOrders; limit > 0 && len(req.Orders) > limit {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Batch of %d orders exceeds the limit of %d", len(req.Orders), limit))
		return
	}
	wh, err := s.decodeWarehouse(req.Warehouse)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	orders := make([][]model.OrderItem, len(req.Orders))
	for i, raw := range req.Orders {
		o, err := decodeOrder(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("orders[%d]: %s", i, apperr.Message(err, optimizeFailed)))
			return
		}
		orders[i] = o
	}
	p, err := s.decodeParams(req.Params)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	res, err := s.Engine.Batch(r.Context(), wh, orders, p, s.Cfg.Optimizer.BatchConcurrency)
	if err != nil {
		s.Log.WithContext(r.Context()).WithError(err).Error("batch failed")
		writeErr(w, err, optimizeFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type zonesRequest struct {
	Warehouse json.RawMessage `json:"warehouse"`
	Order     json.RawMessage `json:"order"`
	K         int             `json:"k"`
}

// ZonesHandler handles POST /v1/zones: the k-means pick zones for an order.
// k defaults to the count zone_cluster would use.
func (s *Server) ZonesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		allowOnly(w, http.MethodPost)
		return
	}
	var req zonesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	if !present(req.Warehouse) || !present(req.Order) {
		writeError(w, http.StatusBadRequest, "Missing required fields: warehouse, order")
		return
	}
	wh, err := s.decodeWarehouse(req.Warehouse)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	order, err := decodeOrder(req.Order)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	stops, missing := opt.Resolve(wh, order)
	k := req.K
	if k <= 0 {
		k = opt.ClusterCount(len(stops))
	}
	members := make([]model.ClusterMember, len(stops))
	for i, st := range stops {
		members[i] = model.ClusterMember{ID: st.LocationID, At: st.At}
	}
	clusters := opt.KMeans(members, k)
	if clusters == nil {
		clusters = []model.Cluster{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clusters": clusters, "missing": missing})
}

// ExportHandler handles POST /v1/export?format=txt|csv|path|json. The body is
// an optimize request; the response is a downloadable pick list.
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		allowOnly(w, http.MethodPost)
		return
	}
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := s.readOptimize(r)
	if err != nil {
		writeErr(w, err, optimizeFailed)
		return
	}
	res, err := s.optimize(r.Context(), in)
	if err != nil {
		s.Log.WithContext(r.Context()).WithError(err).Error("export optimize failed")
		writeErr(w, err, optimizeFailed)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, res); err != nil {
		s.Log.WithContext(r.Context()).WithError(err).Error("export render failed")
		writeError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}
	name := f.Filename(time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// OrdersParseHandler handles POST /v1/orders/parse. CSV, plain text and
// JSON bodies are accepted according to Content-Type.
func (s *Server) OrdersParseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		allowOnly(w, http.MethodPost)
		return
	}
	src, err := integrations.ForContentType(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	items, err := src.ParseOrder(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": src.Name(), "items": items})
}

// RunsHandler handles GET /v1/runs?limit=N.
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		allowOnly(w, http.MethodGet)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	runs, err := s.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.Log.WithContext(r.Context()).WithError(err).Error("list runs failed")
		writeErr(w, err, "Failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// RunByIDHandler handles GET /v1/runs/{id}.
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		allowOnly(w, http.MethodGet)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/runs/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Run not found")
		return
	}
	rec, err := s.Runs.GetRun(r.Context(), id)
	if err != nil {
		if apperr.HTTPStatus(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		s.Log.WithContext(r.Context()).WithError(err).Error("get run failed", "runId", id)
		writeErr(w, err, "Failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadyHandler pings the run store and result cache.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	checks := map[string]pinger{"store": s.Runs, "cache": s.Cache}
	status := map[string]string{}
	ready := true
	for name, p := range checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			status[name] = err.Error()
			ready = false
			continue
		}
		status[name] = "ok"
	}
	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": status})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": status})
}
