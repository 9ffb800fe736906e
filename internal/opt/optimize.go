package opt

import (
	"context"
	"fmt"
	"time"

	"pickpath/internal/apperr"
	"pickpath/internal/grid"
	"pickpath/internal/logging"
	"pickpath/internal/model"
)

// RunStats describes one optimize call for metrics collection.
type RunStats struct {
	Strategy         model.Strategy
	Stops            int
	Missing          int
	DegradedSegments int
	CacheHits        int
	CacheMisses      int
	Duration         time.Duration
}

// Recorder receives RunStats after every successful optimize call.
type Recorder interface {
	ObserveRun(RunStats)
}

// Engine runs the optimization pipeline. It holds no per-call state and is
// safe for concurrent use; every call gets its own pathfinder and segment
// cache.
type Engine struct {
	Logger        *logging.Logger
	MaxExpansions int
	Recorder      Recorder
}

func NewEngine(logger *logging.Logger, maxExpansions int, rec Recorder) *Engine {
	return &Engine{Logger: logger, MaxExpansions: maxExpansions, Recorder: rec}
}

// Optimize runs a default Engine with logging disabled.
func Optimize(w model.WarehouseLayout, order []model.OrderItem, params model.OptimizeParams) (model.OptimizeResult, error) {
	var e Engine
	return e.Optimize(context.Background(), w, order, params)
}

// Resolve splits order lines into stops and lines whose location is unknown.
// Input order is preserved in both outputs.
func Resolve(w model.WarehouseLayout, order []model.OrderItem) ([]model.Stop, []model.OrderItem) {
	stops := make([]model.Stop, 0, len(order))
	missing := []model.OrderItem{}
	for _, it := range order {
		at, ok := w.Locations[it.LocationID]
		if !ok {
			missing = append(missing, it)
			continue
		}
		stops = append(stops, model.Stop{LocationID: it.LocationID, At: at, SKU: it.SKU})
	}
	return stops, missing
}

// Optimize resolves the order against the layout, sequences the stops per
// params.Strategy, routes through them with A* and scores the result.
// Legs that cannot be routed collapse to a point and are listed in
// Warnings. The only errors are an unknown strategy and ctx cancellation.
func (e *Engine) Optimize(ctx context.Context, w model.WarehouseLayout, order []model.OrderItem, params model.OptimizeParams) (model.OptimizeResult, error) {
	began := time.Now()
	params = params.WithDefaults()
	if !params.Strategy.Valid() {
		return model.OptimizeResult{}, fmt.Errorf("unknown strategy %q: %w", params.Strategy, apperr.ErrValidation)
	}
	log := e.logger().WithContext(ctx)

	stops, missing := Resolve(w, order)
	if len(missing) > 0 {
		log.Debug("unresolved order lines", "count", len(missing))
	}
	if len(stops) == 0 {
		if e.Recorder != nil {
			e.Recorder.ObserveRun(RunStats{
				Strategy: params.Strategy,
				Missing:  len(missing),
				Duration: time.Since(began),
			})
		}
		return model.OptimizeResult{
			Path:       []grid.Coord{w.Start},
			Stops:      []model.Stop{},
			Efficiency: 100,
			Missing:    missing,
			Metadata:   model.Metadata{},
		}, nil
	}

	layout := w.Grid()
	if layout.Blocked(w.Start) {
		log.Warn("start cell is blocked", "start", w.Start.String())
	}
	for _, s := range stops {
		if layout.Blocked(s.At) {
			log.Warn("pick location is blocked", "locationId", s.LocationID, "at", s.At.String())
		}
	}

	ordered, err := Sequence(w.Start, stops, params)
	if err != nil {
		return model.OptimizeResult{}, err
	}

	waypoints := make([]grid.Coord, 0, len(ordered)+2)
	waypoints = append(waypoints, w.Start)
	for _, s := range ordered {
		waypoints = append(waypoints, s.At)
	}
	if params.Strategy == model.StrategyReturnToDock {
		waypoints = append(waypoints, w.Start)
	}

	builder := grid.NewBuilder(&grid.Pathfinder{Layout: layout, MaxExpansions: e.MaxExpansions})
	path, failed, err := builder.BuildContext(ctx, waypoints)
	if err != nil {
		return model.OptimizeResult{}, err
	}

	var warnings []model.Warning
	for _, f := range failed {
		log.Warn("no route between waypoints; leg collapsed",
			"segment", f.Index, "from", f.From.String(), "to", f.To.String())
		warnings = append(warnings, model.Warning{
			Segment: f.Index,
			From:    f.From,
			To:      f.To,
			Message: fmt.Sprintf("no route from %s to %s; distance and time understate this leg", f.From, f.To),
		})
	}

	cellSize := w.CellSize()
	dist := Distance(path, cellSize)
	stopCoords := waypoints[1 : len(ordered)+1]
	res := model.OptimizeResult{
		Path:           path,
		Stops:          ordered,
		DistanceMeters: dist,
		TimeSeconds:    Time(dist, len(ordered), params),
		Efficiency:     Efficiency(path, w.Start, stopCoords),
		Missing:        missing,
		Metadata:       buildMetadata(path, w.Start, ordered, cellSize),
		Warnings:       warnings,
	}

	if e.Recorder != nil {
		hits, misses := builder.CacheStats()
		e.Recorder.ObserveRun(RunStats{
			Strategy:         params.Strategy,
			Stops:            len(ordered),
			Missing:          len(missing),
			DegradedSegments: len(failed),
			CacheHits:        hits,
			CacheMisses:      misses,
			Duration:         time.Since(began),
		})
	}
	return res, nil
}

func (e *Engine) logger() *logging.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}
