package model

import (
	"time"

	"pickpath/internal/grid"
)

// Coord is re-exported so wire types read naturally.
type Coord = grid.Coord

type WarehouseLayout struct {
	Name           string           `json:"name,omitempty" yaml:"name"`
	Rows           int              `json:"rows" yaml:"rows"`
	Cols           int              `json:"cols" yaml:"cols"`
	Start          Coord            `json:"start" yaml:"start"`
	Blocked        []Coord          `json:"blocked" yaml:"blocked"`
	Locations      map[string]Coord `json:"locations" yaml:"locations"`
	CellSizeMeters float64          `json:"cellSizeMeters,omitempty" yaml:"cellSizeMeters"`
}

// CellSize returns the configured cell size, defaulting to one metre.
func (w WarehouseLayout) CellSize() float64 {
	if w.CellSizeMeters <= 0 {
		return 1
	}
	return w.CellSizeMeters
}

// Grid builds the pathfinding view of the layout.
func (w WarehouseLayout) Grid() *grid.Layout {
	return grid.NewLayout(w.Rows, w.Cols, w.Blocked)
}

// OrderItem is one order line. Qty and ProductName are carried through to
// output but do not affect time or distance.
type OrderItem struct {
	SKU         string `json:"sku" yaml:"sku"`
	LocationID  string `json:"locationId" yaml:"locationId"`
	Qty         int    `json:"qty,omitempty" yaml:"qty"`
	ProductName string `json:"productName,omitempty" yaml:"productName"`
}

type Strategy string

const (
	StrategyNearest      Strategy = "nearest"
	StrategyReturnToDock Strategy = "return_to_dock"
	StrategyZoneCluster  Strategy = "zone_cluster"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyNearest, StrategyReturnToDock, StrategyZoneCluster:
		return true
	}
	return false
}

type DistanceModel string

const (
	DistanceManhattan DistanceModel = "manhattan"
	DistanceEuclidean DistanceModel = "euclidean"
)

const (
	DefaultWalkingSpeedMps    = 1.2
	DefaultPickSecondsPerItem = 6
)

type OptimizeParams struct {
	Strategy           Strategy      `json:"strategy" yaml:"strategy" validate:"omitempty,oneof=nearest return_to_dock zone_cluster"`
	WalkingSpeedMps    float64       `json:"walkingSpeedMps,omitempty" yaml:"walkingSpeedMps" validate:"gte=0,lte=10"`
	PickSecondsPerItem int           `json:"pickSecondsPerItem,omitempty" yaml:"pickSecondsPerItem" validate:"gte=0,lte=3600"`
	DistanceModel      DistanceModel `json:"distanceModel,omitempty" yaml:"distanceModel" validate:"omitempty,oneof=manhattan euclidean"`
	TwoOpt             bool          `json:"twoOpt,omitempty" yaml:"twoOpt"`
}

// WithDefaults fills unset fields.
func (p OptimizeParams) WithDefaults() OptimizeParams {
	if p.Strategy == "" {
		p.Strategy = StrategyNearest
	}
	if p.WalkingSpeedMps <= 0 {
		p.WalkingSpeedMps = DefaultWalkingSpeedMps
	}
	if p.PickSecondsPerItem <= 0 {
		p.PickSecondsPerItem = DefaultPickSecondsPerItem
	}
	if p.DistanceModel == "" {
		p.DistanceModel = DistanceManhattan
	}
	return p
}

// Stop is a resolved order line in visiting order.
type Stop struct {
	LocationID string `json:"locationId"`
	At         Coord  `json:"at"`
	SKU        string `json:"sku,omitempty"`
}

type Metadata struct {
	StopsCount              int     `json:"stopsCount"`
	AvgDistanceBetweenStops int     `json:"avgDistanceBetweenStops"`
	RouteComplexity         float64 `json:"routeComplexity"`
}

// Warning describes a leg that could not be routed and collapsed to a point.
type Warning struct {
	Segment int    `json:"segment"`
	From    Coord  `json:"from"`
	To      Coord  `json:"to"`
	Message string `json:"message"`
}

type OptimizeResult struct {
	Path           []Coord     `json:"path"`
	Stops          []Stop      `json:"stops"`
	DistanceMeters float64     `json:"distanceMeters"`
	TimeSeconds    int         `json:"timeSeconds"`
	Efficiency     int         `json:"efficiency"`
	Missing        []OrderItem `json:"missing"`
	Metadata       Metadata    `json:"metadata"`
	Warnings       []Warning   `json:"warnings,omitempty"`
}

type ClusterMember struct {
	ID string `json:"id"`
	At Coord  `json:"at"`
}

type Cluster struct {
	Centroid Coord           `json:"centroid"`
	Members  []ClusterMember `json:"members"`
}

type Delta struct {
	DistanceDelta      float64 `json:"distanceDelta"`
	TimeDelta          float64 `json:"timeDelta"`
	PercentImprovement float64 `json:"percentImprovement"`
}

// Summary is the display form of a result under a chosen distance model.
type Summary struct {
	TotalDistance           float64 `json:"totalDistance"`
	AvgDistanceBetweenStops float64 `json:"avgDistanceBetweenStops"`
	EstimatedTime           string  `json:"estimatedTime"`
	PickCount               int     `json:"pickCount"`
}

// Heatmap counts how often each cell ("r,c") appears across one or more paths.
type Heatmap struct {
	Cells        map[string]int `json:"cells"`
	MaxFrequency int            `json:"maxFrequency"`
}

type Comparison struct {
	A        OptimizeResult `json:"a"`
	B        OptimizeResult `json:"b"`
	Delta    Delta          `json:"delta"`
	SummaryA Summary        `json:"summaryA"`
	SummaryB Summary        `json:"summaryB"`
}

type BatchResult struct {
	Results []OptimizeResult `json:"results"`
	Heatmap Heatmap          `json:"heatmap"`
}

// RunRecord is the persisted summary of one optimize call.
type RunRecord struct {
	ID               string    `json:"id" db:"id"`
	Warehouse        string    `json:"warehouse,omitempty" db:"warehouse"`
	Strategy         string    `json:"strategy" db:"strategy"`
	StopsCount       int       `json:"stopsCount" db:"stops_count"`
	MissingCount     int       `json:"missingCount" db:"missing_count"`
	DistanceMeters   float64   `json:"distanceMeters" db:"distance_meters"`
	TimeSeconds      int       `json:"timeSeconds" db:"time_seconds"`
	Efficiency       int       `json:"efficiency" db:"efficiency"`
	DegradedSegments int       `json:"degradedSegments" db:"degraded_segments"`
	DurationMs       int64     `json:"durationMs" db:"duration_ms"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
