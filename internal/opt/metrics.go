package opt

import (
	"fmt"
	"math"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

// Distance converts the step count of path into metres.
func Distance(path []grid.Coord, cellSize float64) float64 {
	return float64(grid.PathLength(path)) * cellSize
}

// Time is walking time plus per-stop picking time, rounded to whole seconds.
func Time(distanceMeters float64, stops int, params model.OptimizeParams) int {
	params = params.WithDefaults()
	walk := distanceMeters / params.WalkingSpeedMps
	pick := float64(stops * params.PickSecondsPerItem)
	return int(math.Round(walk + pick))
}

// Efficiency compares the obstacle-free Manhattan tour start→stops against
// the steps actually walked, as a 0-100 score. Any dock return counts toward
// the walked steps but not toward the baseline.
func Efficiency(path []grid.Coord, start grid.Coord, stops []grid.Coord) int {
	if len(stops) == 0 {
		return 100
	}
	theoretical := 0
	prev := start
	for _, s := range stops {
		theoretical += grid.Manhattan(prev, s)
		prev = s
	}
	actual := grid.PathLength(path)
	if theoretical == 0 || actual == 0 {
		return 100
	}
	e := int(math.Round(float64(theoretical) / float64(actual) * 100))
	if e > 100 {
		return 100
	}
	return e
}

// ComputeDelta reports how scenario b differs from scenario a.
func ComputeDelta(a, b model.OptimizeResult) model.Delta {
	pct := 0.0
	if a.DistanceMeters > 0 {
		pct = (a.DistanceMeters - b.DistanceMeters) / a.DistanceMeters * 100
	}
	return model.Delta{
		DistanceDelta:      round1(b.DistanceMeters - a.DistanceMeters),
		TimeDelta:          round1(float64(b.TimeSeconds - a.TimeSeconds)),
		PercentImprovement: round1(pct),
	}
}

// Summarize renders display metrics for r under the given distance model.
// The euclidean model only changes how path steps are measured here; the
// route itself is always walked on the grid.
func Summarize(r model.OptimizeResult, dm model.DistanceModel) model.Summary {
	total := 0.0
	for i := 1; i < len(r.Path); i++ {
		if dm == model.DistanceEuclidean {
			total += grid.Euclidean(r.Path[i-1], r.Path[i])
		} else {
			total += float64(grid.Manhattan(r.Path[i-1], r.Path[i]))
		}
	}
	avg := 0.0
	if len(r.Stops) > 0 {
		avg = total / float64(len(r.Stops))
	}
	return model.Summary{
		TotalDistance:           round1(total),
		AvgDistanceBetweenStops: round1(avg),
		EstimatedTime:           fmt.Sprintf("%dm %ds", r.TimeSeconds/60, r.TimeSeconds%60),
		PickCount:               len(r.Stops),
	}
}

func buildMetadata(path []grid.Coord, start grid.Coord, stops []model.Stop, cellSize float64) model.Metadata {
	n := len(stops)
	if n == 0 {
		return model.Metadata{}
	}
	legs := routeDistance(start, stops)
	return model.Metadata{
		StopsCount:              n,
		AvgDistanceBetweenStops: int(math.Round(float64(legs) / float64(n) * cellSize)),
		RouteComplexity:         round1(float64(len(path)) / float64(n)),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
