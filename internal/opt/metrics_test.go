package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

func line(n int) []grid.Coord {
	p := make([]grid.Coord, n+1)
	for i := range p {
		p[i] = grid.C(0, i)
	}
	return p
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 8.0, Distance(line(8), 1))
	assert.Equal(t, 12.0, Distance(line(8), 1.5))
	assert.Equal(t, 0.0, Distance(line(0), 2))
}

func TestTime(t *testing.T) {
	assert.Equal(t, 18, Time(8, 2, model.OptimizeParams{WalkingSpeedMps: 1, PickSecondsPerItem: 5}))
	// defaults: 12/1.2 + 2*6
	assert.Equal(t, 22, Time(12, 2, model.OptimizeParams{}))
	// 8/1.2 = 6.67 rounds up
	assert.Equal(t, 13, Time(8, 1, model.OptimizeParams{}))
}

func TestEfficiency(t *testing.T) {
	start := grid.C(0, 0)
	assert.Equal(t, 100, Efficiency(line(4), start, nil))
	assert.Equal(t, 100, Efficiency(line(4), start, []grid.Coord{grid.C(0, 4)}))
	// stop on the start cell: theoretical is zero
	assert.Equal(t, 100, Efficiency([]grid.Coord{start}, start, []grid.Coord{start}))
	// detour doubles the walk
	assert.Equal(t, 50, Efficiency(line(8), start, []grid.Coord{grid.C(0, 4)}))
	// collapsed legs make the ratio exceed 1; capped
	assert.Equal(t, 100, Efficiency(line(1), start, []grid.Coord{grid.C(0, 6)}))
}

func TestComputeDelta(t *testing.T) {
	a := model.OptimizeResult{DistanceMeters: 100, TimeSeconds: 120}
	b := model.OptimizeResult{DistanceMeters: 80, TimeSeconds: 100}

	assert.Equal(t, model.Delta{}, ComputeDelta(a, a))
	assert.Equal(t, model.Delta{DistanceDelta: -20, TimeDelta: -20, PercentImprovement: 20}, ComputeDelta(a, b))
	assert.Equal(t, model.Delta{DistanceDelta: 80, TimeDelta: 100}, ComputeDelta(model.OptimizeResult{}, b))

	c := model.OptimizeResult{DistanceMeters: 30, TimeSeconds: 40}
	d := model.OptimizeResult{DistanceMeters: 20, TimeSeconds: 40}
	assert.Equal(t, 33.3, ComputeDelta(c, d).PercentImprovement)
}

func TestSummarize(t *testing.T) {
	r := model.OptimizeResult{
		Path:        line(10),
		Stops:       []model.Stop{stop("a", 0, 3), stop("b", 0, 10), stop("c", 0, 10)},
		TimeSeconds: 125,
	}
	s := Summarize(r, model.DistanceManhattan)
	assert.Equal(t, 10.0, s.TotalDistance)
	assert.Equal(t, 3.3, s.AvgDistanceBetweenStops)
	assert.Equal(t, "2m 5s", s.EstimatedTime)
	assert.Equal(t, 3, s.PickCount)

	assert.Equal(t, 10.0, Summarize(r, model.DistanceEuclidean).TotalDistance)
	assert.Equal(t, 0.0, Summarize(model.OptimizeResult{}, model.DistanceManhattan).AvgDistanceBetweenStops)
}

func TestBuildHeatmap(t *testing.T) {
	h := BuildHeatmap(line(2), line(1), nil)
	assert.Equal(t, map[string]int{"0,0": 2, "0,1": 2, "0,2": 1}, h.Cells)
	assert.Equal(t, 2, h.MaxFrequency)

	empty := BuildHeatmap()
	assert.Empty(t, empty.Cells)
	assert.Zero(t, empty.MaxFrequency)
}
