package opt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickpath/internal/apperr"
	"pickpath/internal/grid"
	"pickpath/internal/model"
)

func smallWarehouse() model.WarehouseLayout {
	return model.WarehouseLayout{
		Rows:  5,
		Cols:  5,
		Start: grid.C(0, 0),
		Locations: map[string]grid.Coord{
			"A-1": grid.C(2, 2),
			"A-2": grid.C(4, 4),
		},
	}
}

func TestOptimize_FiveByFiveScenario(t *testing.T) {
	order := []model.OrderItem{{SKU: "X", LocationID: "A-1"}, {SKU: "Y", LocationID: "A-2"}}
	params := model.OptimizeParams{Strategy: model.StrategyNearest, WalkingSpeedMps: 1, PickSecondsPerItem: 5}

	res, err := Optimize(smallWarehouse(), order, params)
	require.NoError(t, err)

	assert.Equal(t, []string{"A-1", "A-2"}, ids(res.Stops))
	assert.Equal(t, "X", res.Stops[0].SKU)
	assert.Equal(t, 8, grid.PathLength(res.Path))
	assert.Len(t, res.Path, 9)
	assert.Equal(t, 8.0, res.DistanceMeters)
	assert.Equal(t, 18, res.TimeSeconds)
	assert.Equal(t, 100, res.Efficiency)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, model.Metadata{StopsCount: 2, AvgDistanceBetweenStops: 4, RouteComplexity: 4.5}, res.Metadata)
}

func TestOptimize_EmptyOrder(t *testing.T) {
	res, err := Optimize(smallWarehouse(), nil, model.OptimizeParams{})
	require.NoError(t, err)
	assert.Equal(t, []grid.Coord{grid.C(0, 0)}, res.Path)
	assert.NotNil(t, res.Stops)
	assert.Empty(t, res.Stops)
	assert.NotNil(t, res.Missing)
	assert.Zero(t, res.DistanceMeters)
	assert.Zero(t, res.TimeSeconds)
	assert.Equal(t, 100, res.Efficiency)
	assert.Equal(t, model.Metadata{}, res.Metadata)
}

func TestOptimize_AllUnresolved(t *testing.T) {
	order := []model.OrderItem{{SKU: "X", LocationID: "Z-9", Qty: 3}, {SKU: "Y", LocationID: "Z-8"}}
	res, err := Optimize(smallWarehouse(), order, model.OptimizeParams{})
	require.NoError(t, err)
	assert.Equal(t, order, res.Missing)
	assert.Empty(t, res.Stops)
	assert.Equal(t, []grid.Coord{grid.C(0, 0)}, res.Path)
	assert.Equal(t, 100, res.Efficiency)
}

func TestOptimize_NeverDropsItems(t *testing.T) {
	order := []model.OrderItem{
		{SKU: "1", LocationID: "A-2"},
		{SKU: "2", LocationID: "nope"},
		{SKU: "3", LocationID: "A-1"},
		{SKU: "4", LocationID: "A-1"},
		{SKU: "5", LocationID: ""},
	}
	for _, s := range []model.Strategy{model.StrategyNearest, model.StrategyReturnToDock, model.StrategyZoneCluster} {
		res, err := Optimize(smallWarehouse(), order, model.OptimizeParams{Strategy: s})
		require.NoError(t, err)
		assert.Equal(t, len(order), len(res.Stops)+len(res.Missing), "strategy %s", s)
		assert.GreaterOrEqual(t, res.Efficiency, 0)
		assert.LessOrEqual(t, res.Efficiency, 100)
	}
}

func TestOptimize_QtyDoesNotAffectTime(t *testing.T) {
	one := []model.OrderItem{{SKU: "X", LocationID: "A-1", Qty: 1}}
	many := []model.OrderItem{{SKU: "X", LocationID: "A-1", Qty: 40}}
	a, err := Optimize(smallWarehouse(), one, model.OptimizeParams{})
	require.NoError(t, err)
	b, err := Optimize(smallWarehouse(), many, model.OptimizeParams{})
	require.NoError(t, err)
	assert.Equal(t, a.TimeSeconds, b.TimeSeconds)
}

func TestOptimize_ReturnToDock(t *testing.T) {
	order := []model.OrderItem{{SKU: "X", LocationID: "A-1"}}
	res, err := Optimize(smallWarehouse(), order, model.OptimizeParams{Strategy: model.StrategyReturnToDock})
	require.NoError(t, err)

	assert.Equal(t, grid.C(0, 0), res.Path[0])
	assert.Equal(t, grid.C(0, 0), res.Path[len(res.Path)-1])
	assert.Equal(t, 8.0, res.DistanceMeters)
	assert.Equal(t, 13, res.TimeSeconds)
	assert.Equal(t, 50, res.Efficiency)
}

func TestOptimize_CellSize(t *testing.T) {
	w := smallWarehouse()
	w.CellSizeMeters = 2.5
	order := []model.OrderItem{{SKU: "X", LocationID: "A-1"}}
	res, err := Optimize(w, order, model.OptimizeParams{WalkingSpeedMps: 1, PickSecondsPerItem: 1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.DistanceMeters)
	assert.Equal(t, 11, res.TimeSeconds)
	assert.Equal(t, 10, res.Metadata.AvgDistanceBetweenStops)
}

func TestOptimize_UnreachableLegDegrades(t *testing.T) {
	w := smallWarehouse()
	w.Blocked = []grid.Coord{grid.C(3, 4), grid.C(4, 3)}
	w.Locations = map[string]grid.Coord{"X": grid.C(4, 4), "Y": grid.C(0, 2)}
	order := []model.OrderItem{{SKU: "s1", LocationID: "X"}, {SKU: "s2", LocationID: "Y"}}

	res, err := Optimize(w, order, model.OptimizeParams{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Y", "X"}, ids(res.Stops))
	assert.Equal(t, []grid.Coord{grid.C(0, 0), grid.C(0, 1), grid.C(0, 2)}, res.Path)
	assert.Equal(t, 2.0, res.DistanceMeters)
	assert.Equal(t, 100, res.Efficiency)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Warnings[0].Segment)
	assert.Equal(t, grid.C(0, 2), res.Warnings[0].From)
	assert.Equal(t, grid.C(4, 4), res.Warnings[0].To)
}

func TestOptimize_PathAvoidsBlockedCells(t *testing.T) {
	w := model.WarehouseLayout{
		Rows:    6,
		Cols:    6,
		Start:   grid.C(0, 0),
		Blocked: []grid.Coord{grid.C(1, 0), grid.C(1, 1), grid.C(1, 2), grid.C(1, 3), grid.C(1, 4)},
		Locations: map[string]grid.Coord{
			"L1": grid.C(2, 0),
			"L2": grid.C(5, 5),
			"L3": grid.C(3, 2),
		},
	}
	order := []model.OrderItem{{LocationID: "L1"}, {LocationID: "L2"}, {LocationID: "L3"}}
	res, err := Optimize(w, order, model.OptimizeParams{Strategy: model.StrategyReturnToDock})
	require.NoError(t, err)

	l := w.Grid()
	for i, c := range res.Path {
		assert.True(t, l.Walkable(c), "cell %v", c)
		if i > 0 {
			assert.Equal(t, 1, grid.Manhattan(res.Path[i-1], c))
		}
	}
	assert.Empty(t, res.Warnings)
	assert.LessOrEqual(t, res.Efficiency, 100)
}

func TestOptimize_Deterministic(t *testing.T) {
	order := []model.OrderItem{{LocationID: "A-2"}, {LocationID: "A-1"}}
	for _, s := range []model.Strategy{model.StrategyNearest, model.StrategyReturnToDock, model.StrategyZoneCluster} {
		first, err := Optimize(smallWarehouse(), order, model.OptimizeParams{Strategy: s, TwoOpt: true})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := Optimize(smallWarehouse(), order, model.OptimizeParams{Strategy: s, TwoOpt: true})
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestOptimize_UnknownStrategy(t *testing.T) {
	_, err := Optimize(smallWarehouse(), []model.OrderItem{{LocationID: "A-1"}}, model.OptimizeParams{Strategy: "spiral"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestOptimize_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var e Engine
	_, err := e.Optimize(ctx, smallWarehouse(), []model.OrderItem{{LocationID: "A-1"}}, model.OptimizeParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

type recorderFunc func(RunStats)

func (f recorderFunc) ObserveRun(s RunStats) { f(s) }

func TestEngine_RecordsStats(t *testing.T) {
	var got RunStats
	e := NewEngine(nil, 0, recorderFunc(func(s RunStats) { got = s }))
	order := []model.OrderItem{{LocationID: "A-1"}, {LocationID: "missing"}}
	_, err := e.Optimize(context.Background(), smallWarehouse(), order, model.OptimizeParams{Strategy: model.StrategyReturnToDock})
	require.NoError(t, err)

	assert.Equal(t, model.StrategyReturnToDock, got.Strategy)
	assert.Equal(t, 1, got.Stops)
	assert.Equal(t, 1, got.Missing)
	assert.Equal(t, 2, got.CacheMisses)
	assert.Zero(t, got.DegradedSegments)

	got = RunStats{}
	order = []model.OrderItem{{LocationID: "missing"}, {LocationID: "gone"}}
	res, err := e.Optimize(context.Background(), smallWarehouse(), order, model.OptimizeParams{})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Efficiency)
	assert.Equal(t, model.StrategyNearest, got.Strategy)
	assert.Zero(t, got.Stops)
	assert.Equal(t, 2, got.Missing)
	assert.Zero(t, got.CacheMisses)
}

func TestResolve_PreservesOrder(t *testing.T) {
	order := []model.OrderItem{{SKU: "a", LocationID: "A-2"}, {SKU: "b", LocationID: "?"}, {SKU: "c", LocationID: "A-1"}}
	stops, missing := Resolve(smallWarehouse(), order)
	assert.Equal(t, []string{"A-2", "A-1"}, ids(stops))
	assert.Equal(t, []model.OrderItem{order[1]}, missing)
}
