package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

func stop(id string, r, c int) model.Stop {
	return model.Stop{LocationID: id, At: grid.C(r, c)}
}

func ids(stops []model.Stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.LocationID
	}
	return out
}

func TestNearestNeighbor_Order(t *testing.T) {
	stops := []model.Stop{stop("far", 4, 4), stop("near", 0, 1), stop("mid", 2, 2)}
	got := NearestNeighbor(grid.C(0, 0), stops)
	assert.Equal(t, []string{"near", "mid", "far"}, ids(got))
	// input untouched
	assert.Equal(t, []string{"far", "near", "mid"}, ids(stops))
}

func TestNearestNeighbor_TiesGoToFirstInInput(t *testing.T) {
	stops := []model.Stop{stop("a", 1, 0), stop("b", 0, 1)}
	assert.Equal(t, []string{"a", "b"}, ids(NearestNeighbor(grid.C(0, 0), stops)))

	stops = []model.Stop{stop("b", 0, 1), stop("a", 1, 0)}
	assert.Equal(t, []string{"b", "a"}, ids(NearestNeighbor(grid.C(0, 0), stops)))
}

func TestNearestNeighbor_Empty(t *testing.T) {
	assert.Empty(t, NearestNeighbor(grid.C(0, 0), nil))
}

func TestImproveOrder2Opt_UncrossesRoute(t *testing.T) {
	start := grid.C(0, 0)
	stops := []model.Stop{stop("A", 0, 1), stop("B", 5, 5), stop("C", 0, 2), stop("D", 0, 6)}
	require.Equal(t, 22, routeDistance(start, stops))

	got := ImproveOrder2Opt(start, stops, MaxTwoOptPasses)
	assert.Equal(t, []string{"A", "C", "B", "D"}, ids(got))
	assert.Equal(t, 16, routeDistance(start, got))
	// input untouched
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(stops))
}

func TestImproveOrder2Opt_TooFewStops(t *testing.T) {
	stops := []model.Stop{stop("A", 3, 3), stop("B", 0, 1), stop("C", 3, 0)}
	assert.Equal(t, stops, ImproveOrder2Opt(grid.C(0, 0), stops, MaxTwoOptPasses))
}

func TestImproveOrder2Opt_NeverWorsensNearestNeighbor(t *testing.T) {
	cases := [][]model.Stop{
		{stop("a", 0, 9), stop("b", 9, 0), stop("c", 5, 5), stop("d", 1, 1), stop("e", 8, 8)},
		{stop("a", 2, 7), stop("b", 7, 2), stop("c", 3, 3), stop("d", 6, 6), stop("e", 0, 4), stop("f", 4, 0)},
		{stop("a", 1, 1), stop("b", 1, 2), stop("c", 2, 1), stop("d", 2, 2)},
		{stop("a", 9, 9), stop("b", 0, 9), stop("c", 9, 0), stop("d", 4, 5), stop("e", 5, 4), stop("f", 3, 8), stop("g", 8, 3)},
	}
	start := grid.C(0, 0)
	for _, tc := range cases {
		nn := NearestNeighbor(start, tc)
		improved := ImproveOrder2Opt(start, nn, MaxTwoOptPasses)
		assert.LessOrEqual(t, routeDistance(start, improved), routeDistance(start, nn))
		assert.ElementsMatch(t, ids(tc), ids(improved))
	}
}

func TestSequence_UnknownStrategy(t *testing.T) {
	_, err := Sequence(grid.C(0, 0), []model.Stop{stop("a", 1, 1)}, model.OptimizeParams{Strategy: "spiral"})
	assert.Error(t, err)
}

func TestSequence_ZoneClusterVisitsNearestZoneFirst(t *testing.T) {
	stops := []model.Stop{
		stop("F1", 9, 9), stop("F2", 9, 8), stop("N1", 0, 1),
		stop("N2", 1, 0), stop("F3", 8, 9), stop("N3", 1, 1),
	}
	got, err := Sequence(grid.C(0, 0), stops, model.OptimizeParams{Strategy: model.StrategyZoneCluster})
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "N3", "N2", "F2", "F1", "F3"}, ids(got))
}

func TestSequence_ZoneClusterIsPermutation(t *testing.T) {
	var stops []model.Stop
	for i := 0; i < 17; i++ {
		stops = append(stops, stop(string(rune('a'+i)), (i*7)%11, (i*5)%13))
	}
	got, err := Sequence(grid.C(0, 0), stops, model.OptimizeParams{Strategy: model.StrategyZoneCluster})
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(stops), ids(got))
}

func TestSequence_TwoOptOnlyForNearestFamily(t *testing.T) {
	start := grid.C(0, 0)
	stops := []model.Stop{stop("a", 0, 9), stop("b", 9, 0), stop("c", 5, 5), stop("d", 1, 1), stop("e", 8, 8)}

	plain, err := Sequence(start, stops, model.OptimizeParams{Strategy: model.StrategyNearest})
	require.NoError(t, err)
	refined, err := Sequence(start, stops, model.OptimizeParams{Strategy: model.StrategyNearest, TwoOpt: true})
	require.NoError(t, err)
	assert.LessOrEqual(t, routeDistance(start, refined), routeDistance(start, plain))

	zoned, err := Sequence(start, stops, model.OptimizeParams{Strategy: model.StrategyZoneCluster})
	require.NoError(t, err)
	zonedTwoOpt, err := Sequence(start, stops, model.OptimizeParams{Strategy: model.StrategyZoneCluster, TwoOpt: true})
	require.NoError(t, err)
	assert.Equal(t, ids(zoned), ids(zonedTwoOpt))
}
