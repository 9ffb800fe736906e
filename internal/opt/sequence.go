package opt

import (
	"fmt"

	"pickpath/internal/apperr"
	"pickpath/internal/grid"
	"pickpath/internal/model"
)

// Sequence orders the resolved stops according to params.Strategy.
//
// nearest and return_to_dock share the nearest-neighbour order; the dock
// return is added as a waypoint by the caller. zone_cluster groups stops with
// k-means (k = ceil(sqrt(n/2))), visits the cluster whose centroid is closest
// to the current position next, and walks each cluster nearest-neighbour.
// TwoOpt refines nearest and return_to_dock only, so zones stay contiguous.
func Sequence(start grid.Coord, stops []model.Stop, params model.OptimizeParams) ([]model.Stop, error) {
	switch params.Strategy {
	case model.StrategyNearest, model.StrategyReturnToDock, "":
		ordered := NearestNeighbor(start, stops)
		if params.TwoOpt {
			ordered = ImproveOrder2Opt(start, ordered, MaxTwoOptPasses)
		}
		return ordered, nil
	case model.StrategyZoneCluster:
		return zoneOrder(start, stops), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", params.Strategy, apperr.ErrValidation)
	}
}

func zoneOrder(start grid.Coord, stops []model.Stop) []model.Stop {
	k := ClusterCount(len(stops))
	if len(stops) <= k {
		return NearestNeighbor(start, stops)
	}
	coords := make([]grid.Coord, len(stops))
	for i, s := range stops {
		coords[i] = s.At
	}
	cents, assigns := kmeansAssign(coords, k)

	zones := make([][]model.Stop, k)
	for i, s := range stops {
		zones[assigns[i]] = append(zones[assigns[i]], s)
	}
	visited := make([]bool, k)
	ordered := make([]model.Stop, 0, len(stops))
	cur := start
	for {
		next := -1
		for j := range zones {
			if visited[j] || len(zones[j]) == 0 {
				continue
			}
			if next < 0 || grid.Manhattan(cur, cents[j]) < grid.Manhattan(cur, cents[next]) {
				next = j
			}
		}
		if next < 0 {
			break
		}
		visited[next] = true
		walk := NearestNeighbor(cur, zones[next])
		ordered = append(ordered, walk...)
		cur = walk[len(walk)-1].At
	}
	return ordered
}
