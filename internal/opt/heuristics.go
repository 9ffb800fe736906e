package opt

import (
	"pickpath/internal/grid"
	"pickpath/internal/model"
)

// MaxTwoOptPasses bounds 2-opt so it always terminates.
const MaxTwoOptPasses = 5

// NearestNeighbor orders stops greedily by Manhattan distance from the
// current position. Ties go to the stop that appears first in the input.
func NearestNeighbor(start grid.Coord, stops []model.Stop) []model.Stop {
	remaining := append([]model.Stop(nil), stops...)
	ordered := make([]model.Stop, 0, len(stops))
	cur := start
	for len(remaining) > 0 {
		best := 0
		bestDist := grid.Manhattan(cur, remaining[0].At)
		for i := 1; i < len(remaining); i++ {
			if d := grid.Manhattan(cur, remaining[i].At); d < bestDist {
				best, bestDist = i, d
			}
		}
		next := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
		ordered = append(ordered, next)
		cur = next.At
	}
	return ordered
}

// ImproveOrder2Opt refines a stop sequence with 2-opt moves. The start is a
// fixed anchor ahead of the first stop and the last stop stays last. A
// reversal of stops[i..k] is taken only when it strictly shortens the two
// edges at its boundary, so total Manhattan length never grows. Fewer than
// four stops are returned unchanged.
func ImproveOrder2Opt(start grid.Coord, stops []model.Stop, passes int) []model.Stop {
	if len(stops) < 4 {
		return stops
	}
	if passes <= 0 || passes > MaxTwoOptPasses {
		passes = MaxTwoOptPasses
	}
	// route[0] is the anchor; stop j lives at route[j+1].
	route := make([]grid.Coord, 0, len(stops)+1)
	route = append(route, start)
	best := append([]model.Stop(nil), stops...)
	for _, s := range best {
		route = append(route, s.At)
	}
	n := len(route)
	for it := 0; it < passes; it++ {
		improved := false
		for i := 1; i < n-2; i++ {
			for k := i + 1; k < n-1; k++ {
				before := grid.Manhattan(route[i-1], route[i]) + grid.Manhattan(route[k], route[k+1])
				after := grid.Manhattan(route[i-1], route[k]) + grid.Manhattan(route[i], route[k+1])
				if after < before {
					twoOptSwap(route, best, i, k)
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

// twoOptSwap reverses route[i..k] in place along with the matching stops.
func twoOptSwap(route []grid.Coord, stops []model.Stop, i, k int) {
	for a, b := i, k; a < b; a, b = a+1, b-1 {
		route[a], route[b] = route[b], route[a]
		stops[a-1], stops[b-1] = stops[b-1], stops[a-1]
	}
}

// routeDistance is the Manhattan length of start followed by stops.
func routeDistance(start grid.Coord, stops []model.Stop) int {
	total := 0
	prev := start
	for _, s := range stops {
		total += grid.Manhattan(prev, s.At)
		prev = s.At
	}
	return total
}
