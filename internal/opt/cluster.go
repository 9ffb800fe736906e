package opt

import (
	"math"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

// MaxKMeansIterations caps k-means; it is a zoning aid, not a solver.
const MaxKMeansIterations = 10

// ClusterCount is the zone count used by the zone_cluster strategy.
func ClusterCount(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n) / 2)))
}

// KMeans partitions points into k spatial clusters. Seeds are the first k
// points, assignment uses Manhattan distance with ties going to the lower
// centroid index, and centroids are member means rounded half away from zero.
// An empty cluster keeps its previous centroid. When len(points) <= k every
// point becomes its own cluster.
func KMeans(points []model.ClusterMember, k int) []model.Cluster {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	if len(points) <= k {
		out := make([]model.Cluster, len(points))
		for i, p := range points {
			out[i] = model.Cluster{Centroid: p.At, Members: []model.ClusterMember{p}}
		}
		return out
	}

	coords := make([]grid.Coord, len(points))
	for i, p := range points {
		coords[i] = p.At
	}
	cents, assigns := kmeansAssign(coords, k)

	out := make([]model.Cluster, k)
	for j := range cents {
		out[j].Centroid = cents[j]
		out[j].Members = []model.ClusterMember{}
	}
	for i, p := range points {
		out[assigns[i]].Members = append(out[assigns[i]].Members, p)
	}
	return out
}

// kmeansAssign runs the iteration for len(coords) > k and returns the final
// centroids and the cluster index of every coordinate.
func kmeansAssign(coords []grid.Coord, k int) ([]grid.Coord, []int) {
	cents := append([]grid.Coord(nil), coords[:k]...)
	assigns := make([]int, len(coords))
	for it := 0; it < MaxKMeansIterations; it++ {
		changed := false
		for i, c := range coords {
			best := nearestCentroid(c, cents)
			if best != assigns[i] {
				assigns[i] = best
				changed = true
			}
		}
		for j := range cents {
			if c, ok := meanOf(coords, assigns, j); ok {
				cents[j] = c
			}
		}
		if !changed {
			break
		}
	}
	return cents, assigns
}

func nearestCentroid(c grid.Coord, cents []grid.Coord) int {
	best, bestDist := 0, grid.Manhattan(c, cents[0])
	for j := 1; j < len(cents); j++ {
		if d := grid.Manhattan(c, cents[j]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

func meanOf(coords []grid.Coord, assigns []int, j int) (grid.Coord, bool) {
	var sr, sc, n int
	for i, c := range coords {
		if assigns[i] == j {
			sr += c.Row
			sc += c.Col
			n++
		}
	}
	if n == 0 {
		return grid.Coord{}, false
	}
	return grid.C(
		int(math.Round(float64(sr)/float64(n))),
		int(math.Round(float64(sc)/float64(n))),
	), true
}
