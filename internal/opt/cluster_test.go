package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

func member(id string, r, c int) model.ClusterMember {
	return model.ClusterMember{ID: id, At: grid.C(r, c)}
}

func TestClusterCount(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 8: 2, 9: 3, 18: 3, 19: 4}
	for n, want := range cases {
		assert.Equal(t, want, ClusterCount(n), "n=%d", n)
	}
}

func TestKMeans_Degenerate(t *testing.T) {
	assert.Nil(t, KMeans(nil, 3))
	assert.Nil(t, KMeans([]model.ClusterMember{member("a", 0, 0)}, 0))
}

func TestKMeans_SingletonsWhenFewPoints(t *testing.T) {
	pts := []model.ClusterMember{member("a", 1, 2), member("b", 3, 4)}
	got := KMeans(pts, 3)
	require.Len(t, got, 2)
	for i, c := range got {
		assert.Equal(t, pts[i].At, c.Centroid)
		assert.Equal(t, []model.ClusterMember{pts[i]}, c.Members)
	}
}

func TestKMeans_Converges(t *testing.T) {
	pts := []model.ClusterMember{
		member("p0", 0, 0), member("p1", 0, 1), member("p2", 9, 9),
		member("p3", 9, 8), member("p4", 1, 0), member("p5", 8, 9),
	}
	got := KMeans(pts, 2)
	require.Len(t, got, 2)

	assert.Equal(t, grid.C(0, 0), got[0].Centroid)
	assert.Equal(t, []model.ClusterMember{pts[0], pts[1], pts[4]}, got[0].Members)
	assert.Equal(t, grid.C(9, 9), got[1].Centroid)
	assert.Equal(t, []model.ClusterMember{pts[2], pts[3], pts[5]}, got[1].Members)
}

func TestKMeans_Partition(t *testing.T) {
	var pts []model.ClusterMember
	for i := 0; i < 25; i++ {
		pts = append(pts, member(string(rune('A'+i)), (i*3)%10, (i*7)%10))
	}
	clusters := KMeans(pts, 4)
	require.Len(t, clusters, 4)

	seen := map[string]int{}
	total := 0
	for _, c := range clusters {
		total += len(c.Members)
		for _, m := range c.Members {
			seen[m.ID]++
		}
	}
	assert.Equal(t, len(pts), total)
	for _, p := range pts {
		assert.Equal(t, 1, seen[p.ID], "point %s", p.ID)
	}
}

func TestKMeans_EmptyClusterKeepsCentroid(t *testing.T) {
	// All points coincide, so clusters 1 and 2 lose their members after the
	// first assignment and keep their seed centroids.
	pts := []model.ClusterMember{member("a", 2, 2), member("b", 2, 2), member("c", 2, 2), member("d", 2, 2)}
	got := KMeans(pts, 3)
	require.Len(t, got, 3)
	assert.Len(t, got[0].Members, 4)
	assert.Empty(t, got[1].Members)
	assert.Equal(t, grid.C(2, 2), got[1].Centroid)
}
