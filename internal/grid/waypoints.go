package grid

import "context"

// Segment identifies a leg of a multi-waypoint path that could not be routed.
type Segment struct {
	Index int
	From  Coord
	To    Coord
}

type segmentKey struct{ from, to Coord }

type cachedPath struct {
	path []Coord
	ok   bool
}

// Builder stitches waypoints into one continuous path. It memoizes segments
// for its own lifetime, so create one per optimize call and do not share it
// between goroutines.
type Builder struct {
	finder *Pathfinder
	cache  map[segmentKey]cachedPath
	hits   int
	misses int
}

// NewBuilder returns a Builder backed by the given pathfinder.
func NewBuilder(p *Pathfinder) *Builder {
	return &Builder{finder: p, cache: map[segmentKey]cachedPath{}}
}

// Build returns the concatenated path through waypoints in order, along with
// the legs that degraded to a single point. Fewer than two waypoints are
// returned unchanged.
func (b *Builder) Build(waypoints []Coord) ([]Coord, []Segment) {
	path, failed, _ := b.BuildContext(context.Background(), waypoints)
	return path, failed
}

// BuildContext is Build with a cancellation check before every segment.
func (b *Builder) BuildContext(ctx context.Context, waypoints []Coord) ([]Coord, []Segment, error) {
	if len(waypoints) < 2 {
		return waypoints, nil, nil
	}
	var failed []Segment
	full := make([]Coord, 0, len(waypoints)*4)
	for i := 0; i < len(waypoints)-1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		seg, ok := b.segment(waypoints[i], waypoints[i+1])
		if !ok {
			failed = append(failed, Segment{Index: i, From: waypoints[i], To: waypoints[i+1]})
		}
		if i == 0 {
			full = append(full, seg...)
		} else {
			full = append(full, seg[1:]...)
		}
	}
	return full, failed, nil
}

func (b *Builder) segment(from, to Coord) ([]Coord, bool) {
	k := segmentKey{from, to}
	if c, ok := b.cache[k]; ok {
		b.hits++
		return c.path, c.ok
	}
	b.misses++
	path, ok := b.finder.Find(from, to)
	b.cache[k] = cachedPath{path: path, ok: ok}
	return path, ok
}

// CacheStats reports segment cache hits and misses.
func (b *Builder) CacheStats() (hits, misses int) { return b.hits, b.misses }

// BuildPath stitches waypoints with a fresh pathfinder and cache.
func BuildPath(l *Layout, waypoints []Coord) []Coord {
	path, _ := NewBuilder(&Pathfinder{Layout: l}).Build(waypoints)
	return path
}
