package grid

// Layout is the obstacle view of a warehouse used by the pathfinder.
// Build it once per optimize call; it is read-only afterwards.
type Layout struct {
	Rows    int
	Cols    int
	blocked map[Coord]struct{}
}

// NewLayout indexes the blocked cells for O(1) lookup.
func NewLayout(rows, cols int, blocked []Coord) *Layout {
	l := &Layout{Rows: rows, Cols: cols, blocked: make(map[Coord]struct{}, len(blocked))}
	for _, b := range blocked {
		l.blocked[b] = struct{}{}
	}
	return l
}

// InBounds reports whether c lies inside the grid.
func (l *Layout) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < l.Rows && c.Col < l.Cols
}

// Blocked reports whether c is impassable.
func (l *Layout) Blocked(c Coord) bool {
	_, ok := l.blocked[c]
	return ok
}

// Walkable reports whether c is in bounds and not blocked.
func (l *Layout) Walkable(c Coord) bool {
	return l.InBounds(c) && !l.Blocked(c)
}

// Cells is the total number of grid cells.
func (l *Layout) Cells() int { return l.Rows * l.Cols }

// directions in expansion order: down, up, right, left.
var directions = [4]Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Neighbors returns the walkable 4-neighbours of c.
func (l *Layout) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range directions {
		n := Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if l.Walkable(n) {
			out = append(out, n)
		}
	}
	return out
}
