package grid

import "container/heap"

// Pathfinder runs A* over a Layout with unit step cost and a Manhattan
// heuristic. Equal-f ties are broken by lower h, then lower row, then lower
// col, so results are reproducible.
type Pathfinder struct {
	Layout *Layout
	// MaxExpansions caps the number of expanded cells. Zero means one
	// expansion per grid cell, which A* with a consistent heuristic never
	// exceeds on a valid grid.
	MaxExpansions int
}

// FindPath is a convenience wrapper around Pathfinder.Find with the default cap.
func FindPath(l *Layout, start, goal Coord) ([]Coord, bool) {
	p := Pathfinder{Layout: l}
	return p.Find(start, goal)
}

// Find returns the shortest path from start to goal inclusive. When the goal
// cannot be reached, or the expansion cap is hit, it returns [start] and false.
func (p *Pathfinder) Find(start, goal Coord) ([]Coord, bool) {
	if start.Equal(goal) {
		return []Coord{start}, true
	}
	limit := p.MaxExpansions
	if limit <= 0 {
		limit = p.Layout.Cells() + 1
	}

	g := map[Coord]int{start: 0}
	cameFrom := map[Coord]Coord{}
	closed := map[Coord]struct{}{}
	open := &openSet{}
	h0 := Manhattan(start, goal)
	heap.Push(open, openNode{c: start, g: 0, h: h0, f: h0})

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(openNode)
		if _, done := closed[cur.c]; done {
			continue
		}
		if cur.g > g[cur.c] {
			continue
		}
		if cur.c.Equal(goal) {
			return reconstruct(cameFrom, start, goal), true
		}
		closed[cur.c] = struct{}{}
		expanded++
		if expanded > limit {
			break
		}
		for _, d := range directions {
			n := Coord{Row: cur.c.Row + d.Row, Col: cur.c.Col + d.Col}
			if !p.Layout.Walkable(n) {
				continue
			}
			if _, done := closed[n]; done {
				continue
			}
			tentative := cur.g + 1
			if old, seen := g[n]; seen && tentative >= old {
				continue
			}
			g[n] = tentative
			cameFrom[n] = cur.c
			h := Manhattan(n, goal)
			heap.Push(open, openNode{c: n, g: tentative, h: h, f: tentative + h})
		}
	}
	return []Coord{start}, false
}

func reconstruct(cameFrom map[Coord]Coord, start, goal Coord) []Coord {
	path := []Coord{goal}
	for cur := goal; !cur.Equal(start); {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type openNode struct {
	c       Coord
	g, h, f int
}

// openSet is a min-heap of frontier nodes. Stale entries are skipped on pop.
type openSet []openNode

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	if a.c.Row != b.c.Row {
		return a.c.Row < b.c.Row
	}
	return a.c.Col < b.c.Col
}

func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *openSet) Push(x any) { *s = append(*s, x.(openNode)) }

func (s *openSet) Pop() any {
	old := *s
	n := len(old)
	x := old[n-1]
	*s = old[:n-1]
	return x
}
