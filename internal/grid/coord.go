// Package grid holds the warehouse grid primitives: coordinates, layouts,
// A* pathfinding and waypoint stitching.
package grid

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coord is a (row, col) grid address. On the wire it is the array [row, col].
type Coord struct {
	Row int
	Col int
}

// C is shorthand for Coord{Row: r, Col: c}.
func C(r, c int) Coord { return Coord{Row: r, Col: c} }

// Equal reports whether a and b address the same cell.
func (a Coord) Equal(b Coord) bool { return a.Row == b.Row && a.Col == b.Col }

// Key returns the "r,c" string form used for map keys in JSON output.
func (a Coord) Key() string { return fmt.Sprintf("%d,%d", a.Row, a.Col) }

func (a Coord) String() string { return "[" + a.Key() + "]" }

// MarshalJSON encodes the coordinate as [row, col].
func (a Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{a.Row, a.Col})
}

// UnmarshalJSON decodes a [row, col] array.
func (a *Coord) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("coord must be [row, col]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coord must have exactly 2 elements, got %d", len(pair))
	}
	a.Row, a.Col = pair[0], pair[1]
	return nil
}

// MarshalYAML encodes the coordinate as a two-element sequence.
func (a Coord) MarshalYAML() (any, error) {
	return []int{a.Row, a.Col}, nil
}

// UnmarshalYAML decodes a [row, col] sequence.
func (a *Coord) UnmarshalYAML(unmarshal func(any) error) error {
	var pair []int
	if err := unmarshal(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coord must have exactly 2 elements, got %d", len(pair))
	}
	a.Row, a.Col = pair[0], pair[1]
	return nil
}

// Manhattan is the L1 distance between two cells.
func Manhattan(a, b Coord) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// Euclidean is the L2 distance between two cells. Display only.
func Euclidean(a, b Coord) float64 {
	dr := float64(a.Row - b.Row)
	dc := float64(a.Col - b.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// PathLength counts grid steps along a path.
func PathLength(path []Coord) int {
	n := 0
	for i := 1; i < len(path); i++ {
		n += Manhattan(path[i-1], path[i])
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
