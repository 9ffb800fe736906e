package opt

import (
	"pickpath/internal/grid"
	"pickpath/internal/model"
)

// BuildHeatmap counts cell visits across paths.
func BuildHeatmap(paths ...[]grid.Coord) model.Heatmap {
	h := model.Heatmap{Cells: map[string]int{}}
	for _, p := range paths {
		for _, c := range p {
			k := c.Key()
			h.Cells[k]++
			if h.Cells[k] > h.MaxFrequency {
				h.MaxFrequency = h.Cells[k]
			}
		}
	}
	return h
}
