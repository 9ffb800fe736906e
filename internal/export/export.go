// Package export renders optimize results as pick lists for the floor.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatPath Format = "path"
	FormatJSON Format = "json"
)

// ParseFormat maps a query or flag value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatPath, FormatJSON:
		return f, nil
	case "text", "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV, FormatPath:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Filename is the download name for f, stamped with date (YYYY-MM-DD).
func (f Format) Filename(date string) string {
	switch f {
	case FormatCSV:
		return "pick-list-" + date + ".csv"
	case FormatPath:
		return "route-path-" + date + ".csv"
	case FormatJSON:
		return "pick-list-" + date + ".json"
	}
	return "pick-list-" + date + ".txt"
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r model.OptimizeResult) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatPath:
		return WritePathCSV(w, r.Path)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return WriteText(w, r)
	}
}

var rule = strings.Repeat("=", 50)

func banner(bw *bufio.Writer, title string) {
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, title)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)
}

// WriteText renders the plain-text pick list.
func WriteText(w io.Writer, r model.OptimizeResult) error {
	bw := bufio.NewWriter(w)
	banner(bw, "WAREHOUSE PICK LIST")

	if len(r.Stops) == 0 {
		fmt.Fprint(bw, "No items to pick.")
		return bw.Flush()
	}

	fmt.Fprintf(bw, "Total Stops: %d\n", len(r.Stops))
	fmt.Fprintf(bw, "Distance: %s meters\n", formatFloat(r.DistanceMeters))
	fmt.Fprintf(bw, "Estimated Time: %s\n", FormatTime(r.TimeSeconds))
	fmt.Fprintf(bw, "Efficiency: %d%%\n", r.Efficiency)
	fmt.Fprintln(bw)
	banner(bw, "PICK SEQUENCE")

	for i, s := range r.Stops {
		fmt.Fprintf(bw, "Step %d:\n", i+1)
		fmt.Fprintf(bw, "  Location: %s\n", s.LocationID)
		fmt.Fprintf(bw, "  Grid Position: Row %d, Column %d\n", s.At.Row, s.At.Col)
		if s.SKU != "" {
			fmt.Fprintf(bw, "  SKU: %s\n", s.SKU)
		}
		fmt.Fprintln(bw)
	}

	if len(r.Missing) > 0 {
		banner(bw, "UNRESOLVED ITEMS")
		for _, it := range r.Missing {
			fmt.Fprintf(bw, "  SKU: %s\n", it.SKU)
			fmt.Fprintf(bw, "  Location: %s (NOT FOUND)\n", it.LocationID)
			if it.Qty > 0 {
				fmt.Fprintf(bw, "  Quantity: %d\n", it.Qty)
			}
			fmt.Fprintln(bw)
		}
	}

	if len(r.Warnings) > 0 {
		banner(bw, "ROUTING WARNINGS")
		for _, wn := range r.Warnings {
			fmt.Fprintf(bw, "  %s\n", wn.Message)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "END OF PICK LIST")
	fmt.Fprint(bw, rule)
	return bw.Flush()
}

// WriteCSV renders one row per stop with the Manhattan distance from the
// previous stop (zero for the first).
func WriteCSV(w io.Writer, r model.OptimizeResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Step", "Location ID", "Row", "Column", "SKU", "Distance from Previous (cells)"}); err != nil {
		return err
	}
	for i, s := range r.Stops {
		dist := 0
		if i > 0 {
			dist = grid.Manhattan(r.Stops[i-1].At, s.At)
		}
		row := []string{
			strconv.Itoa(i + 1),
			s.LocationID,
			strconv.Itoa(s.At.Row),
			strconv.Itoa(s.At.Col),
			s.SKU,
			strconv.Itoa(dist),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePathCSV renders every path cell as Step,Row,Column.
func WritePathCSV(w io.Writer, path []grid.Coord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Step", "Row", "Column"}); err != nil {
		return err
	}
	for i, c := range path {
		if err := cw.Write([]string{strconv.Itoa(i + 1), strconv.Itoa(c.Row), strconv.Itoa(c.Col)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatTime renders seconds as "45 seconds", "2 min 5 sec" or "1 hr 3 min".
func FormatTime(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%d seconds", seconds)
	}
	minutes, rem := seconds/60, seconds%60
	if minutes < 60 {
		if rem > 0 {
			return fmt.Sprintf("%d min %d sec", minutes, rem)
		}
		return fmt.Sprintf("%d min", minutes)
	}
	hours, remMin := minutes/60, minutes%60
	if remMin > 0 {
		return fmt.Sprintf("%d hr %d min", hours, remMin)
	}
	return fmt.Sprintf("%d hr", hours)
}

// Summary is the headline block shown above an export.
type Summary struct {
	TotalStops      int    `json:"totalStops"`
	TotalDistance   string `json:"totalDistance"`
	EstimatedTime   string `json:"estimatedTime"`
	Efficiency      string `json:"efficiency"`
	UnresolvedCount int    `json:"unresolvedCount"`
}

func Summarize(r model.OptimizeResult) Summary {
	return Summary{
		TotalStops:      len(r.Stops),
		TotalDistance:   formatFloat(r.DistanceMeters) + "m",
		EstimatedTime:   FormatTime(r.TimeSeconds),
		Efficiency:      strconv.Itoa(r.Efficiency) + "%",
		UnresolvedCount: len(r.Missing),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
