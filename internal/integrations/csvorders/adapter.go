package csvorders

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pickpath/internal/model"
)

// Adapter parses orders exported as CSV: sku,locationId[,qty[,productName]].
// A first row naming the columns is treated as a header. Blank rows
// and rows with fewer than two fields are skipped; an empty qty means 1.
type Adapter struct{}

func (Adapter) Name() string { return "csv" }

func (Adapter) ParseOrder(r io.Reader) ([]model.OrderItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	items := []model.OrderItem{}
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if len(rec) < 2 || (rec[0] == "" && rec[1] == "") {
			continue
		}
		it := model.OrderItem{SKU: rec[0], LocationID: rec[1], Qty: 1}
		if len(rec) > 2 && rec[2] != "" {
			q, err := strconv.Atoi(rec[2])
			if err != nil || q <= 0 {
				return nil, fmt.Errorf("line %d: invalid quantity %q", line, rec[2])
			}
			it.Qty = q
		}
		if len(rec) > 3 {
			it.ProductName = rec[3]
		}
		items = append(items, it)
	}
	return items, nil
}

// isHeader matches "sku,location..." style rows without mistaking a data row
// such as "SKU-001,A-101" for one.
func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	second := strings.ToLower(strings.TrimSpace(rec[1]))
	return first == "sku" || first == "item" || strings.HasPrefix(second, "location")
}
