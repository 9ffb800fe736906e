package integrations

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"

	"pickpath/internal/integrations/csvorders"
	"pickpath/internal/model"
)

// OrderSource turns an external order feed into order lines.
type OrderSource interface {
	Name() string
	ParseOrder(r io.Reader) ([]model.OrderItem, error)
}

// JSONAdapter reads an order as a JSON array of order items.
type JSONAdapter struct{}

func (JSONAdapter) Name() string { return "json" }

func (JSONAdapter) ParseOrder(r io.Reader) ([]model.OrderItem, error) {
	var items []model.OrderItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if items == nil {
		items = []model.OrderItem{}
	}
	return items, nil
}

// ForContentType picks the source for a request body. CSV and plain text go
// to the CSV adapter; anything JSON goes to JSONAdapter.
func ForContentType(contentType string) (OrderSource, error) {
	mt := "text/csv"
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("content type %q: %w", contentType, err)
		}
		mt = parsed
	}
	switch {
	case mt == "text/csv", mt == "text/plain", mt == "application/csv":
		return csvorders.Adapter{}, nil
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return JSONAdapter{}, nil
	}
	return nil, fmt.Errorf("unsupported content type %q", mt)
}
