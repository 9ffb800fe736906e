package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"pickpath/internal/apperr"
	"pickpath/internal/grid"
	"pickpath/internal/model"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// optimizeEnvelope defers decoding of each field so that a missing field,
// a malformed warehouse and a non-array order get distinct messages.
type optimizeEnvelope struct {
	Warehouse json.RawMessage `json:"warehouse"`
	Order     json.RawMessage `json:"order"`
	Params    json.RawMessage `json:"params"`
}

// warehouseWire uses pointers so absent and zero values can be told apart.
type warehouseWire struct {
	Name           string                `json:"name"`
	Rows           *int                  `json:"rows" validate:"required,gt=0"`
	Cols           *int                  `json:"cols" validate:"required,gt=0"`
	Start          *grid.Coord           `json:"start" validate:"required"`
	Blocked        []grid.Coord          `json:"blocked"`
	Locations      map[string]grid.Coord `json:"locations" validate:"required"`
	CellSizeMeters float64               `json:"cellSizeMeters" validate:"gte=0"`
}

func (w warehouseWire) layout() model.WarehouseLayout {
	return model.WarehouseLayout{
		Name:           w.Name,
		Rows:           *w.Rows,
		Cols:           *w.Cols,
		Start:          *w.Start,
		Blocked:        w.Blocked,
		Locations:      w.Locations,
		CellSizeMeters: w.CellSizeMeters,
	}
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (s *Server) decodeWarehouse(raw json.RawMessage) (model.WarehouseLayout, error) {
	var ww warehouseWire
	if err := json.Unmarshal(raw, &ww); err != nil {
		return model.WarehouseLayout{}, apperr.Validation("Invalid warehouse configuration")
	}
	if err := s.validate.Struct(ww); err != nil {
		return model.WarehouseLayout{}, apperr.Validation("Invalid warehouse configuration")
	}
	w := ww.layout()
	if err := s.checkLayout(w); err != nil {
		return model.WarehouseLayout{}, err
	}
	return w, nil
}

func decodeOrder(raw json.RawMessage) ([]model.OrderItem, error) {
	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '[' {
		return nil, apperr.Validation("Order must be an array of items")
	}
	var items []model.OrderItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Validation("Order must be an array of items")
	}
	return items, nil
}

func (s *Server) decodeParams(raw json.RawMessage) (model.OptimizeParams, error) {
	var p model.OptimizeParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.OptimizeParams{}, apperr.Validation("Invalid params")
	}
	if err := s.validate.Struct(p); err != nil {
		return model.OptimizeParams{}, apperr.Validation("Invalid params: " + describe(err))
	}
	return p, nil
}

// describe flattens validator errors into "field rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s %s", fe.Field(), rule))
	}
	return strings.Join(parts, ", ")
}

// checkLayout enforces the grid size limit and that the start and every
// location fall inside the grid. Blocked cells outside the grid are ignored
// by the pathfinder and are not rejected.
func (s *Server) checkLayout(w model.WarehouseLayout) error {
	if limit := s.Cfg.Optimizer.MaxGridCells; limit > 0 && w.Rows*w.Cols > limit {
		return &apperr.Error{
			Sentinel: apperr.ErrTooLarge,
			Msg:      fmt.Sprintf("Warehouse grid %dx%d exceeds the %d cell limit", w.Rows, w.Cols, limit),
		}
	}
	g := w.Grid()
	if !g.InBounds(w.Start) {
		return apperr.Validationf("Start position %s is outside the warehouse grid", w.Start)
	}
	ids := make([]string, 0, len(w.Locations))
	for id := range w.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if at := w.Locations[id]; !g.InBounds(at) {
			return apperr.Validationf("Location %s at %s is outside the warehouse grid", id, at)
		}
	}
	return nil
}

// optimizeInput is a fully validated optimize request.
type optimizeInput struct {
	Warehouse model.WarehouseLayout
	Order     []model.OrderItem
	Params    model.OptimizeParams
}

func (s *Server) parseOptimize(env optimizeEnvelope) (optimizeInput, error) {
	if !present(env.Warehouse) || !present(env.Order) || !present(env.Params) {
		return optimizeInput{}, apperr.Validation("Missing required fields: warehouse, order, params")
	}
	w, err := s.decodeWarehouse(env.Warehouse)
	if err != nil {
		return optimizeInput{}, err
	}
	order, err := decodeOrder(env.Order)
	if err != nil {
		return optimizeInput{}, err
	}
	p, err := s.decodeParams(env.Params)
	if err != nil {
		return optimizeInput{}, err
	}
	return optimizeInput{Warehouse: w, Order: order, Params: p}, nil
}
