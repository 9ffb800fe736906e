package opt

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pickpath/internal/grid"
	"pickpath/internal/model"
)

// DefaultBatchConcurrency bounds Batch when the caller passes no limit.
const DefaultBatchConcurrency = 4

// Compare optimizes the same order under two parameter sets in parallel and
// reports the delta of b against a.
func (e *Engine) Compare(ctx context.Context, w model.WarehouseLayout, order []model.OrderItem, a, b model.OptimizeParams) (model.Comparison, error) {
	var out model.Comparison
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := e.Optimize(ctx, w, order, a)
		if err != nil {
			return fmt.Errorf("scenario a: %w", err)
		}
		out.A = r
		return nil
	})
	g.Go(func() error {
		r, err := e.Optimize(ctx, w, order, b)
		if err != nil {
			return fmt.Errorf("scenario b: %w", err)
		}
		out.B = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Comparison{}, err
	}
	out.Delta = ComputeDelta(out.A, out.B)
	out.SummaryA = Summarize(out.A, a.WithDefaults().DistanceModel)
	out.SummaryB = Summarize(out.B, b.WithDefaults().DistanceModel)
	return out, nil
}

// Batch optimizes several orders against one layout with at most limit
// running at once. Results keep the input order; the heatmap covers every
// returned path.
func (e *Engine) Batch(ctx context.Context, w model.WarehouseLayout, orders [][]model.OrderItem, params model.OptimizeParams, limit int) (model.BatchResult, error) {
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}
	results := make([]model.OptimizeResult, len(orders))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, order := range orders {
		i, order := i, order
		g.Go(func() error {
			r, err := e.Optimize(ctx, w, order, params)
			if err != nil {
				return fmt.Errorf("order %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BatchResult{}, err
	}

	paths := make([][]grid.Coord, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	return model.BatchResult{Results: results, Heatmap: BuildHeatmap(paths...)}, nil
}
