package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pickpath/internal/apperr"
	"pickpath/internal/model"
)

// RunStore keeps a log of optimize runs for auditing and the /v1/runs API.
type RunStore interface {
	SaveRun(ctx context.Context, rec model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, error)
	// ListRuns returns the newest runs first.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	Ping(ctx context.Context) error
}

var ErrNotFound = apperr.ErrNotFound

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// NewRecord summarizes an optimize result for storage.
func NewRecord(warehouse string, params model.OptimizeParams, res model.OptimizeResult, took time.Duration) model.RunRecord {
	return model.RunRecord{
		ID:               uuid.NewString(),
		Warehouse:        warehouse,
		Strategy:         string(params.WithDefaults().Strategy),
		StopsCount:       len(res.Stops),
		MissingCount:     len(res.Missing),
		DistanceMeters:   res.DistanceMeters,
		TimeSeconds:      res.TimeSeconds,
		Efficiency:       res.Efficiency,
		DegradedSegments: len(res.Warnings),
		DurationMs:       took.Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
