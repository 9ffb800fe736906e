package store

import (
	"context"
	"sync"

	"pickpath/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set. It
// keeps the most recent maxRuns records.
type Memory struct {
	mu      sync.Mutex
	runs    map[string]model.RunRecord
	order   []string // oldest first
	maxRuns int
}

func NewMemory(maxRuns int) *Memory {
	if maxRuns <= 0 {
		maxRuns = 1000
	}
	return &Memory{runs: map[string]model.RunRecord{}, maxRuns: maxRuns}
}

func (m *Memory) SaveRun(_ context.Context, rec model.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.runs[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.runs[rec.ID] = rec
	for len(m.order) > m.maxRuns {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (model.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.runs[id]
	if !ok {
		return model.RunRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	limit = clampLimit(limit)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RunRecord, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[m.order[i]])
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
