// Package cache stores serialized optimize results keyed by request content.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// Cache is a byte cache with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// Key hashes the JSON encoding of parts into a stable cache key.
func Key(prefix string, parts ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", err
		}
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

type entry struct {
	val     []byte
	expires time.Time
}

// Memory is an in-process Cache. Expired entries are dropped on read and
// when the entry count exceeds maxEntries.
type Memory struct {
	mu         sync.Mutex
	items      map[string]entry
	maxEntries int
	now        func() time.Time
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Memory{items: map[string]entry{}, maxEntries: maxEntries, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) >= m.maxEntries {
		m.evictLocked()
	}
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.items[key] = entry{val: append([]byte(nil), val...), expires: exp}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// evictLocked drops expired entries, then arbitrary ones until under the cap.
func (m *Memory) evictLocked() {
	now := m.now()
	for k, e := range m.items {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(m.items, k)
		}
	}
	for k := range m.items {
		if len(m.items) < m.maxEntries {
			return
		}
		delete(m.items, k)
	}
}

// Len is the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
