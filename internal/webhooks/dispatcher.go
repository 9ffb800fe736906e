// Package webhooks notifies downstream systems (WMS, task dispatch) when a
// pick route has been planned. Deliveries are queued in memory, signed with
// HMAC-SHA256 and retried with exponential backoff.
package webhooks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"pickpath/internal/logging"
)

// EventRoutePlanned is emitted after every optimize run is logged.
const EventRoutePlanned = "route.planned"

// Delivery is one pending POST of an event to one target.
type Delivery struct {
	ID          string
	EventType   string
	URL         string
	Payload     []byte
	Attempts    int
	NextAttempt time.Time
}

// Dispatcher fans events out to a fixed set of target URLs.
type Dispatcher struct {
	URLs     []string
	Secret   string
	MaxQueue int
	Log      *logging.Logger

	mu      sync.Mutex
	pending []Delivery
	now     func() time.Time
}

func NewDispatcher(urls []string, secret string, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Discard()
	}
	return &Dispatcher{URLs: urls, Secret: secret, MaxQueue: 1000, Log: log, now: time.Now}
}

type envelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	TS   string `json:"ts"`
	Data any    `json:"data"`
}

// Emit enqueues eventType with data for every target. When the queue is
// full the event is dropped and logged.
func (d *Dispatcher) Emit(ctx context.Context, eventType string, data any) {
	body, err := json.Marshal(envelope{
		ID:   "evt_" + uuid.NewString(),
		Type: eventType,
		TS:   d.now().UTC().Format(time.RFC3339),
		Data: data,
	})
	if err != nil {
		d.Log.WithContext(ctx).WithError(err).Warn("webhook payload encode failed", "event", eventType)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.URLs {
		if d.MaxQueue > 0 && len(d.pending) >= d.MaxQueue {
			d.Log.WithContext(ctx).Warn("webhook queue full, dropping event", "event", eventType, "url", u)
			continue
		}
		d.pending = append(d.pending, Delivery{
			ID:          uuid.NewString(),
			EventType:   eventType,
			URL:         u,
			Payload:     body,
			NextAttempt: d.now(),
		})
	}
}

// due removes and returns up to limit deliveries whose NextAttempt has passed.
func (d *Dispatcher) due(limit int) []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	var out []Delivery
	keep := d.pending[:0]
	for _, it := range d.pending {
		if len(out) < limit && !it.NextAttempt.After(now) {
			out = append(out, it)
			continue
		}
		keep = append(keep, it)
	}
	d.pending = keep
	return out
}

func (d *Dispatcher) requeue(it Delivery) {
	d.mu.Lock()
	d.pending = append(d.pending, it)
	d.mu.Unlock()
}

// Pending is the number of queued deliveries.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
