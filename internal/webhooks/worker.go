package webhooks

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"pickpath/internal/metrics"
)

// Worker drains a Dispatcher's queue.
type Worker struct {
	D           *Dispatcher
	HTTP        *http.Client
	MaxAttempts int
	Interval    time.Duration
}

func NewWorker(d *Dispatcher, maxAttempts int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Worker{D: d, HTTP: &http.Client{Timeout: 5 * time.Second}, MaxAttempts: maxAttempts, Interval: time.Second}
}

// Start polls until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.processOnce(ctx)
			}
		}
	}()
}

func (w *Worker) processOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()
	for _, it := range w.D.due(50) {
		code, err := w.deliver(ctx, it)
		if err == nil && code >= 200 && code < 300 {
			metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
			continue
		}
		it.Attempts++
		log := w.D.Log.With("deliveryId", it.ID, "url", it.URL, "attempts", it.Attempts, "status", code)
		if err != nil {
			log = log.With("error", err.Error())
		}
		if it.Attempts >= w.MaxAttempts {
			metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
			log.Warn("webhook delivery abandoned")
			continue
		}
		metrics.WebhookDeliveries.WithLabelValues("retried").Inc()
		it.NextAttempt = w.D.now().Add(nextBackoff(it.Attempts))
		w.D.requeue(it)
	}
}

func (w *Worker) deliver(ctx context.Context, it Delivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", it.EventType)
	req.Header.Set("X-Delivery-Id", it.ID)
	if w.D.Secret != "" {
		req.Header.Set("X-Signature", Sign(w.D.Secret, it.Payload))
	}
	resp, err := w.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
