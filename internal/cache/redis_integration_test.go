//go:build redis_integration

package cache

import (
	"os"
	"testing"
	"time"
)

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration test")
	}
	c, err := NewRedis(url)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer c.Close()
	if err := c.Ping(t.Context()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	key, _ := Key("it", time.Now().UnixNano())
	if _, ok, err := c.Get(t.Context(), key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(t.Context(), key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(t.Context(), key)
	if err != nil || !ok || string(got) != "payload" {
		t.Fatalf("Get: %q ok=%v err=%v", got, ok, err)
	}
}
