// internal/config/cache_test.go
package config

import (
	"fmt"
	"testing"
	"time"
)

func TestCachePutGet(t *testing.T) {
	cache := NewCache(time.Minute)
	cfg := &Config{Name: "example"}

	if got := cache.Get("example"); got != nil {
		t.Errorf("expected miss on empty cache, got %+v", got)
	}

	cache.Put("example", cfg)
	if got := cache.Get("example"); got != cfg {
		t.Errorf("expected the cached config back, got %+v", got)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := NewCache(time.Minute)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Put("example", &Config{Name: "example"})

	current = current.Add(59 * time.Second)
	if cache.Get("example") == nil {
		t.Error("expected a fresh entry before the TTL")
	}

	current = current.Add(2 * time.Second)
	if got := cache.Get("example"); got != nil {
		t.Errorf("expected a stale entry to miss, got %+v", got)
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	cache := NewCache(0)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Put("example", &Config{Name: "example"})
	current = current.Add(24 * time.Hour)
	if cache.Get("example") == nil {
		t.Error("expected zero-TTL entries to stay fresh")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(0)
	cache.Put("a", &Config{Name: "a"})
	cache.Put("b", &Config{Name: "b"})

	cache.Invalidate("a")
	if cache.Get("a") != nil {
		t.Error("expected invalidated entry to miss")
	}
	if cache.Get("b") == nil {
		t.Error("expected other entries to survive")
	}

	cache.InvalidateAll()
	if cache.Get("b") != nil {
		t.Error("expected all entries dropped")
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	cache := NewCache(0)
	loads := 0
	load := func() (*Config, error) {
		loads++
		return &Config{Name: "example"}, nil
	}

	for i := 0; i < 3; i++ {
		cfg, err := cache.GetOrLoad("example", load)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg == nil || cfg.Name != "example" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	}
	if loads != 1 {
		t.Errorf("expected a single load, got %d", loads)
	}
}

func TestCacheGetOrLoadError(t *testing.T) {
	cache := NewCache(0)
	wantErr := fmt.Errorf("config fetch failed")

	_, err := cache.GetOrLoad("example", func() (*Config, error) {
		return nil, wantErr
	})
	if err == nil {
		t.Fatal("expected the load error to propagate")
	}
	if cache.Get("example") != nil {
		t.Error("expected failed loads not to be cached")
	}
}
