package cache

import (
	"context"
	"testing"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/ranking"
)

func TestKey(t *testing.T) {
	got := Key("v1", "similar", "42:5")
	want := "rec:v1:similar:42:5"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *RecommendationCache
	ctx := context.Background()

	if entries, ok := c.Get(ctx, "any"); ok || entries != nil {
		t.Errorf("nil cache Get = (%v, %v), want miss", entries, ok)
	}
	// Must not panic.
	c.Set(ctx, "any", []ranking.Entry{{ID: 1}})
}

func TestCacheWithoutClientIsNoOp(t *testing.T) {
	c := New(nil, 0, nil)
	ctx := context.Background()

	c.Set(ctx, "k", []ranking.Entry{{ID: 1, Hybrid: 0.5}})
	if entries, ok := c.Get(ctx, "k"); ok || entries != nil {
		t.Errorf("clientless cache Get = (%v, %v), want miss", entries, ok)
	}
}

func TestNewDefaultsTTL(t *testing.T) {
	c := New(nil, 0, nil)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
	if c.logger == nil {
		t.Error("logger not defaulted")
	}
}
