package systems

import (
	"testing"

	"github.com/pthm-cable/simcore/components"
)

func TestPathCacheRoundTrip(t *testing.T) {
	cache := NewPathCache(100)
	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 5, Y: 5}
	path := components.NewSharedPath([]components.IVec2{from, to})

	cache.Put(from, to, path, 10)

	got := cache.Get(from, to, 11)
	if got == nil {
		t.Fatal("expected cached path, got nil")
	}
	if got.Len() != path.Len() {
		t.Errorf("cached path length = %d, want %d", got.Len(), path.Len())
	}
	for i := 0; i < path.Len(); i++ {
		if got.At(i) != path.At(i) {
			t.Errorf("waypoint %d = %v, want %v", i, got.At(i), path.At(i))
		}
	}
}

func TestPathCacheMiss(t *testing.T) {
	cache := NewPathCache(100)
	if got := cache.Get(components.IVec2{X: 0, Y: 0}, components.IVec2{X: 1, Y: 1}, 0); got != nil {
		t.Errorf("expected nil on cache miss, got %v", got)
	}
}

func TestPathCacheEvictsAfterTTL(t *testing.T) {
	cache := NewPathCache(5)
	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 1, Y: 1}
	cache.Put(from, to, components.NewSharedPath([]components.IVec2{from, to}), 0)

	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry before eviction, got %d", cache.Len())
	}

	cache.Evict(3)
	if cache.Len() != 1 {
		t.Fatalf("expected entry to survive within TTL, got len %d", cache.Len())
	}

	cache.Evict(10)
	if cache.Len() != 0 {
		t.Fatalf("expected entry evicted past TTL, got len %d", cache.Len())
	}
}

func TestPathCacheRefreshesLastUsed(t *testing.T) {
	cache := NewPathCache(5)
	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 1, Y: 1}
	cache.Put(from, to, components.NewSharedPath([]components.IVec2{from, to}), 0)

	cache.Get(from, to, 4) // refresh last-used to 4
	cache.Evict(8)          // 8-4=4, within TTL of 5
	if cache.Len() != 1 {
		t.Errorf("expected entry refreshed by Get to survive, got len %d", cache.Len())
	}
}
