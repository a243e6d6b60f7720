package systems

import "github.com/pthm-cable/simcore/components"

// pathKey identifies a cached route by its endpoints.
type pathKey struct {
	from, to components.IVec2
}

type pathCacheEntry struct {
	path       *components.SharedPath
	lastUsedAt uint64
}

// PathCache memoizes (from,to) -> SharedPath lookups with TTL-based eviction,
// so entities walking the same well-worn routes (den to water, herd grazing
// loop) reuse one path buffer instead of re-running A* every request.
// Adapted from pixel-coordinate keys and Position waypoints to
// tile-coordinate keys and reference-counted SharedPath waypoints.
type PathCache struct {
	entries map[pathKey]*pathCacheEntry
	ttl     uint64
}

// NewPathCache creates an empty cache evicting entries unused for ttl ticks.
func NewPathCache(ttl uint64) *PathCache {
	return &PathCache{
		entries: make(map[pathKey]*pathCacheEntry),
		ttl:     ttl,
	}
}

// Get returns a cached path for (from,to), retaining a new reference for the
// caller, and refreshes its last-used tick. Returns nil if absent.
func (c *PathCache) Get(from, to components.IVec2, atTick uint64) *components.SharedPath {
	e, ok := c.entries[pathKey{from, to}]
	if !ok {
		return nil
	}
	e.lastUsedAt = atTick
	return e.path.Retain()
}

// Put stores a freshly computed path under (from,to). The cache takes its
// own reference; callers keep whatever reference they already held.
func (c *PathCache) Put(from, to components.IVec2, path *components.SharedPath, atTick uint64) {
	key := pathKey{from, to}
	if existing, ok := c.entries[key]; ok {
		existing.path.Release()
	}
	c.entries[key] = &pathCacheEntry{path: path.Retain(), lastUsedAt: atTick}
}

// Evict releases and removes every entry whose last use is older than the
// configured TTL as of tick. Called once per tick by the Cleanup system set.
func (c *PathCache) Evict(tick uint64) {
	for key, e := range c.entries {
		if tick > e.lastUsedAt && tick-e.lastUsedAt > c.ttl {
			e.path.Release()
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached routes, for telemetry/tests.
func (c *PathCache) Len() int {
	return len(c.entries)
}
