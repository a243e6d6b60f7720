package systems

import "math/rand"

// EntityRand returns a deterministic random source for one entity's
// decision at one tick, so repeated runs with the same seed reproduce
// identical outcomes regardless of map/goroutine iteration order: randomness
// is keyed by (entity_id, tick). Grounded on the rand.New(rand.NewSource(seed))
// idiom, seeded here by mixing entity and tick instead of a single global
// seed.
func EntityRand(entityID uint32, tick uint64) *rand.Rand {
	return rand.New(rand.NewSource(int64(splitmix64(uint64(entityID), tick))))
}

// splitmix64 mixes two 64-bit values into one well-distributed seed.
func splitmix64(a, b uint64) uint64 {
	x := a*0x9E3779B97F4A7C15 + b
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
