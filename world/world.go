// Package world implements TileWorld: the immutable-after-load chunked
// terrain the rest of the simulation reads from. Map generation and the
// persisted-world file format are external collaborators; this package only
// consumes an already-decoded form (see decode.go) and serves
// read-only queries over it.
package world

import "github.com/pthm-cable/simcore/components"

// World is the read-only terrain the simulation runs on. Callers hold it by
// shared reference; nothing in this package mutates a World after Load
// returns.
type World struct {
	name   string
	chunks map[components.IVec2]*components.Chunk
}

// New builds an empty World, useful for tests that populate chunks directly
// via AddChunk instead of going through Load.
func New(name string) *World {
	return &World{name: name, chunks: make(map[components.IVec2]*components.Chunk)}
}

// Name returns the map name the world was loaded from.
func (w *World) Name() string {
	return w.name
}

// AddChunk installs a chunk, keyed by its own Coord field.
func (w *World) AddChunk(c *components.Chunk) {
	w.chunks[c.Coord] = c
}

// Chunk returns the chunk at (cx, cy), or nil if not loaded.
func (w *World) Chunk(cx, cy int32) *components.Chunk {
	return w.chunks[components.IVec2{X: cx, Y: cy}]
}

// ChunkAt is like Chunk but takes a chunk coordinate directly.
func (w *World) ChunkAt(coord components.IVec2) *components.Chunk {
	return w.chunks[coord]
}

// Tile returns the tile at a world tile coordinate, wrapping chunk lookup
// with the intra-chunk offset, or false if the containing chunk isn't
// loaded.
func (w *World) Tile(pos components.IVec2) (components.Tile, bool) {
	c := w.chunks[pos.ChunkCoord()]
	if c == nil {
		return components.Tile{}, false
	}
	local := pos.LocalCoord()
	return c.TileAt(local.X, local.Y), true
}

// Walkable reports whether a tile can be occupied by a land animal. An
// unloaded tile is treated as non-walkable.
func (w *World) Walkable(pos components.IVec2) bool {
	t, ok := w.Tile(pos)
	return ok && t.Walkable
}

// Height returns a tile's height, used only by the viewer; the core treats
// movement as planar and never reads this for simulation logic.
func (w *World) Height(pos components.IVec2) uint8 {
	t, ok := w.Tile(pos)
	if !ok {
		return 0
	}
	return t.Height
}

// Forageable reports whether a VegetationGrid cell can exist at this tile.
func (w *World) Forageable(pos components.IVec2) bool {
	t, ok := w.Tile(pos)
	return ok && t.Kind.Forageable()
}

// ChunkCount returns the number of loaded chunks, for telemetry/tests.
func (w *World) ChunkCount() int {
	return len(w.chunks)
}

// Chunks returns every loaded chunk, in no particular order. Used once at
// startup to seed VegetationGrid over the whole loaded map.
func (w *World) Chunks() []*components.Chunk {
	out := make([]*components.Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		out = append(out, c)
	}
	return out
}

// DrinkableAdjacent reports whether a tile is walkable and has at least one
// neighboring tile whose terrain is drinkable (shallow water).
func (w *World) DrinkableAdjacent(pos components.IVec2) bool {
	if !w.Walkable(pos) {
		return false
	}
	for _, d := range eightNeighborOffsets {
		n, ok := w.Tile(pos.Add(d))
		if ok && n.Kind.DrinkableAdjacent() {
			return true
		}
	}
	return false
}

var eightNeighborOffsets = [8]components.IVec2{
	{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1},
	{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

// NearestWalkable scans an expanding square ring around center (up to
// maxRadius tiles) for the nearest tile satisfying pred, breaking ties by
// smallest ring radius then by row-major order within the ring for
// determinism. Used by forage/drink/wander target selection.
func (w *World) NearestWalkable(center components.IVec2, maxRadius int32, pred func(components.IVec2) bool) (components.IVec2, bool) {
	if pred(center) {
		return center, true
	}
	for r := int32(1); r <= maxRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx > -r && dx < r && dy > -r && dy < r {
					continue // interior already covered by a smaller ring
				}
				t := components.IVec2{X: center.X + dx, Y: center.Y + dy}
				if pred(t) {
					return t, true
				}
			}
		}
	}
	return components.IVec2{}, false
}
