// Package components defines the ECS component types attached to animal
// entities, plus the small value types (tiles, chunks, paths) they share.
// Components are plain structs stored by github.com/mlange-42/ark's
// archetype tables; most need no ark import, while those holding entity
// references (action, group, relations, reproduction) import ark's ecs for
// ecs.Entity.
package components

// TerrainKind enumerates the kinds of ground a tile can be.
type TerrainKind uint8

const (
	TerrainGrass TerrainKind = iota
	TerrainForest
	TerrainSand
	TerrainDirt
	TerrainStone
	TerrainShallowWater
	TerrainDeepWater
	TerrainMountain
	TerrainSnow
	TerrainSwamp
	TerrainDesert
)

// Walkable reports whether land animals can stand on this terrain kind.
// Water and mountains are non-walkable; shallow water is reachable only as
// an adjacency target for drinking, never as a tile an entity occupies.
func (k TerrainKind) Walkable() bool {
	switch k {
	case TerrainDeepWater, TerrainMountain, TerrainShallowWater:
		return false
	default:
		return true
	}
}

// Forageable reports whether a VegetationGrid cell can exist on this terrain.
func (k TerrainKind) Forageable() bool {
	switch k {
	case TerrainGrass, TerrainForest, TerrainSwamp:
		return true
	default:
		return false
	}
}

// DrinkableAdjacent reports whether standing adjacent to this terrain lets
// an entity drink (shallow water is a target, never occupied).
func (k TerrainKind) DrinkableAdjacent() bool {
	return k == TerrainShallowWater || k == TerrainDeepWater
}

// Tile is a single cell of the world: its ground kind, walkability (derived
// from kind but cached for fast lookups), and height for the viewer.
type Tile struct {
	Kind     TerrainKind
	Walkable bool
	Height   uint8
}

// Chunk is an immutable 16x16 patch of tiles keyed by chunk coordinate.
type Chunk struct {
	Coord IVec2
	Tiles [ChunkSize * ChunkSize]Tile
}

// TileAt returns the tile at local coordinates (lx, ly), each in [0,16).
func (c *Chunk) TileAt(lx, ly int32) Tile {
	return c.Tiles[ly*ChunkSize+lx]
}
