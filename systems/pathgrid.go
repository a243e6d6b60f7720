package systems

import "github.com/pthm-cable/simcore/components"

// PathGrid is the static walkability graph over tiles, built once from the
// loaded TileWorld and shared read-only by every A* search thereafter. It
// does not hold a reference to world.World directly so that tests can build
// a grid from a plain walkability function.
type PathGrid struct {
	walkable func(components.IVec2) bool
}

// NewPathGrid builds a PathGrid backed by a walkability predicate, typically
// world.World.Walkable.
func NewPathGrid(walkable func(components.IVec2) bool) *PathGrid {
	return &PathGrid{walkable: walkable}
}

// Walkable reports whether a tile can be stepped on.
func (g *PathGrid) Walkable(tile components.IVec2) bool {
	return g.walkable(tile)
}

// eightNeighbors lists the 8-neighborhood offsets in a fixed, deterministic
// order (orthogonal first, then diagonals) so iteration order never depends
// on map ordering.
var eightNeighbors = [8]components.IVec2{
	{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1},
	{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1},
}

// neighbors appends the walkable 8-neighbors of tile to dst, excluding
// diagonal moves that would cut a blocked corner (both orthogonal
// neighbors of a diagonal step must also be walkable).
func (g *PathGrid) neighbors(dst []components.IVec2, tile components.IVec2) []components.IVec2 {
	for _, d := range eightNeighbors {
		n := tile.Add(d)
		if !g.walkable(n) {
			continue
		}
		if d.X != 0 && d.Y != 0 {
			if !g.walkable(tile.Add(components.IVec2{X: d.X, Y: 0})) || !g.walkable(tile.Add(components.IVec2{X: 0, Y: d.Y})) {
				continue
			}
		}
		dst = append(dst, n)
	}
	return dst
}

func stepCost(d components.IVec2) float32 {
	if d.X != 0 && d.Y != 0 {
		return 1.41421356
	}
	return 1
}
