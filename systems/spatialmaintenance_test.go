package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

func TestSpatialMaintenanceSystemReparentsOnChunkCrossing(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	s := NewSpatialMaintenanceSystem(maps)

	e := w.NewEntity()
	tile := components.IVec2{X: 15, Y: 15}
	maps.TilePos.Add(e, &components.TilePosition{Tile: tile})
	maps.SpatialParent.Add(e, &components.SpatialParent{ChunkCoord: tile.ChunkCoord()})

	// Walk across the chunk boundary without updating SpatialParent
	// directly, the way MovementSystem leaves it.
	maps.TilePos.Get(e).Tile = components.IVec2{X: 16, Y: 0}

	s.Run()

	want := components.IVec2{X: 16, Y: 0}.ChunkCoord()
	if maps.SpatialParent.Get(e).ChunkCoord != want {
		t.Errorf("SpatialParent.ChunkCoord = %v, want %v", maps.SpatialParent.Get(e).ChunkCoord, want)
	}
}

func TestSpatialMaintenanceSystemLeavesSameChunkAlone(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	s := NewSpatialMaintenanceSystem(maps)

	e := w.NewEntity()
	tile := components.IVec2{X: 3, Y: 3}
	maps.TilePos.Add(e, &components.TilePosition{Tile: tile})
	parent := &components.SpatialParent{ChunkCoord: tile.ChunkCoord()}
	maps.SpatialParent.Add(e, parent)

	maps.TilePos.Get(e).Tile = components.IVec2{X: 4, Y: 5}
	s.Run()

	if maps.SpatialParent.Get(e).ChunkCoord != tile.ChunkCoord() {
		t.Error("expected chunk coord to stay unchanged for a move within the same chunk")
	}
}
