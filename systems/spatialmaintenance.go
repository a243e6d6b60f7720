package systems

// SpatialMaintenanceSystem re-derives each entity's SpatialParent from its
// current TilePosition once per tick, so a mover's chunk_coord == floor(
// tile/16) holds after every tick rather than only at spawn. Runs in the
// Cleanup phase, after Movement has settled every entity's TilePosition for
// the tick.
type SpatialMaintenanceSystem struct {
	maps *Maps
}

func NewSpatialMaintenanceSystem(maps *Maps) *SpatialMaintenanceSystem {
	return &SpatialMaintenanceSystem{maps: maps}
}

// Run reparents every entity whose tile has crossed into a new chunk since
// its SpatialParent was last set.
func (s *SpatialMaintenanceSystem) Run() {
	query := s.maps.SpatialParentFilter.Query()
	for query.Next() {
		tp, parent := query.Get()
		cc := tp.Tile.ChunkCoord()
		if parent.ChunkCoord != cc {
			parent.ChunkCoord = cc
		}
	}
}
