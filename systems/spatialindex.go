package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// ClassFilter selects which entity classes entities_in_radius should return.
// A zero-value filter (all fields false) matches nothing; use AnyClass for
// the common "don't care" case.
type ClassFilter struct {
	Herbivore bool
	Predator  bool
	Omnivore  bool
}

// AnyClass matches every entity class.
func AnyClass() ClassFilter {
	return ClassFilter{Herbivore: true, Predator: true, Omnivore: true}
}

// OnlyClass matches a single class.
func OnlyClass(c components.EntityClass) ClassFilter {
	f := ClassFilter{}
	switch c {
	case components.ClassHerbivore:
		f.Herbivore = true
	case components.ClassPredator:
		f.Predator = true
	case components.ClassOmnivore:
		f.Omnivore = true
	}
	return f
}

func (f ClassFilter) matches(c components.EntityClass) bool {
	switch c {
	case components.ClassHerbivore:
		return f.Herbivore
	case components.ClassPredator:
		return f.Predator
	case components.ClassOmnivore:
		return f.Omnivore
	default:
		return false
	}
}

type spatialEntry struct {
	entity ecs.Entity
	class  components.EntityClass
	tile   components.IVec2
}

// SpatialIndex maps chunk coordinate to the entities currently positioned
// in that chunk, supporting O(k) radius queries where k is the number of
// entities in the enclosing chunk band. Grounded on a cell-bucket spatial
// grid design, generalized from a fixed-size toroidal float grid to an
// unbounded chunk-keyed map over integer tile coordinates.
type SpatialIndex struct {
	buckets map[components.IVec2][]spatialEntry
	index   map[ecs.Entity]int // entity -> position within its bucket slice, for O(1) removal
	bucket  map[ecs.Entity]components.IVec2
}

// NewSpatialIndex creates an empty index.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{
		buckets: make(map[components.IVec2][]spatialEntry),
		index:   make(map[ecs.Entity]int),
		bucket:  make(map[ecs.Entity]components.IVec2),
	}
}

// Clear empties the index, for a full rebuild.
func (s *SpatialIndex) Clear() {
	for k := range s.buckets {
		delete(s.buckets, k)
	}
	for k := range s.index {
		delete(s.index, k)
	}
	for k := range s.bucket {
		delete(s.bucket, k)
	}
}

// Insert adds an entity at a tile position, O(1).
func (s *SpatialIndex) Insert(e ecs.Entity, tile components.IVec2, class components.EntityClass) {
	cc := tile.ChunkCoord()
	bucket := s.buckets[cc]
	s.index[e] = len(bucket)
	s.buckets[cc] = append(bucket, spatialEntry{entity: e, class: class, tile: tile})
	s.bucket[e] = cc
}

// Remove deletes an entity from the bucket it was last inserted into,
// O(n_in_chunk) via swap-remove.
func (s *SpatialIndex) Remove(e ecs.Entity) {
	cc, ok := s.bucket[e]
	if !ok {
		return
	}
	bucket := s.buckets[cc]
	i, ok := s.index[e]
	if !ok || i >= len(bucket) {
		return
	}
	last := len(bucket) - 1
	bucket[i] = bucket[last]
	s.index[bucket[i].entity] = i
	s.buckets[cc] = bucket[:last]
	delete(s.index, e)
	delete(s.bucket, e)
}

// Update moves an entity from its old chunk to the chunk containing new,
// a no-op if both positions resolve to the same chunk.
func (s *SpatialIndex) Update(e ecs.Entity, newTile components.IVec2, class components.EntityClass) {
	oldCC, ok := s.bucket[e]
	newCC := newTile.ChunkCoord()
	if ok && oldCC == newCC {
		// same chunk: just refresh the stored tile for distance math.
		bucket := s.buckets[oldCC]
		if i, ok := s.index[e]; ok && i < len(bucket) {
			bucket[i].tile = newTile
		}
		return
	}
	s.Remove(e)
	s.Insert(e, newTile, class)
}

// ChunkOf returns the chunk coordinate an entity is currently bucketed
// under, used to populate components.SpatialParent.
func (s *SpatialIndex) ChunkOf(e ecs.Entity) (components.IVec2, bool) {
	cc, ok := s.bucket[e]
	return cc, ok
}

// EntitiesInRadius returns every entity within radius tiles of center
// matching filter, scanning only the enclosing chunk band
// (radius+15)/16 chunks (integer division, i.e. ceil(radius/16)).
func (s *SpatialIndex) EntitiesInRadius(center components.IVec2, radius float32, filter ClassFilter, exclude ecs.Entity) []ecs.Entity {
	return s.entitiesInRadiusInto(nil, center, radius, filter, exclude)
}

// entitiesInRadiusInto is the allocation-reusing form callers can invoke
// with a reused backing slice to avoid a fresh allocation per query.
func (s *SpatialIndex) entitiesInRadiusInto(dst []ecs.Entity, center components.IVec2, radius float32, filter ClassFilter, exclude ecs.Entity) []ecs.Entity {
	chunkRadius := int32(radius+float32(components.ChunkSize)-1) / components.ChunkSize
	centerCC := center.ChunkCoord()
	radiusSq := int64(radius * radius)

	for dcy := -chunkRadius; dcy <= chunkRadius; dcy++ {
		for dcx := -chunkRadius; dcx <= chunkRadius; dcx++ {
			cc := components.IVec2{X: centerCC.X + dcx, Y: centerCC.Y + dcy}
			for _, entry := range s.buckets[cc] {
				if entry.entity == exclude {
					continue
				}
				if !filter.matches(entry.class) {
					continue
				}
				if center.DistSq(entry.tile) <= radiusSq {
					dst = append(dst, entry.entity)
				}
			}
		}
	}
	return dst
}

// Len returns the total number of tracked entities, for tests/telemetry.
func (s *SpatialIndex) Len() int {
	return len(s.bucket)
}
