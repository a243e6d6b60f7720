package telemetry

// LifetimeStats tracks per-entity statistics over its lifetime.
type LifetimeStats struct {
	BirthTick       int32
	SurvivalTimeSec float32

	Species string

	// Hunting (predators/omnivores)
	HuntsAttempted int
	HuntsHit       int
	Kills          int

	// Reproduction
	Children int

	// Energy and grazing
	PeakEnergy  float32
	TotalGrazed float32 // cumulative vegetation biomass consumed
}

// LifetimeTracker manages per-entity lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new entity.
func (lt *LifetimeTracker) Register(entityID uint32, birthTick int32, species string) {
	lt.stats[entityID] = &LifetimeStats{
		BirthTick: birthTick,
		Species:   species,
	}
}

// Get returns the lifetime stats for an entity, or nil if not found.
func (lt *LifetimeTracker) Get(entityID uint32) *LifetimeStats {
	return lt.stats[entityID]
}

// Remove removes an entity's stats and returns them (for snapshot/logging).
func (lt *LifetimeTracker) Remove(entityID uint32) *LifetimeStats {
	stats := lt.stats[entityID]
	delete(lt.stats, entityID)
	return stats
}

// RecordHuntAttempt increments hunt attempt count.
func (lt *LifetimeTracker) RecordHuntAttempt(entityID uint32) {
	if s := lt.stats[entityID]; s != nil {
		s.HuntsAttempted++
	}
}

// RecordHuntHit increments successful hunt count.
func (lt *LifetimeTracker) RecordHuntHit(entityID uint32) {
	if s := lt.stats[entityID]; s != nil {
		s.HuntsHit++
	}
}

// RecordKill increments kill count.
func (lt *LifetimeTracker) RecordKill(entityID uint32) {
	if s := lt.stats[entityID]; s != nil {
		s.Kills++
	}
}

// RecordChild increments children count.
func (lt *LifetimeTracker) RecordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// RecordGraze adds grazing gain to cumulative total.
func (lt *LifetimeTracker) RecordGraze(entityID uint32, amount float32) {
	if s := lt.stats[entityID]; s != nil {
		s.TotalGrazed += amount
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(entityID uint32, energy float32) {
	if s := lt.stats[entityID]; s != nil {
		if energy > s.PeakEnergy {
			s.PeakEnergy = energy
		}
	}
}

// UpdateSurvivalTime updates the survival time based on current tick.
func (lt *LifetimeTracker) UpdateSurvivalTime(entityID uint32, currentTick int32, dt float32) {
	if s := lt.stats[entityID]; s != nil {
		s.SurvivalTimeSec = float32(currentTick-s.BirthTick) * dt
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[uint32]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked entities.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
