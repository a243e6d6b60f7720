package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

// FearSystem runs in the Stats/Reproduction phase: queries nearby predators
// for every prey-capable entity, raises fear in proportion to predator
// count, and decays it linearly absent any stimulus.
type FearSystem struct {
	world   *ecs.World
	maps    *Maps
	spatial *SpatialIndex
	cfg     *config.Config

	intervalTicks uint64
}

func NewFearSystem(world *ecs.World, maps *Maps, spatial *SpatialIndex, cfg *config.Config) *FearSystem {
	interval := cfg.Scheduler.GroupCheckIntervalTicks
	if interval == 0 {
		interval = 1
	}
	return &FearSystem{world: world, maps: maps, spatial: spatial, cfg: cfg, intervalTicks: interval}
}

// Run samples predator proximity at most once every intervalTicks ticks
// (the stimulus side) but decays fear every tick, matching the "per tick
// (or every N ticks)" stimulus cadence.
func (f *FearSystem) Run(tick uint64) {
	sampleStimulus := tick%f.intervalTicks == 0

	query := ecs.NewFilter1[components.FearState](f.world).Query()
	var entities []ecs.Entity
	for query.Next() {
		entities = append(entities, query.Entity())
	}

	for _, e := range entities {
		sp := f.speciesOf(e)
		if sp == nil || sp.Class == "predator" {
			continue // predators don't carry fear of other predators
		}
		fear := f.maps.Fear.Get(e)

		if sampleStimulus {
			here := f.maps.TilePos.Get(e).Tile
			predators := f.spatial.EntitiesInRadius(here, sp.FearRadius, OnlyClass(components.ClassPredator), e)
			if len(predators) > 0 {
				fear.Level += sp.FearGainPerPredator * float32(len(predators))
				if fear.Level > 1 {
					fear.Level = 1
				}
				fear.LastStimulusTick = tick
				continue
			}
		}

		if tick > fear.LastStimulusTick {
			fear.Level -= sp.FearDecayPerTick
			if fear.Level < 0 {
				fear.Level = 0
			}
		}
	}
}

// Panicked reports whether an entity's fear exceeds its species' panic
// threshold, used by the species evaluators to add a Flee candidate and by
// PlannerSystem's panic trigger. Feeding actions do not consult it.
func (f *FearSystem) Panicked(e ecs.Entity) bool {
	if !f.maps.Fear.Has(e) {
		return false
	}
	sp := f.speciesOf(e)
	if sp == nil {
		return false
	}
	return f.maps.Fear.Get(e).Level >= sp.FearPanicThreshold
}

// SpeedMultiplier returns the fear-driven movement speed bonus (1.0 = no
// bonus) for use by MovementSystem/PlannerSystem.
func (f *FearSystem) SpeedMultiplier(e ecs.Entity) float32 {
	if !f.maps.Fear.Has(e) {
		return 1
	}
	sp := f.speciesOf(e)
	if sp == nil {
		return 1
	}
	level := f.maps.Fear.Get(e).Level
	if level >= sp.FearPanicThreshold {
		return 1 + sp.FearSpeedBonus
	}
	return 1
}

func (f *FearSystem) speciesOf(e ecs.Entity) *config.SpeciesConfig {
	if !f.maps.Creature.Has(e) {
		return nil
	}
	return f.cfg.SpeciesByName(f.maps.Creature.Get(e).Species)
}
