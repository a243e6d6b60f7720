package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/telemetry"
)

// LifecycleSystem runs the Cleanup phase's death handling: any entity whose
// Health/Hunger/Thirst/Energy has reached zero is stripped of its
// behavioral components and converted into a Carcass in place; carcasses
// decay on a timer and despawn at zero.
type LifecycleSystem struct {
	world *ecs.World
	maps  *Maps
	cfg   *config.Config

	Telemetry *telemetry.Collector
	Lifetime  *telemetry.LifetimeTracker

	DeathCount uint64 // rolling total, for telemetry
}

func NewLifecycleSystem(world *ecs.World, maps *Maps, cfg *config.Config) *LifecycleSystem {
	return &LifecycleSystem{world: world, maps: maps, cfg: cfg}
}

// Run ticks down existing carcasses' decay, then processes this tick's
// deaths, so a freshly made carcass keeps its full decay timer until the
// next Run.
func (l *LifecycleSystem) Run(tick uint64) {
	l.decayCarcasses()
	l.processDeaths(tick)
}

func (l *LifecycleSystem) processDeaths(tick uint64) {
	query := ecs.NewFilter1[components.Stats](l.world).Query()
	var dead []ecs.Entity
	for query.Next() {
		e := query.Entity()
		if l.maps.Carcass.Has(e) {
			continue // already converted
		}
		stats := l.maps.Stats.Get(e)
		if stats.Health.Current <= 0 || stats.Hunger.Current <= 0 || stats.Thirst.Current <= 0 || stats.Energy.Current <= 0 {
			dead = append(dead, e)
		}
	}

	for _, e := range dead {
		l.killAndCarcass(e, tick)
		l.DeathCount++
	}
}

// killAndCarcass strips an entity's AI/movement components and attaches a
// Carcass in place, rather than despawning, so predators can still consume
// it afterward.
func (l *LifecycleSystem) killAndCarcass(e ecs.Entity, tick uint64) {
	if l.maps.Creature.Has(e) {
		class := l.maps.Creature.Get(e).Class
		if l.Telemetry != nil {
			l.Telemetry.RecordDeath(class)
		}
	}
	if l.Lifetime != nil {
		if stats := l.Lifetime.Get(e.ID()); stats != nil {
			l.Lifetime.UpdateSurvivalTime(e.ID(), int32(tick), float32(l.cfg.Derived.TickInterval))
		}
		l.Lifetime.Remove(e.ID())
	}
	sp := l.speciesOf(e)
	biomass := float32(20)
	decayTicks := 500
	if sp != nil {
		if sp.CarcassBiomass > 0 {
			biomass = sp.CarcassBiomass
		}
		if sp.CarcassDecayTicks > 0 {
			decayTicks = sp.CarcassDecayTicks
		}
	}

	if l.maps.Action.Has(e) {
		l.maps.Action.Remove(e)
	}
	if l.maps.Movement.Has(e) {
		mv := l.maps.Movement.Get(e)
		mv.Reset()
	}
	if l.maps.ActiveHunter.Has(e) {
		l.maps.ActiveHunter.Remove(e)
	}
	if l.maps.HuntingTarget.Has(e) {
		l.maps.HuntingTarget.Remove(e)
	}
	if l.maps.ActiveMate.Has(e) {
		l.maps.ActiveMate.Remove(e)
	}
	if l.maps.MatingTarget.Has(e) {
		l.maps.MatingTarget.Remove(e)
	}
	if l.maps.PackMember.Has(e) {
		l.maps.PackMember.Remove(e)
	}
	if l.maps.PackLeader.Has(e) {
		l.maps.PackLeader.Remove(e)
	}

	l.maps.Carcass.Add(e, &components.Carcass{RemainingBiomass: biomass, DecayTicksRemaining: decayTicks})
}

func (l *LifecycleSystem) decayCarcasses() {
	query := ecs.NewFilter1[components.Carcass](l.world).Query()
	var expired []ecs.Entity
	for query.Next() {
		e := query.Entity()
		c := l.maps.Carcass.Get(e)
		c.DecayTicksRemaining--
		if c.DecayTicksRemaining <= 0 || c.RemainingBiomass <= 0 {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		l.world.RemoveEntity(e)
	}
}

func (l *LifecycleSystem) speciesOf(e ecs.Entity) *config.SpeciesConfig {
	if !l.maps.Creature.Has(e) {
		return nil
	}
	return l.cfg.SpeciesByName(l.maps.Creature.Get(e).Species)
}
