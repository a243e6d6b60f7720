package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/telemetry"
)

// ReproductionSystem runs the Stats/Reproduction phase's mate-matching,
// pregnancy progression, and birth steps. Grazing/hunger decay and aging
// are driven by StatsSystem; this system only owns the reproduction-specific
// state machine layered on top of Age/Sex/WellFedStreak.
type ReproductionSystem struct {
	world     *ecs.World
	maps      *Maps
	spatial   *SpatialIndex
	relations *RelationsSystem
	cfg       *config.Config

	Telemetry *telemetry.Collector
	Lifetime  *telemetry.LifetimeTracker
}

func NewReproductionSystem(world *ecs.World, maps *Maps, spatial *SpatialIndex, relations *RelationsSystem, cfg *config.Config) *ReproductionSystem {
	return &ReproductionSystem{world: world, maps: maps, spatial: spatial, relations: relations, cfg: cfg}
}

// Run advances WellFedStreak, matches new mate pairs, converts adjacent
// pairs into pregnancies, and births due litters, in that order.
func (r *ReproductionSystem) Run(tick uint64) {
	r.updateWellFed()
	r.matchMates(tick)
	r.consummate(tick)
	r.birth(tick)
}

func (r *ReproductionSystem) updateWellFed() {
	query := ecs.NewFilter2[components.Stats, components.WellFedStreak](r.world).Query()
	for query.Next() {
		e := query.Entity()
		stats, streak := query.Get()
		satiety := float32(0.6)
		if cfg := r.speciesOf(e); cfg != nil {
			satiety = cfg.SatietyRatio
		}
		if stats.Hunger.Ratio() >= satiety {
			streak.Ticks++
		} else {
			streak.Ticks = 0
		}
	}
}

func (r *ReproductionSystem) speciesOf(e ecs.Entity) *config.SpeciesConfig {
	if !r.maps.Creature.Has(e) {
		return nil
	}
	return r.cfg.SpeciesByName(r.maps.Creature.Get(e).Species)
}

func (r *ReproductionSystem) eligible(e ecs.Entity) bool {
	if !r.maps.Age.Has(e) || !r.maps.Sex.Has(e) || !r.maps.WellFed.Has(e) {
		return false
	}
	if !r.maps.Age.Get(e).Mature() {
		return false
	}
	if r.maps.Pregnancy.Has(e) || r.maps.ActiveMate.Has(e) || r.maps.MatingTarget.Has(e) {
		return false
	}
	if r.maps.ReproCD.Has(e) && r.maps.ReproCD.Get(e).TicksRemaining > 0 {
		return false
	}
	sp := r.speciesOf(e)
	if sp == nil {
		return false
	}
	return r.maps.WellFed.Get(e).Ticks >= sp.WellFedRequiredTicks
}

// matchMates pairs up eligible females with the nearest eligible male of
// the same species within mating_search_radius. Females are processed in
// entity-id order for determinism.
func (r *ReproductionSystem) matchMates(tick uint64) {
	query := ecs.NewFilter1[components.Sex](r.world).Query()
	var females []ecs.Entity
	for query.Next() {
		e := query.Entity()
		if r.maps.Sex.Get(e) != nil && *r.maps.Sex.Get(e) == components.SexFemale && r.eligible(e) {
			females = append(females, e)
		}
	}
	sort.Slice(females, func(i, j int) bool { return females[i].ID() < females[j].ID() })

	for _, f := range females {
		if r.maps.ActiveMate.Has(f) {
			continue // paired by an earlier female's match this same pass
		}
		sp := r.speciesOf(f)
		if sp == nil {
			continue
		}
		here := r.maps.TilePos.Get(f).Tile
		class := r.maps.Creature.Get(f).Class
		candidates := r.spatial.EntitiesInRadius(here, sp.MatingSearchRadius, OnlyClass(class), f)

		var best ecs.Entity
		var bestDist int64 = -1
		found := false
		for _, c := range candidates {
			if r.maps.ActiveMate.Has(c) || !r.eligible(c) {
				continue
			}
			if r.maps.Sex.Get(c) == nil || *r.maps.Sex.Get(c) != components.SexMale {
				continue
			}
			if r.maps.Creature.Get(c).Species != sp.Name {
				continue
			}
			d := here.DistSq(r.maps.TilePos.Get(c).Tile)
			if !found || d < bestDist {
				best, bestDist, found = c, d, true
			}
		}
		if found {
			r.relations.StartMate(f, best, tick)
		}
	}
}

// consummate converts ActiveMate pairs within 1 tile of each other into a
// Pregnancy on the female, clears the pairing, and starts both partners'
// reproduction cooldown.
func (r *ReproductionSystem) consummate(tick uint64) {
	query := ecs.NewFilter1[components.Sex](r.world).Query()
	var females []ecs.Entity
	for query.Next() {
		e := query.Entity()
		if r.maps.Sex.Get(e) != nil && *r.maps.Sex.Get(e) == components.SexFemale && r.maps.ActiveMate.Has(e) {
			females = append(females, e)
		}
	}
	sort.Slice(females, func(i, j int) bool { return females[i].ID() < females[j].ID() })

	for _, f := range females {
		partner := r.maps.ActiveMate.Get(f).Partner
		if !r.world.Alive(partner) || !r.maps.TilePos.Has(partner) {
			r.relations.EndMate(f, partner)
			continue
		}
		here := r.maps.TilePos.Get(f).Tile
		there := r.maps.TilePos.Get(partner).Tile
		if here.ChebyshevDist(there) > 1 {
			continue
		}
		sp := r.speciesOf(f)
		if sp == nil {
			r.relations.EndMate(f, partner)
			continue
		}

		litter := sp.LitterSizeMin
		if sp.LitterSizeMax > sp.LitterSizeMin {
			rng := EntityRand(f.ID(), tick)
			litter += rng.Intn(sp.LitterSizeMax - sp.LitterSizeMin + 1)
		}
		r.maps.Pregnancy.Add(f, &components.Pregnancy{
			DueTick:    tick + sp.GestationTicks,
			LitterSize: litter,
			FatherID:   partner,
		})
		r.maps.ReproCD.Get(f).TicksRemaining = sp.ReproductionCooldownTicks
		if r.maps.ReproCD.Has(partner) {
			r.maps.ReproCD.Get(partner).TicksRemaining = sp.ReproductionCooldownTicks
		}
		r.relations.EndMate(f, partner)
	}
}

// birth spawns litter_size juveniles at the mother's tile for every
// pregnancy reaching its due_tick exactly this tick, not before.
func (r *ReproductionSystem) birth(tick uint64) {
	query := ecs.NewFilter1[components.Pregnancy](r.world).Query()
	var mothers []ecs.Entity
	for query.Next() {
		e := query.Entity()
		if r.maps.Pregnancy.Get(e).DueTick == tick {
			mothers = append(mothers, e)
		}
	}
	sort.Slice(mothers, func(i, j int) bool { return mothers[i].ID() < mothers[j].ID() })

	for _, m := range mothers {
		preg := r.maps.Pregnancy.Get(m)
		sp := r.speciesOf(m)
		if sp == nil {
			r.maps.Pregnancy.Remove(m)
			continue
		}
		here := r.maps.TilePos.Get(m).Tile
		for i := 0; i < preg.LitterSize; i++ {
			rng := EntityRand(m.ID(), tick+uint64(i))
			sex := components.SexFemale
			if rng.Intn(2) == 0 {
				sex = components.SexMale
			}
			child := SpawnAnimal(r.world, r.maps, sp, here, sex, r.spatial)
			r.maps.Mother.Add(child, &components.Mother{Entity: m})
			class := r.maps.Creature.Get(child).Class
			if r.Telemetry != nil {
				r.Telemetry.RecordBirth(class)
			}
			if r.Lifetime != nil {
				r.Lifetime.Register(child.ID(), int32(tick), sp.Name)
				r.Lifetime.RecordChild(m.ID())
			}
		}
		r.maps.Pregnancy.Remove(m)
	}
}
