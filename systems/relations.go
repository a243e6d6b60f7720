package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// RelationsSystem establishes and clears the bidirectional relationship
// pairs (ActiveHunter/HuntingTarget, ActiveMate/MatingTarget) and scans for
// orphaned halves left behind when a relation's other half despawned
// without going through the matching Remove call. Grounded on the
// paired-component add/remove idiom used for parent/child bookkeeping,
// generalized to the two relation kinds here.
type RelationsSystem struct {
	world *ecs.World
	maps  *Maps
}

func NewRelationsSystem(world *ecs.World, maps *Maps) *RelationsSystem {
	return &RelationsSystem{world: world, maps: maps}
}

// StartHunt atomically attaches ActiveHunter to predator and HuntingTarget
// to prey.
func (r *RelationsSystem) StartHunt(predator, prey ecs.Entity, tick uint64) {
	r.maps.ActiveHunter.Add(predator, &components.ActiveHunter{Target: prey, StartedTick: tick})
	r.maps.HuntingTarget.Add(prey, &components.HuntingTarget{Predator: predator, StartedTick: tick})
}

// EndHunt removes both halves of a hunting relationship, tolerating either
// side already being gone (despawned prey/predator).
func (r *RelationsSystem) EndHunt(predator, prey ecs.Entity) {
	if r.world.Alive(predator) && r.maps.ActiveHunter.Has(predator) {
		r.maps.ActiveHunter.Remove(predator)
	}
	if r.world.Alive(prey) && r.maps.HuntingTarget.Has(prey) {
		r.maps.HuntingTarget.Remove(prey)
	}
}

// StartMate atomically attaches ActiveMate/MatingTarget to a courting pair.
func (r *RelationsSystem) StartMate(a, b ecs.Entity, tick uint64) {
	r.maps.ActiveMate.Add(a, &components.ActiveMate{Partner: b, StartedTick: tick})
	r.maps.MatingTarget.Add(b, &components.MatingTarget{Partner: a})
}

// EndMate removes both halves of a mating pair.
func (r *RelationsSystem) EndMate(a, b ecs.Entity) {
	if r.world.Alive(a) && r.maps.ActiveMate.Has(a) {
		r.maps.ActiveMate.Remove(a)
	}
	if r.world.Alive(b) && r.maps.MatingTarget.Has(b) {
		r.maps.MatingTarget.Remove(b)
	}
}

// CleanupOrphans runs once per tick in the Cleanup phase, removing any
// relationship half whose counterpart no longer exists: either the target
// exists and agrees, or it's gone and this sweep repairs the remaining half.
func (r *RelationsSystem) CleanupOrphans() {
	hunterQuery := ecs.NewFilter1[components.ActiveHunter](r.world).Query()
	var deadHunters []ecs.Entity
	for hunterQuery.Next() {
		e := hunterQuery.Entity()
		h := r.maps.ActiveHunter.Get(e)
		if !r.world.Alive(h.Target) {
			deadHunters = append(deadHunters, e)
		}
	}
	for _, e := range deadHunters {
		r.maps.ActiveHunter.Remove(e)
	}

	targetQuery := ecs.NewFilter1[components.HuntingTarget](r.world).Query()
	var deadTargets []ecs.Entity
	for targetQuery.Next() {
		e := targetQuery.Entity()
		h := r.maps.HuntingTarget.Get(e)
		if !r.world.Alive(h.Predator) {
			deadTargets = append(deadTargets, e)
		}
	}
	for _, e := range deadTargets {
		r.maps.HuntingTarget.Remove(e)
	}

	mateQuery := ecs.NewFilter1[components.ActiveMate](r.world).Query()
	var deadMates []ecs.Entity
	for mateQuery.Next() {
		e := mateQuery.Entity()
		m := r.maps.ActiveMate.Get(e)
		if !r.world.Alive(m.Partner) {
			deadMates = append(deadMates, e)
		}
	}
	for _, e := range deadMates {
		r.maps.ActiveMate.Remove(e)
	}

	matingTargetQuery := ecs.NewFilter1[components.MatingTarget](r.world).Query()
	var deadMatingTargets []ecs.Entity
	for matingTargetQuery.Next() {
		e := matingTargetQuery.Entity()
		m := r.maps.MatingTarget.Get(e)
		if !r.world.Alive(m.Partner) {
			deadMatingTargets = append(deadMatingTargets, e)
		}
	}
	for _, e := range deadMatingTargets {
		r.maps.MatingTarget.Remove(e)
	}
}
