package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// StatsSystem runs in the Stats/Reproduction phase: decays Hunger/Thirst/
// Energy at each entity's own per-tick rate (set from species config at
// spawn time, see SpawnAnimal) and advances Age. Health has no passive
// decay; it only changes when HuntAction's successful attack sets the
// prey's Health to zero. Death itself is handled by
// LifecycleSystem in Cleanup, which watches for any stat reaching zero.
type StatsSystem struct {
	world *ecs.World
	maps  *Maps
}

func NewStatsSystem(world *ecs.World, maps *Maps) *StatsSystem {
	return &StatsSystem{world: world, maps: maps}
}

func (s *StatsSystem) Run() {
	query := ecs.NewFilter1[components.Stats](s.world).Query()
	for query.Next() {
		e := query.Entity()
		if s.maps.Carcass.Has(e) {
			continue
		}
		stats := query.Get()
		stats.Hunger.Decay()
		stats.Thirst.Decay()
		stats.Energy.Decay()

		if s.maps.Age.Has(e) {
			s.maps.Age.Get(e).TicksAlive++
		}
	}
}
