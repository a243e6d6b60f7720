package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

// SpawnAnimal creates a fresh entity for one species at a tile, with every
// component a living animal needs initialized from its species profile.
// Used by both the initial population loader and birth.
func SpawnAnimal(world *ecs.World, maps *Maps, sp *config.SpeciesConfig, tile components.IVec2, sex components.Sex, spatial *SpatialIndex) ecs.Entity {
	class := classFromString(sp.Class)
	e := world.NewEntity()

	maps.Creature.Add(e, &components.Creature{Name: sp.Name, Species: sp.Name, Class: class})
	maps.TilePos.Add(e, &components.TilePosition{Tile: tile})
	maps.Stats.Add(e, &components.Stats{
		Health: components.Stat{Current: sp.HealthMax, Max: sp.HealthMax, DecayRate: 0},
		Hunger: components.Stat{Current: sp.HungerMax, Max: sp.HungerMax, DecayRate: sp.HungerDecayRate},
		Thirst: components.Stat{Current: sp.ThirstMax, Max: sp.ThirstMax, DecayRate: sp.ThirstDecayRate},
		Energy: components.Stat{Current: sp.EnergyMax, Max: sp.EnergyMax, DecayRate: sp.EnergyDecayRate},
	})
	maps.Speed.Add(e, &components.MovementSpeed{TilesPerTick: sp.MovementSpeed})
	maps.Movement.Add(e, &components.MovementComponent{State: components.MovementIdle})
	maps.Age.Add(e, &components.Age{TicksAlive: 0, MatureAtTicks: sp.MatureAtTicks})
	maps.Sex.Add(e, &sex)
	maps.ReproCD.Add(e, &components.ReproductionCooldown{})
	maps.WellFed.Add(e, &components.WellFedStreak{})
	maps.Fear.Add(e, &components.FearState{})

	spatial.Insert(e, tile, class)
	maps.SpatialParent.Add(e, &components.SpatialParent{ChunkCoord: tile.ChunkCoord()})

	return e
}

func classFromString(s string) components.EntityClass {
	switch s {
	case "predator":
		return components.ClassPredator
	case "omnivore":
		return components.ClassOmnivore
	default:
		return components.ClassHerbivore
	}
}
