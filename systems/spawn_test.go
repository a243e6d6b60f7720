package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

func testRabbitSpecies() *config.SpeciesConfig {
	return &config.SpeciesConfig{
		Name:            "rabbit",
		Class:           "herbivore",
		HealthMax:       50,
		HungerMax:       100,
		HungerDecayRate: 1,
		ThirstMax:       100,
		ThirstDecayRate: 1,
		EnergyMax:       100,
		EnergyDecayRate: 1,
		MovementSpeed:   1.5,
		MatureAtTicks:   200,
	}
}

func TestSpawnAnimalPopulatesCoreComponents(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	spatial := NewSpatialIndex()
	sp := testRabbitSpecies()
	tile := components.IVec2{X: 4, Y: -2}

	e := SpawnAnimal(w, maps, sp, tile, components.SexFemale, spatial)

	if !w.Alive(e) {
		t.Fatal("expected a live entity")
	}
	if got := maps.Creature.Get(e); got.Species != "rabbit" || got.Class != components.ClassHerbivore {
		t.Errorf("Creature = %+v, want species rabbit / class herbivore", got)
	}
	if maps.TilePos.Get(e).Tile != tile {
		t.Errorf("TilePosition.Tile = %v, want %v", maps.TilePos.Get(e).Tile, tile)
	}
	stats := maps.Stats.Get(e)
	if stats.Health.Current != sp.HealthMax || stats.Hunger.Current != sp.HungerMax {
		t.Errorf("expected stats seeded at species max, got %+v", stats)
	}
	if maps.Speed.Get(e).TilesPerTick != sp.MovementSpeed {
		t.Errorf("MovementSpeed = %v, want %v", maps.Speed.Get(e).TilesPerTick, sp.MovementSpeed)
	}
	if maps.Sex.Get(e) == nil || *maps.Sex.Get(e) != components.SexFemale {
		t.Error("expected Sex component to be set to Female")
	}
	if !maps.ReproCD.Has(e) || !maps.WellFed.Has(e) || !maps.Fear.Has(e) {
		t.Error("expected reproduction-cooldown, well-fed-streak, and fear components to be initialized")
	}
	if maps.Age.Get(e).MatureAtTicks != sp.MatureAtTicks {
		t.Errorf("Age.MatureAtTicks = %v, want %v", maps.Age.Get(e).MatureAtTicks, sp.MatureAtTicks)
	}
}

func TestSpawnAnimalRegistersWithSpatialIndex(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	spatial := NewSpatialIndex()
	sp := testRabbitSpecies()
	tile := components.IVec2{X: 1, Y: 1}

	e := SpawnAnimal(w, maps, sp, tile, components.SexMale, spatial)

	found := spatial.EntitiesInRadius(tile, 0, OnlyClass(components.ClassHerbivore), ecs.Entity{})
	ok := false
	for _, f := range found {
		if f == e {
			ok = true
		}
	}
	if !ok {
		t.Error("expected the spawned entity to be registered in the spatial index at its tile")
	}

	cc, ok := spatial.ChunkOf(e)
	if !ok {
		t.Fatal("expected the spatial index to track a chunk bucket for the entity")
	}
	if maps.SpatialParent.Get(e).ChunkCoord != cc {
		t.Errorf("SpatialParent.ChunkCoord = %v, want %v", maps.SpatialParent.Get(e).ChunkCoord, cc)
	}
}

func TestSpawnAnimalClassFromSpeciesString(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	spatial := NewSpatialIndex()

	predator := testRabbitSpecies()
	predator.Name = "wolf"
	predator.Class = "predator"
	e := SpawnAnimal(w, maps, predator, components.IVec2{}, components.SexMale, spatial)
	if maps.Creature.Get(e).Class != components.ClassPredator {
		t.Errorf("expected predator class string to map to ClassPredator, got %v", maps.Creature.Get(e).Class)
	}

	omnivore := testRabbitSpecies()
	omnivore.Name = "raccoon"
	omnivore.Class = "omnivore"
	e2 := SpawnAnimal(w, maps, omnivore, components.IVec2{X: 1}, components.SexFemale, spatial)
	if maps.Creature.Get(e2).Class != components.ClassOmnivore {
		t.Errorf("expected omnivore class string to map to ClassOmnivore, got %v", maps.Creature.Get(e2).Class)
	}
}
