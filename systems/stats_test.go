package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

func spawnStatsEntity(w *ecs.World, maps *Maps, hunger, thirst, energy, decay float32) ecs.Entity {
	e := w.NewEntity()
	maps.Creature.Add(e, &components.Creature{Name: "rabbit", Species: "rabbit", Class: components.ClassHerbivore})
	maps.TilePos.Add(e, &components.TilePosition{Tile: components.IVec2{}})
	maps.Stats.Add(e, &components.Stats{
		Health: components.Stat{Current: 100, Max: 100},
		Hunger: components.Stat{Current: hunger, Max: 100, DecayRate: decay},
		Thirst: components.Stat{Current: thirst, Max: 100, DecayRate: decay},
		Energy: components.Stat{Current: energy, Max: 100, DecayRate: decay},
	})
	maps.Age.Add(e, &components.Age{TicksAlive: 0})
	return e
}

func TestStatsSystemDecaysHungerThirstEnergy(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	stats := NewStatsSystem(w, maps)

	e := spawnStatsEntity(w, maps, 50, 50, 50, 5)
	stats.Run()

	s := maps.Stats.Get(e)
	if s.Hunger.Current != 45 {
		t.Errorf("expected hunger to decay to 45, got %v", s.Hunger.Current)
	}
	if s.Thirst.Current != 45 {
		t.Errorf("expected thirst to decay to 45, got %v", s.Thirst.Current)
	}
	if s.Energy.Current != 45 {
		t.Errorf("expected energy to decay to 45, got %v", s.Energy.Current)
	}
}

func TestStatsSystemAdvancesAge(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	stats := NewStatsSystem(w, maps)

	e := spawnStatsEntity(w, maps, 50, 50, 50, 1)
	stats.Run()
	stats.Run()

	if maps.Age.Get(e).TicksAlive != 2 {
		t.Errorf("expected age to advance by one tick per Run call, got %v", maps.Age.Get(e).TicksAlive)
	}
}

func TestStatsSystemClampsAtZero(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	stats := NewStatsSystem(w, maps)

	e := spawnStatsEntity(w, maps, 2, 100, 100, 5)
	stats.Run()

	if maps.Stats.Get(e).Hunger.Current != 0 {
		t.Errorf("expected hunger to clamp at 0, got %v", maps.Stats.Get(e).Hunger.Current)
	}
}

func TestStatsSystemSkipsCarcasses(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	stats := NewStatsSystem(w, maps)

	e := spawnStatsEntity(w, maps, 50, 50, 50, 5)
	maps.Carcass.Add(e, &components.Carcass{RemainingBiomass: 5, DecayTicksRemaining: 3})

	stats.Run()

	if maps.Stats.Get(e).Hunger.Current != 50 {
		t.Error("expected a carcass entity's stats to be left untouched")
	}
	if maps.Age.Get(e).TicksAlive != 0 {
		t.Error("expected a carcass entity's age to not advance")
	}
}
