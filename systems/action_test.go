package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

func newTestActionSystem() (*ActionSystem, *ActionContext, *ecs.World, *Maps) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	relations := NewRelationsSystem(w, maps)
	actions := NewActionSystem(relations)
	cfg := &config.Config{
		Species: []config.SpeciesConfig{
			{Name: "rabbit", Class: "herbivore", EnergyDecayRate: 0.5},
		},
	}
	cfg.Derived.SpeciesByName = map[string]*config.SpeciesConfig{"rabbit": &cfg.Species[0]}
	ctx := &ActionContext{Maps: maps, Cfg: cfg}
	return actions, ctx, w, maps
}

func spawnActionEntity(w *ecs.World, maps *Maps, energy float32) ecs.Entity {
	e := w.NewEntity()
	maps.Creature.Add(e, &components.Creature{Name: "rabbit", Species: "rabbit", Class: components.ClassHerbivore})
	maps.TilePos.Add(e, &components.TilePosition{Tile: components.IVec2{}})
	maps.Stats.Add(e, &components.Stats{
		Energy: components.Stat{Current: energy, Max: 100},
	})
	return e
}

func TestActionSystemRestRunsImmediatelyWithoutAPath(t *testing.T) {
	s, ctx, w, maps := newTestActionSystem()
	e := spawnActionEntity(w, maps, 50)
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionRest, Phase: components.PhaseNeedPath})

	s.Run(ctx)

	if !maps.Action.Has(e) {
		t.Fatal("expected Rest to remain in progress below full energy")
	}
	if maps.Stats.Get(e).Energy.Current <= 50 {
		t.Errorf("expected Rest's OnArrival to raise energy, got %v", maps.Stats.Get(e).Energy.Current)
	}
}

func TestActionSystemRestCompletesAtFullEnergyAndRemovesAction(t *testing.T) {
	s, ctx, w, maps := newTestActionSystem()
	e := spawnActionEntity(w, maps, 100)
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionRest, Phase: components.PhaseNeedPath})

	s.Run(ctx)

	if maps.Action.Has(e) {
		t.Error("expected a completed Rest action to be removed")
	}
}

func TestCancelActionClearsActionAndResetsMovement(t *testing.T) {
	s, ctx, w, maps := newTestActionSystem()
	e := spawnActionEntity(w, maps, 50)
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionRest, Phase: components.PhaseExecuting})
	maps.Movement.Add(e, &components.MovementComponent{State: components.MovementFollowingPath})

	s.CancelAction(ctx, e)

	if maps.Action.Has(e) {
		t.Error("expected CancelAction to remove the ActiveAction")
	}
	if maps.Movement.Get(e).State != components.MovementIdle {
		t.Errorf("expected CancelAction to reset movement state to Idle, got %v", maps.Movement.Get(e).State)
	}
}

func TestCancelActionOnEntityWithoutActionIsANoop(t *testing.T) {
	s, ctx, w, maps := newTestActionSystem()
	e := spawnActionEntity(w, maps, 50)

	s.CancelAction(ctx, e)

	if maps.Action.Has(e) {
		t.Error("expected no action to appear on an entity that never had one")
	}
}
