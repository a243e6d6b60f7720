package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

func newTestPlanner() (*PlannerSystem, *ActionContext, *ecs.World, *Maps) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	spatial := NewSpatialIndex()
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{PlannerBudget: 64, IdleResetTicks: 200, GroupCheckIntervalTicks: 1},
		Species: []config.SpeciesConfig{
			{Name: "rabbit", Class: "herbivore", HungerCriticalRatio: 0.3, ThirstCriticalRatio: 0.3, EnergyCriticalRatio: 0.3, VisionRadius: 10, UtilityMinThreshold: 0.1},
		},
	}
	actions := NewActionSystem(nil)
	planner := NewPlannerSystem(w, maps, spatial, nil, nil, actions, cfg)
	ctx := &ActionContext{Maps: maps, Spatial: spatial, Cfg: cfg}
	return planner, ctx, w, maps
}

func spawnPlannerEntity(w *ecs.World, maps *Maps, hunger, thirst, energy, health float32) ecs.Entity {
	e := w.NewEntity()
	maps.Creature.Add(e, &components.Creature{Name: "rabbit", Species: "rabbit", Class: components.ClassHerbivore})
	maps.TilePos.Add(e, &components.TilePosition{Tile: components.IVec2{}})
	maps.Stats.Add(e, &components.Stats{
		Health: components.Stat{Current: health, Max: 100},
		Hunger: components.Stat{Current: hunger, Max: 100},
		Thirst: components.Stat{Current: thirst, Max: 100},
		Energy: components.Stat{Current: energy, Max: 100},
	})
	return e
}

func TestPlannerAssignsActionToIdleEntity(t *testing.T) {
	p, ctx, w, maps := newTestPlanner()
	e := spawnPlannerEntity(w, maps, 10, 100, 100, 100)

	p.Run(ctx, 0)

	if !maps.Action.Has(e) {
		t.Fatal("expected the planner to assign an action to an idle entity")
	}
	if maps.Action.Get(e).Kind != components.ActionGraze {
		t.Errorf("expected Graze for a hungry rabbit, got %v", maps.Action.Get(e).Kind)
	}
}

func TestPlannerFallsBackToWanderBelowThreshold(t *testing.T) {
	p, ctx, w, maps := newTestPlanner()
	e := spawnPlannerEntity(w, maps, 100, 100, 100, 100)

	p.Run(ctx, 0)

	if !maps.Action.Has(e) {
		t.Fatal("expected a fallback action to be assigned")
	}
	if maps.Action.Get(e).Kind != components.ActionWander {
		t.Errorf("expected Wander fallback for a fully satisfied entity, got %v", maps.Action.Get(e).Kind)
	}
}

func TestPlannerHealthDecreaseTriggersReplan(t *testing.T) {
	p, ctx, w, maps := newTestPlanner()
	e := spawnPlannerEntity(w, maps, 100, 100, 100, 100)

	p.Run(ctx, 0) // establishes lastHealth baseline, assigns Wander

	maps.Stats.Get(e).Health.Current = 50
	p.scanTriggers(1)

	if p.QueueLen() == 0 {
		t.Error("expected a health decrease to push a replan")
	}
}

func TestPlannerNormalReplanDoesNotInterruptUrgentAction(t *testing.T) {
	p, ctx, w, maps := newTestPlanner()
	e := spawnPlannerEntity(w, maps, 10, 100, 100, 100)
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionFlee, Phase: components.PhaseExecuting})

	p.replan(ctx, e, 5, false)

	if !maps.Action.Has(e) || maps.Action.Get(e).Kind != components.ActionFlee {
		t.Error("expected a Normal-priority replan to leave an in-progress Flee untouched")
	}
}

func TestPlannerHighPriorityReplanInterruptsAction(t *testing.T) {
	p, ctx, w, maps := newTestPlanner()
	e := spawnPlannerEntity(w, maps, 10, 100, 100, 100)
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionFlee, Phase: components.PhaseExecuting})

	p.replan(ctx, e, 5, true)

	if maps.Action.Get(e).Kind == components.ActionFlee {
		t.Error("expected a High-priority replan to override an in-progress Flee")
	}
}

func TestPlannerSkipsCarcasses(t *testing.T) {
	p, ctx, w, maps := newTestPlanner()
	e := spawnPlannerEntity(w, maps, 10, 100, 100, 0)
	maps.Carcass.Add(e, &components.Carcass{RemainingBiomass: 5, DecayTicksRemaining: 3})

	p.Run(ctx, 0)

	if maps.Action.Has(e) {
		t.Error("expected a carcass entity to never be assigned an action")
	}
}
