package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

func newTestMovementContext() (*MovementSystem, *ActionContext, *ecs.World, *Maps) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	grid := gridAllWalkableExcept(nil)
	cache := NewPathCache(1000)
	queue := NewPathfindingQueue(grid, cache)
	spatial := NewSpatialIndex()
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{
			PathMaxRetriesNormal: 2,
			PathMaxRetriesUrgent: 2,
		},
	}
	ctx := &ActionContext{Maps: maps, Spatial: spatial, PathQueue: queue, Cfg: cfg}
	fear := NewFearSystem(w, maps, spatial, cfg)
	return NewMovementSystem(fear), ctx, w, maps
}

func spawnMovementEntity(w *ecs.World, maps *Maps, tile components.IVec2) ecs.Entity {
	e := w.NewEntity()
	maps.Creature.Add(e, &components.Creature{Name: "rabbit", Species: "rabbit", Class: components.ClassHerbivore})
	maps.TilePos.Add(e, &components.TilePosition{Tile: tile})
	maps.Speed.Add(e, &components.MovementSpeed{TilesPerTick: 1})
	maps.Movement.Add(e, &components.MovementComponent{State: components.MovementIdle})
	return e
}

func TestMovementSystemConsumesReadyMultiStepPathAndBeginsMoving(t *testing.T) {
	s, ctx, w, maps := newTestMovementContext()
	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 3, Y: 0}
	e := spawnMovementEntity(w, maps, from)

	id := ctx.PathQueue.RequestPath(e, from, to, PriorityNormal, "forage", 0)
	ctx.PathQueue.Drain(10, 0)

	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionWander, Phase: components.PhaseWaitingForPath, RequestID: id})

	s.Run(ctx)

	a := maps.Action.Get(e)
	if a.Phase != components.PhaseMoving {
		t.Fatalf("expected phase to advance to Moving for a multi-waypoint path, got %v", a.Phase)
	}
	mv := maps.Movement.Get(e)
	if mv.State != components.MovementFollowingPath {
		t.Errorf("expected movement state FollowingPath, got %v", mv.State)
	}
	if mv.Index != 1 {
		t.Errorf("expected movement index to start at 1 (tile 0 is the entity's current tile), got %d", mv.Index)
	}
}

func TestMovementSystemConsumesReadySingleTilePathAndGoesStraightToExecuting(t *testing.T) {
	s, ctx, w, maps := newTestMovementContext()
	here := components.IVec2{X: 2, Y: 2}
	e := spawnMovementEntity(w, maps, here)

	id := ctx.PathQueue.RequestPath(e, here, here, PriorityNormal, "forage", 0)
	ctx.PathQueue.Drain(10, 0)

	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionWander, Phase: components.PhaseWaitingForPath, RequestID: id})

	s.Run(ctx)

	a := maps.Action.Get(e)
	if a.Phase != components.PhaseExecuting {
		t.Errorf("expected a single-waypoint path to skip straight to Executing, got %v", a.Phase)
	}
}

func TestMovementSystemStepsAlongPathAndUpdatesTilePosition(t *testing.T) {
	s, ctx, w, maps := newTestMovementContext()
	from := components.IVec2{X: 0, Y: 0}
	e := spawnMovementEntity(w, maps, from)
	ctx.Spatial.Insert(e, from, components.ClassHerbivore)

	path := components.NewSharedPath([]components.IVec2{
		from,
		{X: 1, Y: 0},
		{X: 2, Y: 0},
	})
	maps.Movement.Get(e).Path = path
	maps.Movement.Get(e).Index = 1
	maps.Movement.Get(e).State = components.MovementFollowingPath
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionWander, Phase: components.PhaseMoving})

	s.Run(ctx)

	if maps.TilePos.Get(e).Tile != (components.IVec2{X: 1, Y: 0}) {
		t.Errorf("expected tile position to advance one waypoint, got %v", maps.TilePos.Get(e).Tile)
	}

	s.Run(ctx)

	a := maps.Action.Get(e)
	if maps.TilePos.Get(e).Tile != (components.IVec2{X: 2, Y: 0}) {
		t.Errorf("expected tile position to reach the path's last waypoint, got %v", maps.TilePos.Get(e).Tile)
	}
	if a.Phase != components.PhaseExecuting {
		t.Errorf("expected phase to advance to Executing once the path is exhausted, got %v", a.Phase)
	}
}

func TestMovementSystemAppliesFearSpeedMultiplierWhilePanicked(t *testing.T) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	spatial := NewSpatialIndex()
	cfg := &config.Config{
		Species: []config.SpeciesConfig{
			{Name: "rabbit", Class: "herbivore", FearPanicThreshold: 0.5, FearSpeedBonus: 1},
		},
	}
	cfg.Derived.SpeciesByName = map[string]*config.SpeciesConfig{"rabbit": &cfg.Species[0]}
	fear := NewFearSystem(w, maps, spatial, cfg)
	s := NewMovementSystem(fear)

	from := components.IVec2{X: 0, Y: 0}
	e := spawnMovementEntity(w, maps, from)
	maps.Fear.Add(e, &components.FearState{Level: 0.9}) // above FearPanicThreshold

	path := components.NewSharedPath([]components.IVec2{from, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}})
	maps.Movement.Get(e).Path = path
	maps.Movement.Get(e).Index = 1
	maps.Movement.Get(e).State = components.MovementFollowingPath
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionFlee, Phase: components.PhaseMoving})

	ctx := &ActionContext{Maps: maps, Spatial: spatial, Cfg: cfg}
	s.Run(ctx)

	// FearSpeedBonus of 1 doubles TilesPerTick (1 -> 2), so a panicked
	// entity should cover two waypoints in a single Run where an unafraid
	// one would cover only one.
	if maps.TilePos.Get(e).Tile != (components.IVec2{X: 2, Y: 0}) {
		t.Errorf("expected the fear speed bonus to double the per-tick step, got tile %v", maps.TilePos.Get(e).Tile)
	}
}

func TestMovementSystemExhaustsRetriesAndRemovesAction(t *testing.T) {
	blocked := map[components.IVec2]bool{}
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				blocked[components.IVec2{X: 10 + dx, Y: dy}] = true
			}
		}
	}
	grid := NewPathGrid(func(t components.IVec2) bool { return !blocked[t] })
	cache := NewPathCache(1000)
	queue := NewPathfindingQueue(grid, cache)

	w := ecs.NewWorld()
	maps := NewMaps(w)
	cfg := &config.Config{Scheduler: config.SchedulerConfig{PathMaxRetriesNormal: 2, PathMaxRetriesUrgent: 2}}
	spatial := NewSpatialIndex()
	ctx := &ActionContext{Maps: maps, Spatial: spatial, PathQueue: queue, Cfg: cfg}
	s := NewMovementSystem(NewFearSystem(w, maps, spatial, cfg))

	from := components.IVec2{X: 0, Y: 0}
	to := components.IVec2{X: 10, Y: 0}
	e := spawnMovementEntity(w, maps, from)

	id := queue.RequestPath(e, from, to, PriorityNormal, "forage", 0)
	queue.Drain(10, 0)
	maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionWander, Phase: components.PhaseWaitingForPath, RequestID: id})

	s.Run(ctx)
	if !maps.Action.Has(e) {
		t.Fatal("expected the first failed poll to only increment retries, not remove the action")
	}
	if maps.Action.Get(e).Phase != components.PhaseNeedPath {
		t.Errorf("expected phase to fall back to NeedPath after a failed poll, got %v", maps.Action.Get(e).Phase)
	}

	for i := 0; i < 5; i++ {
		a := maps.Action.Get(e)
		a.Phase = components.PhaseWaitingForPath
		id := queue.RequestPath(e, from, to, PriorityNormal, "forage", uint64(i+1))
		queue.Drain(10, uint64(i+1))
		a.RequestID = id
		s.Run(ctx)
		if !maps.Action.Has(e) {
			break
		}
	}

	if maps.Action.Has(e) {
		t.Error("expected repeated failed polls to eventually exhaust retries and remove the action")
	}
}
