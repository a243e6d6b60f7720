package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// MovementSystem advances MovementComponent during the Movement phase:
// it consumes PathReady/PathFailed results to transition WaitingForPath ->
// Moving (or back to NeedPath / terminate on exhausted retries), and steps
// entities already FollowingPath one fraction of a tile per tick, updating
// SpatialIndex as tiles change. Arrival flips the owning ActiveAction's
// phase to Executing, picked up by ActionSystem next tick: results become
// visible in the same tick if drained before the consuming system, otherwise
// the next tick. This implementation always makes movement-driven phase
// transitions visible to ActionSystem on the following tick.
type MovementSystem struct {
	fear *FearSystem
}

func NewMovementSystem(fear *FearSystem) *MovementSystem { return &MovementSystem{fear: fear} }

func (s *MovementSystem) Run(ctx *ActionContext) {
	query := ctx.Maps.ActionFilter.Query()
	var entities []ecs.Entity
	for query.Next() {
		entities = append(entities, query.Entity())
	}

	for _, e := range entities {
		a := ctx.Maps.Action.Get(e)
		switch a.Phase {
		case components.PhaseWaitingForPath:
			s.consumePathResult(ctx, e, a)
		case components.PhaseMoving:
			s.stepFollowingPath(ctx, e, a)
		}
	}
}

func (s *MovementSystem) consumePathResult(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {
	res, ready := ctx.PathQueue.PollResult(a.RequestID)
	if !ready {
		return
	}
	mv := ctx.Maps.Movement.Get(e)

	if !res.Ready {
		a.Retries++
		if a.Retries >= maxRetriesFor(a.Kind, ctx.Cfg) {
			mv.Reset()
			ctx.Maps.Action.Remove(e)
			return
		}
		a.Phase = components.PhaseNeedPath
		return
	}

	mv.Path.Release()
	mv.Path = res.Path
	mv.Index = 0
	mv.Progress = 0
	mv.State = components.MovementFollowingPath

	if mv.Path.Len() <= 1 {
		// start==goal: already there, nothing to step.
		mv.Reset()
		a.Phase = components.PhaseExecuting
		return
	}
	// Path includes the starting tile at index 0; begin walking toward index 1.
	mv.Index = 1
	a.Phase = components.PhaseMoving
}

func (s *MovementSystem) stepFollowingPath(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {
	mv := ctx.Maps.Movement.Get(e)
	if mv.State != components.MovementFollowingPath || mv.Path == nil {
		a.Phase = components.PhaseNeedPath
		return
	}

	speed := ctx.Maps.Speed.Get(e).TilesPerTick
	if speed <= 0 {
		speed = 1
	}
	if s.fear != nil {
		speed *= s.fear.SpeedMultiplier(e)
	}
	mv.Progress += speed

	for mv.Progress >= 1 && mv.Index < mv.Path.Len() {
		mv.Progress -= 1
		next := mv.Path.At(mv.Index)
		tp := ctx.Maps.TilePos.Get(e)
		tp.Tile = next
		class := components.ClassHerbivore
		if ctx.Maps.Creature.Has(e) {
			class = ctx.Maps.Creature.Get(e).Class
		}
		ctx.Spatial.Update(e, next, class)
		mv.Index++
	}

	if mv.Index >= mv.Path.Len() {
		mv.Reset()
		a.Phase = components.PhaseExecuting
	}
}
