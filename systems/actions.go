package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// --- WanderAction ---------------------------------------------------------

// WanderAction picks a random nearby walkable tile and walks to it. It is
// the fallback action when no species evaluator candidate clears the
// utility threshold.
type WanderAction struct{}

func (WanderAction) Kind() components.ActionKind { return components.ActionWander }

func (WanderAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if a.HasCell {
		return a.TargetCell, true
	}
	here := ctx.Maps.TilePos.Get(e).Tile
	rng := EntityRand(e.ID(), ctx.Tick)
	dest, ok := ctx.World.NearestWalkable(here, 6, func(t components.IVec2) bool {
		return t != here && ctx.World.Walkable(t)
	})
	if !ok {
		dest = here
	} else if rng.Float64() < 0.5 {
		// Half the time keep the closest tile found by the ring scan;
		// otherwise replace it with a random offset of up to 2 tiles per
		// axis from here, if that tile is walkable. Either way the choice is
		// deterministic per (entity, tick).
		dx := rng.Int31n(5) - 2
		dy := rng.Int31n(5) - 2
		if alt := here.Add(components.IVec2{X: dx, Y: dy}); ctx.World.Walkable(alt) {
			dest = alt
		}
	}
	a.TargetCell = dest
	a.HasCell = true
	return dest, true
}

func (WanderAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	return ActionResult{Status: StatusSuccess}
}

func (WanderAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- DrinkWaterAction ------------------------------------------------------

// DrinkWaterAction walks to the nearest tile adjacent to drinkable water and
// restores Thirst on arrival.
type DrinkWaterAction struct{}

func (DrinkWaterAction) Kind() components.ActionKind { return components.ActionDrinkWater }

func (DrinkWaterAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if a.HasCell {
		return a.TargetCell, true
	}
	here := ctx.Maps.TilePos.Get(e).Tile
	dest, ok := ctx.World.NearestWalkable(here, 24, ctx.World.DrinkableAdjacent)
	if !ok {
		return here, true
	}
	a.TargetCell = dest
	a.HasCell = true
	return dest, true
}

func (DrinkWaterAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	stats := ctx.Maps.Stats.Get(e)
	sp := ctx.speciesFor(e)
	restore := float32(10)
	if sp != nil {
		restore = sp.ThirstMax * 0.3
	}
	stats.Thirst.Apply(restore)
	return ActionResult{Status: StatusSuccess}
}

func (DrinkWaterAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- GrazeAction ------------------------------------------------------------

// GrazeAction walks to the best nearby vegetation cell and consumes biomass
// from it on arrival, restoring Hunger.
type GrazeAction struct{}

func (GrazeAction) Kind() components.ActionKind { return components.ActionGraze }

func (GrazeAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if a.HasCell {
		return a.TargetCell, true
	}
	here := ctx.Maps.TilePos.Get(e).Tile
	sp := ctx.speciesFor(e)
	radius := float32(20)
	if sp != nil && sp.VisionRadius > 0 {
		radius = sp.VisionRadius
	}
	cell, _, found := ctx.Vegetation.FindBestCell(here, radius, ctx.Cfg.World.ForageThreshold)
	if !found {
		return here, true
	}
	a.TargetCell = cell
	a.HasCell = true
	return cell, true
}

func (GrazeAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	sp := ctx.speciesFor(e)
	bite := float32(0.3)
	if sp != nil && sp.BiteSize > 0 {
		bite = sp.BiteSize
	}
	taken := ctx.Vegetation.Consume(a.TargetCell, bite, ctx.Tick)
	stats := ctx.Maps.Stats.Get(e)
	hungerGain := taken * 20
	stats.Hunger.Apply(hungerGain)
	if ctx.Telemetry != nil {
		ctx.Telemetry.RecordGraze(float64(taken))
	}
	if ctx.Lifetime != nil {
		ctx.Lifetime.RecordGraze(e.ID(), taken)
	}
	return ActionResult{Status: StatusSuccess}
}

func (GrazeAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- EatFoodAction -----------------------------------------------------------

// EatFoodAction walks to a carcass and consumes its remaining biomass,
// restoring Hunger for predators/omnivores.
type EatFoodAction struct{}

func (EatFoodAction) Kind() components.ActionKind { return components.ActionEatFood }

func (EatFoodAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if !a.HasTarget || !ctx.Maps.Carcass.Has(a.Target) {
		return components.IVec2{}, false
	}
	return ctx.Maps.TilePos.Get(a.Target).Tile, true
}

func (EatFoodAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	if !a.HasTarget || !ctx.Maps.Carcass.Has(a.Target) {
		return ActionResult{Status: StatusFailed}
	}
	carcass := ctx.Maps.Carcass.Get(a.Target)
	bite := float32(5)
	taken := bite
	if taken > carcass.RemainingBiomass {
		taken = carcass.RemainingBiomass
	}
	carcass.RemainingBiomass -= taken
	stats := ctx.Maps.Stats.Get(e)
	stats.Hunger.Apply(taken * 4)
	return ActionResult{Status: StatusSuccess}
}

func (EatFoodAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- MoveTowardsAction -------------------------------------------------------

// MoveTowardsAction is the reusable "walk to a fixed tile and stop" mover
// other actions compose by copying its TargetTile behavior.
type MoveTowardsAction struct{}

func (MoveTowardsAction) Kind() components.ActionKind { return components.ActionMoveTowards }

func (MoveTowardsAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if !a.HasCell {
		return components.IVec2{}, false
	}
	return a.TargetCell, true
}

func (MoveTowardsAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	return ActionResult{Status: StatusSuccess}
}

func (MoveTowardsAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- SeekMateAction ----------------------------------------------------------

// SeekMateAction walks toward an already-selected ActiveMate partner
// (established by the reproduction system before this action is enqueued)
// and, on meeting within 1 tile, hands off to the reproduction system to
// start a Pregnancy.
type SeekMateAction struct{}

func (SeekMateAction) Kind() components.ActionKind { return components.ActionSeekMate }

func (SeekMateAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if !ctx.Maps.ActiveMate.Has(e) {
		return components.IVec2{}, false
	}
	partner := ctx.Maps.ActiveMate.Get(e).Partner
	if !ctx.Maps.TilePos.Has(partner) {
		return components.IVec2{}, false
	}
	return ctx.Maps.TilePos.Get(partner).Tile, true
}

func (SeekMateAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	if !ctx.Maps.ActiveMate.Has(e) {
		return ActionResult{Status: StatusFailed}
	}
	partner := ctx.Maps.ActiveMate.Get(e).Partner
	here := ctx.Maps.TilePos.Get(e).Tile
	there := ctx.Maps.TilePos.Get(partner).Tile
	if here.ChebyshevDist(there) > 1 {
		return ActionResult{Status: StatusInProgress}
	}
	return ActionResult{Status: StatusSuccess} // reproduction system observes ActiveMate proximity and starts Pregnancy
}

func (SeekMateAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- FleeAction --------------------------------------------------------------

// FleeAction walks directly away from the nearest predator within fear
// radius.
type FleeAction struct{}

func (FleeAction) Kind() components.ActionKind { return components.ActionFlee }

func (FleeAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	here := ctx.Maps.TilePos.Get(e).Tile
	sp := ctx.speciesFor(e)
	radius := float32(15)
	if sp != nil && sp.FearRadius > 0 {
		radius = sp.FearRadius
	}
	predators := ctx.Spatial.EntitiesInRadius(here, radius, OnlyClass(components.ClassPredator), e)
	if len(predators) == 0 {
		return here, true
	}
	nearest := predators[0]
	nearestDist := here.DistSq(ctx.Maps.TilePos.Get(nearest).Tile)
	for _, p := range predators[1:] {
		d := here.DistSq(ctx.Maps.TilePos.Get(p).Tile)
		if d < nearestDist {
			nearest, nearestDist = p, d
		}
	}
	threat := ctx.Maps.TilePos.Get(nearest).Tile
	away := here.Sub(threat)
	dest := here.Add(normalizeStep(away))
	dest, ok := ctx.World.NearestWalkable(dest, 4, ctx.World.Walkable)
	if !ok {
		dest = here
	}
	return dest, true
}

// normalizeStep reduces a delta to its sign on each axis and scales that to
// a fixed 6-tile step, so each flee request moves a bounded distance away
// regardless of how far the threat is.
func normalizeStep(d components.IVec2) components.IVec2 {
	step := components.IVec2{}
	if d.X > 0 {
		step.X = 1
	} else if d.X < 0 {
		step.X = -1
	}
	if d.Y > 0 {
		step.Y = 1
	} else if d.Y < 0 {
		step.Y = -1
	}
	scale := int32(6)
	return components.IVec2{X: step.X * scale, Y: step.Y * scale}
}

func (FleeAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	return ActionResult{Status: StatusSuccess}
}

func (FleeAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- FleeFromCellAction ------------------------------------------------------

// FleeFromCellAction flees a fixed stimulus location rather than the
// nearest live predator entity (e.g. a remembered danger cell).
type FleeFromCellAction struct{}

func (FleeFromCellAction) Kind() components.ActionKind { return components.ActionFleeFromCell }

func (FleeFromCellAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if !a.HasCell {
		return components.IVec2{}, false
	}
	here := ctx.Maps.TilePos.Get(e).Tile
	away := here.Sub(a.TargetCell)
	dest := here.Add(normalizeStep(away))
	dest, ok := ctx.World.NearestWalkable(dest, 4, ctx.World.Walkable)
	if !ok {
		dest = here
	}
	return dest, true
}

func (FleeFromCellAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	return ActionResult{Status: StatusSuccess}
}

func (FleeFromCellAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}

// --- HuntAction --------------------------------------------------------------

// HuntAction chases a.Target, establishing the bidirectional hunting
// relationship on first entry and attacking probabilistically once in melee
// range. Each path request aims at the prey's tile at request time; a path
// in progress is not re-aimed when the prey moves, and retarget_threshold is
// not read. Arriving with the prey out of melee range sends the action back
// to NeedPath, which re-paths to the prey's current tile.
type HuntAction struct {
	relations *RelationsSystem
}

func (h *HuntAction) Kind() components.ActionKind { return components.ActionHunt }

func (h *HuntAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	if !a.HasTarget || !ctx.Maps.TilePos.Has(a.Target) {
		return components.IVec2{}, false
	}
	if h.relations != nil && !ctx.Maps.ActiveHunter.Has(e) {
		h.relations.StartHunt(e, a.Target, ctx.Tick)
	}

	here := ctx.Maps.TilePos.Get(e).Tile
	prey := ctx.Maps.TilePos.Get(a.Target).Tile
	sp := ctx.speciesFor(e)
	meleeRange := float32(1)
	if sp != nil && sp.HuntMeleeRangeTiles > 0 {
		meleeRange = sp.HuntMeleeRangeTiles
	}
	if float32(here.DistSq(prey)) <= meleeRange*meleeRange {
		return here, true // already in range, skip pathing this tick
	}
	return prey, true
}

func (h *HuntAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	if !a.HasTarget || !ctx.Maps.TilePos.Has(a.Target) {
		if h.relations != nil {
			h.relations.EndHunt(e, a.Target)
		}
		return ActionResult{Status: StatusFailed}
	}

	here := ctx.Maps.TilePos.Get(e).Tile
	prey := ctx.Maps.TilePos.Get(a.Target).Tile
	sp := ctx.speciesFor(e)
	meleeRange := float32(1)
	base := float32(0.3)
	if sp != nil {
		if sp.HuntMeleeRangeTiles > 0 {
			meleeRange = sp.HuntMeleeRangeTiles
		}
		base = sp.HuntSuccessBase
	}

	if float32(here.DistSq(prey)) > meleeRange*meleeRange {
		// Still chasing: returning to NeedPath re-evaluates distance and
		// re-paths if prey has moved.
		a.Phase = components.PhaseNeedPath
		return ActionResult{Status: StatusInProgress}
	}

	predatorStats := ctx.Maps.Stats.Get(e)
	preyStats := ctx.Maps.Stats.Get(a.Target)
	successChance := base
	successChance += (1 - predatorStats.Hunger.Ratio()) * 0.3 // hungrier predator tries harder
	successChance -= preyStats.Health.Ratio() * 0.2
	if successChance < 0.05 {
		successChance = 0.05
	}
	if successChance > 0.95 {
		successChance = 0.95
	}

	if ctx.Telemetry != nil {
		ctx.Telemetry.RecordHuntAttempt()
	}
	if ctx.Lifetime != nil {
		ctx.Lifetime.RecordHuntAttempt(e.ID())
	}

	rng := EntityRand(e.ID(), ctx.Tick)
	if rng.Float32() > successChance {
		return ActionResult{Status: StatusInProgress} // attack missed, try again next tick
	}

	if ctx.Telemetry != nil {
		ctx.Telemetry.RecordHuntHit()
		ctx.Telemetry.RecordKill()
	}
	if ctx.Lifetime != nil {
		ctx.Lifetime.RecordHuntHit(e.ID())
		ctx.Lifetime.RecordKill(e.ID())
	}

	prey2 := a.Target
	if h.relations != nil {
		h.relations.EndHunt(e, prey2)
	}
	// Zero prey health: LifecycleSystem's death sweep (Cleanup phase) turns
	// this into a Carcass on its next pass, the same path stat-depletion
	// deaths take.
	preyStats.Health.Current = 0
	predatorStats.Hunger.Apply(30)
	return ActionResult{Status: StatusSuccess}
}

func (h *HuntAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {
	if h.relations != nil && a.HasTarget {
		h.relations.EndHunt(e, a.Target)
	}
}

// --- RestAction ------------------------------------------------------------

// RestAction requires no movement: it recovers Energy in place over
// multiple ticks, ending when Energy is full or fear interrupts it (fear
// utility boosts Rest but a panic spike still yields to Flee via the
// planner, not from within the action itself).
type RestAction struct{}

func (RestAction) Kind() components.ActionKind { return components.ActionRest }

func (RestAction) TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool) {
	return components.IVec2{}, false
}

func (RestAction) OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult {
	stats := ctx.Maps.Stats.Get(e)
	sp := ctx.speciesFor(e)
	rate := float32(2)
	if sp != nil {
		rate = sp.EnergyDecayRate*2 + 1
	}
	stats.Energy.Apply(rate)
	if stats.Energy.Ratio() >= 1 {
		return ActionResult{Status: StatusSuccess}
	}
	return ActionResult{Status: StatusInProgress}
}

func (RestAction) Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) {}
