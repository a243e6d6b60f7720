package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// ActionCandidate is one species evaluator's proposed action plus the
// utility it scored for the current tick. Target/Cell carry any state the
// chosen action needs at enqueue time that its own TargetTile can't derive
// on its own (e.g. which prey to hunt).
type ActionCandidate struct {
	Kind      components.ActionKind
	Utility   float32
	Target    ecs.Entity
	HasTarget bool
	Cell      components.IVec2
	HasCell   bool
}

// speciesEvaluator scores candidate actions for one entity given its
// stats, nearby resources, and fear/group context.
type speciesEvaluator func(ctx *ActionContext, e ecs.Entity, fear *FearSystem, group *GroupSystem) []ActionCandidate

// evaluatorForClass dispatches by entity_class rather than by species name:
// the per-species flavor (Rabbit vs Deer, Fox vs Wolf, Raccoon vs Bear)
// comes entirely from config.SpeciesConfig's tuning knobs, so herbivores
// share one evaluator, predators another, omnivores a third.
// Six species are supported; behavior is identical code driven by
// per-species config, matching how the rest of this package is built.
func evaluatorForClass(class components.EntityClass) speciesEvaluator {
	switch class {
	case components.ClassPredator:
		return predatorEvaluator
	case components.ClassOmnivore:
		return omnivoreEvaluator
	default:
		return herbivoreEvaluator
	}
}

func fleeCandidate(ctx *ActionContext, e ecs.Entity, fear *FearSystem) (ActionCandidate, bool) {
	if fear == nil || !fear.Panicked(e) {
		return ActionCandidate{}, false
	}
	return ActionCandidate{Kind: components.ActionFlee, Utility: 0.95}, true
}

func seekMateCandidate(ctx *ActionContext, e ecs.Entity) (ActionCandidate, bool) {
	if !ctx.Maps.ActiveMate.Has(e) {
		return ActionCandidate{}, false
	}
	return ActionCandidate{Kind: components.ActionSeekMate, Utility: 0.9}, true
}

// herbivoreEvaluator covers Rabbit/Deer: drink below thirst threshold,
// graze below hunger threshold (herd-boosted, fear-suppressed), rest below
// energy threshold, flee from fear, and seek an already-matched mate.
func herbivoreEvaluator(ctx *ActionContext, e ecs.Entity, fear *FearSystem, group *GroupSystem) []ActionCandidate {
	stats := ctx.Maps.Stats.Get(e)
	sp := ctx.speciesFor(e)
	if sp == nil {
		return nil
	}

	var candidates []ActionCandidate

	if stats.Thirst.Ratio() <= sp.ThirstCriticalRatio {
		candidates = append(candidates, ActionCandidate{Kind: components.ActionDrinkWater, Utility: 1 - stats.Thirst.Ratio()})
	}

	if stats.Hunger.Ratio() <= sp.HungerCriticalRatio {
		u := (1 - stats.Hunger.Ratio())
		if group != nil {
			u *= group.RestGrazeUtilityBonus(e)
		}
		if fear != nil && fear.maps.Fear.Has(e) {
			u *= 1 - fear.maps.Fear.Get(e).Level*0.5 // fear suppresses graze
		}
		candidates = append(candidates, ActionCandidate{Kind: components.ActionGraze, Utility: u})
	}

	if stats.Energy.Ratio() <= sp.EnergyCriticalRatio {
		u := 1 - stats.Energy.Ratio()
		if group != nil {
			u *= group.RestGrazeUtilityBonus(e)
		}
		candidates = append(candidates, ActionCandidate{Kind: components.ActionRest, Utility: u})
	}

	if c, ok := seekMateCandidate(ctx, e); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fleeCandidate(ctx, e, fear); ok {
		candidates = append(candidates, c)
	}

	return candidates
}

// predatorEvaluator covers Fox/Wolf: prefer an available carcass over
// hunting live prey, otherwise hunt the nearest prey entity within vision
// radius (pack-boosted). Predators never flee or accrue fear: FearSystem is
// restricted to prey classes.
func predatorEvaluator(ctx *ActionContext, e ecs.Entity, fear *FearSystem, group *GroupSystem) []ActionCandidate {
	stats := ctx.Maps.Stats.Get(e)
	sp := ctx.speciesFor(e)
	if sp == nil {
		return nil
	}

	var candidates []ActionCandidate

	if stats.Thirst.Ratio() <= sp.ThirstCriticalRatio {
		candidates = append(candidates, ActionCandidate{Kind: components.ActionDrinkWater, Utility: 1 - stats.Thirst.Ratio()})
	}

	if stats.Hunger.Ratio() <= sp.HungerCriticalRatio {
		here := ctx.Maps.TilePos.Get(e).Tile
		hungerDeficit := 1 - stats.Hunger.Ratio()

		if carcass, ok := findNearestCarcass(ctx, here, sp.VisionRadius); ok {
			candidates = append(candidates, ActionCandidate{Kind: components.ActionEatFood, Utility: hungerDeficit * 1.1, Target: carcass, HasTarget: true})
		}

		if prey, ok := findNearestPrey(ctx, e, here, sp.VisionRadius); ok {
			u := hungerDeficit
			if group != nil {
				u *= group.HuntUtilityBonus(e)
			}
			candidates = append(candidates, ActionCandidate{Kind: components.ActionHunt, Utility: u, Target: prey, HasTarget: true})
		}
	}

	if stats.Energy.Ratio() <= sp.EnergyCriticalRatio {
		candidates = append(candidates, ActionCandidate{Kind: components.ActionRest, Utility: 1 - stats.Energy.Ratio()})
	}

	if c, ok := seekMateCandidate(ctx, e); ok {
		candidates = append(candidates, c)
	}

	return candidates
}

// omnivoreEvaluator covers Raccoon/Bear: graze and carcass-scavenge
// candidates compete on hunger, at a discount relative to a pure predator
// or pure herbivore since omnivores are less specialized at either. It
// offers no Hunt candidate, so omnivores never chase live prey.
func omnivoreEvaluator(ctx *ActionContext, e ecs.Entity, fear *FearSystem, group *GroupSystem) []ActionCandidate {
	stats := ctx.Maps.Stats.Get(e)
	sp := ctx.speciesFor(e)
	if sp == nil {
		return nil
	}

	var candidates []ActionCandidate

	if stats.Thirst.Ratio() <= sp.ThirstCriticalRatio {
		candidates = append(candidates, ActionCandidate{Kind: components.ActionDrinkWater, Utility: 1 - stats.Thirst.Ratio()})
	}

	if stats.Hunger.Ratio() <= sp.HungerCriticalRatio {
		hungerDeficit := 1 - stats.Hunger.Ratio()
		here := ctx.Maps.TilePos.Get(e).Tile

		grazeUtility := hungerDeficit * 0.8
		if fear != nil && fear.maps.Fear.Has(e) {
			grazeUtility *= 1 - fear.maps.Fear.Get(e).Level*0.5
		}
		candidates = append(candidates, ActionCandidate{Kind: components.ActionGraze, Utility: grazeUtility})

		if carcass, ok := findNearestCarcass(ctx, here, sp.VisionRadius); ok {
			candidates = append(candidates, ActionCandidate{Kind: components.ActionEatFood, Utility: hungerDeficit, Target: carcass, HasTarget: true})
		}
	}

	if stats.Energy.Ratio() <= sp.EnergyCriticalRatio {
		candidates = append(candidates, ActionCandidate{Kind: components.ActionRest, Utility: 1 - stats.Energy.Ratio()})
	}

	if c, ok := seekMateCandidate(ctx, e); ok {
		candidates = append(candidates, c)
	}
	if c, ok := fleeCandidate(ctx, e, fear); ok {
		candidates = append(candidates, c)
	}

	return candidates
}

// findNearestCarcass scans every Carcass entity for the closest one within
// radius. Carcasses are rare enough per chunk that a direct component scan
// beats maintaining a second spatial index just for them.
func findNearestCarcass(ctx *ActionContext, from components.IVec2, radius float32) (ecs.Entity, bool) {
	query := ctx.Maps.CarcassFilter.Query()
	var best ecs.Entity
	var bestDist int64 = -1
	found := false
	limit := int64(radius * radius)
	for query.Next() {
		e := query.Entity()
		if !ctx.Maps.TilePos.Has(e) {
			continue
		}
		d := from.DistSq(ctx.Maps.TilePos.Get(e).Tile)
		if d > limit {
			continue
		}
		if !found || d < bestDist || (d == bestDist && e.ID() < best.ID()) {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

// findNearestPrey finds the nearest living herbivore/omnivore within
// radius via SpatialIndex, excluding anything already somebody else's
// HuntingTarget so multiple predators don't pile onto one victim.
func findNearestPrey(ctx *ActionContext, predator ecs.Entity, from components.IVec2, radius float32) (ecs.Entity, bool) {
	candidates := ctx.Spatial.EntitiesInRadius(from, radius, preyFilter(), predator)
	var best ecs.Entity
	var bestDist int64 = -1
	found := false
	for _, c := range candidates {
		if ctx.Maps.HuntingTarget.Has(c) || ctx.Maps.Carcass.Has(c) {
			continue
		}
		if !ctx.Maps.TilePos.Has(c) {
			continue
		}
		d := from.DistSq(ctx.Maps.TilePos.Get(c).Tile)
		if !found || d < bestDist || (d == bestDist && c.ID() < best.ID()) {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func preyFilter() ClassFilter {
	return ClassFilter{Herbivore: true, Omnivore: true}
}
