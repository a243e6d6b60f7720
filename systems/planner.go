package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

// PlannerSystem runs in the Planning phase: emits replan triggers on state
// transitions, drains the ReplanQueue under a per-tick budget, and assigns
// each drained entity the highest-utility action its species evaluator
// returns.
type PlannerSystem struct {
	world   *ecs.World
	maps    *Maps
	spatial *SpatialIndex
	fear    *FearSystem
	group   *GroupSystem
	actions *ActionSystem
	cfg     *config.Config

	queue *ReplanQueue

	wasCritical map[ecs.Entity]bool
	lastHealth  map[ecs.Entity]float32
	wasPanicked map[ecs.Entity]bool
	wanderSince map[ecs.Entity]uint64
}

func NewPlannerSystem(world *ecs.World, maps *Maps, spatial *SpatialIndex, fear *FearSystem, group *GroupSystem, actions *ActionSystem, cfg *config.Config) *PlannerSystem {
	return &PlannerSystem{
		world:   world,
		maps:    maps,
		spatial: spatial,
		fear:    fear,
		group:   group,
		actions: actions,
		cfg:     cfg,
		queue:   NewReplanQueue(),

		wasCritical: make(map[ecs.Entity]bool),
		lastHealth:  make(map[ecs.Entity]float32),
		wasPanicked: make(map[ecs.Entity]bool),
		wanderSince: make(map[ecs.Entity]uint64),
	}
}

// QueueLen exposes the current ReplanQueue depth for telemetry.
func (p *PlannerSystem) QueueLen() int { return p.queue.Len() }

func (p *PlannerSystem) Run(ctx *ActionContext, tick uint64) {
	p.scanTriggers(tick)
	p.drain(ctx, tick)
}

// scanTriggers emits replans only on state transitions, never every tick,
// matching the "each emits only on state transition" rule.
func (p *PlannerSystem) scanTriggers(tick uint64) {
	query := ecs.NewFilter1[components.Stats](p.world).Query()
	for query.Next() {
		e := query.Entity()
		if p.maps.Carcass.Has(e) {
			continue
		}
		sp := p.speciesOf(e)
		if sp == nil {
			continue
		}
		stats := query.Get()

		critical := stats.Hunger.Ratio() <= sp.HungerCriticalRatio ||
			stats.Thirst.Ratio() <= sp.ThirstCriticalRatio ||
			stats.Energy.Ratio() <= sp.EnergyCriticalRatio
		if critical && !p.wasCritical[e] {
			p.queue.Push(e, ReplanNormal)
		}
		p.wasCritical[e] = critical

		if prev, ok := p.lastHealth[e]; ok && stats.Health.Current < prev {
			p.queue.Push(e, ReplanHigh)
		}
		p.lastHealth[e] = stats.Health.Current
	}

	if p.fear != nil {
		fearQuery := ecs.NewFilter1[components.FearState](p.world).Query()
		for fearQuery.Next() {
			e := fearQuery.Entity()
			panicked := p.fear.Panicked(e)
			if panicked && !p.wasPanicked[e] {
				p.queue.Push(e, ReplanHigh)
			}
			p.wasPanicked[e] = panicked
		}
	}

	idleReset := p.cfg.Scheduler.IdleResetTicks
	if idleReset == 0 {
		idleReset = 200
	}
	actionQuery := p.maps.ActionFilter.Query()
	seenWandering := make(map[ecs.Entity]bool)
	for actionQuery.Next() {
		e := actionQuery.Entity()
		a := p.maps.Action.Get(e)
		if a.Kind != components.ActionWander {
			continue
		}
		seenWandering[e] = true
		start, ok := p.wanderSince[e]
		if !ok {
			p.wanderSince[e] = tick
			continue
		}
		if tick-start >= idleReset {
			p.queue.Push(e, ReplanNormal)
			p.wanderSince[e] = tick
		}
	}
	for e := range p.wanderSince {
		if !seenWandering[e] {
			delete(p.wanderSince, e)
		}
	}

	// Every entity without an ActiveAction is both newly idle and a
	// completion/failure trigger target; queueing it drives it straight
	// into this tick's drain since Planning precedes ActionExecution.
	creatureQuery := ecs.NewFilter1[components.Creature](p.world).Query()
	for creatureQuery.Next() {
		e := creatureQuery.Entity()
		if p.maps.Carcass.Has(e) || p.maps.Action.Has(e) {
			continue
		}
		p.queue.Push(e, ReplanNormal)
	}
}

func (p *PlannerSystem) drain(ctx *ActionContext, tick uint64) {
	budget := p.cfg.Scheduler.PlannerBudget
	if budget <= 0 {
		budget = 64
	}
	high, normal := p.queue.Drain(budget)

	for _, e := range high {
		p.replan(ctx, e, tick, true)
	}
	for _, e := range normal {
		p.replan(ctx, e, tick, false)
	}
}

// replan cancels e's current action (unless it's non-interruptible and
// this replan came from the normal lane) and assigns the evaluator's
// top-scoring candidate, falling back to WanderAction.
func (p *PlannerSystem) replan(ctx *ActionContext, e ecs.Entity, tick uint64, highPriority bool) {
	if !p.world.Alive(e) || p.maps.Carcass.Has(e) {
		return
	}

	if p.maps.Action.Has(e) {
		a := p.maps.Action.Get(e)
		if !highPriority && priorityFor(a.Kind) == PriorityUrgent {
			return // non-interruptible: a Normal replan yields to an in-progress Flee
		}
	}

	if p.actions != nil {
		p.actions.CancelAction(ctx, e)
	} else if p.maps.Action.Has(e) {
		p.maps.Action.Remove(e)
	}

	sp := p.speciesOf(e)
	if sp == nil {
		return
	}
	class := p.maps.Creature.Get(e).Class
	evaluator := evaluatorForClass(class)
	candidates := evaluator(ctx, e, p.fear, p.group)

	best, found := selectBest(candidates, sp.UtilityMinThreshold)
	if !found {
		p.maps.Action.Add(e, &components.ActiveAction{Kind: components.ActionWander, StartTick: tick, Phase: components.PhaseNeedPath})
		return
	}

	p.maps.Action.Add(e, &components.ActiveAction{
		Kind:      best.Kind,
		StartTick: tick,
		Phase:     components.PhaseNeedPath,
		Target:    best.Target,
		HasTarget: best.HasTarget,
		TargetCell: best.Cell,
		HasCell:    best.HasCell,
	})
}

func selectBest(candidates []ActionCandidate, threshold float32) (ActionCandidate, bool) {
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Utility > candidates[j].Utility })
	if len(candidates) == 0 || candidates[0].Utility < threshold {
		return ActionCandidate{}, false
	}
	return candidates[0], true
}

func (p *PlannerSystem) speciesOf(e ecs.Entity) *config.SpeciesConfig {
	if !p.maps.Creature.Has(e) {
		return nil
	}
	return p.cfg.SpeciesByName(p.maps.Creature.Get(e).Species)
}
