package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/telemetry"
	"github.com/pthm-cable/simcore/world"
)

// ActionResult is the outcome of one action step: InProgress | Success |
// Failed | TriggerFollowup(new_action). TriggerFollowup is its own
// StatusTriggerFollowup status, with the new action carried in the Followup
// field, so callers switch on Status alone rather than on a type.
type ActionResult struct {
	Status   ActionStatus
	Followup *components.ActiveAction // set only when Status == StatusTriggerFollowup
}

type ActionStatus uint8

const (
	StatusInProgress ActionStatus = iota
	StatusSuccess
	StatusFailed
	StatusTriggerFollowup
)

// ActionContext bundles the shared resources every concrete action needs to
// read world state and post pathfinding/movement requests.
type ActionContext struct {
	Maps       *Maps
	World      *world.World
	Spatial    *SpatialIndex
	Vegetation *VegetationGrid
	PathQueue  *PathfindingQueue
	Cfg        *config.Config
	Tick       uint64

	// Telemetry and Lifetime are optional; both tolerate a nil ActionContext
	// field (checked at each call site), so tests can build an ActionContext
	// without wiring them up.
	Telemetry *telemetry.Collector
	Lifetime  *telemetry.LifetimeTracker
}

// Action is the per-kind behavior implementation. ActiveAction stays a
// tagged struct (see components.ActiveAction's doc comment) but the
// behavior dispatched over Kind is ordinary interface polymorphism, since
// only the component storage, not the code operating on it, needs to be
// dense for ark's archetype tables.
type Action interface {
	Kind() components.ActionKind

	// TargetTile resolves where the entity must walk before OnArrival can
	// run. ok=false means no movement is required (OnArrival runs immediately).
	TargetTile(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) (components.IVec2, bool)

	// OnArrival executes the action's effect once movement (if any) is
	// complete, or immediately if TargetTile reported ok=false.
	OnArrival(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction) ActionResult

	// Cancel releases action-specific state (e.g. hunting/mating relations)
	// when the action is interrupted before completion.
	Cancel(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction)
}

// ActionSystem drives every entity's ActiveAction state machine during the
// ActionExecution phase: NeedPath (request a path or run OnArrival directly)
// and Executing (call OnArrival, apply its result). The WaitingForPath ->
// Moving transition and the Moving -> Executing arrival transition are
// owned by MovementSystem, which runs in the next phase and consumes
// PathReady results.
type ActionSystem struct {
	registry map[components.ActionKind]Action
}

// NewActionSystem builds the dispatch table from the concrete action set.
// relations wires HuntAction's bidirectional ActiveHunter/HuntingTarget
// bookkeeping.
func NewActionSystem(relations *RelationsSystem) *ActionSystem {
	s := &ActionSystem{registry: make(map[components.ActionKind]Action)}
	for _, a := range []Action{
		&WanderAction{},
		&DrinkWaterAction{},
		&GrazeAction{},
		&EatFoodAction{},
		&HuntAction{relations: relations},
		&MoveTowardsAction{},
		&SeekMateAction{},
		&FleeAction{},
		&FleeFromCellAction{},
		&RestAction{},
	} {
		s.registry[a.Kind()] = a
	}
	return s
}

// priorityFor maps an action kind to its PathfindingQueue lane:
// urgent=flee, normal=food/water/mate/hunt, lazy=wander.
func priorityFor(kind components.ActionKind) RequestPriority {
	switch kind {
	case components.ActionFlee, components.ActionFleeFromCell:
		return PriorityUrgent
	case components.ActionWander:
		return PriorityLazy
	default:
		return PriorityNormal
	}
}

// speciesFor looks up an entity's species tuning by its Creature.Species
// key, or nil if the entity has no Creature component or the species isn't
// configured.
func (ctx *ActionContext) speciesFor(e ecs.Entity) *config.SpeciesConfig {
	if !ctx.Maps.Creature.Has(e) {
		return nil
	}
	return ctx.Cfg.SpeciesByName(ctx.Maps.Creature.Get(e).Species)
}

// maxRetriesFor returns the configured retry budget for an action's lane.
func maxRetriesFor(kind components.ActionKind, cfg *config.Config) int {
	if priorityFor(kind) == PriorityUrgent {
		return cfg.Scheduler.PathMaxRetriesUrgent
	}
	return cfg.Scheduler.PathMaxRetriesNormal
}

// Run advances every entity carrying an ActiveAction by one ActionExecution
// step. Entities in WaitingForPath or Moving are left untouched here; they
// advance in MovementSystem.Run.
func (s *ActionSystem) Run(ctx *ActionContext) {
	query := ctx.Maps.ActionFilter.Query()
	var entities []ecs.Entity
	for query.Next() {
		entities = append(entities, query.Entity())
	}

	for _, e := range entities {
		a := ctx.Maps.Action.Get(e)
		action, ok := s.registry[a.Kind]
		if !ok {
			continue
		}

		switch a.Phase {
		case components.PhaseNeedPath:
			s.stepNeedPath(ctx, e, a, action)
		case components.PhaseExecuting:
			s.stepExecuting(ctx, e, a, action)
		}
		// PhaseWaitingForPath and PhaseMoving are owned by MovementSystem.
	}
}

func (s *ActionSystem) stepNeedPath(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction, action Action) {
	dest, needsMove := action.TargetTile(ctx, e, a)
	if !needsMove {
		a.Phase = components.PhaseExecuting
		s.stepExecuting(ctx, e, a, action)
		return
	}

	here := ctx.Maps.TilePos.Get(e).Tile
	if here == dest {
		a.Phase = components.PhaseExecuting
		s.stepExecuting(ctx, e, a, action)
		return
	}

	id := ctx.PathQueue.RequestPath(e, here, dest, priorityFor(a.Kind), a.Kind.String(), ctx.Tick)
	a.RequestID = id
	a.Phase = components.PhaseWaitingForPath
}

func (s *ActionSystem) stepExecuting(ctx *ActionContext, e ecs.Entity, a *components.ActiveAction, action Action) {
	res := action.OnArrival(ctx, e, a)
	switch res.Status {
	case StatusInProgress:
		// stays in Executing; action owns any multi-tick bookkeeping
	case StatusSuccess, StatusFailed:
		action.Cancel(ctx, e, a)
		ctx.Maps.Action.Remove(e)
	case StatusTriggerFollowup:
		action.Cancel(ctx, e, a)
		if res.Followup != nil {
			ctx.Maps.Action.Get(e).Kind = res.Followup.Kind
			*ctx.Maps.Action.Get(e) = *res.Followup
		} else {
			ctx.Maps.Action.Remove(e)
		}
	}
}

// CancelAction clears an entity's in-flight pathfinding request (if any)
// and runs its Cancel hook, used by the planner whenever a replan replaces
// the entity's current action.
func (s *ActionSystem) CancelAction(ctx *ActionContext, e ecs.Entity) {
	if !ctx.Maps.Action.Has(e) {
		return
	}
	a := ctx.Maps.Action.Get(e)
	if action, ok := s.registry[a.Kind]; ok {
		action.Cancel(ctx, e, a)
	}
	if a.Phase == components.PhaseWaitingForPath {
		ctx.PathQueue.Cancel(a.RequestID)
	}
	if ctx.Maps.Movement.Has(e) {
		ctx.Maps.Movement.Get(e).Reset()
	}
	ctx.Maps.Action.Remove(e)
}
