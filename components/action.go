package components

import "github.com/mlange-42/ark/ecs"

// ActionKind identifies which concrete action an ActiveAction instance is
// executing. Go has no sum types, so ActiveAction is a tagged struct: Kind
// selects which of the fields below are meaningful, rather than one
// interface value per concrete action type. This keeps the component a
// plain, densely-stored struct (ark archetype tables want fixed layout)
// while ActionSystem dispatches each instance through its registry keyed
// by Kind.
type ActionKind uint8

const (
	ActionWander ActionKind = iota
	ActionDrinkWater
	ActionGraze
	ActionEatFood
	ActionHunt
	ActionMoveTowards
	ActionSeekMate
	ActionFlee
	ActionFleeFromCell
	ActionRest
)

func (k ActionKind) String() string {
	names := [...]string{"wander", "drink_water", "graze", "eat_food", "hunt", "move_towards", "seek_mate", "flee", "flee_from_cell", "rest"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ActionPhase is the common movement-using-action state machine:
// NeedPath -> WaitingForPath -> Moving -> Executing -> Success,
// with PathFailed retry branches back to NeedPath.
type ActionPhase uint8

const (
	PhaseNeedPath ActionPhase = iota
	PhaseWaitingForPath
	PhaseMoving
	PhaseExecuting
)

// ActiveAction is the currently-executing action instance attached to an
// entity, plus the bookkeeping its state machine needs. Not every field is
// used by every Kind: HuntAction and EatFoodAction use Target (SeekMateAction
// follows the ActiveMate partner instead), Wander, DrinkWater, Graze,
// MoveTowards and FleeFromCell use TargetCell, all movement-using actions
// use Phase/Retries/RequestID.
type ActiveAction struct {
	Kind      ActionKind
	StartTick uint64
	Phase     ActionPhase
	Target    ecs.Entity // prey/mate/relation target, if any
	HasTarget bool
	TargetCell IVec2 // vegetation cell / flee destination, if any
	HasCell    bool
	RequestID  uint64 // outstanding PathfindingQueue request id, if any
	Retries    int
}
