package components

import "github.com/mlange-42/ark/ecs"

// ActiveHunter is attached to a predator pursuing a specific prey entity.
// Always paired with a HuntingTarget on the prey; see systems/relations.go
// for the atomic add/remove helpers that keep both sides consistent.
type ActiveHunter struct {
	Target      ecs.Entity
	StartedTick uint64
}

// HuntingTarget is attached to prey being pursued by a specific predator.
type HuntingTarget struct {
	Predator    ecs.Entity
	StartedTick uint64
}

// ActiveMate is attached to an entity that has paired off with a specific
// partner for mating. Always paired with a MatingTarget on the partner.
type ActiveMate struct {
	Partner     ecs.Entity
	StartedTick uint64
}

// MatingTarget is the reciprocal half of ActiveMate.
type MatingTarget struct {
	Partner ecs.Entity
}
