package components

import "github.com/mlange-42/ark/ecs"

// Sex is an entity's reproductive sex.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
)

// Age tracks ticks alive and the maturity gate for reproduction eligibility.
type Age struct {
	TicksAlive    uint64
	MatureAtTicks uint64
}

// Mature reports whether the entity has reached reproduction age.
func (a *Age) Mature() bool {
	return a.TicksAlive >= a.MatureAtTicks
}

// ReproductionCooldown counts down ticks before an entity may mate again.
type ReproductionCooldown struct {
	TicksRemaining uint64
}

// WellFedStreak counts consecutive ticks hunger has stayed below the
// species' satiety threshold; required before mate-seeking is eligible.
type WellFedStreak struct {
	Ticks int
}

// Pregnancy is attached to a female between successful mating and birth.
// Requires Age and Sex as structural prerequisites (enforced at spawn).
type Pregnancy struct {
	DueTick    uint64
	LitterSize int
	FatherID   ecs.Entity
}

// Mother records the parent of a juvenile, attached at birth.
type Mother struct {
	Entity ecs.Entity
}

// Carcass is attached in place of a dead animal's components; predators and
// omnivores may consume it until RemainingBiomass or the decay timer
// reaches zero.
type Carcass struct {
	RemainingBiomass    float32
	DecayTicksRemaining int
}
