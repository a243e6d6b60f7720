package components

import "github.com/mlange-42/ark/ecs"

// GroupType is the kind of coordination bonus a formed group confers.
type GroupType uint8

const (
	GroupPack   GroupType = iota // predator hunting group
	GroupHerd                    // herbivore grazing/defense group
	GroupFlock
	GroupWarren
	GroupColony
	GroupSchool
)

func (g GroupType) String() string {
	names := [...]string{"pack", "herd", "flock", "warren", "colony", "school"}
	if int(g) < len(names) {
		return names[g]
	}
	return "unknown"
}

// PackLeader is attached to the chosen leader of a formed group. Members
// must each carry a matching PackMember pointing back at this entity; the
// two are kept consistent by systems/group.go's deferred-removal pass.
type PackLeader struct {
	Members   []ecs.Entity
	GroupType GroupType
}

// PackMember is attached to every non-leader member of a formed group.
type PackMember struct {
	Leader    ecs.Entity
	GroupType GroupType
}

// ReformationCooldown is attached to an entity after its group dissolves,
// preventing it from being picked up by the formation system again until
// the cooldown elapses.
type ReformationCooldown struct {
	TicksRemaining uint64
}
