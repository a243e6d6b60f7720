package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
)

// Maps bundles the per-component-type ark accessors every system needs,
// built once against the live world, mirroring a Game struct's bundled
// accessors (posMap, velMap, energyMap, ...) generalized to this component
// set.
type Maps struct {
	Creature      *ecs.Map1[components.Creature]
	TilePos       *ecs.Map1[components.TilePosition]
	SpatialParent *ecs.Map1[components.SpatialParent]
	Stats         *ecs.Map1[components.Stats]
	Speed         *ecs.Map1[components.MovementSpeed]
	Movement      *ecs.Map1[components.MovementComponent]
	Action        *ecs.Map1[components.ActiveAction]

	Age        *ecs.Map1[components.Age]
	Sex        *ecs.Map1[components.Sex]
	ReproCD    *ecs.Map1[components.ReproductionCooldown]
	WellFed    *ecs.Map1[components.WellFedStreak]
	Pregnancy  *ecs.Map1[components.Pregnancy]
	Mother     *ecs.Map1[components.Mother]
	Carcass    *ecs.Map1[components.Carcass]

	Fear *ecs.Map1[components.FearState]

	ActiveHunter  *ecs.Map1[components.ActiveHunter]
	HuntingTarget *ecs.Map1[components.HuntingTarget]
	ActiveMate    *ecs.Map1[components.ActiveMate]
	MatingTarget  *ecs.Map1[components.MatingTarget]

	PackLeader          *ecs.Map1[components.PackLeader]
	PackMember          *ecs.Map1[components.PackMember]
	ReformationCooldown *ecs.Map1[components.ReformationCooldown]

	ActionFilter  *ecs.Filter1[components.ActiveAction]
	CarcassFilter *ecs.Filter1[components.Carcass]

	SpatialParentFilter *ecs.Filter2[components.TilePosition, components.SpatialParent]
}

// NewMaps constructs every accessor against world. Call once at startup.
func NewMaps(world *ecs.World) *Maps {
	return &Maps{
		Creature:      ecs.NewMap1[components.Creature](world),
		TilePos:       ecs.NewMap1[components.TilePosition](world),
		SpatialParent: ecs.NewMap1[components.SpatialParent](world),
		Stats:         ecs.NewMap1[components.Stats](world),
		Speed:         ecs.NewMap1[components.MovementSpeed](world),
		Movement:      ecs.NewMap1[components.MovementComponent](world),
		Action:        ecs.NewMap1[components.ActiveAction](world),

		Age:       ecs.NewMap1[components.Age](world),
		Sex:       ecs.NewMap1[components.Sex](world),
		ReproCD:   ecs.NewMap1[components.ReproductionCooldown](world),
		WellFed:   ecs.NewMap1[components.WellFedStreak](world),
		Pregnancy: ecs.NewMap1[components.Pregnancy](world),
		Mother:    ecs.NewMap1[components.Mother](world),
		Carcass:   ecs.NewMap1[components.Carcass](world),

		Fear: ecs.NewMap1[components.FearState](world),

		ActiveHunter:  ecs.NewMap1[components.ActiveHunter](world),
		HuntingTarget: ecs.NewMap1[components.HuntingTarget](world),
		ActiveMate:    ecs.NewMap1[components.ActiveMate](world),
		MatingTarget:  ecs.NewMap1[components.MatingTarget](world),

		PackLeader:          ecs.NewMap1[components.PackLeader](world),
		PackMember:          ecs.NewMap1[components.PackMember](world),
		ReformationCooldown: ecs.NewMap1[components.ReformationCooldown](world),

		ActionFilter:  ecs.NewFilter1[components.ActiveAction](world),
		CarcassFilter: ecs.NewFilter1[components.Carcass](world),

		SpatialParentFilter: ecs.NewFilter2[components.TilePosition, components.SpatialParent](world),
	}
}
