package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

func newTestGroup(minSize, maxSize int, formationRadius, cohesionRadius float32) (*GroupSystem, *ecs.World, *Maps, *SpatialIndex) {
	w := ecs.NewWorld()
	maps := NewMaps(w)
	spatial := NewSpatialIndex()
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{GroupCheckIntervalTicks: 1},
		Species: []config.SpeciesConfig{
			{Name: "wolf", Class: "predator", GroupFormation: config.GroupFormationConfig{
				Enabled: true, GroupType: "pack", MinSize: minSize, MaxSize: maxSize,
				FormationRadius: formationRadius, CohesionRadius: cohesionRadius, ReformationCooldownTicks: 50,
			}},
		},
	}
	return NewGroupSystem(w, maps, spatial, cfg), w, maps, spatial
}

func spawnGroupable(w *ecs.World, maps *Maps, spatial *SpatialIndex, tile components.IVec2) ecs.Entity {
	e := w.NewEntity()
	maps.Creature.Add(e, &components.Creature{Name: "wolf", Species: "wolf", Class: components.ClassPredator})
	maps.TilePos.Add(e, &components.TilePosition{Tile: tile})
	spatial.Insert(e, tile, components.ClassPredator)
	return e
}

func TestGroupFormsClusterAboveMinSize(t *testing.T) {
	g, w, maps, spatial := newTestGroup(3, 10, 5, 10)
	a := spawnGroupable(w, maps, spatial, components.IVec2{X: 0, Y: 0})
	b := spawnGroupable(w, maps, spatial, components.IVec2{X: 1, Y: 0})
	c := spawnGroupable(w, maps, spatial, components.IVec2{X: 2, Y: 0})

	g.Run(0)

	leaders := 0
	for _, e := range []ecs.Entity{a, b, c} {
		if maps.PackLeader.Has(e) {
			leaders++
		}
	}
	if leaders != 1 {
		t.Fatalf("expected exactly one leader to emerge from a 3-entity cluster, got %d", leaders)
	}
	for _, e := range []ecs.Entity{a, b, c} {
		if !maps.PackLeader.Has(e) && !maps.PackMember.Has(e) {
			t.Errorf("entity %v should belong to the formed group", e)
		}
	}
}

func TestGroupDoesNotFormBelowMinSize(t *testing.T) {
	g, w, maps, spatial := newTestGroup(3, 10, 5, 10)
	a := spawnGroupable(w, maps, spatial, components.IVec2{X: 0, Y: 0})
	b := spawnGroupable(w, maps, spatial, components.IVec2{X: 1, Y: 0})

	g.Run(0)

	if maps.PackLeader.Has(a) || maps.PackLeader.Has(b) || maps.PackMember.Has(a) || maps.PackMember.Has(b) {
		t.Error("expected no group to form from only 2 entities when min_size=3")
	}
}

func TestGroupCohesionDropsDistantMember(t *testing.T) {
	g, w, maps, spatial := newTestGroup(2, 10, 5, 3)
	a := spawnGroupable(w, maps, spatial, components.IVec2{X: 0, Y: 0})
	b := spawnGroupable(w, maps, spatial, components.IVec2{X: 1, Y: 0})
	g.Run(0)

	var leader, member ecs.Entity
	if maps.PackLeader.Has(a) {
		leader, member = a, b
	} else {
		leader, member = b, a
	}

	// Move the member far outside cohesion radius and re-run without
	// re-triggering formation (GroupCheckIntervalTicks=1 still runs
	// formation, but the member is already grouped so it's skipped there).
	maps.TilePos.Get(member).Tile = components.IVec2{X: 100, Y: 100}
	spatial.Update(member, components.IVec2{X: 100, Y: 100}, components.ClassPredator)

	g.Run(1)

	if maps.PackMember.Has(member) {
		t.Error("expected distant member to be dropped from the group")
	}
	if !maps.ReformationCooldown.Has(member) {
		t.Error("expected dropped member to receive a reformation cooldown")
	}
	_ = leader
}

func TestGroupDissolvesBelowMinSize(t *testing.T) {
	g, w, maps, spatial := newTestGroup(2, 10, 5, 3)
	a := spawnGroupable(w, maps, spatial, components.IVec2{X: 0, Y: 0})
	b := spawnGroupable(w, maps, spatial, components.IVec2{X: 1, Y: 0})
	g.Run(0)

	var leader, member ecs.Entity
	if maps.PackLeader.Has(a) {
		leader, member = a, b
	} else {
		leader, member = b, a
	}

	maps.TilePos.Get(member).Tile = components.IVec2{X: 100, Y: 100}
	spatial.Update(member, components.IVec2{X: 100, Y: 100}, components.ClassPredator)
	g.Run(1)

	if maps.PackLeader.Has(leader) {
		t.Error("expected a 2-member min_size=2 group to dissolve once it drops to 1 member")
	}
	if !maps.ReformationCooldown.Has(leader) {
		t.Error("expected the former leader to receive a reformation cooldown after dissolution")
	}
}
