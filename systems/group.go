package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
)

// GroupSystem runs in the Stats/Reproduction phase: forms new packs/herds
// among ungrouped same-species entities, maintains cohesion of existing
// groups, and dissolves groups that fall below their minimum size.
type GroupSystem struct {
	world   *ecs.World
	maps    *Maps
	spatial *SpatialIndex
	cfg     *config.Config
}

func NewGroupSystem(world *ecs.World, maps *Maps, spatial *SpatialIndex, cfg *config.Config) *GroupSystem {
	return &GroupSystem{world: world, maps: maps, spatial: spatial, cfg: cfg}
}

func (g *GroupSystem) Run(tick uint64) {
	g.tickCooldowns()

	interval := g.cfg.Scheduler.GroupCheckIntervalTicks
	if interval == 0 {
		interval = 1
	}
	if tick%interval == 0 {
		g.formation(tick)
	}
	g.cohesion()
}

func (g *GroupSystem) tickCooldowns() {
	query := ecs.NewFilter1[components.ReformationCooldown](g.world).Query()
	var expired []ecs.Entity
	for query.Next() {
		e := query.Entity()
		c := query.Get()
		if c.TicksRemaining > 0 {
			c.TicksRemaining--
		}
		if c.TicksRemaining == 0 {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		g.maps.ReformationCooldown.Remove(e)
	}
}

// formation clusters ungrouped same-species entities within
// formation_radius of each other and promotes clusters at or above
// min_size to a PackLeader/PackMember group, truncated to max_size.
func (g *GroupSystem) formation(tick uint64) {
	bySpecies := make(map[string][]ecs.Entity)
	query := ecs.NewFilter1[components.Creature](g.world).Query()
	for query.Next() {
		e := query.Entity()
		if g.maps.PackLeader.Has(e) || g.maps.PackMember.Has(e) || g.maps.ReformationCooldown.Has(e) {
			continue
		}
		c := query.Get()
		sp := g.cfg.SpeciesByName(c.Species)
		if sp == nil || !sp.GroupFormation.Enabled {
			continue
		}
		bySpecies[c.Species] = append(bySpecies[c.Species], e)
	}

	for species, entities := range bySpecies {
		sp := g.cfg.SpeciesByName(species)
		sort.Slice(entities, func(i, j int) bool { return entities[i].ID() < entities[j].ID() })

		assigned := make(map[ecs.Entity]bool, len(entities))
		for _, seed := range entities {
			if assigned[seed] {
				continue
			}
			cluster := g.collectCluster(seed, entities, assigned, sp.GroupFormation.FormationRadius)
			if len(cluster) < sp.GroupFormation.MinSize {
				for _, m := range cluster {
					delete(assigned, m)
				}
				continue
			}
			if len(cluster) > sp.GroupFormation.MaxSize {
				cluster = cluster[:sp.GroupFormation.MaxSize]
			}
			g.formGroup(cluster, classifyGroup(sp.GroupFormation.GroupType))
		}
	}
}

// collectCluster does a breadth-first expansion over the spatial index,
// gathering every unassigned candidate transitively reachable within
// radius of some already-collected member.
func (g *GroupSystem) collectCluster(seed ecs.Entity, candidates []ecs.Entity, assigned map[ecs.Entity]bool, radius float32) []ecs.Entity {
	candidateSet := make(map[ecs.Entity]bool, len(candidates))
	for _, c := range candidates {
		candidateSet[c] = true
	}

	cluster := []ecs.Entity{seed}
	assigned[seed] = true
	frontier := []ecs.Entity{seed}

	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		if !g.maps.TilePos.Has(next) {
			continue
		}
		here := g.maps.TilePos.Get(next).Tile
		nearby := g.spatial.EntitiesInRadius(here, radius, AnyClass(), next)
		sort.Slice(nearby, func(i, j int) bool { return nearby[i].ID() < nearby[j].ID() })
		for _, n := range nearby {
			if assigned[n] || !candidateSet[n] {
				continue
			}
			assigned[n] = true
			cluster = append(cluster, n)
			frontier = append(frontier, n)
		}
	}
	return cluster
}

func (g *GroupSystem) formGroup(cluster []ecs.Entity, groupType components.GroupType) {
	leader := cluster[0]
	members := cluster[1:]

	memberEntities := make([]ecs.Entity, len(members))
	copy(memberEntities, members)
	g.maps.PackLeader.Add(leader, &components.PackLeader{Members: memberEntities, GroupType: groupType})
	for _, m := range members {
		g.maps.PackMember.Add(m, &components.PackMember{Leader: leader, GroupType: groupType})
	}
}

// cohesion drops members beyond cohesion_radius from their leader and
// dissolves groups that fall below min_size, applying both as a single
// deferred pass so every leader.Members list stays internally consistent.
func (g *GroupSystem) cohesion() {
	type dropout struct {
		leader ecs.Entity
		member ecs.Entity
	}
	var dropouts []dropout
	var dissolve []ecs.Entity

	query := ecs.NewFilter1[components.PackLeader](g.world).Query()
	var leaders []ecs.Entity
	for query.Next() {
		leaders = append(leaders, query.Entity())
	}
	sort.Slice(leaders, func(i, j int) bool { return leaders[i].ID() < leaders[j].ID() })

	for _, leader := range leaders {
		pl := g.maps.PackLeader.Get(leader)
		sp := g.speciesOf(leader)
		if sp == nil || !g.maps.TilePos.Has(leader) {
			dissolve = append(dissolve, leader)
			continue
		}
		leaderPos := g.maps.TilePos.Get(leader).Tile
		radius := sp.GroupFormation.CohesionRadius

		var remaining []ecs.Entity
		for _, m := range pl.Members {
			if !g.world.Alive(m) || !g.maps.TilePos.Has(m) {
				dropouts = append(dropouts, dropout{leader, m})
				continue
			}
			if float32(leaderPos.DistSq(g.maps.TilePos.Get(m).Tile)) > radius*radius {
				dropouts = append(dropouts, dropout{leader, m})
				continue
			}
			remaining = append(remaining, m)
		}

		if len(remaining)+1 < sp.GroupFormation.MinSize {
			dissolve = append(dissolve, leader)
		}
	}

	dissolveSet := make(map[ecs.Entity]bool, len(dissolve))
	for _, l := range dissolve {
		dissolveSet[l] = true
	}

	for _, d := range dropouts {
		if dissolveSet[d.leader] {
			continue // whole group dissolves below; no point trimming first
		}
		if g.maps.PackMember.Has(d.member) {
			g.cooldown(d.member)
			g.maps.PackMember.Remove(d.member)
		}
		if g.maps.PackLeader.Has(d.leader) {
			pl := g.maps.PackLeader.Get(d.leader)
			pl.Members = removeEntity(pl.Members, d.member)
		}
	}

	for _, leader := range dissolve {
		if !g.maps.PackLeader.Has(leader) {
			continue
		}
		pl := g.maps.PackLeader.Get(leader)
		for _, m := range pl.Members {
			if g.maps.PackMember.Has(m) {
				g.maps.PackMember.Remove(m)
			}
			g.cooldown(m)
		}
		g.cooldown(leader)
		g.maps.PackLeader.Remove(leader)
	}
}

func (g *GroupSystem) cooldown(e ecs.Entity) {
	if !g.world.Alive(e) {
		return
	}
	sp := g.speciesOf(e)
	ticks := uint64(100)
	if sp != nil && sp.GroupFormation.ReformationCooldownTicks > 0 {
		ticks = sp.GroupFormation.ReformationCooldownTicks
	}
	g.maps.ReformationCooldown.Add(e, &components.ReformationCooldown{TicksRemaining: ticks})
}

func (g *GroupSystem) speciesOf(e ecs.Entity) *config.SpeciesConfig {
	if !g.maps.Creature.Has(e) {
		return nil
	}
	return g.cfg.SpeciesByName(g.maps.Creature.Get(e).Species)
}

// HuntUtilityBonus returns the multiplicative Hunt-utility bonus for pack
// predators with at least one live pack-mate: +15% utility on Hunt actions
// when nearby pack-mates exist.
func (g *GroupSystem) HuntUtilityBonus(e ecs.Entity) float32 {
	if g.inGroupOfType(e, components.GroupPack) {
		return 1.15
	}
	return 1.0
}

// RestGrazeUtilityBonus returns the multiplicative Graze/Rest-utility bonus
// for herd herbivores: +10% utility on Graze and Rest when in herd.
func (g *GroupSystem) RestGrazeUtilityBonus(e ecs.Entity) float32 {
	if g.inGroupOfType(e, components.GroupHerd) {
		return 1.10
	}
	return 1.0
}

func (g *GroupSystem) inGroupOfType(e ecs.Entity, t components.GroupType) bool {
	if g.maps.PackLeader.Has(e) && len(g.maps.PackLeader.Get(e).Members) > 0 {
		return g.maps.PackLeader.Get(e).GroupType == t
	}
	if g.maps.PackMember.Has(e) {
		return g.maps.PackMember.Get(e).GroupType == t
	}
	return false
}

func classifyGroup(s string) components.GroupType {
	switch s {
	case "herd":
		return components.GroupHerd
	case "flock":
		return components.GroupFlock
	case "warren":
		return components.GroupWarren
	case "colony":
		return components.GroupColony
	case "school":
		return components.GroupSchool
	default:
		return components.GroupPack
	}
}

func removeEntity(s []ecs.Entity, target ecs.Entity) []ecs.Entity {
	out := s[:0]
	for _, e := range s {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}
