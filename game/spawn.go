package game

import (
	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/systems"
	"github.com/pthm-cable/simcore/world"
)

// SpawnInitialPopulation places config.Cfg().Population.Initial animals onto
// random walkable tiles, distributed across species by Population.Weights,
// and registers each with the lifetime tracker.
func SpawnInitialPopulation(g *Game) {
	walkable := collectWalkableTiles(g.terrain)
	if len(walkable) == 0 {
		return
	}

	weighted := weightedSpecies(g.cfg)
	if len(weighted) == 0 {
		return
	}

	for i := 0; i < g.cfg.Population.Initial; i++ {
		sp := pickWeighted(weighted, g.rng.Float64())
		tile := walkable[g.rng.Intn(len(walkable))]
		sex := components.SexFemale
		if g.rng.Intn(2) == 0 {
			sex = components.SexMale
		}

		e := systems.SpawnAnimal(g.ecsWorld, g.maps, sp, tile, sex, g.spatial)
		g.lifetime.Register(e.ID(), int32(g.tick), sp.Name)
	}
}

// collectWalkableTiles enumerates every walkable tile across every loaded
// chunk, for uniform-random initial placement.
func collectWalkableTiles(w *world.World) []components.IVec2 {
	var out []components.IVec2
	for _, chunk := range w.Chunks() {
		for ly := int32(0); ly < components.ChunkSize; ly++ {
			for lx := int32(0); lx < components.ChunkSize; lx++ {
				if !chunk.TileAt(lx, ly).Walkable {
					continue
				}
				out = append(out, components.IVec2{
					X: chunk.Coord.X*components.ChunkSize + lx,
					Y: chunk.Coord.Y*components.ChunkSize + ly,
				})
			}
		}
	}
	return out
}

type weightedEntry struct {
	sp     *config.SpeciesConfig
	weight float64
}

// weightedSpecies builds the per-species weight list the initial
// population draws from, skipping species absent from Population.Weights or
// weighted at or below zero.
func weightedSpecies(cfg *config.Config) []weightedEntry {
	var out []weightedEntry
	for i := range cfg.Species {
		w := cfg.Population.Weights[cfg.Species[i].Name]
		if w <= 0 {
			continue
		}
		out = append(out, weightedEntry{sp: &cfg.Species[i], weight: w})
	}
	return out
}

// pickWeighted draws a species using r in [0,1) against the entries' total
// weight, falling back to the last entry to tolerate floating point
// rounding at the boundary.
func pickWeighted(entries []weightedEntry, r float64) *config.SpeciesConfig {
	var total float64
	for _, e := range entries {
		total += e.weight
	}
	target := r * total
	var cum float64
	for _, e := range entries {
		cum += e.weight
		if target < cum {
			return e.sp
		}
	}
	return entries[len(entries)-1].sp
}
