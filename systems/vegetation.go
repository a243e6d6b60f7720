package systems

import (
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/world"
)

// VegetationCell is a single forageable tile's biomass state.
type VegetationCell struct {
	Biomass         float32
	LastEventTick   uint64
	PendingRegrowth bool
}

// regrowEvent is a scheduled biomass increase for one cell.
type regrowEvent struct {
	cell      components.IVec2
	scheduled uint64
	seq       uint64 // insertion order, breaks ties within the same tick
}

// VegetationGrid is the per-cell biomass resource with scheduled,
// event-driven regrowth. Cells exist only where TileWorld reports
// forageable terrain; initial biomass is seeded from an opensimplex noise
// field so patches of abundance/scarcity look natural instead of uniform,
// generalizing a noise-driven resource-capacity model from a continuous
// float grid to discrete forageable tiles.
type VegetationGrid struct {
	w     *world.World
	cells map[components.IVec2]*VegetationCell
	// chunkCells indexes chunk coordinate -> cell coordinates in that chunk,
	// so find_best_cell/sample_biomass only enumerate cells within the
	// enclosing chunk band instead of scanning every known cell.
	chunkCells map[components.IVec2][]components.IVec2

	pending []regrowEvent // scheduled regrowth events, not yet due
	nextSeq uint64

	noise opensimplex.Noise

	eventsProcessed uint64
}

// NewVegetationGrid creates an empty grid over w, seeded by seed for the
// initial-biomass noise field.
func NewVegetationGrid(w *world.World, seed int64) *VegetationGrid {
	return &VegetationGrid{
		w:          w,
		cells:      make(map[components.IVec2]*VegetationCell),
		chunkCells: make(map[components.IVec2][]components.IVec2),
		noise:      opensimplex.New(seed),
	}
}

// SeedChunk lazily creates cells for every forageable tile in a chunk,
// called once when the chunk is loaded. Idempotent.
func (g *VegetationGrid) SeedChunk(chunk *components.Chunk) {
	cfg := config.Cfg().Vegetation
	scale := cfg.NoiseScale
	if scale <= 0 {
		scale = 0.08
	}
	for ly := int32(0); ly < components.ChunkSize; ly++ {
		for lx := int32(0); lx < components.ChunkSize; lx++ {
			tile := chunk.TileAt(lx, ly)
			if !tile.Kind.Forageable() {
				continue
			}
			coord := components.IVec2{
				X: chunk.Coord.X*components.ChunkSize + lx,
				Y: chunk.Coord.Y*components.ChunkSize + ly,
			}
			if _, exists := g.cells[coord]; exists {
				continue
			}
			n := (g.noise.Eval2(float64(coord.X)*scale, float64(coord.Y)*scale) + 1) / 2 // [-1,1] -> [0,1]
			biomass := cfg.InitialBiomassMin + n*(cfg.InitialBiomassMax-cfg.InitialBiomassMin)
			if biomass > cfg.BiomassMax {
				biomass = cfg.BiomassMax
			}
			g.cells[coord] = &VegetationCell{Biomass: biomass}
			g.chunkCells[chunk.Coord] = append(g.chunkCells[chunk.Coord], coord)
		}
	}
}

// Cell returns the cell at a tile coordinate, or nil if it isn't a
// vegetation cell (non-forageable terrain, or chunk not yet seeded).
func (g *VegetationGrid) Cell(tile components.IVec2) *VegetationCell {
	return g.cells[tile]
}

// Consume reduces a cell's biomass by amount, clamped to zero, and
// schedules a Regrow event after the global Vegetation.RegrowDelayTicks. Unknown
// cells are ignored. Returns the amount actually removed.
func (g *VegetationGrid) Consume(tile components.IVec2, amount float32, atTick uint64) float32 {
	cell := g.cells[tile]
	if cell == nil {
		return 0
	}
	taken := amount
	if taken > cell.Biomass {
		taken = cell.Biomass
	}
	cell.Biomass -= taken
	if cell.Biomass < 0 {
		cell.Biomass = 0
	}
	cell.LastEventTick = atTick

	cfg := config.Cfg().Vegetation
	if !cell.PendingRegrowth && cell.Biomass < cfg.BiomassMax {
		cell.PendingRegrowth = true
		g.scheduleRegrow(tile, atTick+cfg.RegrowDelayTicks)
	}
	return taken
}

func (g *VegetationGrid) scheduleRegrow(tile components.IVec2, at uint64) {
	g.nextSeq++
	g.pending = append(g.pending, regrowEvent{cell: tile, scheduled: at, seq: g.nextSeq})
}

// ProcessEvents runs every due Regrow event at or before tick, grouped by
// chunk to maximize cache locality, ordered by scheduled tick then
// insertion order within a tick; regrowth is idempotent to reorderings
// within the same tick since each step only ever adds growth_step once per
// event, never more.
func (g *VegetationGrid) ProcessEvents(tick uint64) {
	cfg := config.Cfg().Vegetation

	due := g.pending[:0:0]
	remaining := g.pending[:0]
	for _, ev := range g.pending {
		if ev.scheduled <= tick {
			due = append(due, ev)
		} else {
			remaining = append(remaining, ev)
		}
	}
	g.pending = remaining

	sort.Slice(due, func(i, j int) bool {
		if due[i].scheduled != due[j].scheduled {
			return due[i].scheduled < due[j].scheduled
		}
		ci, cj := due[i].cell.ChunkCoord(), due[j].cell.ChunkCoord()
		if ci != cj {
			if ci.Y != cj.Y {
				return ci.Y < cj.Y
			}
			return ci.X < cj.X
		}
		return due[i].seq < due[j].seq
	})

	for _, ev := range due {
		cell := g.cells[ev.cell]
		if cell == nil {
			continue // cell removed/unknown since being scheduled: ignored
		}
		cell.Biomass += cfg.GrowthStep
		if cell.Biomass > cfg.BiomassMax {
			cell.Biomass = cfg.BiomassMax
		}
		cell.LastEventTick = tick
		if cell.Biomass < cfg.BiomassMax {
			g.scheduleRegrow(ev.cell, tick+cfg.RegrowDelayTicks)
		} else {
			cell.PendingRegrowth = false
		}
		g.eventsProcessed++
	}
}

// RandomSample applies a bulk disturbance to a set of cells, e.g. fire or
// trampling, reducing biomass by amount at each location.
func (g *VegetationGrid) RandomSample(locations []components.IVec2, amount float32, atTick uint64) {
	for _, loc := range locations {
		g.Consume(loc, amount, atTick)
	}
}

// cellsNear enumerates vegetation cells within the chunk band enclosing
// radius tiles of center, without a distance check (callers filter).
func (g *VegetationGrid) cellsNear(center components.IVec2, radius float32) []components.IVec2 {
	chunkRadius := int32(radius+float32(components.ChunkSize)-1) / components.ChunkSize
	centerCC := center.ChunkCoord()
	var out []components.IVec2
	for dcy := -chunkRadius; dcy <= chunkRadius; dcy++ {
		for dcx := -chunkRadius; dcx <= chunkRadius; dcx++ {
			cc := components.IVec2{X: centerCC.X + dcx, Y: centerCC.Y + dcy}
			out = append(out, g.chunkCells[cc]...)
		}
	}
	return out
}

// FindBestCell returns the highest-biomass cell above threshold within
// radius tiles of center, ties broken by smallest squared distance.
func (g *VegetationGrid) FindBestCell(center components.IVec2, radius float32, threshold float32) (components.IVec2, float32, bool) {
	var best components.IVec2
	var bestBiomass float32 = -1
	var bestDistSq int64
	found := false
	radiusSq := int64(radius * radius)

	for _, coord := range g.cellsNear(center, radius) {
		if center.DistSq(coord) > radiusSq {
			continue
		}
		cell := g.cells[coord]
		if cell == nil || cell.Biomass < threshold {
			continue
		}
		distSq := center.DistSq(coord)
		if !found || cell.Biomass > bestBiomass || (cell.Biomass == bestBiomass && distSq < bestDistSq) {
			best, bestBiomass, bestDistSq, found = coord, cell.Biomass, distSq, true
		}
	}
	return best, bestBiomass, found
}

// SampleBiomass returns every cell with biomass above threshold within
// radius tiles of center.
func (g *VegetationGrid) SampleBiomass(center components.IVec2, radius float32, threshold float32) []components.IVec2 {
	radiusSq := int64(radius * radius)
	var out []components.IVec2
	for _, coord := range g.cellsNear(center, radius) {
		if center.DistSq(coord) > radiusSq {
			continue
		}
		if cell := g.cells[coord]; cell != nil && cell.Biomass >= threshold {
			out = append(out, coord)
		}
	}
	return out
}

// EventsProcessed returns the running count of regrow events applied, for
// telemetry.
func (g *VegetationGrid) EventsProcessed() uint64 {
	return g.eventsProcessed
}

// PendingEvents returns the number of scheduled-but-not-due regrow events,
// for telemetry.
func (g *VegetationGrid) PendingEvents() int {
	return len(g.pending)
}

// MeanForageableBiomass returns the average biomass across every known
// cell, for the telemetry window's vegetation-health summary.
func (g *VegetationGrid) MeanForageableBiomass() float64 {
	if len(g.cells) == 0 {
		return 0
	}
	var sum float64
	for _, c := range g.cells {
		sum += float64(c.Biomass)
	}
	return sum / float64(len(g.cells))
}
