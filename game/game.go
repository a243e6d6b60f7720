// Package game wires every system in systems/ and telemetry/ into a single
// tick loop: the six-phase schedule (Planning, ActionExecution, Movement,
// Stats/Reproduction, Cleanup) driven over one ark World, one TileWorld, and
// the species config loaded into config.Cfg().
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/simcore/components"
	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/systems"
	"github.com/pthm-cable/simcore/telemetry"
	"github.com/pthm-cable/simcore/world"
)

// Options configures a Game at construction time.
type Options struct {
	Seed        int64
	WorldPath   string // empty uses a generated flat world
	SpeciesCSV  string // optional per-species CSV override
	LogStats    bool
	SnapshotDir string // optional telemetry CSV output directory
}

// Game bundles the ark World, the TileWorld, every system, and the
// telemetry collectors into one tick-driven simulation.
type Game struct {
	ecsWorld *ecs.World
	terrain  *world.World
	cfg      *config.Config
	rng      *rand.Rand

	maps       *systems.Maps
	spatial    *systems.SpatialIndex
	vegetation *systems.VegetationGrid
	pathGrid   *systems.PathGrid
	pathCache  *systems.PathCache
	pathQueue  *systems.PathfindingQueue

	relations   *systems.RelationsSystem
	actionSys   *systems.ActionSystem
	fearSys     *systems.FearSystem
	groupSys    *systems.GroupSystem
	plannerSys  *systems.PlannerSystem
	reproSys    *systems.ReproductionSystem
	lifecycle   *systems.LifecycleSystem
	statsSys    *systems.StatsSystem
	movementSys *systems.MovementSystem
	spatialSys  *systems.SpatialMaintenanceSystem

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	lifetime  *telemetry.LifetimeTracker
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager
	health    *HealthChecker

	tick     uint64
	rngSeed  int64
	logStats bool
}

// New builds a Game ready to Tick, having spawned the initial population
// over the loaded or generated terrain.
func New(opts Options) (*Game, error) {
	cfg := config.Cfg()

	if opts.SpeciesCSV != "" {
		if err := config.LoadSpeciesCSV(cfg, opts.SpeciesCSV); err != nil {
			return nil, err
		}
	}

	var terrain *world.World
	if opts.WorldPath != "" {
		result, err := world.LoadFile(opts.WorldPath)
		if err != nil {
			return nil, err
		}
		terrain = result.World
	} else {
		terrain = world.GenerateFlat(4)
	}

	ecsWorld := ecs.NewWorld()
	maps := systems.NewMaps(ecsWorld)
	spatial := systems.NewSpatialIndex()
	vegetation := systems.NewVegetationGrid(terrain, opts.Seed)
	for _, chunk := range terrain.Chunks() {
		vegetation.SeedChunk(chunk)
	}

	pathGrid := systems.NewPathGrid(terrain.Walkable)
	pathCache := systems.NewPathCache(cfg.Scheduler.PathCacheTTLTicks)
	pathQueue := systems.NewPathfindingQueue(pathGrid, pathCache)

	relations := systems.NewRelationsSystem(ecsWorld, maps)
	actionSys := systems.NewActionSystem(relations)
	fearSys := systems.NewFearSystem(ecsWorld, maps, spatial, cfg)
	groupSys := systems.NewGroupSystem(ecsWorld, maps, spatial, cfg)
	plannerSys := systems.NewPlannerSystem(ecsWorld, maps, spatial, fearSys, groupSys, actionSys, cfg)
	reproSys := systems.NewReproductionSystem(ecsWorld, maps, spatial, relations, cfg)
	lifecycle := systems.NewLifecycleSystem(ecsWorld, maps, cfg)
	statsSys := systems.NewStatsSystem(ecsWorld, maps)
	movementSys := systems.NewMovementSystem(fearSys)
	spatialSys := systems.NewSpatialMaintenanceSystem(maps)

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindowSec, float32(cfg.Derived.TickInterval))
	lifetime := telemetry.NewLifetimeTracker()
	bookmarks := telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize)
	perf := telemetry.NewPerfCollector(600)

	output, err := telemetry.NewOutputManager(opts.SnapshotDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	reproSys.Telemetry = collector
	reproSys.Lifetime = lifetime
	lifecycle.Telemetry = collector
	lifecycle.Lifetime = lifetime

	g := &Game{
		ecsWorld: ecsWorld,
		terrain:  terrain,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(opts.Seed)),

		maps:       maps,
		spatial:    spatial,
		vegetation: vegetation,
		pathGrid:   pathGrid,
		pathCache:  pathCache,
		pathQueue:  pathQueue,

		relations:   relations,
		actionSys:   actionSys,
		fearSys:     fearSys,
		groupSys:    groupSys,
		plannerSys:  plannerSys,
		reproSys:    reproSys,
		lifecycle:   lifecycle,
		statsSys:    statsSys,
		movementSys: movementSys,
		spatialSys:  spatialSys,

		perf:      perf,
		collector: collector,
		lifetime:  lifetime,
		bookmarks: bookmarks,
		output:    output,
		health:    NewHealthChecker(cfg),

		rngSeed:  opts.Seed,
		logStats: opts.LogStats,
	}

	SpawnInitialPopulation(g)

	return g, nil
}

// Tick advances the simulation by exactly one tick, running every system
// in its ordered phase and updating telemetry.
func (g *Game) Tick() {
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhasePlanning)
	actx := g.actionContext()
	g.plannerSys.Run(actx, g.tick)

	g.perf.StartPhase(telemetry.PhaseActionExecution)
	g.actionSys.Run(actx)
	g.pathQueue.Drain(g.cfg.Scheduler.PathfindingBudget, g.tick)

	g.perf.StartPhase(telemetry.PhaseMovement)
	g.movementSys.Run(actx)

	g.perf.StartPhase(telemetry.PhaseStats)
	g.statsSys.Run()
	g.fearSys.Run(g.tick)
	g.groupSys.Run(g.tick)
	g.vegetation.ProcessEvents(g.tick)

	g.perf.StartPhase(telemetry.PhaseReproduction)
	g.reproSys.Run(g.tick)

	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.relations.CleanupOrphans()
	g.lifecycle.Run(g.tick)
	g.spatialSys.Run()
	g.pathCache.Evict(g.tick)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.health.Check(g, g.perf.Stats())

	g.perf.EndTick()
	g.tick++
}

// Run advances the simulation until maxTicks is reached (0 means forever).
func (g *Game) Run(maxTicks uint64) {
	for maxTicks == 0 || g.tick < maxTicks {
		g.Tick()
	}
}

// Close flushes and closes any telemetry output files.
func (g *Game) Close() error {
	return g.output.Close()
}

// CurrentTick returns the current simulation tick.
func (g *Game) CurrentTick() uint64 {
	return g.tick
}

// PerfStats returns the current rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perf.Stats()
}

// actionContext builds the shared bundle every system needs this tick.
func (g *Game) actionContext() *systems.ActionContext {
	return &systems.ActionContext{
		Maps:       g.maps,
		World:      g.terrain,
		Spatial:    g.spatial,
		Vegetation: g.vegetation,
		PathQueue:  g.pathQueue,
		Cfg:        g.cfg,
		Tick:       g.tick,
		Telemetry:  g.collector,
		Lifetime:   g.lifetime,
	}
}

// flushTelemetry checks whether the current stats window is due, and if so
// flushes it, checks for bookmarks, and writes both to the output manager.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(int32(g.tick)) {
		return
	}

	herbivores, predators, omnivores, energyValues := g.samplePopulation()
	meanBiomass := g.vegetation.MeanForageableBiomass()
	carcasses := g.carcassCount()

	stats := g.collector.Flush(int32(g.tick), herbivores, predators, omnivores, energyValues, meanBiomass, carcasses)

	if g.logStats {
		stats.LogStats()
		g.perf.Stats().LogStats()
	}
	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(g.perf.Stats(), stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, b := range g.bookmarks.Check(stats) {
		if g.logStats {
			b.LogBookmark()
		}
		if err := g.output.WriteBookmark(b); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// samplePopulation counts living animals per class and collects their
// current energy values, for percentile telemetry and the health checker's
// stuck-entity/population views.
func (g *Game) samplePopulation() (herbivores, predators, omnivores int, energyValues []float64) {
	query := ecs.NewFilter1[components.Creature](g.ecsWorld).Query()
	for query.Next() {
		e := query.Entity()
		if g.maps.Carcass.Has(e) {
			continue
		}
		creature := g.maps.Creature.Get(e)
		switch creature.Class {
		case components.ClassHerbivore:
			herbivores++
		case components.ClassPredator:
			predators++
		case components.ClassOmnivore:
			omnivores++
		}
		if g.maps.Stats.Has(e) {
			energyValues = append(energyValues, float64(g.maps.Stats.Get(e).Energy.Current))
			g.lifetime.UpdateEnergy(e.ID(), g.maps.Stats.Get(e).Energy.Current)
		}
	}
	return herbivores, predators, omnivores, energyValues
}

func (g *Game) carcassCount() int {
	query := g.maps.CarcassFilter.Query()
	n := 0
	for query.Next() {
		n++
	}
	return n
}
