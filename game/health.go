package game

import (
	"log/slog"

	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/telemetry"
)

// HealthChecker watches per-tick runtime health independent of the
// statistical population bookmarks telemetry.BookmarkDetector already
// covers: a below-threshold real TPS, entities stuck in the same action for
// too long, entities caught in a pathfinding retry loop, and total
// extinction. Low TPS and extinction log once per occurrence via a latched
// flag; the stuck-entity and retry-loop warnings are not latched and log on
// every checked tick while their count is above zero.
type HealthChecker struct {
	cfg *config.Config

	tpsAlerted        bool
	extinctionAlerted bool
}

// NewHealthChecker builds a checker reading its thresholds from cfg.Telemetry.
func NewHealthChecker(cfg *config.Config) *HealthChecker {
	return &HealthChecker{cfg: cfg}
}

// Check inspects the current tick's state and logs any newly-triggered
// condition. Called once per tick from Game.Tick's Telemetry phase.
func (h *HealthChecker) Check(g *Game, perf telemetry.PerfStats) {
	h.checkTPS(perf)
	h.checkStuckAndLoopingEntities(g)
	h.checkExtinction(g)
}

func (h *HealthChecker) checkTPS(perf telemetry.PerfStats) {
	threshold := h.cfg.Telemetry.TPSAlertThreshold
	if threshold <= 0 || perf.TicksPerSecond <= 0 {
		return
	}
	if perf.TicksPerSecond < threshold {
		if !h.tpsAlerted {
			slog.Warn("tps_below_threshold", "tps", perf.TicksPerSecond, "threshold", threshold)
			h.tpsAlerted = true
		}
		return
	}
	h.tpsAlerted = false
}

func (h *HealthChecker) checkStuckAndLoopingEntities(g *Game) {
	stuckTicks := h.cfg.Telemetry.StuckEntityTicks
	loopThreshold := h.cfg.Telemetry.ActionLoopThreshold

	query := g.maps.ActionFilter.Query()
	var stuck, looping int
	for query.Next() {
		e := query.Entity()
		a := g.maps.Action.Get(e)
		if stuckTicks > 0 && g.tick > a.StartTick && g.tick-a.StartTick > stuckTicks {
			stuck++
		}
		if loopThreshold > 0 && a.Retries >= loopThreshold {
			looping++
		}
	}
	if stuck > 0 {
		slog.Warn("entities_stuck", "count", stuck, "threshold_ticks", stuckTicks, "tick", g.tick)
	}
	if looping > 0 {
		slog.Warn("entities_action_looping", "count", looping, "retry_threshold", loopThreshold, "tick", g.tick)
	}
}

func (h *HealthChecker) checkExtinction(g *Game) {
	herbivores, predators, omnivores, _ := g.samplePopulation()
	alive := herbivores + predators + omnivores
	if alive == 0 {
		if !h.extinctionAlerted {
			slog.Warn("population_extinct", "tick", g.tick)
			h.extinctionAlerted = true
		}
		return
	}
	h.extinctionAlerted = false
}
