package telemetry

import "github.com/pthm-cable/simcore/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	herbivoreBirths int
	predatorBirths  int
	omnivoreBirths  int
	herbivoreDeaths int
	predatorDeaths  int
	omnivoreDeaths  int

	huntsAttempted int
	huntsHit       int
	kills          int
	grazeEvents    int
	grazeAmount    float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		windowStartTick:     0,
	}
}

// RecordHuntAttempt records a hunt attempt.
func (c *Collector) RecordHuntAttempt() {
	c.huntsAttempted++
}

// RecordHuntHit records a successful hunt strike.
func (c *Collector) RecordHuntHit() {
	c.huntsHit++
}

// RecordKill records a kill.
func (c *Collector) RecordKill() {
	c.kills++
}

// RecordGraze records a grazing event and the biomass consumed.
func (c *Collector) RecordGraze(amount float64) {
	c.grazeEvents++
	c.grazeAmount += amount
}

// RecordBirth records a birth event for the given behavioral class.
func (c *Collector) RecordBirth(class components.EntityClass) {
	switch class {
	case components.ClassHerbivore:
		c.herbivoreBirths++
	case components.ClassPredator:
		c.predatorBirths++
	case components.ClassOmnivore:
		c.omnivoreBirths++
	}
}

// RecordDeath records a death event for the given behavioral class.
func (c *Collector) RecordDeath(class components.EntityClass) {
	switch class {
	case components.ClassHerbivore:
		c.herbivoreDeaths++
	case components.ClassPredator:
		c.predatorDeaths++
	case components.ClassOmnivore:
		c.omnivoreDeaths++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller supplies the population snapshot taken at flush time: counts
// per behavioral class, energy values across all living animals (for
// percentile calculation), mean vegetation biomass across forageable
// tiles, and the number of carcasses awaiting consumption.
func (c *Collector) Flush(
	currentTick int32,
	herbivoreCount, predatorCount, omnivoreCount int,
	energyValues []float64,
	meanVegetationBiomass float64,
	carcassCount int,
) WindowStats {
	var hitRate, killRate float64
	if c.huntsAttempted > 0 {
		hitRate = float64(c.huntsHit) / float64(c.huntsAttempted)
	}
	if c.huntsHit > 0 {
		killRate = float64(c.kills) / float64(c.huntsHit)
	}

	energyMean, energyP10, energyP50, energyP90 := ComputeEnergyStats(energyValues)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		HerbivoreCount: herbivoreCount,
		PredatorCount:  predatorCount,
		OmnivoreCount:  omnivoreCount,

		HerbivoreBirths: c.herbivoreBirths,
		PredatorBirths:  c.predatorBirths,
		OmnivoreBirths:  c.omnivoreBirths,
		HerbivoreDeaths: c.herbivoreDeaths,
		PredatorDeaths:  c.predatorDeaths,
		OmnivoreDeaths:  c.omnivoreDeaths,

		HuntsAttempted: c.huntsAttempted,
		HuntsHit:       c.huntsHit,
		Kills:          c.kills,
		HitRate:        hitRate,
		KillRate:       killRate,

		GrazeEvents: c.grazeEvents,
		GrazeAmount: c.grazeAmount,

		EnergyMean: energyMean,
		EnergyP10:  energyP10,
		EnergyP50:  energyP50,
		EnergyP90:  energyP90,

		MeanVegetationBiomass: meanVegetationBiomass,
		CarcassCount:          carcassCount,
	}

	c.windowStartTick = currentTick
	c.herbivoreBirths = 0
	c.predatorBirths = 0
	c.omnivoreBirths = 0
	c.herbivoreDeaths = 0
	c.predatorDeaths = 0
	c.omnivoreDeaths = 0
	c.huntsAttempted = 0
	c.huntsHit = 0
	c.kills = 0
	c.grazeEvents = 0
	c.grazeAmount = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
