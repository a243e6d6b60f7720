package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end, by behavioral class.
	HerbivoreCount int `csv:"herbivores"`
	PredatorCount  int `csv:"predators"`
	OmnivoreCount  int `csv:"omnivores"`

	// Events during window, by behavioral class.
	HerbivoreBirths int `csv:"herbivore_births"`
	PredatorBirths  int `csv:"predator_births"`
	OmnivoreBirths  int `csv:"omnivore_births"`
	HerbivoreDeaths int `csv:"herbivore_deaths"`
	PredatorDeaths  int `csv:"predator_deaths"`
	OmnivoreDeaths  int `csv:"omnivore_deaths"`

	// Hunting
	HuntsAttempted int     `csv:"hunts_attempted"`
	HuntsHit       int     `csv:"hunts_hit"`
	Kills          int     `csv:"kills"`
	HitRate        float64 `csv:"hit_rate"`
	KillRate       float64 `csv:"kill_rate"`

	// Grazing
	GrazeEvents int     `csv:"graze_events"`
	GrazeAmount float64 `csv:"graze_amount"`

	// Energy distribution across all living animals (sampled at window end).
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Vegetation utilization: mean biomass ratio across forageable tiles.
	MeanVegetationBiomass float64 `csv:"vegetation_biomass"`

	// Carcasses awaiting consumption at window end.
	CarcassCount int `csv:"carcasses"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("herbivores", s.HerbivoreCount),
		slog.Int("predators", s.PredatorCount),
		slog.Int("omnivores", s.OmnivoreCount),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("predator_births", s.PredatorBirths),
		slog.Int("omnivore_births", s.OmnivoreBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("predator_deaths", s.PredatorDeaths),
		slog.Int("omnivore_deaths", s.OmnivoreDeaths),
		slog.Int("hunts_attempted", s.HuntsAttempted),
		slog.Int("hunts_hit", s.HuntsHit),
		slog.Int("kills", s.Kills),
		slog.Float64("hit_rate", s.HitRate),
		slog.Float64("kill_rate", s.KillRate),
		slog.Int("graze_events", s.GrazeEvents),
		slog.Float64("graze_amount", s.GrazeAmount),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("vegetation_biomass", s.MeanVegetationBiomass),
		slog.Int("carcasses", s.CarcassCount),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"herbivores", s.HerbivoreCount,
		"predators", s.PredatorCount,
		"omnivores", s.OmnivoreCount,
		"herbivore_births", s.HerbivoreBirths,
		"predator_births", s.PredatorBirths,
		"omnivore_births", s.OmnivoreBirths,
		"herbivore_deaths", s.HerbivoreDeaths,
		"predator_deaths", s.PredatorDeaths,
		"omnivore_deaths", s.OmnivoreDeaths,
		"hunts_attempted", s.HuntsAttempted,
		"hunts_hit", s.HuntsHit,
		"kills", s.Kills,
		"hit_rate", s.HitRate,
		"kill_rate", s.KillRate,
		"graze_events", s.GrazeEvents,
		"graze_amount", s.GrazeAmount,
		"energy_mean", s.EnergyMean,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"vegetation_biomass", s.MeanVegetationBiomass,
		"carcasses", s.CarcassCount,
	)
}
