// Package config provides configuration loading and access for the
// simulation core: embedded YAML defaults, an optional user overlay file,
// and an optional per-species CSV override.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	World      WorldConfig      `yaml:"world"`
	Vegetation VegetationConfig `yaml:"vegetation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Population PopulationConfig `yaml:"population"`
	Species    []SpeciesConfig  `yaml:"species"`

	// Derived values computed after loading.
	Derived DerivedConfig `yaml:"-"`
}

// SchedulerConfig controls the fixed-rate tick loop and per-tick budgets.
type SchedulerConfig struct {
	TickRateHz              float64 `yaml:"tick_rate_hz"`
	PlannerBudget           int     `yaml:"planner_budget"`
	PathfindingBudget       int     `yaml:"pathfinding_budget"`
	GroupCheckIntervalTicks uint64  `yaml:"group_check_interval_ticks"`
	PathCacheTTLTicks       uint64  `yaml:"path_cache_ttl_ticks"`
	PathMaxRetriesNormal    int     `yaml:"path_max_retries_normal"`
	PathMaxRetriesUrgent    int     `yaml:"path_max_retries_urgent"`
	RetargetThresholdTiles  float32 `yaml:"retarget_threshold_tiles"`
	IdleResetTicks          uint64  `yaml:"idle_reset_ticks"`
}

// WorldConfig controls world-loading and forage-query parameters.
type WorldConfig struct {
	DefaultWorldPath           string  `yaml:"default_world_path"`
	ForageThreshold            float32 `yaml:"forage_threshold"`
	MaxPathIterationMultiplier int     `yaml:"max_path_iteration_multiplier"`
}

// VegetationConfig parameterizes the per-cell biomass/regrowth model.
type VegetationConfig struct {
	BiomassMax        float32 `yaml:"biomass_max"`
	GrowthStep        float32 `yaml:"growth_step"`
	RegrowDelayTicks  uint64  `yaml:"regrow_delay_ticks"`
	InitialBiomassMin float32 `yaml:"initial_biomass_min"`
	InitialBiomassMax float32 `yaml:"initial_biomass_max"`
	NoiseScale        float64 `yaml:"noise_scale"`
	DisturbanceChance float64 `yaml:"disturbance_chance"`
	DisturbanceAmount float32 `yaml:"disturbance_amount"`
}

// TelemetryConfig controls stats windows and health-alert thresholds.
type TelemetryConfig struct {
	StatsWindowSec             float64 `yaml:"stats_window_sec"`
	TPSSampleIntervalSec       float64 `yaml:"tps_sample_interval_sec"`
	BookmarkHistorySize        int     `yaml:"bookmark_history_size"`
	TPSAlertThreshold          float64 `yaml:"tps_alert_threshold"`
	StuckEntityTicks           uint64  `yaml:"stuck_entity_ticks"`
	PopulationCrashWindowTicks uint64  `yaml:"population_crash_window_ticks"`
	PopulationCrashDropPercent float64 `yaml:"population_crash_drop_percent"`
	ActionLoopThreshold        int     `yaml:"action_loop_threshold"`
	StableEcosystemCVThreshold float64 `yaml:"stable_ecosystem_cv_threshold"`
	StableEcosystemWindows     int     `yaml:"stable_ecosystem_windows"`
}

// PopulationConfig is the initial spawn configuration: total count and
// per-species weights (species not listed get weight 0).
type PopulationConfig struct {
	Initial int                `yaml:"initial"`
	Weights map[string]float64 `yaml:"weights"`
}

// GroupFormationConfig configures a species' pack/herd/etc. behavior.
type GroupFormationConfig struct {
	Enabled                  bool    `yaml:"enabled"`
	GroupType                string  `yaml:"group_type"` // pack|herd|flock|warren|colony|school
	MinSize                  int     `yaml:"min_size"`
	MaxSize                  int     `yaml:"max_size"`
	FormationRadius          float32 `yaml:"formation_radius"`
	CohesionRadius           float32 `yaml:"cohesion_radius"`
	ReformationCooldownTicks uint64  `yaml:"reformation_cooldown_ticks"`
}

// SpeciesConfig bundles every per-species tuning knob: stat maxes/decay,
// thresholds, movement speed, group formation, reproduction and fear
// parameters, and action utility coefficients.
type SpeciesConfig struct {
	Name  string `yaml:"name" csv:"name"`
	Class string `yaml:"class" csv:"class"` // herbivore|predator|omnivore

	HealthMax       float32 `yaml:"health_max" csv:"health_max"`
	HungerMax       float32 `yaml:"hunger_max" csv:"hunger_max"`
	ThirstMax       float32 `yaml:"thirst_max" csv:"thirst_max"`
	EnergyMax       float32 `yaml:"energy_max" csv:"energy_max"`
	HungerDecayRate float32 `yaml:"hunger_decay_rate" csv:"hunger_decay_rate"`
	ThirstDecayRate float32 `yaml:"thirst_decay_rate" csv:"thirst_decay_rate"`
	EnergyDecayRate float32 `yaml:"energy_decay_rate" csv:"energy_decay_rate"`

	HungerCriticalRatio float32 `yaml:"hunger_critical_ratio" csv:"hunger_critical_ratio"`
	ThirstCriticalRatio float32 `yaml:"thirst_critical_ratio" csv:"thirst_critical_ratio"`
	EnergyCriticalRatio float32 `yaml:"energy_critical_ratio" csv:"energy_critical_ratio"`
	SatietyRatio        float32 `yaml:"satiety_ratio" csv:"satiety_ratio"`

	MovementSpeed float32 `yaml:"movement_speed" csv:"movement_speed"`
	VisionRadius  float32 `yaml:"vision_radius" csv:"vision_radius"`
	BiteSize      float32 `yaml:"bite_size" csv:"bite_size"`

	MatureAtTicks             uint64  `yaml:"mature_at_ticks" csv:"mature_at_ticks"`
	GestationTicks            uint64  `yaml:"gestation_ticks" csv:"gestation_ticks"`
	LitterSizeMin             int     `yaml:"litter_size_min" csv:"litter_size_min"`
	LitterSizeMax             int     `yaml:"litter_size_max" csv:"litter_size_max"`
	MatingSearchRadius        float32 `yaml:"mating_search_radius" csv:"mating_search_radius"`
	WellFedRequiredTicks      int     `yaml:"well_fed_required_ticks" csv:"well_fed_required_ticks"`
	ReproductionCooldownTicks uint64  `yaml:"reproduction_cooldown_ticks" csv:"reproduction_cooldown_ticks"`

	FearRadius          float32 `yaml:"fear_radius" csv:"fear_radius"`
	FearGainPerPredator float32 `yaml:"fear_gain_per_predator" csv:"fear_gain_per_predator"`
	FearDecayPerTick    float32 `yaml:"fear_decay_per_tick" csv:"fear_decay_per_tick"`
	FearPanicThreshold  float32 `yaml:"fear_panic_threshold" csv:"fear_panic_threshold"`
	FearSpeedBonus      float32 `yaml:"fear_speed_bonus" csv:"fear_speed_bonus"`

	HuntSuccessBase     float32 `yaml:"hunt_success_base" csv:"hunt_success_base"`
	HuntMeleeRangeTiles float32 `yaml:"hunt_melee_range_tiles" csv:"hunt_melee_range_tiles"`
	CarcassDecayTicks   int     `yaml:"carcass_decay_ticks" csv:"carcass_decay_ticks"`
	CarcassBiomass      float32 `yaml:"carcass_biomass" csv:"carcass_biomass"`

	UtilityMinThreshold float32 `yaml:"utility_min_threshold" csv:"utility_min_threshold"`

	GroupFormation GroupFormationConfig `yaml:"group_formation" csv:"-"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickInterval  float64 // seconds per tick, 1/TickRateHz
	SpeciesByName map[string]*SpeciesConfig
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// LoadSpeciesCSV applies per-species rows from a CSV file to the
// already-loaded Species[] slice, matched by the "name" column. A matched
// row replaces that species' CSV-mapped fields as a whole (columns absent
// from the file become zero values); its group_formation block is kept from
// the loaded config. Rows for species names not already present are
// appended. Lets an operator tune a single species without hand-editing
// YAML.
func LoadSpeciesCSV(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening species csv: %w", err)
	}
	defer f.Close()

	var rows []SpeciesConfig
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return fmt.Errorf("parsing species csv: %w", err)
	}

	for _, row := range rows {
		merged := false
		for i := range cfg.Species {
			if cfg.Species[i].Name == row.Name {
				row.GroupFormation = cfg.Species[i].GroupFormation
				cfg.Species[i] = row
				merged = true
				break
			}
		}
		if !merged {
			cfg.Species = append(cfg.Species, row)
		}
	}

	cfg.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Scheduler.TickRateHz <= 0 {
		c.Scheduler.TickRateHz = 10
	}
	c.Derived.TickInterval = 1.0 / c.Scheduler.TickRateHz

	c.Derived.SpeciesByName = make(map[string]*SpeciesConfig, len(c.Species))
	for i := range c.Species {
		c.Derived.SpeciesByName[c.Species[i].Name] = &c.Species[i]
	}
}

// SpeciesByName looks up a species' config by name, or nil if unknown.
func (c *Config) SpeciesByName(name string) *SpeciesConfig {
	if sp, ok := c.Derived.SpeciesByName[name]; ok {
		return sp
	}
	for i := range c.Species {
		if c.Species[i].Name == name {
			return &c.Species[i]
		}
	}
	return nil
}

// WriteYAML writes the configuration as loaded (including merged defaults)
// to path, for run-reproducibility alongside telemetry output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
