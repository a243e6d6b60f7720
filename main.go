// Command simcore runs the tick-driven agent-based life simulation headless:
// no rendering, just the ECS tick loop and its telemetry/CSV output. A
// viewer or HTTP API is an external collaborator that would consume the
// same telemetry output directory.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/simcore/config"
	"github.com/pthm-cable/simcore/game"
)

var (
	seed        = flag.Int64("seed", 42, "RNG seed")
	tps         = flag.Float64("tps", 0, "Override scheduler tick rate in Hz (0 = use config)")
	worldPath   = flag.String("world", "", "Path to a persisted world file (empty = generated flat world)")
	configPath  = flag.String("config", "", "Path to a YAML config overlay (empty = embedded defaults)")
	speciesCSV  = flag.String("species-csv", "", "Path to a per-species CSV override")
	maxTicks    = flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = run forever)")
	outputDir   = flag.String("output", "", "Directory to write telemetry/perf/bookmark CSVs (empty = disabled)")
	logStats    = flag.Bool("log-stats", false, "Log telemetry and perf stats to the default logger on each flush")
	progressSec = flag.Int("progress-sec", 10, "Seconds between progress log lines (0 = disabled)")
)

const (
	exitConfigError = 2
	exitWorldError  = 3
	exitGameError   = 4
)

func main() {
	flag.Parse()
	configureLogging()

	if err := loadConfig(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitConfigError)
	}

	g, err := game.New(game.Options{
		Seed:        *seed,
		WorldPath:   *worldPath,
		SpeciesCSV:  *speciesCSV,
		LogStats:    *logStats,
		SnapshotDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(exitWorldError)
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Error("failed to close telemetry output", "error", err)
		}
	}()

	if err := run(g); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(exitGameError)
	}
}

// run advances the simulation until maxTicks (0 = forever), logging
// periodic progress at progressSec intervals.
func run(g *game.Game) error {
	slog.Info("starting simulation", "seed", *seed, "max_ticks", *maxTicks, "world", *worldPath)

	start := time.Now()
	lastReport := start
	reportEvery := time.Duration(*progressSec) * time.Second

	for *maxTicks == 0 || g.CurrentTick() < *maxTicks {
		g.Tick()

		if reportEvery > 0 && time.Since(lastReport) >= reportEvery {
			elapsed := time.Since(start)
			rate := float64(g.CurrentTick()) / elapsed.Seconds()
			slog.Info("progress", "tick", g.CurrentTick(), "ticks_per_sec", int(rate), "elapsed", elapsed.Round(time.Second))
			lastReport = time.Now()
		}
	}

	elapsed := time.Since(start)
	slog.Info("simulation complete", "ticks", g.CurrentTick(), "elapsed", elapsed.Round(time.Millisecond))
	return nil
}

// configureLogging sets the default slog logger's level from SIMCORE_LOG
// (debug|info|warn|error, case-insensitive; default info).
func configureLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("SIMCORE_LOG")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig initializes the global config from -config and applies -tps as
// an override if set.
func loadConfig() error {
	if err := config.Init(*configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *tps > 0 {
		config.Cfg().Scheduler.TickRateHz = *tps
		config.Cfg().Derived.TickInterval = 1.0 / *tps
	}
	return nil
}
