package game

import (
	"testing"

	"github.com/pthm-cable/simcore/config"
)

// newTestGame loads embedded defaults, shrinks the initial population and
// world size so a handful of ticks run fast, and builds a Game with no
// telemetry output directory (output disabled).
func newTestGame(t *testing.T, population int) *Game {
	t.Helper()
	if err := config.Init(""); err != nil {
		t.Fatalf("config.Init: %v", err)
	}
	cfg := config.Cfg()
	cfg.Population.Initial = population

	g, err := New(Options{Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewSpawnsInitialPopulation(t *testing.T) {
	g := newTestGame(t, 10)
	defer g.Close()

	herbivores, predators, omnivores, _ := g.samplePopulation()
	if herbivores+predators+omnivores != 10 {
		t.Errorf("expected 10 live animals after New, got %d", herbivores+predators+omnivores)
	}
}

func TestTickAdvancesCurrentTick(t *testing.T) {
	g := newTestGame(t, 5)
	defer g.Close()

	if g.CurrentTick() != 0 {
		t.Fatalf("expected a fresh Game to start at tick 0, got %d", g.CurrentTick())
	}

	for i := 0; i < 3; i++ {
		g.Tick()
	}

	if g.CurrentTick() != 3 {
		t.Errorf("expected CurrentTick to advance by one per Tick call, got %d", g.CurrentTick())
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	g := newTestGame(t, 5)
	defer g.Close()

	g.Run(7)

	if g.CurrentTick() != 7 {
		t.Errorf("expected Run(7) to stop at tick 7, got %d", g.CurrentTick())
	}
}

func TestPerfStatsRecordsEveryPhase(t *testing.T) {
	g := newTestGame(t, 5)
	defer g.Close()

	g.Run(5)

	stats := g.PerfStats()
	for _, phase := range []string{
		"planning", "action_execution", "movement", "stats", "reproduction", "cleanup", "telemetry",
	} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected PhaseAvg to record a %q entry after 5 ticks", phase)
		}
	}
}

func TestZeroInitialPopulationRunsWithoutPanicking(t *testing.T) {
	g := newTestGame(t, 0)
	defer g.Close()

	g.Run(2)

	herbivores, predators, omnivores, _ := g.samplePopulation()
	if herbivores+predators+omnivores != 0 {
		t.Errorf("expected no animals with a zero initial population, got %d", herbivores+predators+omnivores)
	}
}
