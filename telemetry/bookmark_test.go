package telemetry

import (
	"testing"

	"github.com/pthm-cable/simcore/config"
)

func init() {
	config.MustInit("")
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Build up a stable population.
	for i := 0; i < 5; i++ {
		stats := WindowStats{
			WindowEndTick:  int32(i * 100),
			HerbivoreCount: 100,
			PredatorCount:  10,
		}
		bd.Check(stats)
	}

	// Now crash the population.
	crashStats := WindowStats{
		WindowEndTick:  500,
		HerbivoreCount: 40,
		PredatorCount:  5,
	}
	bookmarks := bd.Check(crashStats)

	found := false
	for _, bm := range bookmarks {
		if bm.Type == BookmarkPopulationCrash {
			found = true
		}
	}
	if !found {
		t.Error("expected population_crash bookmark")
	}
}

func TestBookmarkDetector_PopulationRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Population drops to a critical level.
	for i := 0; i < 3; i++ {
		stats := WindowStats{
			WindowEndTick:  int32(i * 100),
			HerbivoreCount: 2,
			PredatorCount:  0,
		}
		bd.Check(stats)
	}

	// Population recovers to well above twice the trough.
	recoveryStats := WindowStats{
		WindowEndTick:  300,
		HerbivoreCount: 10,
		PredatorCount:  0,
	}
	bookmarks := bd.Check(recoveryStats)

	found := false
	for _, bm := range bookmarks {
		if bm.Type == BookmarkPopulationRecovery {
			found = true
		}
	}
	if !found {
		t.Error("expected population_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10)

	found := false
	for i := 0; i < 10; i++ {
		stats := WindowStats{
			WindowEndTick:  int32(i * 100),
			HerbivoreCount: 100,
			PredatorCount:  20,
		}
		for _, bm := range bd.Check(stats) {
			if bm.Type == BookmarkStableEcosystem {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected stable_ecosystem bookmark after a long run of unchanging populations")
	}
}

func TestBookmarkDetector_NoCrashOnStablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var bookmarks []Bookmark
	for i := 0; i < 6; i++ {
		stats := WindowStats{
			WindowEndTick:  int32(i * 100),
			HerbivoreCount: 100,
			PredatorCount:  20,
		}
		bookmarks = bd.Check(stats)
	}

	for _, bm := range bookmarks {
		if bm.Type == BookmarkPopulationCrash {
			t.Error("did not expect a population_crash bookmark for a stable population")
		}
	}
}
