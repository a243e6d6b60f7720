package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/simcore/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkStableEcosystem    BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

func totalPopulation(stats WindowStats) int {
	return stats.HerbivoreCount + stats.PredatorCount + stats.OmnivoreCount
}

// BookmarkDetector watches the rolling window history for population
// crashes, recoveries, and stretches of low-variance stability, mirroring
// the TPS/stuck-entity/action-loop checks a HealthChecker runs per tick.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// windowHistory returns the history entries within populationCrashWindowTicks
// of the current tick, oldest first, excluding the current sample.
func (bd *BookmarkDetector) windowHistory(currentTick int32, windowTicks uint64) []WindowStats {
	history := bd.getHistory()
	var out []WindowStats
	for _, h := range history {
		if currentTick-h.WindowEndTick <= int32(windowTicks) {
			out = append(out, h)
		}
	}
	return out
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	cfg := config.Cfg().Telemetry
	window := bd.windowHistory(stats.WindowEndTick, cfg.PopulationCrashWindowTicks)
	if len(window) == 0 {
		return nil
	}

	peak := 0
	for _, h := range window {
		if p := totalPopulation(h); p > peak {
			peak = p
		}
	}
	if peak == 0 {
		return nil
	}

	total := totalPopulation(stats)
	dropPercent := 1.0 - float64(total)/float64(peak)
	if dropPercent > cfg.PopulationCrashDropPercent {
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("population crashed %.0f%% from %d to %d", dropPercent*100, peak, total),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPopulationRecovery(stats WindowStats) *Bookmark {
	cfg := config.Cfg().Telemetry
	window := bd.windowHistory(stats.WindowEndTick, cfg.PopulationCrashWindowTicks)
	if len(window) == 0 {
		return nil
	}

	trough := totalPopulation(window[0])
	for _, h := range window {
		if p := totalPopulation(h); p < trough {
			trough = p
		}
	}
	if trough == 0 {
		return nil
	}

	total := totalPopulation(stats)
	if total >= trough*2 {
		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("population recovered from %d to %d", trough, total),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	cfg := config.Cfg().Telemetry

	if stats.HerbivoreCount == 0 && stats.PredatorCount == 0 && stats.OmnivoreCount == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	samples := make([]float64, len(recent))
	for i, h := range recent {
		samples[i] = float64(totalPopulation(h))
	}
	mean, variance := stat.MeanVariance(samples, nil)
	// MeanVariance is the unbiased (n-1) estimator; the population variance
	// used for the coefficient-of-variation check scales it back down.
	variance *= float64(len(samples)-1) / float64(len(samples))

	cv := 0.0
	if mean > 0 {
		cv = math.Sqrt(variance) / mean
	}

	if cv < cfg.StableEcosystemCVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == cfg.StableEcosystemWindows {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("stable ecosystem with %d animals over %d+ windows", totalPopulation(stats), cfg.StableEcosystemWindows),
		}
	}

	return nil
}
