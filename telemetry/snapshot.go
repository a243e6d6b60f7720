package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	WorldName string `json:"world_name"`

	Tick int32 `json:"tick"`

	Entities []EntityState `json:"entities"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// EntityState holds one entity's complete state.
type EntityState struct {
	ID      uint32 `json:"id"`
	Species string `json:"species"`
	Class   string `json:"class"`

	TileX int32 `json:"tile_x"`
	TileY int32 `json:"tile_y"`

	Health float32 `json:"health"`
	Hunger float32 `json:"hunger"`
	Thirst float32 `json:"thirst"`
	Energy float32 `json:"energy"`

	Age uint64 `json:"age_ticks"`

	Action string `json:"action,omitempty"`

	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	BirthTick       int32   `json:"birth_tick"`
	SurvivalTimeSec float32 `json:"survival_time_sec"`
	HuntsAttempted  int     `json:"hunts_attempted"`
	HuntsHit        int     `json:"hunts_hit"`
	Kills           int     `json:"kills"`
	Children        int     `json:"children"`
	PeakEnergy      float32 `json:"peak_energy"`
	TotalGrazed     float32 `json:"total_grazed"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		BirthTick:       ls.BirthTick,
		SurvivalTimeSec: ls.SurvivalTimeSec,
		HuntsAttempted:  ls.HuntsAttempted,
		HuntsHit:        ls.HuntsHit,
		Kills:           ls.Kills,
		Children:        ls.Children,
		PeakEnergy:      ls.PeakEnergy,
		TotalGrazed:     ls.TotalGrazed,
	}
}

// FromJSON converts the JSON form back to LifetimeStats.
func (lsj *LifetimeStatsJSON) FromJSON() *LifetimeStats {
	if lsj == nil {
		return nil
	}
	return &LifetimeStats{
		BirthTick:       lsj.BirthTick,
		SurvivalTimeSec: lsj.SurvivalTimeSec,
		HuntsAttempted:  lsj.HuntsAttempted,
		HuntsHit:        lsj.HuntsHit,
		Kills:           lsj.Kills,
		Children:        lsj.Children,
		PeakEnergy:      lsj.PeakEnergy,
		TotalGrazed:     lsj.TotalGrazed,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
