package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"DualHalfTrend/internal/model"
)

// Entry is the watch position of one symbol at one interval.
type Entry struct {
	Symbol    string      `json:"symbol"`
	Interval  string      `json:"interval"`
	LastBar   time.Time   `json:"last_bar"` // newest bar already acted on
	LastClose float64     `json:"last_close"`
	FastTrend model.Trend `json:"fast_trend"`
	SlowTrend model.Trend `json:"slow_trend"`
	FastLine  model.Value `json:"fast_line"`
	SlowLine  model.Value `json:"slow_line"`
	Signals   int         `json:"signals"` // signals emitted so far
}

// WatchState is the persisted set of watch positions.
type WatchState struct {
	Entries   map[string]*Entry `json:"entries"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func key(symbol, interval string) string { return symbol + "@" + interval }

// LoadState reads the watch state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*WatchState, error) {
	state := &WatchState{Entries: map[string]*Entry{}}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	if state.Entries == nil {
		state.Entries = map[string]*Entry{}
	}
	return state, nil
}

// SaveState writes the watch state to a JSON file, replacing it atomically.
func SaveState(filePath string, state *WatchState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
