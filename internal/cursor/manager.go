// Package cursor remembers which closed bar each watched symbol was last
// evaluated at, so every bar is acted on once across restarts.
package cursor

import (
	"sort"
	"sync"
	"time"
)

// Manager guards a WatchState and persists every change.
type Manager struct {
	mu       sync.Mutex
	state    *WatchState
	filePath string
}

// NewManager creates a Manager, loading state from disk if present.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Get returns a copy of the entry for symbol at interval.
func (m *Manager) Get(symbol, interval string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.state.Entries[key(symbol, interval)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// IsNew reports whether bar is newer than the last bar acted on.
func (m *Manager) IsNew(symbol, interval string, bar time.Time) bool {
	e, ok := m.Get(symbol, interval)
	return !ok || bar.After(e.LastBar)
}

// Advance records e as the new position and saves the state. Positions
// never move backwards; an older bar is ignored and Advance returns false.
func (m *Manager) Advance(e Entry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(e.Symbol, e.Interval)
	if cur, ok := m.state.Entries[k]; ok && !e.LastBar.After(cur.LastBar) {
		return false, nil
	}
	m.state.Entries[k] = &e
	return true, SaveState(m.filePath, m.state)
}

// Snapshot returns all entries ordered by symbol then interval.
func (m *Manager) Snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, 0, len(m.state.Entries))
	for _, e := range m.state.Entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Interval < out[j].Interval
	})
	return out
}
