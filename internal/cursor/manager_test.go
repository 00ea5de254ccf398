package cursor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DualHalfTrend/internal/model"
)

var bar = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestManagerAdvanceAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "watch.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	assert.True(t, m.IsNew("BTC-USD", "1h", bar))

	ok, err := m.Advance(Entry{Symbol: "BTC-USD", Interval: "1h", LastBar: bar, FastTrend: model.Down, FastLine: model.Some(99.5)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, m.IsNew("BTC-USD", "1h", bar))
	assert.True(t, m.IsNew("BTC-USD", "1h", bar.Add(time.Hour)))
	assert.True(t, m.IsNew("BTC-USD", "4h", bar), "intervals are tracked separately")

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	e, found := reloaded.Get("BTC-USD", "1h")
	require.True(t, found)
	assert.True(t, bar.Equal(e.LastBar))
	assert.Equal(t, model.Down, e.FastTrend)
	assert.Equal(t, model.Some(99.5), e.FastLine)
	assert.False(t, e.SlowLine.Valid)
}

func TestManagerNeverMovesBackwards(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "watch.json"))
	require.NoError(t, err)

	_, err = m.Advance(Entry{Symbol: "X", Interval: "1h", LastBar: bar, Signals: 2})
	require.NoError(t, err)

	ok, err := m.Advance(Entry{Symbol: "X", Interval: "1h", LastBar: bar.Add(-time.Hour)})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.Advance(Entry{Symbol: "X", Interval: "1h", LastBar: bar})
	require.NoError(t, err)
	assert.False(t, ok)

	e, _ := m.Get("X", "1h")
	assert.Equal(t, 2, e.Signals)
}

func TestSnapshotOrdered(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "watch.json"))
	require.NoError(t, err)
	for _, s := range []string{"ETH-USD", "BTC-USD"} {
		_, err := m.Advance(Entry{Symbol: s, Interval: "1h", LastBar: bar})
		require.NoError(t, err)
	}
	snap := m.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "BTC-USD", snap[0].Symbol)
	assert.Equal(t, "ETH-USD", snap[1].Symbol)
}

func TestLoadStateCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewManager(path)
	assert.Error(t, err)
}
