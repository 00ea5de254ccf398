package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DualHalfTrend/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func event(kind model.SignalKind, bar time.Time) model.SignalEvent {
	return model.SignalEvent{
		Kind:      kind,
		Symbol:    "BTC-USD",
		Interval:  "1h",
		BarTime:   bar,
		Close:     101.5,
		FastTrend: model.Up,
		SlowTrend: model.Down,
		FastLine:  model.Some(99),
	}
}

func TestRecordRunAssignsID(t *testing.T) {
	r := openTemp(t)
	run := &Run{Symbol: "BTC-USD", Interval: "1h", Source: "mock", Bars: 500, Duration: 3 * time.Millisecond}
	require.NoError(t, r.RecordRun(run))
	assert.Len(t, run.ID, 36)

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&n))
	assert.Equal(t, 1, n)

	// explicit ids are kept; duplicates are rejected
	require.Error(t, r.RecordRun(&Run{ID: run.ID, Symbol: "X", Interval: "1h"}))
}

func TestRecordRunStoresParams(t *testing.T) {
	r := openTemp(t)
	run := &Run{
		Symbol: "BTC-USD", Interval: "4h", Source: "yahoo",
		ATRPeriod: 50, ATRMode: "wilder",
		Amplitude1: 3, Deviation1: 1.5, Amplitude2: 12, Deviation2: 2.5,
	}
	require.NoError(t, r.RecordRun(run))

	var (
		atr, a1, a2 int
		mode        string
		d1, d2      float64
	)
	require.NoError(t, r.db.QueryRow(`SELECT atr_period, atr_mode, amplitude1, deviation1, amplitude2, deviation2
		FROM runs WHERE id = ?`, run.ID).Scan(&atr, &mode, &a1, &d1, &a2, &d2))
	assert.Equal(t, 50, atr)
	assert.Equal(t, "wilder", mode)
	assert.Equal(t, 3, a1)
	assert.Equal(t, 1.5, d1)
	assert.Equal(t, 12, a2)
	assert.Equal(t, 2.5, d2)
}

func TestMigrateAddsMissingRunColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE runs (
		id TEXT PRIMARY KEY, timestamp INTEGER NOT NULL, symbol TEXT NOT NULL, interval TEXT NOT NULL,
		source TEXT, atr_period INTEGER, amplitude1 INTEGER, amplitude2 INTEGER, bars INTEGER,
		last_bar INTEGER, fast_trend TEXT, slow_trend TEXT, signals INTEGER, duration_ms INTEGER, error TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.RecordRun(&Run{Symbol: "BTC-USD", Interval: "1h", ATRMode: "sma", Deviation1: 2}))

	// reopening an up-to-date database is a no-op
	require.NoError(t, r.migrate())
}

func TestRecordSignalsIgnoresDuplicates(t *testing.T) {
	r := openTemp(t)
	bar := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	events := []model.SignalEvent{
		event(model.SignalEnterLong, bar),
		event(model.SignalExitShort, bar),
	}
	require.NoError(t, r.RecordSignals("run-1", events))
	require.NoError(t, r.RecordSignals("run-2", events[:1]))
	require.NoError(t, r.RecordSignals("run-3", []model.SignalEvent{event(model.SignalEnterShort, bar.Add(time.Hour))}))
	require.NoError(t, r.RecordSignals("run-4", nil))

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM signals`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestRecentSignals(t *testing.T) {
	r := openTemp(t)
	bar := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordSignals("a", []model.SignalEvent{event(model.SignalEnterLong, bar)}))
	require.NoError(t, r.RecordSignals("b", []model.SignalEvent{event(model.SignalExitLong, bar.Add(2 * time.Hour))}))

	got, err := r.RecentSignals("BTC-USD", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.SignalExitLong, got[0].Kind)
	assert.Equal(t, bar.Add(2*time.Hour), got[0].BarTime)
	assert.Equal(t, model.Down, got[0].SlowTrend)
	assert.Equal(t, model.Some(99), got[0].FastLine)
	assert.False(t, got[0].SlowLine.Valid)

	got, err = r.RecentSignals("BTC-USD", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = r.RecentSignals("ETH-USD", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&Run{}))
	assert.NoError(t, r.RecordSignals("x", []model.SignalEvent{{}}))
	got, err := r.RecentSignals("x", 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, r.Close())
}
