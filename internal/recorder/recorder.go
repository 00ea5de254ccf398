package recorder

import (
	"time"

	"DualHalfTrend/internal/model"
)

// Run describes one evaluation of a symbol.
type Run struct {
	ID         string // assigned on record if empty
	Symbol     string
	Interval   string
	Source     string
	ATRPeriod  int
	ATRMode    string
	Amplitude1 int
	Deviation1 float64
	Amplitude2 int
	Deviation2 float64
	Bars       int
	LastBar    time.Time
	FastTrend  model.Trend
	SlowTrend  model.Trend
	Signals    int
	Duration   time.Duration
	Err        string
}

// Recorder persists evaluation history for later analysis.
type Recorder interface {
	RecordRun(run *Run) error
	// RecordSignals stores fired signals. A signal already stored for the
	// same symbol, interval, bar and kind is ignored.
	RecordSignals(runID string, events []model.SignalEvent) error
	// RecentSignals returns up to n of the newest signals for symbol, newest first.
	RecentSignals(symbol string, n int) ([]model.SignalEvent, error)
	Close() error
}
