package model

import (
	"fmt"
	"time"
)

// Trend is the confirmed direction of a channel.
type Trend int

const (
	Up Trend = iota
	Down
)

func (t Trend) String() string {
	if t == Down {
		return "down"
	}
	return "up"
}

// Opposite returns the other direction.
func (t Trend) Opposite() Trend {
	if t == Up {
		return Down
	}
	return Up
}

// MarshalText encodes the trend as "up" or "down".
func (t Trend) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes "up" or "down".
func (t *Trend) UnmarshalText(text []byte) error {
	switch string(text) {
	case "up":
		*t = Up
	case "down":
		*t = Down
	default:
		return fmt.Errorf("unknown trend %q", string(text))
	}
	return nil
}

// SignalRow holds the combined trade signals of one bar.
type SignalRow struct {
	EnterLong  bool `json:"enter_long"`
	EnterShort bool `json:"enter_short"`
	ExitLong   bool `json:"exit_long"`
	ExitShort  bool `json:"exit_short"`
}

// Any reports whether any signal fired.
func (s SignalRow) Any() bool {
	return s.EnterLong || s.EnterShort || s.ExitLong || s.ExitShort
}

// Row is one augmented output bar.
type Row struct {
	Bar     OHLCV         `json:"bar"`
	Fast    ChannelOutput `json:"channel1"`
	Slow    ChannelOutput `json:"channel2"`
	Signals SignalRow     `json:"signals"`
}

// Analysis is the full output of one evaluation.
type Analysis struct {
	Amplitude1 int     `json:"amplitude1"`
	Deviation1 float64 `json:"deviation1"`
	Amplitude2 int     `json:"amplitude2"`
	Deviation2 float64 `json:"deviation2"`
	ATRPeriod  int     `json:"atr_period"`
	ATRMode    string  `json:"atr_mode"`
	Warmup     int     `json:"warmup"` // first bar index eligible for a signal
	Rows       []Row   `json:"rows"`
}

// SignalKind names a signal column.
type SignalKind string

const (
	SignalEnterLong  SignalKind = "ENTER_LONG"
	SignalEnterShort SignalKind = "ENTER_SHORT"
	SignalExitLong   SignalKind = "EXIT_LONG"
	SignalExitShort  SignalKind = "EXIT_SHORT"
)

// SignalEvent is a single fired signal, as handed to notifier and recorder.
type SignalEvent struct {
	Kind      SignalKind
	Symbol    string
	Interval  string
	BarTime   time.Time
	Close     float64
	FastTrend Trend
	SlowTrend Trend
	FastLine  Value
	SlowLine  Value
}
