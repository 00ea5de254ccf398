package strategy

import (
	"fmt"

	"DualHalfTrend/internal/calculator"
	"DualHalfTrend/internal/halftrend"
)

// Params configures the fast and slow channels.
type Params struct {
	Amplitude1 int     `yaml:"amplitude1"`
	Deviation1 float64 `yaml:"deviation1"`
	Amplitude2 int     `yaml:"amplitude2"`
	Deviation2 float64 `yaml:"deviation2"`
	ATRPeriod  int     `yaml:"atr_period"`
	ATRMode    string  `yaml:"atr_mode"`
}

// DefaultParams returns the stock fast (2, 2) and slow (10, 2) channels.
func DefaultParams() Params {
	return Params{
		Amplitude1: 2,
		Deviation1: 2,
		Amplitude2: 10,
		Deviation2: 2,
		ATRPeriod:  calculator.DefaultATRPeriod,
		ATRMode:    string(calculator.ATRSimple),
	}
}

// Fast returns the channel 1 parameters.
func (p Params) Fast() halftrend.Params {
	return halftrend.Params{Amplitude: p.Amplitude1, Deviation: p.Deviation1}
}

// Slow returns the channel 2 parameters.
func (p Params) Slow() halftrend.Params {
	return halftrend.Params{Amplitude: p.Amplitude2, Deviation: p.Deviation2}
}

// Validate checks both channels and the volatility settings.
func (p Params) Validate() error {
	if err := p.Fast().Validate(); err != nil {
		return fmt.Errorf("channel 1: %w", err)
	}
	if err := p.Slow().Validate(); err != nil {
		return fmt.Errorf("channel 2: %w", err)
	}
	if p.ATRPeriod < 1 {
		return fmt.Errorf("%w: atr period must be >= 1, got %d", halftrend.ErrInvalidParams, p.ATRPeriod)
	}
	if _, err := calculator.ParseATRMode(p.ATRMode); err != nil {
		return fmt.Errorf("%w: %v", halftrend.ErrInvalidParams, err)
	}
	return nil
}

// Warmup returns the first bar index at which a signal may fire: every
// rolling statistic of both channels is defined from there on, and the
// two-bar lookback of the exit rule is available.
func (p Params) Warmup() int {
	atr := calculator.FirstATRIndex(p.ATRPeriod, calculator.ATRMode(p.ATRMode))
	return max(p.Amplitude1-1, p.Amplitude2-1, atr, 2)
}
