package halftrend

import (
	"errors"
	"fmt"
	"math"

	"DualHalfTrend/internal/model"
)

var (
	// ErrMalformedInput rejects a bar series that cannot be computed over.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidParams rejects channel parameters before any computation.
	ErrInvalidParams = errors.New("invalid parameters")
)

// Params configures one HalfTrend channel.
type Params struct {
	Amplitude int     // rolling window length
	Deviation float64 // channel width in half-ATR units
}

// Validate checks the channel parameters.
func (p Params) Validate() error {
	if p.Amplitude < 1 {
		return fmt.Errorf("%w: amplitude must be >= 1, got %d", ErrInvalidParams, p.Amplitude)
	}
	if !(p.Deviation > 0) || math.IsInf(p.Deviation, 0) {
		return fmt.Errorf("%w: deviation must be positive and finite, got %v", ErrInvalidParams, p.Deviation)
	}
	return nil
}

// ValidateBars rejects the whole series on the first malformed bar.
// Timestamps must be set and strictly increasing, and every price and
// volume must be finite with high >= low.
func ValidateBars(bars []model.OHLCV) error {
	for i, b := range bars {
		if b.Time.IsZero() {
			return fmt.Errorf("%w: bar %d has no timestamp", ErrMalformedInput, i)
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d timestamp %s not after %s",
				ErrMalformedInput, i, b.Time.Format("2006-01-02 15:04:05"), bars[i-1].Time.Format("2006-01-02 15:04:05"))
		}
		for _, f := range [...]struct {
			name string
			v    float64
		}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}, {"volume", b.Volume}} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return fmt.Errorf("%w: bar %d %s is not finite", ErrMalformedInput, i, f.name)
			}
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: bar %d high %.8g below low %.8g", ErrMalformedInput, i, b.High, b.Low)
		}
	}
	return nil
}
