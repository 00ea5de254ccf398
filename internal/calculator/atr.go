package calculator

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"DualHalfTrend/internal/model"
)

// ATRMode selects how true ranges are averaged.
type ATRMode string

const (
	// ATRSimple averages the trailing period true ranges; the first bar's
	// true range is its high-low span.
	ATRSimple ATRMode = "sma"
	// ATRWilder is TA-Lib's ATR: Wilder smoothing seeded with the mean of
	// true ranges 1..period, first defined at index period.
	ATRWilder ATRMode = "wilder"
)

// DefaultATRPeriod is the volatility period used by both channels.
const DefaultATRPeriod = 100

// ParseATRMode accepts "sma" (or empty) and "wilder".
func ParseATRMode(s string) (ATRMode, error) {
	switch ATRMode(s) {
	case "", ATRSimple:
		return ATRSimple, nil
	case ATRWilder:
		return ATRWilder, nil
	}
	return "", fmt.Errorf("unknown atr mode %q", s)
}

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) per bar.
func TrueRange(bars []model.OHLCV) []float64 {
	tr := make([]float64, len(bars))
	for i, b := range bars {
		span := b.High - b.Low
		if i == 0 {
			tr[i] = span
			continue
		}
		pc := bars[i-1].Close
		tr[i] = math.Max(span, math.Max(math.Abs(b.High-pc), math.Abs(b.Low-pc)))
	}
	return tr
}

// ATR returns the average true range over period.
func ATR(bars []model.OHLCV, period int, mode ATRMode) []model.Value {
	switch mode {
	case ATRWilder:
		// talib needs at least one bar past the seed window.
		if period < 1 || len(bars) <= period {
			return absent(len(bars))
		}
		raw := talib.Atr(model.Highs(bars), model.Lows(bars), model.Closes(bars), period)
		return present(raw, period)
	default:
		return SMA(TrueRange(bars), period)
	}
}

// FirstATRIndex returns the first bar index at which ATR(period, mode) is defined.
func FirstATRIndex(period int, mode ATRMode) int {
	if mode == ATRWilder {
		return period
	}
	return period - 1
}

// HalfATR returns ATR/2, the base unit of the channel width.
func HalfATR(bars []model.OHLCV, period int, mode ATRMode) []model.Value {
	atr := ATR(bars, period, mode)
	for i := range atr {
		atr[i] = atr[i].Scale(0.5)
	}
	return atr
}
