package calculator

import (
	talib "github.com/markcheno/go-talib"

	"DualHalfTrend/internal/model"
)

// RollingMax returns max(values) over the trailing window ending at each index.
// The first window-1 entries are absent.
func RollingMax(values []float64, window int) []model.Value {
	if window == 1 {
		return present(values, 0)
	}
	if !fits(len(values), window) {
		return absent(len(values))
	}
	return present(talib.Max(values, window), window-1)
}

// RollingMin returns min(values) over the trailing window ending at each index.
func RollingMin(values []float64, window int) []model.Value {
	if window == 1 {
		return present(values, 0)
	}
	if !fits(len(values), window) {
		return absent(len(values))
	}
	return present(talib.Min(values, window), window-1)
}

// SMA returns the simple moving average over the trailing window ending at each index.
func SMA(values []float64, window int) []model.Value {
	if window == 1 {
		return present(values, 0)
	}
	if !fits(len(values), window) {
		return absent(len(values))
	}
	return present(talib.Sma(values, window), window-1)
}

func fits(n, window int) bool {
	return window > 0 && n >= window
}

// present wraps raw, marking entries before from as absent.
func present(raw []float64, from int) []model.Value {
	out := make([]model.Value, len(raw))
	for i := from; i < len(raw); i++ {
		out[i] = model.Some(raw[i])
	}
	return out
}

func absent(n int) []model.Value {
	return make([]model.Value, n)
}
