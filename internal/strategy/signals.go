package strategy

import "DualHalfTrend/internal/model"

// GenerateSignals derives entry and exit signals from the fast and slow
// trend series.
//
// An entry fires when the channels disagreed on the previous bar and agree
// on the current one. An exit fires one bar after the slow channel
// reverses. Bars before warmup, or with no volume, carry no signal.
func GenerateSignals(fast, slow []model.Trend, volume []float64, warmup int) []model.SignalRow {
	n := min(len(fast), len(slow), len(volume))
	rows := make([]model.SignalRow, n)
	for i := max(warmup, 2); i < n; i++ {
		if !(volume[i] > 0) {
			continue
		}
		diverged := fast[i-1] != slow[i-1]
		rows[i] = model.SignalRow{
			EnterLong:  diverged && fast[i] == model.Up && slow[i] == model.Up,
			EnterShort: diverged && fast[i] == model.Down && slow[i] == model.Down,
			ExitLong:   slow[i-2] == model.Up && slow[i-1] == model.Down,
			ExitShort:  slow[i-2] == model.Down && slow[i-1] == model.Up,
		}
	}
	return rows
}

// Trends extracts the trend column of a channel.
func Trends(out []model.ChannelOutput) []model.Trend {
	ts := make([]model.Trend, len(out))
	for i, o := range out {
		ts[i] = o.Trend
	}
	return ts
}
