// Package halftrend implements the HalfTrend indicator: a trend-following
// channel whose direction flips only after a moving-average cross is
// confirmed by a close beyond the previous bar's extreme.
//
// Run is a single forward pass. Each bar's ChannelState is derived from the
// previous bar's state and the current bar's inputs only.
package halftrend

import "DualHalfTrend/internal/model"

// Run computes one channel over bars. stats must have been computed over the
// same bars with the channel's amplitude as window.
func Run(bars []model.OHLCV, stats model.RollingStats, deviation float64) []model.ChannelOutput {
	out := make([]model.ChannelOutput, len(bars))
	if len(bars) == 0 {
		return out
	}

	state := Initial(bars[0])
	out[0] = output(state, state, false, model.None(), deviation)

	for i := 1; i < len(bars); i++ {
		in := Input{
			Bar:     bars[i],
			PrevBar: bars[i-1],
			HighMax: stats.HighMax[i],
			LowMin:  stats.LowMin[i],
			SMAHigh: stats.SMAHigh[i],
			SMALow:  stats.SMALow[i],
		}
		next := Step(state, in)
		out[i] = output(next, state, in.Ready(), stats.HalfATR[i], deviation)
		state = next
	}
	return out
}

// output derives the published columns of one bar. The trend line is only
// reported once the rolling window has filled.
func output(cur, prev model.ChannelState, ready bool, halfATR model.Value, deviation float64) model.ChannelOutput {
	o := model.ChannelOutput{
		Trend:     cur.Trend,
		BuyPulse:  cur.Trend == model.Up && prev.Trend == model.Down,
		SellPulse: cur.Trend == model.Down && prev.Trend == model.Up,
		State:     cur,
	}
	if !ready {
		return o
	}
	o.TrendLine = cur.Active()
	dev := halfATR.Scale(deviation)
	o.ChannelHigh = o.TrendLine.Add(dev)
	o.ChannelLow = o.TrendLine.Sub(dev)
	if cur.Trend == model.Up {
		o.LineUp = o.TrendLine
	} else {
		o.LineDown = o.TrendLine
	}
	return o
}
