package halftrend

import "DualHalfTrend/internal/model"

// Input is what one bar contributes to the recurrence.
type Input struct {
	Bar     model.OHLCV
	PrevBar model.OHLCV
	HighMax model.Value
	LowMin  model.Value
	SMAHigh model.Value
	SMALow  model.Value
}

// Ready reports whether the rolling window has filled for this bar.
func (in Input) Ready() bool {
	return in.HighMax.Valid && in.LowMin.Valid
}

// Initial returns the state established by the first bar: an up trend
// watching for a bearish reversal, anchored on the bar's own extremes.
func Initial(first model.OHLCV) model.ChannelState {
	return model.ChannelState{
		Trend:        model.Up,
		NextTrend:    model.Up,
		MaxLowPrice:  model.Some(first.Low),
		MinHighPrice: model.Some(first.High),
		Up:           model.Some(0),
		Down:         model.Some(0),
	}
}

// Step advances the channel by one bar. prev is never modified.
func Step(prev model.ChannelState, in Input) model.ChannelState {
	cur := prev
	if !in.Ready() {
		return cur
	}
	last := model.Some(in.Bar.Close)

	if cur.NextTrend == model.Up {
		cur.MaxLowPrice = model.MaxValue(in.LowMin, prev.MaxLowPrice)
		if in.SMAHigh.Less(cur.MaxLowPrice) && last.Less(model.Some(in.PrevBar.Low)) {
			cur.Trend = model.Down
			cur.NextTrend = model.Down
			cur.MinHighPrice = in.HighMax
		}
	} else {
		cur.MinHighPrice = model.MinValue(in.HighMax, prev.MinHighPrice)
		if in.SMALow.Greater(cur.MinHighPrice) && last.Greater(model.Some(in.PrevBar.High)) {
			cur.Trend = model.Up
			cur.NextTrend = model.Up
			cur.MaxLowPrice = in.LowMin
		}
	}

	if cur.Trend == model.Up {
		if prev.Trend != model.Up {
			// Flipped: the up line starts where the down line was.
			cur.Up = prev.Down.Or(cur.Down)
		} else if prev.Up.Valid {
			cur.Up = model.MaxValue(cur.MaxLowPrice, prev.Up)
		} else {
			cur.Up = cur.MaxLowPrice
		}
	} else {
		if prev.Trend != model.Down {
			cur.Down = prev.Up.Or(cur.Up)
		} else if prev.Down.Valid {
			cur.Down = model.MinValue(cur.MinHighPrice, prev.Down)
		} else {
			cur.Down = cur.MinHighPrice
		}
	}
	return cur
}
