package model

// RollingStats holds the per-bar rolling statistics of one channel.
// Every slice has one entry per input bar.
type RollingStats struct {
	Window  int
	HighMax []Value // max(high) over the trailing window
	LowMin  []Value // min(low) over the trailing window
	SMAHigh []Value
	SMALow  []Value
	HalfATR []Value // ATR(atr period) / 2
}

// Len returns the number of bars covered.
func (s *RollingStats) Len() int { return len(s.HighMax) }

// ChannelState is the state threaded bar to bar through one HalfTrend channel.
type ChannelState struct {
	Trend        Trend `json:"trend"`
	NextTrend    Trend `json:"next_trend"` // direction being held while watching for the opposite flip
	MaxLowPrice  Value `json:"max_low_price"`
	MinHighPrice Value `json:"min_high_price"`
	Up           Value `json:"up"`
	Down         Value `json:"down"`
}

// Active returns the trend-line candidate selected by Trend.
func (s ChannelState) Active() Value {
	if s.Trend == Up {
		return s.Up
	}
	return s.Down
}

// ChannelOutput is one bar of HalfTrend output.
type ChannelOutput struct {
	TrendLine   Value `json:"trend_line"`
	Trend       Trend `json:"trend"`
	ChannelHigh Value `json:"channel_high"`
	ChannelLow  Value `json:"channel_low"`
	BuyPulse    bool  `json:"buy_pulse"`
	SellPulse   bool  `json:"sell_pulse"`

	// LineUp and LineDown split TrendLine by regime for two-colour charting.
	LineUp   Value `json:"line_up"`
	LineDown Value `json:"line_down"`

	State ChannelState `json:"-"`
}
