package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the ordered bars of one symbol at one interval.
type PriceSeries struct {
	Symbol    string
	Interval  string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Last returns the newest bar. ok is false for an empty series.
func (p *PriceSeries) Last() (bar OHLCV, ok bool) {
	if len(p.Bars) == 0 {
		return OHLCV{}, false
	}
	return p.Bars[len(p.Bars)-1], true
}

// Highs, Lows, Closes and Volumes extract one column of the bars.
func Highs(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func Lows(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

func Closes(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func Volumes(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
