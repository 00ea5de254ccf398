// Package strategy combines two HalfTrend channels into trade signals.
package strategy

import (
	"DualHalfTrend/internal/halftrend"
	"DualHalfTrend/internal/model"
)

// Evaluate validates the input, runs both channels and derives the signals.
// The result has one row per bar. Evaluate either computes the whole series
// or returns an error before computing anything.
func Evaluate(bars []model.OHLCV, p Params) (*model.Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := halftrend.ValidateBars(bars); err != nil {
		return nil, err
	}

	fast, slow, err := Combine(bars, p)
	if err != nil {
		return nil, err
	}

	warmup := p.Warmup()
	signals := GenerateSignals(Trends(fast), Trends(slow), model.Volumes(bars), warmup)

	rows := make([]model.Row, len(bars))
	for i := range bars {
		rows[i] = model.Row{Bar: bars[i], Fast: fast[i], Slow: slow[i], Signals: signals[i]}
	}
	return &model.Analysis{
		Amplitude1: p.Amplitude1,
		Deviation1: p.Deviation1,
		Amplitude2: p.Amplitude2,
		Deviation2: p.Deviation2,
		ATRPeriod:  p.ATRPeriod,
		ATRMode:    p.ATRMode,
		Warmup:     warmup,
		Rows:       rows,
	}, nil
}

// Events lists the signals fired on bar i of the analysis.
func Events(symbol, interval string, a *model.Analysis, i int) []model.SignalEvent {
	if a == nil || i < 0 || i >= len(a.Rows) {
		return nil
	}
	row := a.Rows[i]
	base := model.SignalEvent{
		Symbol:    symbol,
		Interval:  interval,
		BarTime:   row.Bar.Time,
		Close:     row.Bar.Close,
		FastTrend: row.Fast.Trend,
		SlowTrend: row.Slow.Trend,
		FastLine:  row.Fast.TrendLine,
		SlowLine:  row.Slow.TrendLine,
	}
	var events []model.SignalEvent
	for _, s := range []struct {
		fired bool
		kind  model.SignalKind
	}{
		{row.Signals.ExitLong, model.SignalExitLong},
		{row.Signals.ExitShort, model.SignalExitShort},
		{row.Signals.EnterLong, model.SignalEnterLong},
		{row.Signals.EnterShort, model.SignalEnterShort},
	} {
		if s.fired {
			e := base
			e.Kind = s.kind
			events = append(events, e)
		}
	}
	return events
}
