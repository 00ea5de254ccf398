package strategy

import (
	"golang.org/x/sync/errgroup"

	"DualHalfTrend/internal/calculator"
	"DualHalfTrend/internal/halftrend"
	"DualHalfTrend/internal/model"
)

// Combine runs the fast and slow channels over the same bars. The channels
// share nothing but the read-only bars and run concurrently; Combine returns
// once both have finished.
func Combine(bars []model.OHLCV, p Params) (fast, slow []model.ChannelOutput, err error) {
	mode, err := calculator.ParseATRMode(p.ATRMode)
	if err != nil {
		return nil, nil, err
	}

	var g errgroup.Group
	g.Go(func() error {
		out, err := channel(bars, p.Fast(), p.ATRPeriod, mode)
		fast = out
		return err
	})
	g.Go(func() error {
		out, err := channel(bars, p.Slow(), p.ATRPeriod, mode)
		slow = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fast, slow, nil
}

func channel(bars []model.OHLCV, p halftrend.Params, atrPeriod int, mode calculator.ATRMode) ([]model.ChannelOutput, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	stats := calculator.Compute(bars, p.Amplitude, atrPeriod, mode)
	return halftrend.Run(bars, stats, p.Deviation), nil
}
