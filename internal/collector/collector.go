package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"DualHalfTrend/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _, interval string, limit int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return trim(append([]model.OHLCV(nil), m.Bars...), limit), nil
	}
	step, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	return generateMockBars(m.Price, limit, step, time.Now()), nil
}

// generateMockBars produces a sine wave of closed bars ending before now.
func generateMockBars(basePrice float64, count int, step time.Duration, now time.Time) []model.OHLCV {
	end := now.UTC().Truncate(step)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/12))
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches a symbol's recent closed bars.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Limit    int
	Now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, limit int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Interval: interval, Limit: limit, Now: time.Now}
}

// Collect fetches bars, orders them, drops repeated timestamps (keeping the
// latest copy) and drops a trailing bar that has not closed yet.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	step, err := ParseInterval(c.Interval)
	if err != nil {
		return nil, err
	}
	// one extra for the bar that may still be forming
	bars, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.Interval, c.Limit+1)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s bars: %w", c.Symbol, c.Interval, err)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	bars = dedupe(bars)

	now := c.Now()
	if n := len(bars); n > 0 && bars[n-1].Time.Add(step).After(now) {
		log.Debug().Str("component", "collector").Str("symbol", c.Symbol).
			Time("bar", bars[n-1].Time).Msg("dropping forming bar")
		bars = bars[:n-1]
	}
	bars = trim(bars, c.Limit)

	return &model.PriceSeries{
		Symbol:    c.Symbol,
		Interval:  c.Interval,
		Bars:      bars,
		FetchedAt: now,
	}, nil
}

func dedupe(bars []model.OHLCV) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
