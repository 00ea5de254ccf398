package collector

import (
	"context"
	"fmt"
	"time"

	"DualHalfTrend/internal/model"
)

// Fetcher defines the interface for fetching OHLCV bars.
type Fetcher interface {
	// FetchBars returns up to limit of the most recent bars at the given
	// interval, oldest first.
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error)
	Name() string
}

var intervals = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
	"1wk": 7 * 24 * time.Hour,
}

// ParseInterval returns the bar duration of an interval name such as "1h".
func ParseInterval(s string) (time.Duration, error) {
	d, ok := intervals[s]
	if !ok {
		return 0, fmt.Errorf("unsupported interval %q", s)
	}
	return d, nil
}
