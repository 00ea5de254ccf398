package collector

import (
	"time"

	"DualHalfTrend/internal/model"
)

// coarser intervals a source may not serve directly, and the finer interval
// they are built from.
var aggregateFrom = map[string]string{
	"4h":  "1h",
	"1wk": "1d",
}

// bucketStart returns the open time of the interval bucket holding t.
// Weekly buckets start on the ISO Monday.
func bucketStart(t time.Time, interval time.Duration) time.Time {
	t = t.UTC()
	if interval == 7*24*time.Hour {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
	return t.Truncate(interval)
}

// Aggregate folds chronologically ordered bars into interval buckets.
// Each bucket keeps the first open, last close, extreme high and low, and
// the summed volume, stamped with the bucket's open time.
func Aggregate(bars []model.OHLCV, interval time.Duration) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	var out []model.OHLCV
	var cur model.OHLCV
	for i, b := range bars {
		start := bucketStart(b.Time, interval)
		if i == 0 || !start.Equal(cur.Time) {
			if i > 0 {
				out = append(out, cur)
			}
			cur = model.OHLCV{Time: start, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			continue
		}
		cur.High = max(cur.High, b.High)
		cur.Low = min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}
