package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"DualHalfTrend/internal/model"
)

// CSVFetcher reads bars from a local CSV file. The interval is taken as
// given; the file is expected to already hold bars of that size.
type CSVFetcher struct {
	Path string
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchBars(ctx context.Context, _, _ string, limit int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()
	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return trim(bars, limit), nil
}

var columnAliases = map[string]string{
	"time":      "time",
	"timestamp": "time",
	"date":      "time",
	"datetime":  "time",
	"open":      "open",
	"high":      "high",
	"low":       "low",
	"close":     "close",
	"volume":    "volume",
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReadCSV parses a header row naming time, open, high, low, close and
// volume columns (in any order, extra columns ignored), then one bar per
// row. Rows are returned in file order.
func ReadCSV(r io.Reader) ([]model.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, name := range header {
		if col, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, dup := idx[col]; !dup {
				idx[col] = i
			}
		}
	}
	for _, col := range []string{"time", "open", "high", "low", "close", "volume"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing %s column", col)
		}
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return bars, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(col string) string {
			if i := idx[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		ts, err := parseTime(field("time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b := model.OHLCV{Time: ts}
		for _, p := range []struct {
			col string
			dst *float64
		}{{"open", &b.Open}, {"high", &b.High}, {"low", &b.Low}, {"close", &b.Close}, {"volume", &b.Volume}} {
			v, err := strconv.ParseFloat(field(p.col), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, p.col, err)
			}
			*p.dst = v
		}
		bars = append(bars, b)
	}
}

// parseTime accepts unix seconds, unix milliseconds or a date-time string.
func parseTime(s string) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
