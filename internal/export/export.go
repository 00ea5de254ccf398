// Package export writes an analysis as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"DualHalfTrend/internal/model"
)

// Format selects the output encoding.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat accepts "csv" and "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case CSV, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want csv or json)", s)
}

// Header lists the CSV columns.
var Header = []string{
	"time", "open", "high", "low", "close", "volume",
	"trend_line_1", "channel_high_1", "channel_low_1", "trend_1", "buy_pulse_1", "sell_pulse_1",
	"trend_line_2", "channel_high_2", "channel_low_2", "trend_2", "buy_pulse_2", "sell_pulse_2",
	"enter_long", "enter_short", "exit_long", "exit_short",
}

// Write encodes a in the given format.
func Write(w io.Writer, a *model.Analysis, f Format) error {
	switch f {
	case CSV:
		return WriteCSV(w, a)
	case JSON:
		return WriteJSON(w, a)
	}
	return fmt.Errorf("unknown format %q", f)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func channelColumns(c model.ChannelOutput) []string {
	return []string{
		c.TrendLine.String(), c.ChannelHigh.String(), c.ChannelLow.String(),
		c.Trend.String(), strconv.FormatBool(c.BuyPulse), strconv.FormatBool(c.SellPulse),
	}
}

// WriteCSV writes one row per bar. Undefined values are empty cells.
func WriteCSV(w io.Writer, a *model.Analysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	rec := make([]string, 0, len(Header))
	for _, r := range a.Rows {
		rec = rec[:0]
		rec = append(rec,
			r.Bar.Time.UTC().Format(time.RFC3339),
			num(r.Bar.Open), num(r.Bar.High), num(r.Bar.Low), num(r.Bar.Close), num(r.Bar.Volume))
		rec = append(rec, channelColumns(r.Fast)...)
		rec = append(rec, channelColumns(r.Slow)...)
		rec = append(rec,
			strconv.FormatBool(r.Signals.EnterLong), strconv.FormatBool(r.Signals.EnterShort),
			strconv.FormatBool(r.Signals.ExitLong), strconv.FormatBool(r.Signals.ExitShort))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole analysis, parameters included.
func WriteJSON(w io.Writer, a *model.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
