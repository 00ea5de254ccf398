package notifier

import (
	"fmt"
	"strings"
	"time"

	"DualHalfTrend/internal/cursor"
	"DualHalfTrend/internal/model"
)

var kindLabel = map[model.SignalKind]string{
	model.SignalEnterLong:  "🟢 <b>ENTER LONG</b>",
	model.SignalEnterShort: "🔴 <b>ENTER SHORT</b>",
	model.SignalExitLong:   "⚪ <b>EXIT LONG</b>",
	model.SignalExitShort:  "⚪ <b>EXIT SHORT</b>",
}

func line(v model.Value) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v.V)
}

// FormatSignals formats the signals fired on one bar into a Telegram message.
func FormatSignals(events []model.SignalEvent) string {
	if len(events) == 0 {
		return ""
	}
	first := events[0]
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s UTC\n\n",
		first.Symbol, first.Interval, first.BarTime.UTC().Format("2006-01-02 15:04")))
	for _, e := range events {
		b.WriteString(kindLabel[e.Kind])
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\nClose: %.4f\n", first.Close))
	b.WriteString(fmt.Sprintf("Fast: %s @ %s\n", first.FastTrend, line(first.FastLine)))
	b.WriteString(fmt.Sprintf("Slow: %s @ %s\n", first.SlowTrend, line(first.SlowLine)))
	return b.String()
}

// FormatStatus formats the current watch positions for display.
func FormatStatus(entries []cursor.Entry, now time.Time) string {
	var b strings.Builder
	b.WriteString("📦 <b>Watch status</b>\n")
	if len(entries) == 0 {
		b.WriteString("\nNo bars evaluated yet.\n")
		return b.String()
	}
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("\n<b>%s</b> %s\n", e.Symbol, e.Interval))
		b.WriteString(fmt.Sprintf("Last bar: %s UTC (%s ago)\n",
			e.LastBar.UTC().Format("2006-01-02 15:04"), now.Sub(e.LastBar).Truncate(time.Minute)))
		b.WriteString(fmt.Sprintf("Close: %.4f\n", e.LastClose))
		b.WriteString(fmt.Sprintf("Fast: %s @ %s | Slow: %s @ %s\n",
			e.FastTrend, line(e.FastLine), e.SlowTrend, line(e.SlowLine)))
		b.WriteString(fmt.Sprintf("Signals sent: %d\n", e.Signals))
	}
	return b.String()
}

// FormatRecent lists stored signals, newest first.
func FormatRecent(events []model.SignalEvent) string {
	if len(events) == 0 {
		return "No signals recorded."
	}
	var b strings.Builder
	b.WriteString("🕑 <b>Recent signals</b>\n\n")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("%s %s %s @ %.4f\n",
			e.BarTime.UTC().Format("01-02 15:04"), e.Symbol, e.Kind, e.Close))
	}
	return b.String()
}

const helpText = `<b>Commands</b>
/status - current trend of every watched symbol
/signals - most recent signals
/help - this message`
