package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DualHalfTrend/internal/model"
)

func sample() *model.Analysis {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &model.Analysis{
		Amplitude1: 2, Deviation1: 2, Amplitude2: 10, Deviation2: 2, ATRPeriod: 100, ATRMode: "sma", Warmup: 99,
		Rows: []model.Row{
			{Bar: model.OHLCV{Time: t0, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}},
			{
				Bar:     model.OHLCV{Time: t0.Add(time.Hour), Open: 1.5, High: 2.5, Low: 1, Close: 2.25, Volume: 0},
				Fast:    model.ChannelOutput{TrendLine: model.Some(1.25), Trend: model.Down, ChannelHigh: model.Some(2), ChannelLow: model.Some(0.5), SellPulse: true},
				Slow:    model.ChannelOutput{TrendLine: model.Some(1)},
				Signals: model.SignalRow{EnterShort: true, ExitLong: true},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), CSV))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, Header, recs[0])

	col := func(row []string, name string) string {
		for i, h := range Header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}

	first := recs[1]
	assert.Equal(t, "2025-03-01T00:00:00Z", col(first, "time"))
	assert.Equal(t, "0.5", col(first, "low"))
	assert.Equal(t, "", col(first, "trend_line_1"), "undefined values are empty")
	assert.Equal(t, "up", col(first, "trend_1"))
	assert.Equal(t, "false", col(first, "enter_long"))

	second := recs[2]
	assert.Equal(t, "1.25", col(second, "trend_line_1"))
	assert.Equal(t, "2", col(second, "channel_high_1"))
	assert.Equal(t, "down", col(second, "trend_1"))
	assert.Equal(t, "true", col(second, "sell_pulse_1"))
	assert.Equal(t, "1", col(second, "trend_line_2"))
	assert.Equal(t, "", col(second, "channel_high_2"))
	assert.Equal(t, "true", col(second, "enter_short"))
	assert.Equal(t, "true", col(second, "exit_long"))
	assert.Equal(t, "false", col(second, "exit_short"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), JSON))

	var got struct {
		Warmup int `json:"warmup"`
		Rows   []struct {
			Channel1 struct {
				TrendLine *float64 `json:"trend_line"`
				Trend     string   `json:"trend"`
			} `json:"channel1"`
			Signals model.SignalRow `json:"signals"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 99, got.Warmup)
	require.Len(t, got.Rows, 2)
	assert.Nil(t, got.Rows[0].Channel1.TrendLine)
	require.NotNil(t, got.Rows[1].Channel1.TrendLine)
	assert.Equal(t, 1.25, *got.Rows[1].Channel1.TrendLine)
	assert.Equal(t, "down", got.Rows[1].Channel1.Trend)
	assert.True(t, got.Rows[1].Signals.EnterShort)
	assert.NotContains(t, buf.String(), "max_low_price", "channel state is not exported")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, sample(), Format("xml")))
}
