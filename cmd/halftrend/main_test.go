package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DualHalfTrend/internal/export"
	"DualHalfTrend/internal/strategy"
)

var zigzag = []float64{100, 101, 102, 103, 104, 105, 104, 102, 100, 98, 96, 95, 96, 98, 100, 102, 104, 106, 104, 101, 98, 95, 92}

func writeBars(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("time,open,high,low,close,volume\n")
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range zigzag {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,1\n", start.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), c, c+1, c-1, c)
	}
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "none.yaml"))
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestComputeCSV(t *testing.T) {
	out, err := run(t, "compute", "--input", writeBars(t),
		"--amplitude2", "4", "--atr-period", "3")
	require.NoError(t, err)

	recs, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, len(zigzag)+1)
	assert.Equal(t, export.Header, recs[0])

	enterShort := -1
	for i, h := range export.Header {
		if h == "enter_short" {
			enterShort = i
		}
	}
	assert.Equal(t, "true", recs[11][enterShort], "bar 10")
	assert.Equal(t, "true", recs[22][enterShort], "bar 21")
}

func TestComputeJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	_, err := run(t, "compute", "--input", writeBars(t), "--format", "json", "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"atr_period": 100`)
	assert.Contains(t, string(data), `"warmup": 99`)
}

func TestComputeJSONIsReproducible(t *testing.T) {
	input := writeBars(t)
	first, err := run(t, "compute", "--input", input, "--format", "json")
	require.NoError(t, err)
	second, err := run(t, "compute", "--input", input, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func runWithConfig(t *testing.T, yamlText string, args ...string) string {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlText), 0o644))

	root := newRootCmd()
	var out, stderr bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"compute", "--config", cfgPath, "--input", writeBars(t)}, args...))
	require.NoError(t, root.Execute())
	return stderr.String()
}

func TestLogSectionFromConfig(t *testing.T) {
	logs := runWithConfig(t, "log:\n  level: debug\n  format: json\n")
	assert.Contains(t, logs, `"level":"debug"`)
	assert.Contains(t, logs, `"message":"config loaded"`)
	assert.Contains(t, logs, `"message":"evaluated"`)
}

func TestLogFlagsOverrideConfig(t *testing.T) {
	logs := runWithConfig(t, "log:\n  level: debug\n  format: json\n", "--log-level", "warn")
	assert.NotContains(t, logs, "config loaded")
	assert.NotContains(t, logs, "evaluated")

	logs = runWithConfig(t, "log:\n  level: info\n  format: json\n", "--log-format", "console")
	assert.Contains(t, logs, "INF")
	assert.NotContains(t, logs, `"level":"info"`)
}

func TestComputeRejectsBadParams(t *testing.T) {
	_, err := run(t, "compute", "--input", writeBars(t), "--deviation1", "0")
	assert.ErrorContains(t, err, "invalid parameters")

	_, err = run(t, "compute", "--input", writeBars(t), "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestComputeMockSource(t *testing.T) {
	out, err := run(t, "compute", "--source", "mock", "--interval", "1h", "--limit", "150")
	require.NoError(t, err)
	assert.Equal(t, 151, strings.Count(out, "\n"), "header plus 150 closed bars")
}

func TestApplyParamFlags(t *testing.T) {
	cmd := newComputeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--amplitude1", "3", "--atr-mode", "wilder"}))
	p := strategy.DefaultParams()
	applyParamFlags(cmd.Flags(), &p)
	assert.Equal(t, 3, p.Amplitude1)
	assert.Equal(t, "wilder", p.ATRMode)
	assert.Equal(t, 10, p.Amplitude2, "unset flags leave the value alone")
}
