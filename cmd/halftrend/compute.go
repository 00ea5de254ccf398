package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"DualHalfTrend/internal/collector"
	"DualHalfTrend/internal/config"
	"DualHalfTrend/internal/export"
	"DualHalfTrend/internal/model"
	"DualHalfTrend/internal/strategy"
)

func newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Evaluate a bar series once and write the augmented rows",
		Example: `  halftrend compute --input bars.csv
  halftrend compute --source yahoo --symbol BTC-USD --interval 4h --format json --output out.json`,
		RunE: runCompute,
	}
	fs := cmd.Flags()
	fs.String("input", "", "CSV file of bars (time,open,high,low,close,volume)")
	fs.String("source", "", "fetch bars instead of reading --input (yahoo|vstrader|csv|mock)")
	fs.String("symbol", "", "symbol to fetch")
	fs.String("interval", "", "bar interval to fetch (1m,5m,15m,30m,1h,4h,1d,1wk)")
	fs.Int("limit", 0, "number of closed bars to fetch")
	fs.String("format", "csv", "output format (csv|json)")
	fs.StringP("output", "o", "-", "output file, - for stdout")
	addParamFlags(fs)
	return cmd
}

func runCompute(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	formatName, _ := fs.GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var bars []model.OHLCV
	if input, _ := fs.GetString("input"); input != "" {
		bars, err = readBars(input)
	} else {
		overrideSource(cmd, cfg)
		bars, err = fetchBars(cmd.Context(), cfg)
	}
	if err != nil {
		return err
	}

	a, err := strategy.Evaluate(bars, cfg.Strategy)
	if err != nil {
		return err
	}
	log.Info().Int("bars", len(a.Rows)).Int("warmup", a.Warmup).Msg("evaluated")

	out := cmd.OutOrStdout()
	if path, _ := fs.GetString("output"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}
	return export.Write(out, a, format)
}

func readBars(path string) ([]model.OHLCV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	bars, err := collector.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

func overrideSource(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if v, _ := fs.GetString("source"); v != "" {
		cfg.DataSource.Kind = v
	}
	if v, _ := fs.GetString("symbol"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v, _ := fs.GetString("interval"); v != "" {
		cfg.DataSource.Interval = v
	}
	if fs.Changed("limit") {
		cfg.DataSource.Limit, _ = fs.GetInt("limit")
	}
}

func fetchBars(ctx context.Context, cfg *config.Config) ([]model.OHLCV, error) {
	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return nil, err
	}
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Interval, cfg.DataSource.Limit)
	series, err := col.Collect(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", fetcher.Name()).Str("symbol", series.Symbol).
		Str("interval", series.Interval).Int("bars", len(series.Bars)).Msg("fetched")
	return series.Bars, nil
}
