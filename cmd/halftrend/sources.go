package main

import (
	"fmt"

	"DualHalfTrend/internal/collector"
	"DualHalfTrend/internal/config"
)

// buildFetcher picks the bar source named by the data_source section.
// Network sources are wrapped in a rate limiter and circuit breaker.
func buildFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	guard := collector.GuardConfig{RatePerSec: ds.RatePerSec, Burst: ds.Burst}
	switch ds.Kind {
	case "yahoo":
		return collector.NewGuarded(collector.NewYahooFetcher(cfg.Proxy), guard), nil
	case "vstrader":
		return collector.NewGuarded(collector.NewVsTraderFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), guard), nil
	case "csv":
		return &collector.CSVFetcher{Path: ds.CSVPath}, nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	}
	return nil, fmt.Errorf("unknown data source %q", ds.Kind)
}
