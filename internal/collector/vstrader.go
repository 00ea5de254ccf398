package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"DualHalfTrend/internal/httpx"
	"DualHalfTrend/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  httpx.NewClient(proxyURL, httpx.DefaultTimeout),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars asks for the interval directly. Coarse intervals the API
// refuses are rebuilt from finer bars.
func (f *VsTraderFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	step, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	bars, err := f.fetchBars(ctx, symbol, interval, limit)
	if err == nil {
		return bars, nil
	}
	base, ok := aggregateFrom[interval]
	if !ok {
		return nil, err
	}
	baseStep, _ := ParseInterval(base)
	factor := int(step / baseStep)
	fine, fineErr := f.fetchBars(ctx, symbol, base, (limit+1)*factor)
	if fineErr != nil {
		return nil, fmt.Errorf("%s fetch failed: %w; %s fallback also failed: %w", interval, err, base, fineErr)
	}
	return trim(Aggregate(fine, step), limit), nil
}

func (f *VsTraderFetcher) fetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", fmt.Sprint(limit))
	endpoint := f.BaseURL + "/api/v1/bars?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var vsBars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&vsBars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(vsBars))
	for i, vb := range vsBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(vb.Timestamp, 0).UTC(),
			Open:   vb.Open,
			High:   vb.High,
			Low:    vb.Low,
			Close:  vb.Close,
			Volume: vb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
