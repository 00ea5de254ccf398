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

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  httpx.NewClient(proxyURL, httpx.DefaultTimeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"BTCUSD": "BTC-USD",
			"ETHUSD": "ETH-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

// Ranges Yahoo accepts, shortest first.
var yahooRanges = []struct {
	name string
	span time.Duration
}{
	{"1d", 24 * time.Hour},
	{"5d", 5 * 24 * time.Hour},
	{"1mo", 31 * 24 * time.Hour},
	{"3mo", 92 * 24 * time.Hour},
	{"6mo", 183 * 24 * time.Hour},
	{"1y", 366 * 24 * time.Hour},
	{"2y", 731 * 24 * time.Hour},
	{"5y", 1827 * 24 * time.Hour},
	{"10y", 3653 * 24 * time.Hour},
}

// longest history Yahoo serves per native interval
var yahooMaxSpan = map[string]time.Duration{
	"1m":  7 * 24 * time.Hour,
	"5m":  60 * 24 * time.Hour,
	"15m": 60 * 24 * time.Hour,
	"30m": 60 * 24 * time.Hour,
	"60m": 730 * 24 * time.Hour,
}

// yahooRange picks the shortest range covering limit bars of step. Market
// closures are not accounted for, so the span is doubled.
func yahooRange(native string, step time.Duration, limit int) string {
	want := 2 * time.Duration(limit) * step
	if limitSpan, ok := yahooMaxSpan[native]; ok && want > limitSpan {
		want = limitSpan
	}
	for _, r := range yahooRanges {
		if r.span >= want {
			return r.name
		}
	}
	return "max"
}

func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	step, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}
	// Yahoo has no 4h bars; build them from hourly ones.
	native := interval
	switch interval {
	case "1h", "4h":
		native = "60m"
	}
	bars, err := f.fetchChart(ctx, symbol, native, yahooRange(native, step, limit))
	if err != nil {
		return nil, err
	}
	if interval == "4h" {
		bars = Aggregate(bars, step)
	}
	return trim(bars, limit), nil
}

func trim(bars []model.OHLCV, limit int) []model.OHLCV {
	if limit > 0 && len(bars) > limit {
		return bars[len(bars)-limit:]
	}
	return bars
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // null bars (holidays, halts)
		}
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
