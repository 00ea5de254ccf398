// Package metrics exposes watch loop counters over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds the Prometheus collectors of the watch loop.
type Metrics struct {
	Evaluations  *prometheus.CounterVec // labels: symbol, result
	Signals      *prometheus.CounterVec // labels: symbol, kind
	FetchErrors  *prometheus.CounterVec // labels: source
	EvalDuration prometheus.Histogram
	Trend        *prometheus.GaugeVec // labels: symbol, channel; 0=up, 1=down
	LastBar      *prometheus.GaugeVec // labels: symbol; unix seconds

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "halftrend_evaluations_total",
			Help: "Evaluations run by the watch loop",
		}, []string{"symbol", "result"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "halftrend_signals_total",
			Help: "Signals emitted on newly closed bars",
		}, []string{"symbol", "kind"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "halftrend_fetch_errors_total",
			Help: "Failed bar fetches",
		}, []string{"source"}),
		EvalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "halftrend_evaluation_duration_seconds",
			Help:    "Time to fetch and evaluate one symbol",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Trend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "halftrend_trend",
			Help: "Confirmed trend of the newest closed bar (0=up, 1=down)",
		}, []string{"symbol", "channel"}),
		LastBar: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "halftrend_last_bar_timestamp_seconds",
			Help: "Open time of the newest evaluated bar",
		}, []string{"symbol"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Evaluations, m.Signals, m.FetchErrors, m.EvalDuration, m.Trend, m.LastBar)
	return m
}

// ObserveEvaluation records one evaluation outcome.
func (m *Metrics) ObserveEvaluation(symbol string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Evaluations.WithLabelValues(symbol, result).Inc()
	m.EvalDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve starts the /metrics endpoint in the background.
func (m *Metrics) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("component", "metrics").Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
