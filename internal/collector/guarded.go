package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"DualHalfTrend/internal/model"
)

// GuardConfig tunes the throttle and breaker around a Fetcher.
type GuardConfig struct {
	RatePerSec          float64
	Burst               int
	ConsecutiveFailures uint32        // failures that open the breaker
	OpenTimeout         time.Duration // time spent open before a trial request
}

// DefaultGuardConfig suits public market data APIs.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{RatePerSec: 1, Burst: 2, ConsecutiveFailures: 3, OpenTimeout: time.Minute}
}

// Guarded throttles calls to an inner Fetcher and stops calling it while
// it keeps failing.
type Guarded struct {
	inner   Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuarded wraps f. Zero fields of cfg take their defaults.
func NewGuarded(f Fetcher, cfg GuardConfig) *Guarded {
	def := DefaultGuardConfig()
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = def.RatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	threshold := cfg.ConsecutiveFailures
	return &Guarded{
		inner:   f,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        f.Name(),
			MaxRequests: 1,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("component", "collector").Str("fetcher", name).
					Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
			},
		}),
	}
}

func (g *Guarded) Name() string { return g.inner.Name() }

// State reports the breaker state ("closed", "half-open" or "open").
func (g *Guarded) State() string { return g.breaker.State().String() }

func (g *Guarded) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit: %w", g.inner.Name(), err)
	}
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.FetchBars(ctx, symbol, interval, limit)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.OHLCV), nil
}
