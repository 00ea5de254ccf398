package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"DualHalfTrend/internal/collector"
	"DualHalfTrend/internal/cursor"
	"DualHalfTrend/internal/metrics"
	"DualHalfTrend/internal/model"
	"DualHalfTrend/internal/notifier"
	"DualHalfTrend/internal/recorder"
	"DualHalfTrend/internal/strategy"
)

// Scheduler re-evaluates a symbol on a cron schedule and emits the signals
// of every newly closed bar exactly once.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Params    strategy.Params
	Cursor    *cursor.Manager
	Notifier  notifier.Sender // nil disables alerts
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics // nil disables metrics
	Ctx       context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, p strategy.Params, cur *cursor.Manager,
	sender notifier.Sender, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Params:    p,
		Cursor:    cur,
		Notifier:  sender,
		Recorder:  rec,
		Metrics:   m,
		Ctx:       ctx,
		log:       log.With().Str("component", "scheduler").Str("symbol", col.Symbol).Logger(),
	}
}

// Register adds the evaluation task.
func (s *Scheduler) Register(evaluateCron string) error {
	if _, err := s.Cron.AddFunc(evaluateCron, s.evaluateTask); err != nil {
		return fmt.Errorf("register evaluate task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the evaluation immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.evaluateTask()
}

func (s *Scheduler) evaluateTask() {
	if _, err := s.Evaluate(s.Ctx); err != nil {
		s.log.Error().Err(err).Msg("evaluation failed")
	}
}

// Evaluate collects, evaluates and emits the signals of bars not yet acted
// on. On the first run only the newest closed bar is acted on. It returns
// the emitted events.
func (s *Scheduler) Evaluate(ctx context.Context) ([]model.SignalEvent, error) {
	start := time.Now()
	run := &recorder.Run{
		Symbol:     s.Collector.Symbol,
		Interval:   s.Collector.Interval,
		Source:     s.Collector.Fetcher.Name(),
		ATRPeriod:  s.Params.ATRPeriod,
		ATRMode:    s.Params.ATRMode,
		Amplitude1: s.Params.Amplitude1,
		Deviation1: s.Params.Deviation1,
		Amplitude2: s.Params.Amplitude2,
		Deviation2: s.Params.Deviation2,
	}

	events, err := s.evaluate(ctx, run)
	run.Duration = time.Since(start)
	run.Signals = len(events)
	if err != nil {
		run.Err = err.Error()
	}
	if s.Metrics != nil {
		s.Metrics.ObserveEvaluation(run.Symbol, run.Duration, err)
	}
	if recErr := s.Recorder.RecordRun(run); recErr != nil {
		s.log.Error().Err(recErr).Msg("record run")
	}
	if err == nil && len(events) > 0 {
		if recErr := s.Recorder.RecordSignals(run.ID, events); recErr != nil {
			s.log.Error().Err(recErr).Msg("record signals")
		}
	}
	return events, err
}

func (s *Scheduler) evaluate(ctx context.Context, run *recorder.Run) ([]model.SignalEvent, error) {
	series, err := s.Collector.Collect(ctx)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.FetchErrors.WithLabelValues(run.Source).Inc()
		}
		return nil, err
	}
	run.Bars = len(series.Bars)

	a, err := strategy.Evaluate(series.Bars, s.Params)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", series.Symbol, err)
	}
	if len(a.Rows) == 0 {
		s.log.Warn().Msg("no closed bars")
		return nil, nil
	}
	last := a.Rows[len(a.Rows)-1]
	run.LastBar = last.Bar.Time
	run.FastTrend, run.SlowTrend = last.Fast.Trend, last.Slow.Trend

	if !s.Cursor.IsNew(series.Symbol, series.Interval, last.Bar.Time) {
		s.log.Debug().Time("bar", last.Bar.Time).Msg("no new closed bar")
		return nil, nil
	}
	from := len(a.Rows) - 1
	prev, seen := s.Cursor.Get(series.Symbol, series.Interval)
	if seen {
		for from > 0 && s.Cursor.IsNew(series.Symbol, series.Interval, a.Rows[from-1].Bar.Time) {
			from--
		}
	}

	var emitted []model.SignalEvent
	for i := from; i < len(a.Rows); i++ {
		events := strategy.Events(series.Symbol, series.Interval, a, i)
		if len(events) == 0 {
			continue
		}
		s.log.Info().Time("bar", a.Rows[i].Bar.Time).Int("signals", len(events)).
			Str("first", string(events[0].Kind)).Msg("signals fired")
		s.notify(ctx, notifier.FormatSignals(events))
		if s.Metrics != nil {
			for _, e := range events {
				s.Metrics.Signals.WithLabelValues(e.Symbol, string(e.Kind)).Inc()
			}
		}
		emitted = append(emitted, events...)
	}

	if s.Metrics != nil {
		s.Metrics.Trend.WithLabelValues(series.Symbol, "fast").Set(float64(last.Fast.Trend))
		s.Metrics.Trend.WithLabelValues(series.Symbol, "slow").Set(float64(last.Slow.Trend))
		s.Metrics.LastBar.WithLabelValues(series.Symbol).Set(float64(last.Bar.Time.Unix()))
	}

	if _, err := s.Cursor.Advance(cursor.Entry{
		Symbol:    series.Symbol,
		Interval:  series.Interval,
		LastBar:   last.Bar.Time,
		LastClose: last.Bar.Close,
		FastTrend: last.Fast.Trend,
		SlowTrend: last.Slow.Trend,
		FastLine:  last.Fast.TrendLine,
		SlowLine:  last.Slow.TrendLine,
		Signals:   prev.Signals + len(emitted),
	}); err != nil {
		s.log.Error().Err(err).Msg("save watch state")
	}
	return emitted, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	return notifier.Commands{
		Status: func() string { return notifier.FormatStatus(s.Cursor.Snapshot(), time.Now()) },
		Recent: func() string {
			events, err := s.Recorder.RecentSignals(s.Collector.Symbol, 10)
			if err != nil {
				s.log.Error().Err(err).Msg("load recent signals")
				return "❌ could not load signals"
			}
			return notifier.FormatRecent(events)
		},
	}.Handle(command)
}

func (s *Scheduler) notify(ctx context.Context, text string) {
	if s.Notifier == nil || text == "" {
		return
	}
	if err := s.Notifier.Send(ctx, text); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
