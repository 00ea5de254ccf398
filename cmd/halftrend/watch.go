package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"DualHalfTrend/internal/collector"
	"DualHalfTrend/internal/cursor"
	"DualHalfTrend/internal/metrics"
	"DualHalfTrend/internal/notifier"
	"DualHalfTrend/internal/recorder"
	"DualHalfTrend/internal/scheduler"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate on a schedule and alert on every newly closed bar",
		RunE:  runWatch,
	}
	cmd.Flags().Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "evaluate once immediately")
	addParamFlags(cmd.Flags())
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info().Str("symbol", cfg.DataSource.Symbol).Str("interval", cfg.DataSource.Interval).
		Msg("halftrend watch starting")

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source")
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Interval, cfg.DataSource.Limit)

	cur, err := cursor.NewManager(cfg.StateFile)
	if err != nil {
		return err
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New(nil)
		srv := m.Serve(cfg.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tn *notifier.TelegramNotifier
	var sender notifier.Sender
	if cfg.Telegram.Enabled {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = notifier.RetryingSender{TelegramNotifier: tn, MaxRetries: 3}
	}

	sched := scheduler.NewScheduler(ctx, col, cfg.Strategy, cur, sender, rec, m)
	if err := sched.Register(cfg.Schedule.EvaluateCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if runNow, _ := cmd.Flags().GetBool("run-on-start"); runNow {
		log.Info().Msg("run-on-start enabled, evaluating now")
		go sched.RunNow()
	}

	log.Info().Msg("halftrend is running, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
