package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"DualHalfTrend/internal/config"
	"DualHalfTrend/internal/logging"
	"DualHalfTrend/internal/strategy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "halftrend",
		Short:         "Dual HalfTrend trend indicator and signal generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			log.Logger = logging.New(cmd.ErrOrStderr(), level, format)
		},
	}
	root.PersistentFlags().String("config", "", "path to config.yaml (defaults to $CONFIG_PATH)")
	root.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error), overrides log.level")
	root.PersistentFlags().String("log-format", "console", "log format (console|json), overrides log.format")

	root.AddCommand(newComputeCmd(), newWatchCmd())
	return root
}

func addParamFlags(fs *pflag.FlagSet) {
	def := strategy.DefaultParams()
	fs.Int("amplitude1", def.Amplitude1, "fast channel window")
	fs.Float64("deviation1", def.Deviation1, "fast channel width in half-ATR units")
	fs.Int("amplitude2", def.Amplitude2, "slow channel window")
	fs.Float64("deviation2", def.Deviation2, "slow channel width in half-ATR units")
	fs.Int("atr-period", def.ATRPeriod, "volatility period")
	fs.String("atr-mode", def.ATRMode, "volatility averaging (sma|wilder)")
}

// applyParamFlags overrides p with the flags set on the command line.
func applyParamFlags(fs *pflag.FlagSet, p *strategy.Params) {
	if fs.Changed("amplitude1") {
		p.Amplitude1, _ = fs.GetInt("amplitude1")
	}
	if fs.Changed("deviation1") {
		p.Deviation1, _ = fs.GetFloat64("deviation1")
	}
	if fs.Changed("amplitude2") {
		p.Amplitude2, _ = fs.GetInt("amplitude2")
	}
	if fs.Changed("deviation2") {
		p.Deviation2, _ = fs.GetFloat64("deviation2")
	}
	if fs.Changed("atr-period") {
		p.ATRPeriod, _ = fs.GetInt("atr-period")
	}
	if fs.Changed("atr-mode") {
		p.ATRMode, _ = fs.GetString("atr-mode")
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	setupLogging(cmd, cfg.Log.Level, cfg.Log.Format)
	applyParamFlags(cmd.Flags(), &cfg.Strategy)
	log.Debug().Str("config", path).Str("source", cfg.DataSource.Kind).
		Interface("strategy", cfg.Strategy).Msg("config loaded")
	return cfg, nil
}

// setupLogging installs the logger configured by the log section. The
// log flags win when given on the command line.
func setupLogging(cmd *cobra.Command, level, format string) {
	fs := cmd.Flags()
	if fs.Changed("log-level") {
		level, _ = fs.GetString("log-level")
	}
	if fs.Changed("log-format") {
		format, _ = fs.GetString("log-format")
	}
	log.Logger = logging.New(cmd.ErrOrStderr(), level, format)
}
