// Package commands implements the kalpha command line.
package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/kalpha/internal/config"
	"github.com/okian/kalpha/pkg/logger"
)

// rootOptions holds global flags and the configuration resolved from them.
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log logger.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	ro := &rootOptions{}

	root := &cobra.Command{
		Use:   "kalpha",
		Short: "Krippendorff's alpha for inter-rater reliability",
		Long: `kalpha measures agreement among coders who rated a set of items.

Ratings come from a delimited table or JSON; missing ratings are allowed.
Nominal, interval and ratio metrics are built in.

Examples:
  kalpha compute ratings.tsv --metric nominal
  kalpha compute group.tsv --orientation items --missing '*'
  kalpha serve --addr :9080`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return ro.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&ro.configFile, "config", "", "YAML config file (default $"+config.EnvConfig+")")
	root.PersistentFlags().StringVar(&ro.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&ro.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newComputeCmd(ro), newServeCmd(ro))
	return root
}

// setup loads configuration and initializes the global logger on stderr.
func (ro *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), ro.configFile)
	if err != nil {
		return err
	}
	if ro.logLevel != "" {
		cfg.LogLevel = ro.logLevel
	}
	if ro.logFormat != "" {
		cfg.LogFormat = ro.logFormat
	}

	if err := logger.InitWithOptions(
		logger.WithFormat(cfg.LogFormat),
		logger.WithWriter(cmd.ErrOrStderr()),
	); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	ro.cfg = cfg
	ro.log = logger.Get()
	return nil
}

// Execute runs the command line with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
