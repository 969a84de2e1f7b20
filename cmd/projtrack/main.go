package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"projtrack/internal/cache"
	"projtrack/internal/config"
	"projtrack/internal/logging"
	"projtrack/internal/optimistic"
	"projtrack/internal/remote"
)

var (
	cfgFile   string
	serverURL string
	verbose   bool

	logger *zap.Logger
	engine *optimistic.Engine
)

var rootCmd = &cobra.Command{
	Use:   "projtrack",
	Short: "Track projects and their tasks",
	Long: `projtrack manages projects and their task lists on a projtrack server.

Changes show up immediately and are confirmed by the server afterwards. If
the server rejects a change, it is undone and the command fails.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Client.URL = serverURL
		}
		if verbose {
			cfg.Log.Level = "debug"
			cfg.Log.Development = true
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}

		engine, err = newEngine(cfg, logger)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("PROJTRACK_CONFIG"), "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
}

// newEngine wires an HTTP remote client and an empty cache into an engine.
func newEngine(cfg *config.Config, logger *zap.Logger) (*optimistic.Engine, error) {
	client, err := remote.NewHTTPClient(cfg.Client.URL, remote.WithRateLimit(cfg.Client.RPS))
	if err != nil {
		return nil, err
	}

	return optimistic.New(cache.New(), client,
		optimistic.WithLogger(logger.Named("engine")),
		optimistic.WithTimeout(cfg.Client.Timeout),
	), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	// Interrupted mutations keep running until the server answers.
	if engine != nil {
		engine.Wait()
	}
	if logger != nil {
		_ = logger.Sync()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
