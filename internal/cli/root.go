// Package cli provides the command-line interface for twitterwatch.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/twitterwatch/internal/config"
	"github.com/ppiankov/twitterwatch/internal/logging"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

const defaultConfigDir = ".twitterwatch"

var (
	configDir  string
	handleFlag string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "twitterwatch",
	Short: "Watch what a Twitter account says and what is said to it",
	Long: "twitterwatch retrieves posts from or to a Twitter handle over a date range and derives " +
		"an averaged sentiment distribution, a summary and a ranking of the accounts that reply most.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "twitterwatch %s (%s)\n", Version, Commit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configDir, "config", defaultConfigDir, "config directory")
	pf.StringVar(&handleFlag, "handle", "", "target handle (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "log format: text, json")

	rootCmd.AddCommand(versionCmd, initCmd, doctorCmd, queryCmd, scrapeCmd,
		sentimentCmd, summarizeCmd, fansCmd, reportCmd)
}

// ExecuteContext runs the root command with ctx, which is passed to every
// backend call.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config directory, falling back to defaults when no
// config file exists, applies command-line overrides and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if handleFlag != "" {
		cfg.Handle = strings.TrimPrefix(strings.TrimSpace(handleFlag), "@")
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	logging.Init(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if cfg.Handle == "" {
		return nil, errors.New("no handle: set handle in config.yaml, TWITTERWATCH_HANDLE or --handle")
	}
	return cfg, nil
}
