package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/reviewlens/internal/config"
	"github.com/KaramelBytes/reviewlens/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reviewlens",
	Short: "reviewlens: statistics, trends, anomalies and keyword insights for product reviews",
	Long: `reviewlens reads a CSV/TSV/XLSX export of product reviews, detects the rating,
date, product, region and review text columns, and writes a report with rating
statistics, monthly trends, anomaly flags and per-product strengths and weaknesses.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.reviewlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		d := cfgpkg.Defaults()
		c = &d
	}
	cfg = c

	level, format := cfg.LogLevel, cfg.LogFormat
	if debug {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	logger = logging.New(logging.Options{Level: level, Format: format, Out: rootCmd.ErrOrStderr()})
}

// log returns the command logger, building a default one if initialization was skipped.
func log() *logging.Logger {
	if logger == nil {
		logger = logging.New(logging.Options{Out: rootCmd.ErrOrStderr()})
	}
	return logger
}
