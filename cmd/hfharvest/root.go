package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hfharvest/pkg/config"
	"hfharvest/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hfharvest",
	Short: "Resumable, checkpointed harvester for Hugging Face dataset metadata",
	Long: `hfharvest fetches per-dataset metadata from the Hugging Face
datasets-server for a large static list of dataset ids.

Progress is checkpointed as immutable part files, so a killed run can be
restarted and picks up where it left off. Several harvester processes may
share one checkpoint directory and their output merges into a single
deduplicated dataset.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .hfharvest.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
}

// loadConfig builds the effective configuration and installs the global logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}

	log, err := logger.New(&logger.Config{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}
	logger.SetLogger(log)

	return cfg, nil
}
