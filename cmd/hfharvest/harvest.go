package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hfharvest/pkg/harvester"
	"hfharvest/pkg/logger"
)

var (
	idsFile      string
	outPath      string
	partsDir     string
	partPrefix   string
	workers      int
	sleepBase    time.Duration
	batchSize    int
	maxAttempts  int
	extractor    string
	tagPrefix    string
	tagField     string
	retryErrors  bool
	uniquePrefix bool
	rpm          int
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch metadata for every outstanding identifier",
	Long: `Harvest loads the identifier list, subtracts everything already
recorded in the checkpoint directory or the consolidated output, fetches
the rest concurrently, and merges the result.

Interrupting a harvest is safe: part files already flushed are honored on
the next run, and only the records buffered since the last flush are
re-fetched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if idsFile != "" {
			cfg.Harvest.IDsFile = idsFile
		}
		if outPath != "" {
			cfg.Harvest.Out = outPath
		}
		if partsDir != "" {
			cfg.Checkpoint.PartsDir = partsDir
		}
		if partPrefix != "" {
			cfg.Checkpoint.PartPrefix = partPrefix
		}
		if cmd.Flags().Changed("workers") {
			cfg.Harvest.Workers = workers
		}
		if cmd.Flags().Changed("sleep") {
			cfg.Harvest.Sleep = sleepBase
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.Checkpoint.BatchSize = batchSize
		}
		if cmd.Flags().Changed("max-attempts") {
			cfg.Hub.MaxAttempts = maxAttempts
		}
		if cmd.Flags().Changed("extractor") {
			cfg.Harvest.Extractor = extractor
		}
		if cmd.Flags().Changed("tag-prefix") {
			cfg.Harvest.TagPrefix = tagPrefix
		}
		if cmd.Flags().Changed("tag-field") {
			cfg.Harvest.TagField = tagField
		}
		if cmd.Flags().Changed("retry-errors") {
			cfg.Harvest.RetryErrors = retryErrors
		}
		if cmd.Flags().Changed("unique-prefix") {
			cfg.Checkpoint.UniquePrefix = uniquePrefix
		}
		if cmd.Flags().Changed("requests-per-minute") {
			cfg.RateLimit.RequestsPerMinute = rpm
		}

		h, err := harvester.New(cfg, logger.GetLogger())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return h.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	harvestCmd.Flags().StringVar(&idsFile, "ids-file", "", "TXT file with one dataset id per line (required)")
	harvestCmd.Flags().StringVar(&outPath, "out", "", "merged output path")
	harvestCmd.Flags().StringVar(&partsDir, "parts-dir", "", "checkpoint directory")
	harvestCmd.Flags().StringVar(&partPrefix, "part-prefix", "", "prefix for part files (default user@host)")
	harvestCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent fetch workers")
	harvestCmd.Flags().DurationVar(&sleepBase, "sleep", 250*time.Millisecond, "politeness delay base per fetch")
	harvestCmd.Flags().IntVar(&batchSize, "batch-size", 2000, "records per checkpoint part")
	harvestCmd.Flags().IntVar(&maxAttempts, "max-attempts", 5, "request attempts per identifier")
	harvestCmd.Flags().StringVar(&extractor, "extractor", "size", "payload variant: size, tags or stats")
	harvestCmd.Flags().StringVar(&tagPrefix, "tag-prefix", "", "tag prefix for the tags extractor, e.g. language")
	harvestCmd.Flags().StringVar(&tagField, "tag-field", "", "output field for the tags extractor, e.g. languages_final")
	harvestCmd.Flags().BoolVar(&retryErrors, "retry-errors", false, "re-fetch identifiers whose recorded status is error")
	harvestCmd.Flags().BoolVar(&uniquePrefix, "unique-prefix", false, "append a random fragment to the part prefix")
	harvestCmd.Flags().IntVar(&rpm, "requests-per-minute", 0, "aggregate request cap across workers (0 = unlimited)")
}
