package main

import (
	"github.com/spf13/cobra"

	"hfharvest/pkg/logger"
	"hfharvest/pkg/merge"
)

var (
	mergePartsDir string
	mergeOutPath  string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Consolidate checkpoint parts without fetching",
	Long: `Merge reads every readable part file plus any existing consolidated
output, deduplicates by id keeping the record encountered last, sorts by
id, and atomically replaces the consolidated output. Useful after several
harvester processes have written into a shared checkpoint directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if mergePartsDir != "" {
			cfg.Checkpoint.PartsDir = mergePartsDir
		}
		if mergeOutPath != "" {
			cfg.Harvest.Out = mergeOutPath
		}

		_, err = merge.Merge(cfg.Checkpoint.PartsDir, cfg.Harvest.Out, logger.GetLogger())
		return err
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergePartsDir, "parts-dir", "", "checkpoint directory")
	mergeCmd.Flags().StringVar(&mergeOutPath, "out", "", "merged output path")
}
