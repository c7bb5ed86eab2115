package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/clock/system"
	"github.com/atlast-data/propscrape/internal/postprocess"
)

// newProcessCmd creates the 'process' subcommand, which re-runs
// post-processing on the most recent raw output without scraping.
func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [raw-file]",
		Short: "Cleans a previously scraped raw data file",
		Long: `Re-applies text normalization and field derivation to a raw JSON
array produced by a scrape run, writing a cleaned JSON file and an equivalent
CSV. Without an argument the most recent raw file is processed.`,

		Args: cobra.MaximumNArgs(1),
		RunE: runProcessCommand,
	}
	return cmd
}

func runProcessCommand(_ *cobra.Command, args []string) error {
	logger := zap.L()

	rawPath := ""
	if len(args) == 1 {
		rawPath = args[0]
	} else {
		latest, err := postprocess.FindLatestRaw(viper.GetString("scraper.output_dir"))
		if err != nil {
			return fmt.Errorf("locate raw data: %w", err)
		}
		rawPath = latest
	}
	logger.Info("Processing raw data", zap.String("path", rawPath))

	records, err := postprocess.ReadRaw(rawPath)
	if err != nil {
		return err
	}
	return processRecords(records, viper.GetString("scraper.processed_dir"), system.New().Now(), logger)
}
