package cmd

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/clock/system"
	"github.com/atlast-data/propscrape/internal/fieldcfg"
	"github.com/atlast-data/propscrape/internal/postprocess"
	"github.com/atlast-data/propscrape/internal/scraper"
)

// newScrapeCmd creates the 'scrape' subcommand, which runs a full batch:
// scrape every configured listing, save the raw output, then post-process it.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes the configured property listings",
		Long: `Drives the headless browser over every property URL in the field
configuration, extracting the configured data points and generating synthetic
values for mock-sourced fields. Raw and cleaned outputs land in the
configured data directories.`,

		RunE: runScrapeCommand,
	}
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	logger := zap.L()

	cfg, err := scraper.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load scraper config: %w", err)
	}

	fields, err := fieldcfg.Load(cfg.FieldsFile)
	if err != nil {
		return fmt.Errorf("load field config: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	clock := system.New()

	browser, err := scraper.NewChromedpBrowser(cfg, rng, logger)
	if err != nil {
		return fmt.Errorf("init browser: %w", err)
	}
	defer func() {
		if cerr := browser.Close(cmd.Context()); cerr != nil {
			logger.Warn("Failed to close browser", zap.Error(cerr))
		}
	}()

	throttler := scraper.NewThrottler(cfg.MinDelay, cfg.MaxDelay, clock, rng)
	extractor := scraper.NewExtractor(logger)
	detector := scraper.NewSoftBlockDetector(cfg.BlockPhrases)
	loader := scraper.NewLoader(
		browser,
		throttler,
		extractor,
		detector,
		rng,
		logger,
		cfg.MaxRetries,
		cfg.MarkerTimeout,
		cfg.DebugDir,
	)
	batch := scraper.NewBatch(loader, scraper.NewMockGenerator(rng), clock, rng, logger, cfg.EmitFailureRecords)

	sink, err := scraper.NewRawSink(cfg.OutputDir, clock, logger)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}

	ctx := cmd.Context()
	started := clock.Now()
	records := batch.Run(ctx, fields.PropertyLinks, fields.ListingMetrics(), fields.MockMetrics())

	rawPath, err := sink.SaveRaw(ctx, records)
	if err != nil {
		return fmt.Errorf("save raw data: %w", err)
	}
	if err := sink.SaveRunInfo(ctx, scraper.RunInfo{
		RunID:      batch.RunID(),
		StartedAt:  started,
		FinishedAt: clock.Now(),
		Requested:  len(fields.PropertyLinks),
		Collected:  len(records),
		RawPath:    rawPath,
	}); err != nil {
		logger.Warn("Failed to save run info", zap.Error(err))
	}

	if err := processRecords(records, cfg.ProcessedDir, clock.Now(), logger); err != nil {
		return err
	}
	scraper.LogMetrics(logger)
	return nil
}

// processRecords cleans a batch and writes the cleaned JSON and CSV pair.
func processRecords(records []scraper.PropertyRecord, dir string, now time.Time, logger *zap.Logger) error {
	cleaned := postprocess.CleanRecords(records)
	stamp := now.Format("20060102_150405")

	jsonPath := filepath.Join(dir, fmt.Sprintf("funda_data_cleaned_%s.json", stamp))
	if err := postprocess.WriteJSON(jsonPath, cleaned); err != nil {
		return fmt.Errorf("write cleaned json: %w", err)
	}
	csvPath := filepath.Join(dir, fmt.Sprintf("funda_data_cleaned_%s.csv", stamp))
	if err := postprocess.WriteCSV(csvPath, cleaned); err != nil {
		return fmt.Errorf("write cleaned csv: %w", err)
	}
	logger.Info("Cleaned data saved",
		zap.String("json", jsonPath),
		zap.String("csv", csvPath),
		zap.Int("records", len(cleaned)),
	)
	postprocess.LogCoverage(cleaned, logger)
	return nil
}
