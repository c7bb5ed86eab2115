// Package cmd defines and implements the CLI commands for the propscrape
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/logging"
	"github.com/atlast-data/propscrape/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "propscrape",
		Short: "Scrapes real-estate listing pages into structured records.",
		Long: `propscrape drives a headless browser over a configured list of
property listing URLs, extracts structured fields using CSS-selector
heuristics, augments each record with synthetic metrics, and post-processes
the result into cleaned JSON and CSV files.`,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(viper.GetBool("log.development"))
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newProcessCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	config.InitConfig()
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		zap.L().Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}
