// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file and environment variables, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig initializes the application's configuration using Viper. It
// sets up defaults, config file search paths, and environment variable
// binding. Call once at startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/propscrape/")
	viper.AddConfigPath("$HOME/.propscrape")

	viper.SetDefault("scraper.fields_file", "config/fields.yaml")
	viper.SetDefault("scraper.headless", true)
	viper.SetDefault("scraper.min_delay", "5s")
	viper.SetDefault("scraper.max_delay", "10s")
	viper.SetDefault("scraper.max_retries", 3)
	viper.SetDefault("scraper.marker_timeout", "10s")
	viper.SetDefault("scraper.marker_selectors", []string{
		".object-header__title",
		".object-kenmerken-list",
		".object-primary",
	})
	viper.SetDefault("scraper.block_phrases", []string{
		"Je bent bijna op de pagina die je zoekt",
		"Access denied",
		"Toegang geweigerd",
	})
	viper.SetDefault("scraper.domain_qps", 0.2)
	viper.SetDefault("scraper.output_dir", "data/raw")
	viper.SetDefault("scraper.debug_dir", "debug")
	viper.SetDefault("scraper.processed_dir", "data/processed")
	viper.SetDefault("scraper.emit_failure_records", false)
	viper.SetDefault("log.development", true)

	viper.SetEnvPrefix("PROPSCRAPE") // e.g. PROPSCRAPE_SCRAPER_MAX_RETRIES=5
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			zap.L().Warn("Config file not found; using defaults and environment variables.")
		} else {
			zap.L().Error("Error reading config file", zap.Error(err))
		}
	} else {
		zap.L().Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
