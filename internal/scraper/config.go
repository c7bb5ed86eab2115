package scraper

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every knob that influences a scrape run. All values
// originate from Viper so the pipeline can be configured via file, env vars,
// or flags.
type Config struct {
	FieldsFile         string
	Headless           bool
	MinDelay           time.Duration
	MaxDelay           time.Duration
	MaxRetries         int
	MarkerTimeout      time.Duration
	MarkerSelectors    []string
	BlockPhrases       []string
	DomainQPS          float64
	OutputDir          string
	DebugDir           string
	ProcessedDir       string
	EmitFailureRecords bool
	LogDevelopment     bool
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		FieldsFile:         v.GetString("scraper.fields_file"),
		Headless:           v.GetBool("scraper.headless"),
		MinDelay:           v.GetDuration("scraper.min_delay"),
		MaxDelay:           v.GetDuration("scraper.max_delay"),
		MaxRetries:         v.GetInt("scraper.max_retries"),
		MarkerTimeout:      v.GetDuration("scraper.marker_timeout"),
		MarkerSelectors:    v.GetStringSlice("scraper.marker_selectors"),
		BlockPhrases:       v.GetStringSlice("scraper.block_phrases"),
		DomainQPS:          v.GetFloat64("scraper.domain_qps"),
		OutputDir:          v.GetString("scraper.output_dir"),
		DebugDir:           v.GetString("scraper.debug_dir"),
		ProcessedDir:       v.GetString("scraper.processed_dir"),
		EmitFailureRecords: v.GetBool("scraper.emit_failure_records"),
		LogDevelopment:     v.GetBool("log.development"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.FieldsFile == "" {
		return fmt.Errorf("scraper.fields_file must be set")
	}
	if c.MinDelay <= 0 {
		return fmt.Errorf("scraper.min_delay must be > 0")
	}
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("scraper.max_delay must be >= scraper.min_delay")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("scraper.max_retries must be > 0")
	}
	if c.MarkerTimeout <= 0 {
		return fmt.Errorf("scraper.marker_timeout must be > 0")
	}
	if len(c.MarkerSelectors) == 0 {
		return fmt.Errorf("scraper.marker_selectors must include at least one selector")
	}
	if c.DomainQPS < 0 {
		return fmt.Errorf("scraper.domain_qps must be >= 0")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("scraper.output_dir must be set")
	}
	if c.ProcessedDir == "" {
		return fmt.Errorf("scraper.processed_dir must be set")
	}
	return nil
}
