package scraper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	// TotalProperties tracks listings successfully scraped and collected.
	TotalProperties = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propscrape_properties_total",
		Help: "The total number of properties successfully scraped.",
	})
	// TotalLoadAttempts tracks individual page-load attempts, retries included.
	TotalLoadAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propscrape_load_attempts_total",
		Help: "The total number of page load attempts, including retries.",
	})
	// TotalRetries tracks attempts beyond the first for any property.
	TotalRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propscrape_retries_total",
		Help: "The total number of retried page loads.",
	})
	// TotalSoftBlocks tracks detected bot-mitigation pages.
	TotalSoftBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propscrape_soft_blocks_total",
		Help: "The total number of soft-block pages detected.",
	})
	// TotalFailures tracks properties dropped after exhausting retries.
	TotalFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propscrape_failures_total",
		Help: "The total number of properties that failed after all retries.",
	})
)

// MetricsSnapshot reads the current value of every pipeline counter from the
// default registry, keyed by metric name.
func MetricsSnapshot() (map[string]float64, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	values := make(map[string]float64)
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "propscrape_") {
			continue
		}
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				values[family.GetName()] = counter.GetValue()
			}
		}
	}
	return values, nil
}

// LogMetrics writes the final counter values at the end of a run. The process
// is short-lived, so this dump is how the counters leave the process.
func LogMetrics(logger *zap.Logger) {
	values, err := MetricsSnapshot()
	if err != nil {
		logger.Warn("Failed to gather run metrics", zap.Error(err))
		return
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		logger.Info("Run metric",
			zap.String("metric", name),
			zap.Float64("value", values[name]),
		)
	}
}
