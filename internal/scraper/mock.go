package scraper

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/atlast-data/propscrape/internal/fieldcfg"
)

var (
	renovationYears      = []int{2015, 2018, 2020}
	renovationSeverities = []string{"Minor", "Major", "None"}
	ownershipTypes       = []string{"Freehold", "Leasehold", "Shared Ownership"}
	qualitativeLevels    = []string{"High", "Medium", "Low", "Very High", "Very Low"}
)

// MockGenerator synthesizes plausible values for fields that have no real
// data source, keyed by patterns in the field name. Generated values are
// independent of any scraped state and must be treated as synthetic
// downstream.
type MockGenerator struct {
	rng *rand.Rand
}

// NewMockGenerator returns a generator drawing from rng, which may be seeded
// for deterministic tests.
func NewMockGenerator(rng *rand.Rand) *MockGenerator {
	return &MockGenerator{rng: rng}
}

// Generate produces one value per configured mock descriptor.
func (g *MockGenerator) Generate(metrics []fieldcfg.Descriptor) map[string]any {
	out := make(map[string]any, len(metrics))
	for _, metric := range metrics {
		out[metric.Metric] = g.generateOne(metric.Metric, metric.ExampleData)
	}
	return out
}

func (g *MockGenerator) generateOne(field, example string) any {
	switch {
	case strings.Contains(field, "Score") && strings.Contains(field, "1-10"):
		return round1(g.uniform(1, 10))
	case strings.Contains(field, "Rate") && strings.Contains(field, "%"):
		return g.percent(0, 100)
	case strings.Contains(field, "Potential") && strings.Contains(field, "%"):
		return g.percent(0, 100)
	case strings.Contains(field, "Volatility"):
		return g.percent(0, 30)
	case strings.Contains(field, "History"):
		return g.renovationHistory()
	case strings.Contains(field, "Type"):
		return ownershipTypes[g.rng.Intn(len(ownershipTypes))]
	default:
		return g.fromExample(example)
	}
}

func (g *MockGenerator) renovationHistory() string {
	count := g.rng.Intn(4)
	if count == 0 {
		return "No renovation history"
	}
	events := make([]string, count)
	for i := 0; i < count; i++ {
		year := renovationYears[i%len(renovationYears)]
		severity := renovationSeverities[g.rng.Intn(len(renovationSeverities))]
		events[i] = fmt.Sprintf("%d: %s", year, severity)
	}
	return strings.Join(events, ", ")
}

// fromExample falls back on the configured example value: numeric examples
// get a draw within ±20% of the example magnitude, anything else a
// qualitative level.
func (g *MockGenerator) fromExample(example string) any {
	example = strings.TrimSpace(example)
	if value, err := strconv.ParseFloat(example, 64); err == nil {
		low := math.Max(0, value*0.8)
		high := value * 1.2
		drawn := g.uniform(low, high)
		if strings.Contains(example, ".") {
			return math.Round(drawn*100) / 100
		}
		return math.Round(drawn)
	}
	return qualitativeLevels[g.rng.Intn(len(qualitativeLevels))]
}

func (g *MockGenerator) percent(low, high float64) string {
	return fmt.Sprintf("%.1f%%", round1(g.uniform(low, high)))
}

func (g *MockGenerator) uniform(low, high float64) float64 {
	return low + g.rng.Float64()*(high-low)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
