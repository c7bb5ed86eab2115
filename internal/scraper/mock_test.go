package scraper

import (
	"math/rand"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlast-data/propscrape/internal/fieldcfg"
)

var percentValuePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)%$`)

func requirePercentInRange(t *testing.T, value any, low, high float64) {
	t.Helper()
	text, ok := value.(string)
	require.True(t, ok, "percentage mocks are strings, got %T", value)
	m := percentValuePattern.FindStringSubmatch(text)
	require.NotNil(t, m, "value %q should match <number>%%", text)
	n, err := strconv.ParseFloat(m[1], 64)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, low)
	require.LessOrEqual(t, n, high)
}

func TestMockGeneratorScoreRange(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		v := g.generateOne("Tenant Demand Score (1-10)", "")
		score, ok := v.(float64)
		require.True(t, ok)
		require.GreaterOrEqual(t, score, 1.0)
		require.LessOrEqual(t, score, 10.0)
	}
}

func TestMockGeneratorRateAndPotential(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		requirePercentInRange(t, g.generateOne("Vacancy Rate (%)", ""), 0, 100)
		requirePercentInRange(t, g.generateOne("Rental Yield Rate (%)", ""), 0, 100)
		requirePercentInRange(t, g.generateOne("Value Growth Potential (%)", ""), 0, 100)
	}
}

func TestMockGeneratorVolatility(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		requirePercentInRange(t, g.generateOne("Price Volatility", ""), 0, 30)
	}
}

func TestMockGeneratorRenovationHistory(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	sawEvents := false
	sawEmpty := false
	for i := 0; i < 200; i++ {
		v := g.generateOne("Renovation History", "").(string)
		if v == "No renovation history" {
			sawEmpty = true
			continue
		}
		sawEvents = true
		for _, event := range strings.Split(v, ", ") {
			parts := strings.SplitN(event, ": ", 2)
			require.Len(t, parts, 2, "event %q", event)
			require.Contains(t, []string{"2015", "2018", "2020"}, parts[0])
			require.Contains(t, renovationSeverities, parts[1])
		}
	}
	require.True(t, sawEvents, "expected at least one non-empty history in 200 draws")
	require.True(t, sawEmpty, "expected at least one empty history in 200 draws")
}

func TestMockGeneratorOwnershipType(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	for i := 0; i < 50; i++ {
		v := g.generateOne("Ownership Type", "").(string)
		require.Contains(t, ownershipTypes, v)
	}
}

func TestMockGeneratorNumericExampleFallback(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	for i := 0; i < 200; i++ {
		v := g.generateOne("Neighborhood Index", "250").(float64)
		require.GreaterOrEqual(t, v, 200.0, "draw stays within -20%% of the example")
		require.LessOrEqual(t, v, 300.0, "draw stays within +20%% of the example")
		require.Equal(t, v, float64(int64(v)), "integer example yields integer draws")
	}
}

func TestMockGeneratorTextExampleFallback(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(42)))
	for i := 0; i < 50; i++ {
		v := g.generateOne("Neighborhood Desirability", "High").(string)
		require.Contains(t, qualitativeLevels, v)
	}
}

func TestShippedMockMetricsHitGeneratorRules(t *testing.T) {
	f, err := fieldcfg.Load(filepath.Join("..", "..", "config", "fields.yaml"))
	require.NoError(t, err)
	g := NewMockGenerator(rand.New(rand.NewSource(3)))

	out := g.Generate(f.MockMetrics())
	requirePercentInRange(t, out["Rental Yield Rate (%)"], 0, 100)
	requirePercentInRange(t, out["Price Volatility"], 0, 30)
	score, ok := out["Investment Score 1-10"].(float64)
	require.True(t, ok, "score metrics are numeric, got %T", out["Investment Score 1-10"])
	require.GreaterOrEqual(t, score, 1.0)
	require.LessOrEqual(t, score, 10.0)
	require.Contains(t, ownershipTypes, out["Ownership Type"].(string))
}

func TestGenerateCoversEveryDescriptor(t *testing.T) {
	g := NewMockGenerator(rand.New(rand.NewSource(7)))
	metrics := []fieldcfg.Descriptor{
		{Metric: "Vacancy Rate (%)", SourceName: "Mock"},
		{Metric: "Ownership Type", SourceName: "Mock"},
		{Metric: "Renovation History", SourceName: "Mock"},
	}
	out := g.Generate(metrics)
	require.Len(t, out, 3)
	for _, metric := range metrics {
		require.Contains(t, out, metric.Metric)
	}
}
