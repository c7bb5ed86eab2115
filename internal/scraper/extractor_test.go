package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/fieldcfg"
)

const listingHTML = `<html><head><title>Herengracht 100 - funda</title></head><body>
<div class="object-header">
  <h1 class="object-header__title">Herengracht 100 1015 BS Amsterdam</h1>
  <span class="object-header__subtitle">Amsterdam Centrum</span>
  <strong class="object-header__price">€ 450.000 k.k.</strong>
</div>
<div class="kenmerken-highlighted">
  <div><span class="fd-m-bottom-xs">Woonoppervlakte</span></div>
  <div>120 m²</div>
</div>
<dl class="object-kenmerken-list">
  <dt>Bouwjaar</dt><dd>1998</dd>
  <dt>Woonoppervlakte</dt><dd>120 m²</dd>
  <dt>Kamers</dt><dd>4 kamers</dd>
  <dt>Energielabel</dt><dd>A</dd>
  <dt>Tuin</dt><dd>Achtertuin</dd>
  <dt>Soort parkeergelegenheid</dt><dd>Openbaar parkeren</dd>
</dl>
<div class="neighborhood">
  <div><span>Gemiddelde vraagprijs per m²</span><span>€ 5.500</span></div>
</div>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractAlwaysSetsPropertyID(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	record := e.Extract(parseDoc(t, "<html><body></body></html>"), "https://www.funda.nl/koop/amsterdam/huis-43210/", nil)
	require.Equal(t, "43210", record[KeyPropertyID])
	require.False(t, record.HasData())
}

func TestPropertyIDFromURL(t *testing.T) {
	require.Equal(t, "12345", PropertyIDFromURL("https://www.funda.nl/koop/amsterdam/huis-12345"))
	require.Equal(t, "12345", PropertyIDFromURL("https://www.funda.nl/koop/amsterdam/huis-12345/"))
	// Slugged listing URLs carry the ID before the street name.
	require.Equal(t, "12345678", PropertyIDFromURL("https://www.funda.nl/koop/amsterdam/huis-12345678-herengracht-100/"))
	require.Equal(t, "87654321", PropertyIDFromURL("https://www.funda.nl/koop/utrecht/appartement-87654321-oudegracht-25/"))
	require.Equal(t, "12345", PropertyIDFromURL("https://www.funda.nl/koop/amsterdam/12345/"))
	require.Equal(t, UnknownPropertyID, PropertyIDFromURL("https://www.funda.nl/koop/amsterdam/"))
}

func TestExtractBasicInfoAndDetailsTable(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	record := e.Extract(parseDoc(t, listingHTML), "https://www.funda.nl/koop/amsterdam/huis-88001/", nil)

	require.Equal(t, "88001", record[KeyPropertyID])
	require.Equal(t, "Herengracht 100 1015 BS Amsterdam", record["Property Name"])
	require.Equal(t, "€ 450.000 k.k.", record["Price"])
	require.InDelta(t, 450000.0, record["Price (numeric)"].(float64), 1e-9)

	require.Equal(t, "1998", record["Year Built"])
	require.Equal(t, "120 m²", record["Living Area"])
	require.InDelta(t, 120.0, record["Living Area (m²)"].(float64), 1e-9)
	require.Equal(t, "4 kamers", record["Rooms"])
	require.Equal(t, "A", record["Energy Label"])
	require.Equal(t, "Achtertuin", record["Garden"])

	// Unrecognized labels are dropped, not stored verbatim.
	for key := range record {
		require.NotContains(t, key, "parkeergelegenheid")
	}
}

func TestExtractStaticStrategies(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	fields := []fieldcfg.Descriptor{
		{Metric: "Price", SourceName: "Funda"},
		{Metric: "Square Meters (Living)", SourceName: "Funda"},
		{Metric: "Price per M2", SourceName: "Funda"},
		{Metric: "Address", SourceName: "Funda"},
	}
	record := e.Extract(parseDoc(t, listingHTML), "https://www.funda.nl/koop/amsterdam/huis-88001/", fields)

	require.InDelta(t, 450000.0, record["Price"].(float64), 1e-9, "currency text normalizes to a number")
	require.InDelta(t, 120.0, record["Square Meters (Living)"].(float64), 1e-9, "sibling strategy walks to the value cell")
	require.InDelta(t, 3750.0, record["Price per M2"].(float64), 1e-9)
	require.Equal(t, "Herengracht 100 1015 BS Amsterdam Amsterdam Centrum", record["Address"])
}

func TestCalculatedFieldSkippedWithoutPrerequisites(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	fields := []fieldcfg.Descriptor{
		{Metric: "Price per M2", SourceName: "Funda"},
	}
	html := `<html><body><h1>Kale pagina</h1></body></html>`
	record := e.Extract(parseDoc(t, html), "https://example.org/1/", fields)
	_, ok := record["Price per M2"]
	require.False(t, ok)
}

func TestLabelProximityFallback(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	fields := []fieldcfg.Descriptor{
		{Metric: "Average Asking Price", SourceName: "Funda", AreaOnPage: "Gemiddelde vraagprijs"},
	}
	record := e.Extract(parseDoc(t, listingHTML), "https://example.org/2/", fields)
	v, ok := record["Average Asking Price"]
	require.True(t, ok, "label-proximity search should locate the hint")
	require.IsType(t, float64(0), v, "currency text near the hint normalizes to a number")
}

func TestFieldWithoutStrategyOrHintIsOmitted(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	fields := []fieldcfg.Descriptor{
		{Metric: "Mystery Metric", SourceName: "Funda"},
	}
	record := e.Extract(parseDoc(t, listingHTML), "https://example.org/3/", fields)
	_, ok := record["Mystery Metric"]
	require.False(t, ok)
}

func TestStrategyRegistryKinds(t *testing.T) {
	s, ok := lookupStrategy("Price")
	require.True(t, ok)
	require.Equal(t, StrategyText, s.Kind)

	s, ok = lookupStrategy("Construction Year")
	require.True(t, ok)
	require.Equal(t, StrategySibling, s.Kind)

	s, ok = lookupStrategy("Price per M2")
	require.True(t, ok)
	require.Equal(t, StrategyCalculated, s.Kind)
	require.Equal(t, []string{"Price", "Square Meters (Living)"}, s.Requires)

	_, ok = lookupStrategy("No Such Metric")
	require.False(t, ok)
}

func TestComputePricePerSquareMeter(t *testing.T) {
	record := PropertyRecord{
		"Price":                  "€ 450.000",
		"Square Meters (Living)": "120 m²",
	}
	v := computePricePerSquareMeter(record)
	require.InDelta(t, 3750.0, v.(float64), 1e-9)

	record["Square Meters (Living)"] = float64(0)
	require.Nil(t, computePricePerSquareMeter(record))
}
