package scraper

import (
	"math"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// StrategyKind discriminates how a field's value is located on the page.
type StrategyKind int

// Strategy kinds, one per extraction mechanism.
const (
	// StrategyText reads the text of the first node matching Selector.
	StrategyText StrategyKind = iota
	// StrategyCombinedText joins the text of every node matching Selector.
	StrategyCombinedText
	// StrategySibling finds the labeled node via Selector, then walks its
	// parent's following siblings returning the first extractable text.
	StrategySibling
	// StrategyAttribute reads Attribute from the first matching node.
	StrategyAttribute
	// StrategyCalculated derives the value from fields already extracted.
	StrategyCalculated
)

// Strategy describes one way to extract a field, carrying only the data its
// kind needs.
type Strategy struct {
	Kind      StrategyKind
	Selector  string
	Attribute string
	// Requires lists prerequisite field names for calculated strategies.
	Requires []string
	// Compute derives the value from the partial record; nil result means
	// the field is skipped.
	Compute func(record PropertyRecord) any

	matcher goquery.Matcher
}

// listingStrategies binds known metric names to extraction strategies.
// Metrics without an entry fall back to label-proximity search.
var listingStrategies = map[string]Strategy{
	"Property Name": {
		Kind:     StrategyText,
		Selector: ".object-header__title",
	},
	"Address": {
		Kind:     StrategyCombinedText,
		Selector: ".object-header__title, .object-header__subtitle",
	},
	"Property Type": {
		Kind:     StrategySibling,
		Selector: `.fd-m-bottom-xs:contains("Soort")`,
	},
	"Square Meters (Living)": {
		Kind:     StrategySibling,
		Selector: `.fd-m-bottom-xs:contains("Woonoppervlakte")`,
	},
	"Number of Rooms": {
		Kind:     StrategySibling,
		Selector: `.fd-m-bottom-xs:contains("Aantal kamers")`,
	},
	"Construction Year": {
		Kind:     StrategySibling,
		Selector: `.fd-m-bottom-xs:contains("Bouwjaar")`,
	},
	"Energy Label": {
		Kind:     StrategyText,
		Selector: ".energielabel",
	},
	"Price": {
		Kind:     StrategyText,
		Selector: ".object-header__price",
	},
	"Asking Price": {
		Kind:     StrategyText,
		Selector: ".object-header__price",
	},
	"Price per M2": {
		Kind:     StrategyCalculated,
		Requires: []string{"Price", "Square Meters (Living)"},
		Compute:  computePricePerSquareMeter,
	},
}

func init() {
	for name, s := range listingStrategies {
		if s.Selector == "" {
			continue
		}
		sel, err := cascadia.Compile(s.Selector)
		if err != nil {
			// An uncompilable selector disables the static strategy; the
			// field then goes through label-proximity fallback instead.
			delete(listingStrategies, name)
			continue
		}
		s.matcher = sel
		listingStrategies[name] = s
	}
}

// lookupStrategy returns the static strategy bound to metricName, if any.
func lookupStrategy(metricName string) (Strategy, bool) {
	s, ok := listingStrategies[metricName]
	return s, ok
}

func computePricePerSquareMeter(record PropertyRecord) any {
	price, ok := recordNumber(record, "Price")
	if !ok {
		return nil
	}
	area, ok := recordNumber(record, "Square Meters (Living)")
	if !ok || area <= 0 {
		return nil
	}
	return math.Round(price/area*100) / 100
}

// recordNumber coerces a previously extracted field into a number.
func recordNumber(record PropertyRecord, key string) (float64, bool) {
	v, ok := record[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		return extractNumber(n)
	default:
		return 0, false
	}
}
