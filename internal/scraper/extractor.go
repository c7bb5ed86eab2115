package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/atlast-data/propscrape/internal/fieldcfg"
)

// labelTargets normalizes differently-worded detail-table labels into
// canonical field names. Unmatched labels are dropped, not stored verbatim.
var labelTargets = []struct {
	field    string
	keywords []string
}{
	{"Year Built", []string{"Bouwjaar", "Built", "Construction"}},
	{"Living Area", []string{"Woonoppervlakte", "Living area", "Usable area"}},
	{"Rooms", []string{"Kamers", "Rooms"}},
	{"Energy Label", []string{"Energielabel", "Energy"}},
	{"Garage", []string{"Garage"}},
	{"Balcony", []string{"Balkon", "Balcony"}},
	{"Garden", []string{"Tuin", "Garden"}},
}

// Extractor locates configured fields in a parsed listing page.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor returns an Extractor logging per-field problems to logger.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract builds a partial PropertyRecord from the document. Fields that
// cannot be located are omitted; a per-field failure never aborts the rest.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string, fields []fieldcfg.Descriptor) PropertyRecord {
	record := PropertyRecord{
		KeyPropertyID: PropertyIDFromURL(pageURL),
	}

	e.extractBasicInfo(doc, record)
	e.extractDetailsTable(doc, record)

	for _, field := range fields {
		value := e.extractField(doc, field, record)
		if value == nil {
			continue
		}
		if text, ok := value.(string); ok {
			value = CleanValue(text, field.ExampleData)
		}
		if value != nil {
			record[field.Metric] = value
		}
	}
	return record
}

// extractField resolves one descriptor: static strategy first, then the
// label-proximity fallback driven by the AreaOnPage hint.
func (e *Extractor) extractField(doc *goquery.Document, field fieldcfg.Descriptor, record PropertyRecord) any {
	if strategy, ok := lookupStrategy(field.Metric); ok {
		if value := e.runStrategy(doc, strategy, record); value != nil {
			return value
		}
	}
	if hint := strings.TrimSpace(field.AreaOnPage); hint != "" {
		if value := e.searchNearLabel(doc, hint); value != "" {
			return value
		}
	}
	return nil
}

func (e *Extractor) runStrategy(doc *goquery.Document, strategy Strategy, record PropertyRecord) any {
	switch strategy.Kind {
	case StrategyText:
		sel := doc.FindMatcher(strategy.matcher)
		if sel.Length() == 0 {
			return nil
		}
		if text := strings.TrimSpace(sel.First().Text()); text != "" {
			return text
		}
	case StrategyCombinedText:
		var parts []string
		doc.FindMatcher(strategy.matcher).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	case StrategySibling:
		sel := doc.FindMatcher(strategy.matcher)
		if sel.Length() == 0 {
			return nil
		}
		var value string
		sel.First().Parent().NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := strings.TrimSpace(s.Text()); text != "" {
				value = text
				return false
			}
			return true
		})
		if value != "" {
			return value
		}
	case StrategyAttribute:
		sel := doc.FindMatcher(strategy.matcher)
		if sel.Length() == 0 {
			return nil
		}
		if attr, ok := sel.First().Attr(strategy.Attribute); ok && attr != "" {
			return attr
		}
	case StrategyCalculated:
		for _, required := range strategy.Requires {
			if _, ok := record[required]; !ok {
				return nil
			}
		}
		if strategy.Compute != nil {
			return strategy.Compute(record)
		}
	}
	return nil
}

// searchNearLabel finds the hint text in the document, then inspects the
// matched node's parent and that parent's siblings in document order,
// returning the first extractable text that is not the hint itself.
func (e *Extractor) searchNearLabel(doc *goquery.Document, hint string) string {
	lowered := strings.ToLower(hint)
	var match *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(ownText(s)), lowered) {
			match = s
			return false
		}
		return true
	})
	if match == nil {
		return ""
	}

	parent := match.Parent()
	candidates := []*goquery.Selection{parent}
	parent.NextAll().Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, s)
	})
	parent.PrevAll().Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, s)
	})
	for _, candidate := range candidates {
		text := strings.TrimSpace(candidate.Text())
		if text != "" && !strings.EqualFold(text, hint) {
			return text
		}
	}
	return ""
}

// extractBasicInfo pulls the listing title and headline price, tolerating
// either the legacy or redesigned markup.
func (e *Extractor) extractBasicInfo(doc *goquery.Document, record PropertyRecord) {
	title := doc.Find(".object-header__title, h1").First()
	if text := strings.TrimSpace(title.Text()); text != "" {
		record["Property Name"] = text
	}

	price := doc.Find(`.object-header__price, .fd-color-price-primary, [data-testid*="price"]`).First()
	if text := strings.TrimSpace(price.Text()); text != "" {
		record["Price"] = text
		if numeric, ok := extractNumber(text); ok {
			record["Price (numeric)"] = numeric
		}
	}
}

// extractDetailsTable walks dt/dd pairs of the listing detail lists and maps
// recognized labels onto canonical field names.
func (e *Extractor) extractDetailsTable(doc *goquery.Document, record PropertyRecord) {
	doc.Find(".object-kenmerken-list, dl").Each(func(_ int, table *goquery.Selection) {
		labels := table.Find("dt")
		values := table.Find("dd")
		n := labels.Length()
		if values.Length() < n {
			n = values.Length()
		}
		for i := 0; i < n; i++ {
			label := strings.TrimSpace(labels.Eq(i).Text())
			value := strings.TrimSpace(values.Eq(i).Text())
			if label == "" || value == "" {
				continue
			}
			e.classifyDetailRow(label, value, record)
		}
	})
}

func (e *Extractor) classifyDetailRow(label, value string, record PropertyRecord) {
	for _, target := range labelTargets {
		if !containsAny(label, target.keywords) {
			continue
		}
		record[target.field] = value
		if target.field == "Living Area" {
			if area, ok := extractNumber(value); ok {
				record["Living Area (m²)"] = area
			}
		}
		return
	}
	// Price rows are labeled several ways; only accept currency-marked values.
	if containsAny(label, []string{"Vraagprijs", "Price"}) && strings.Contains(value, "€") {
		record["Price"] = value
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ownText concatenates the element's direct text children, excluding nested
// element text, mirroring a text-node search.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				b.WriteString(child.Data)
			}
		}
	}
	return b.String()
}
