package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// encodingRepair is one mojibake byte sequence and its intended character.
type encodingRepair struct {
	broken string
	fixed  string
}

// encodingRepairs lists known UTF-8-decoded-as-Latin-1 artifacts in the order
// they must be applied. The euro repair runs before the bare "Â" strip so the
// longer sequence is never partially consumed; order is deliberate and part
// of the contract.
var encodingRepairs = []encodingRepair{
	{"â‚¬", "€"},
	{"Â", ""},
	{"Ã©", "é"},
	{"Ã¨", "è"},
	{"Ã«", "ë"},
	{"Ã¯", "ï"},
	{"Ã´", "ô"},
	{"Ã¶", "ö"},
	{"Ã¼", "ü"},
	{"Ã»", "û"},
}

var (
	pricePattern      = regexp.MustCompile(`€\s*([\d.,]+)`)
	areaPattern       = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*m[²2]`)
	yearPattern       = regexp.MustCompile(`(\d{4})`)
	percentPattern    = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)
	plainFloatPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	// Dutch thousands-dot grouping, optionally with a decimal comma:
	// "450.000", "1.250.000", "1.234,56".
	groupedNumberPattern = regexp.MustCompile(`\d{1,3}(?:\.\d{3})+(?:,\d+)?`)
)

// CleanText repairs known mis-decoded character sequences. Idempotent: no
// replacement output contains another replacement's target.
func CleanText(text string) string {
	for _, r := range encodingRepairs {
		text = strings.ReplaceAll(text, r.broken, r.fixed)
	}
	return text
}

// ExtractNumericPrice locates a currency-marked numeric substring and parses
// it, treating dots as thousands separators and commas as decimal points.
func ExtractNumericPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := pricePattern.FindStringSubmatch(CleanText(text))
	if m == nil {
		return 0, false
	}
	raw := strings.ReplaceAll(m[1], ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractArea locates a numeral followed by an area-unit suffix (m² or m2)
// and parses it, converting a decimal comma to a point.
func ExtractArea(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := areaPattern.FindStringSubmatch(CleanText(text))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractYearBuilt locates a 4-digit run and parses it as an integer.
func ExtractYearBuilt(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractNumber pulls the first number out of free text, handling currency
// symbols and the Dutch thousands-dot / decimal-comma convention.
func extractNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer("€", "", "$", "").Replace(text)
	// A grouped number's dots are separators even without a decimal comma:
	// "450.000" is four hundred fifty thousand, not 450.0.
	if grouped := groupedNumberPattern.FindString(cleaned); grouped != "" {
		grouped = strings.ReplaceAll(grouped, ".", "")
		grouped = strings.ReplaceAll(grouped, ",", ".")
		if v, err := strconv.ParseFloat(grouped, 64); err == nil {
			return v, true
		}
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	m := plainFloatPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// CleanValue normalizes one extracted value. Currency-marked text becomes a
// numeric price, area-marked text a numeric area, percentage-marked text a
// "<number>%" string; anything else is trimmed as-is. Parse failures degrade
// to the original text rather than erroring.
func CleanValue(text, exampleData string) any {
	if text == "" {
		return nil
	}
	switch {
	case strings.Contains(text, "€") || strings.Contains(strings.ToLower(text), "eur"):
		if n, ok := extractNumber(text); ok {
			return n
		}
		return text
	case strings.Contains(text, "m²") || strings.Contains(text, "m2"):
		if n, ok := extractNumber(text); ok {
			return n
		}
		return text
	case strings.Contains(text, "%") || strings.Contains(exampleData, "%"):
		if m := percentPattern.FindStringSubmatch(text); m != nil {
			return m[1] + "%"
		}
		return text
	default:
		return strings.TrimSpace(text)
	}
}
