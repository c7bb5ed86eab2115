// Package postprocess cleans raw scrape output and exports it as tidy JSON
// and CSV: encoding repairs are re-applied to every string field, the
// combined listing title is split into address and postal code, and residual
// percentage strings become bare numbers.
package postprocess

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/scraper"
)

var addressPattern = regexp.MustCompile(`([^\d]+\d+(?:[\-\s]*[a-zA-Z0-9]+)?)[^\d]*(\d{4}\s*[A-Z]{2})?`)

// CleanRecords normalizes every record. The input is not mutated.
func CleanRecords(records []scraper.PropertyRecord) []scraper.PropertyRecord {
	cleaned := make([]scraper.PropertyRecord, 0, len(records))
	for _, record := range records {
		cleaned = append(cleaned, cleanRecord(record))
	}
	return cleaned
}

func cleanRecord(record scraper.PropertyRecord) scraper.PropertyRecord {
	out := make(scraper.PropertyRecord, len(record))
	for key, value := range record {
		if text, ok := value.(string); ok {
			out[key] = scraper.CleanText(text)
		} else {
			out[key] = value
		}
	}

	splitAddress(out)

	if _, ok := out["Price (numeric)"]; !ok {
		if price, ok := out["Price"].(string); ok {
			if numeric, found := scraper.ExtractNumericPrice(price); found {
				out["Price (numeric)"] = numeric
			}
		}
	}

	if raw, ok := out["Year Built"].(string); ok {
		if year, found := scraper.ExtractYearBuilt(raw); found {
			out["Year Built"] = year
		}
	}

	// Residual percentage strings become bare floats for analysis.
	for key, value := range out {
		text, ok := value.(string)
		if !ok || !strings.Contains(text, "%") {
			continue
		}
		trimmed := strings.TrimSpace(strings.ReplaceAll(text, "%", ""))
		if numeric, err := strconv.ParseFloat(trimmed, 64); err == nil {
			out[key] = numeric
		}
	}
	return out
}

// splitAddress derives Address and Postal Code from the combined listing
// title when the pattern matches.
func splitAddress(record scraper.PropertyRecord) {
	name, ok := record["Property Name"].(string)
	if !ok || name == "" {
		return
	}
	m := addressPattern.FindStringSubmatch(name)
	if m == nil {
		return
	}
	if address := strings.TrimSpace(m[1]); address != "" {
		record["Address"] = address
	}
	if postcode := strings.TrimSpace(m[2]); postcode != "" {
		record["Postal Code"] = postcode
	}
}

// Coverage counts, per field, how many records carry a non-empty value.
func Coverage(records []scraper.PropertyRecord) map[string]int {
	counts := make(map[string]int)
	for _, record := range records {
		for key, value := range record {
			if value == nil || value == "" {
				continue
			}
			counts[key]++
		}
	}
	return counts
}

// LogCoverage prints per-field coverage for a finished run.
func LogCoverage(records []scraper.PropertyRecord, logger *zap.Logger) {
	counts := Coverage(records)
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		logger.Info("Field coverage",
			zap.String("field", key),
			zap.Int("records", counts[key]),
			zap.Int("total", len(records)),
		)
	}
}

// ReadRaw loads a raw JSON array produced by the scraper sink.
func ReadRaw(path string) ([]scraper.PropertyRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw data %s: %w", path, err)
	}
	var records []scraper.PropertyRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse raw data %s: %w", path, err)
	}
	return records, nil
}

// FindLatestRaw returns the most recently modified raw JSON file under dir.
func FindLatestRaw(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "funda_data_*.json"))
	if err != nil {
		return "", fmt.Errorf("glob raw dir %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no raw data files in %s", dir)
	}
	latest := ""
	var latestMod int64
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = match
			latestMod = mod
		}
	}
	return latest, nil
}

// WriteJSON saves the cleaned records as an indented JSON array.
func WriteJSON(path string, records []scraper.PropertyRecord) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cleaned records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create processed dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write cleaned json %s: %w", path, err)
	}
	return nil
}
