// Package fieldcfg loads the field-descriptor configuration: the list of
// target listing URLs plus one descriptor per data point to extract or mock.
// It stands in for the spreadsheet the configuration originates from.
package fieldcfg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor describes one data point: its name, source, and the free-text
// hints used to locate it on a page or synthesize it.
type Descriptor struct {
	Category    string `yaml:"category"`
	Metric      string `yaml:"metric"`
	SourceName  string `yaml:"source_name"`
	SourceURL   string `yaml:"source_url"`
	AreaOnPage  string `yaml:"area_on_page"`
	MethodLogic string `yaml:"method_logic"`
	ExampleData string `yaml:"example_data"`
}

// File is the on-disk configuration document.
type File struct {
	PropertyLinks []string     `yaml:"property_links"`
	DataPoints    []Descriptor `yaml:"data_points"`
}

// Load reads and parses the descriptor file at path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a descriptor document.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse field config: %w", err)
	}
	if len(f.PropertyLinks) == 0 {
		return nil, fmt.Errorf("field config lists no property links")
	}
	return &f, nil
}

// ListingMetrics returns the descriptors scraped from the listing site:
// those whose source name mentions funda and that carry a source URL.
func (f *File) ListingMetrics() []Descriptor {
	var out []Descriptor
	for _, dp := range f.DataPoints {
		if strings.Contains(strings.ToLower(dp.SourceName), "funda") && dp.SourceURL != "" {
			out = append(out, dp)
		}
	}
	return out
}

// MockMetrics returns the descriptors whose values are synthesized.
func (f *File) MockMetrics() []Descriptor {
	var out []Descriptor
	for _, dp := range f.DataPoints {
		if strings.Contains(strings.ToLower(dp.SourceName), "mock") {
			out = append(out, dp)
		}
	}
	return out
}
