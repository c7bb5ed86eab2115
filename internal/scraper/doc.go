// Package scraper implements the listing extraction pipeline: a throttled,
// retry-driven page loader backed by a headless browser, a selector-based
// field extractor, text normalization helpers, and the synthetic-metric
// generator used for fields without a real data source.
package scraper
