// Package scraper defines core types shared across the extraction pipeline.
package scraper

import (
	"context"
	"regexp"
	"time"
)

// Record keys that are always present, even on degraded records.
const (
	KeyPropertyID      = "property_id"
	KeySourceURL       = "source_url"
	KeyScrapeTimestamp = "scrape_timestamp"
)

// UnknownPropertyID is stored when the URL carries no trailing numeric segment.
const UnknownPropertyID = "unknown"

// TimestampLayout is the wall-clock format stamped on every record.
const TimestampLayout = "2006-01-02 15:04:05"

// PropertyRecord maps canonical field names to extracted or synthesized
// values. Values are strings, float64s, or ints depending on the field.
type PropertyRecord map[string]any

// HasData reports whether the record holds anything beyond the property ID.
func (r PropertyRecord) HasData() bool {
	return len(r) > 1
}

// Merge copies every entry of other into r, overwriting on collision.
func (r PropertyRecord) Merge(other map[string]any) {
	for k, v := range other {
		r[k] = v
	}
}

// Page is a snapshot of the browser's current document.
type Page struct {
	URL   string
	Title string
	HTML  string
}

// VerifyOutcome classifies the result of waiting for page markers.
type VerifyOutcome int

// Outcomes of the marker wait, consumed by the retry state machine.
const (
	Verified VerifyOutcome = iota
	TimedOut
	Blocked
)

func (o VerifyOutcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case TimedOut:
		return "timed_out"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// VerifyResult carries the marker-wait outcome plus the matched block phrase.
type VerifyResult struct {
	Outcome VerifyOutcome
	Reason  string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Browser abstracts the single live browser session driving all page loads.
type Browser interface {
	// Load clears session cookies, navigates to url, pauses a randomized
	// human-like interval, and performs a bounded number of random scrolls.
	Load(ctx context.Context, url string) error
	// WaitVisible blocks until one of the configured marker elements is
	// visible, or the timeout elapses.
	WaitVisible(ctx context.Context, timeout time.Duration) error
	// Snapshot captures the current document's URL, title, and HTML.
	Snapshot(ctx context.Context) (Page, error)
	Close(ctx context.Context) error
}

var (
	// A bare numeric path segment: ".../12345/".
	propertyIDSegmentPattern = regexp.MustCompile(`/(\d+)/?$`)
	// The numeric run inside a slugged listing segment: ".../huis-12345-street-1/".
	propertyIDSlugPattern = regexp.MustCompile(`-(\d+)(?:-|/|$)`)
)

// PropertyIDFromURL derives the listing identifier from the URL: a trailing
// numeric path segment, or the first numeric run in a slugged segment.
// UnknownPropertyID when neither form is present.
func PropertyIDFromURL(rawURL string) string {
	if m := propertyIDSegmentPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if m := propertyIDSlugPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return UnknownPropertyID
}
