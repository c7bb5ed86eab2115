package scraper

import "strings"

// Localized phrases served by the listing site's bot-mitigation pages.
var defaultBlockPhrases = []string{
	"Je bent bijna op de pagina die je zoekt",
	"Access denied",
	"Toegang geweigerd",
}

// SoftBlockDetector classifies a served page as a bot-mitigation challenge
// by matching its title and body text against known phrases. Detection is by
// content, not HTTP status: challenge pages are served with 200.
type SoftBlockDetector struct {
	phrases []string
}

// NewSoftBlockDetector builds a detector over the given phrases, falling
// back to the built-in set when none are configured.
func NewSoftBlockDetector(phrases []string) *SoftBlockDetector {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		cleaned = defaultBlockPhrases
	}
	return &SoftBlockDetector{phrases: cleaned}
}

// Detect returns the matched phrase when the page looks like a soft block.
func (d *SoftBlockDetector) Detect(page Page) (string, bool) {
	title := strings.ToLower(page.Title)
	body := strings.ToLower(page.HTML)
	for _, phrase := range d.phrases {
		lowered := strings.ToLower(phrase)
		if strings.Contains(title, lowered) || strings.Contains(body, lowered) {
			return phrase, true
		}
	}
	return "", false
}
