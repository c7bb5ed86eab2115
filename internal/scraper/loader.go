package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/fieldcfg"
)

// ErrRetriesExhausted marks a property whose every load cycle ended in an
// error. Callers distinguish it from context cancellation with errors.Is.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Backoff bounds for the three retry causes.
const (
	shortBackoffMin = 5 * time.Second
	shortBackoffMax = 10 * time.Second
	blockBackoffMin = 10 * time.Second
	blockBackoffMax = 15 * time.Second
)

// Loader drives the per-URL retry state machine: throttle, load, verify
// against markers, extract, and retry with randomized backoff when the page
// is blocked, thin, or errored.
type Loader struct {
	browser       Browser
	pacer         Pacer
	extractor     *Extractor
	detector      *SoftBlockDetector
	pause         pauseController
	rng           *rand.Rand
	logger        *zap.Logger
	maxRetries    int
	markerTimeout time.Duration
	debugDir      string
}

// NewLoader wires the loader's collaborators. maxRetries bounds the number
// of load cycles per URL; debugDir may be empty to disable page dumps.
func NewLoader(
	browser Browser,
	pacer Pacer,
	extractor *Extractor,
	detector *SoftBlockDetector,
	rng *rand.Rand,
	logger *zap.Logger,
	maxRetries int,
	markerTimeout time.Duration,
	debugDir string,
) *Loader {
	return &Loader{
		browser:       browser,
		pacer:         pacer,
		extractor:     extractor,
		detector:      detector,
		pause:         &timerPauseController{},
		rng:           rng,
		logger:        logger,
		maxRetries:    maxRetries,
		markerTimeout: markerTimeout,
		debugDir:      debugDir,
	}
}

// LoadProperty runs up to maxRetries load cycles for url and returns the
// extracted record. When every cycle fails without an error, a degraded
// record holding only the property ID is returned; when an error was the
// proximate cause, that error is returned instead.
func (l *Loader) LoadProperty(ctx context.Context, url string, fields []fieldcfg.Descriptor) (PropertyRecord, error) {
	var lastErr error

	for attempt := 0; attempt < l.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load %s: %w", url, err)
		}
		if attempt > 0 {
			TotalRetries.Inc()
		}
		TotalLoadAttempts.Inc()

		// Retries respect pacing too; this prevents silent retry storms.
		l.pacer.Wait(ctx)

		record, outcome, err := l.attempt(ctx, url, fields)
		if err != nil {
			lastErr = err
			l.logger.Warn("Load attempt failed",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			l.sleepRandom(ctx, shortBackoffMin, shortBackoffMax)
			continue
		}

		switch outcome.Outcome {
		case Verified:
			if record.HasData() {
				return record, nil
			}
			l.logger.Warn("Not enough data extracted, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
			)
			l.sleepRandom(ctx, shortBackoffMin, shortBackoffMax)
		case Blocked:
			TotalSoftBlocks.Inc()
			l.logger.Warn("Soft block detected, backing off",
				zap.String("url", url),
				zap.String("phrase", outcome.Reason),
				zap.Int("attempt", attempt+1),
			)
			l.sleepRandom(ctx, blockBackoffMin, blockBackoffMax)
		case TimedOut:
			l.logger.Warn("Page markers never appeared",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
			)
			l.sleepRandom(ctx, shortBackoffMin, shortBackoffMax)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("load %s after %d attempts: %w: %w", url, l.maxRetries, ErrRetriesExhausted, lastErr)
	}
	return PropertyRecord{KeyPropertyID: PropertyIDFromURL(url)}, nil
}

// attempt performs one Start→Loaded→Verified→Extracted cycle.
func (l *Loader) attempt(ctx context.Context, url string, fields []fieldcfg.Descriptor) (PropertyRecord, VerifyResult, error) {
	if err := l.browser.Load(ctx, url); err != nil {
		return nil, VerifyResult{}, err
	}

	outcome := l.verify(ctx)
	if outcome.Outcome != Verified {
		return nil, outcome, nil
	}

	snapshot, err := l.browser.Snapshot(ctx)
	if err != nil {
		return nil, outcome, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot.HTML))
	if err != nil {
		return nil, outcome, fmt.Errorf("parse page %s: %w", url, err)
	}

	pageURL := snapshot.URL
	if pageURL == "" {
		pageURL = url
	}
	return l.extractor.Extract(doc, pageURL, fields), outcome, nil
}

// verify waits for page markers and classifies a failure as Blocked or
// TimedOut by inspecting the served page.
func (l *Loader) verify(ctx context.Context) VerifyResult {
	if err := l.browser.WaitVisible(ctx, l.markerTimeout); err == nil {
		return VerifyResult{Outcome: Verified}
	}

	snapshot, err := l.browser.Snapshot(ctx)
	if err != nil {
		return VerifyResult{Outcome: TimedOut}
	}
	l.saveDebugPage(snapshot)
	if phrase, blocked := l.detector.Detect(snapshot); blocked {
		return VerifyResult{Outcome: Blocked, Reason: phrase}
	}
	return VerifyResult{Outcome: TimedOut}
}

// saveDebugPage dumps the served HTML for later inspection of blocked or
// broken pages.
func (l *Loader) saveDebugPage(snapshot Page) {
	if l.debugDir == "" || snapshot.HTML == "" {
		return
	}
	if err := os.MkdirAll(l.debugDir, 0o750); err != nil {
		l.logger.Debug("Create debug dir failed", zap.Error(err))
		return
	}
	name := fmt.Sprintf("page_source_%d.html", time.Now().Unix())
	target := filepath.Join(l.debugDir, name)
	if err := os.WriteFile(target, []byte(snapshot.HTML), 0o600); err != nil {
		l.logger.Debug("Write debug page failed", zap.String("path", target), zap.Error(err))
		return
	}
	l.logger.Info("Saved page source for debugging", zap.String("path", target))
}

func (l *Loader) sleepRandom(ctx context.Context, low, high time.Duration) {
	delay := low
	if high > low {
		delay += time.Duration(l.rng.Int63n(int64(high - low)))
	}
	l.pause.Pause(ctx, delay)
}
