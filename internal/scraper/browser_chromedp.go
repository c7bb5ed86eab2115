package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maskWebdriverScript hides the automation flag before any page script runs.
const maskWebdriverScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// ChromedpBrowser drives a single headless-Chrome session via chromedp. One
// tab serves the whole run; the session and its cookie jar are owned by the
// orchestrator for the process lifetime.
type ChromedpBrowser struct {
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	logger          *zap.Logger
	rng             *rand.Rand
	markerSelector  string
	domainQPS       float64
	domainLimiters  sync.Map
	userAgent       string
}

// NewChromedpBrowser starts a Chrome session configured from cfg. A random
// user agent is chosen for the session's lifetime.
func NewChromedpBrowser(cfg Config, rng *rand.Rand, logger *zap.Logger) (*ChromedpBrowser, error) {
	userAgent := RandomUserAgent(rng)

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	warmup := chromedp.Tasks{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriverScript).Do(ctx)
			return err
		}),
	}
	if err := chromedp.Run(browserCtx, warmup); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}
	logger.Info("Browser session initialized", zap.String("user_agent", userAgent))

	return &ChromedpBrowser{
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		logger:          logger,
		rng:             rng,
		markerSelector:  strings.Join(cfg.MarkerSelectors, ", "),
		domainQPS:       cfg.DomainQPS,
		userAgent:       userAgent,
	}, nil
}

// Close tears down the chromedp browser and allocator contexts.
func (b *ChromedpBrowser) Close(_ context.Context) error {
	if b == nil {
		return nil
	}
	b.browserCancel()
	b.allocatorCancel()
	return nil
}

// Load clears session cookies, navigates to rawURL, pauses a human-like
// interval, and scrolls the page a few times.
func (b *ChromedpBrowser) Load(ctx context.Context, rawURL string) error {
	if err := b.waitDomainBudget(ctx, rawURL); err != nil {
		return fmt.Errorf("load rate limit: %w", err)
	}

	loadCtx, cancel := context.WithCancel(b.browserCtx)
	defer cancel()
	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	tasks := chromedp.Tasks{
		network.ClearBrowserCookies(),
		chromedp.Navigate(rawURL),
		chromedp.Sleep(b.randomDuration(3*time.Second, 6*time.Second)),
	}
	if err := chromedp.Run(loadCtx, tasks); err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	if err := b.scrollRandomly(); err != nil {
		// Scrolling is best-effort human simulation; a failure here must
		// not fail the load.
		b.logger.Debug("Random scroll failed", zap.Error(err))
	}
	return nil
}

// WaitVisible blocks until one of the marker elements is visible or the
// timeout elapses.
func (b *ChromedpBrowser) WaitVisible(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(b.browserCtx, timeout)
	defer cancel()

	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(b.markerSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for page markers: %w", err)
	}
	return nil
}

// Snapshot captures the current document's location, title, and HTML.
func (b *ChromedpBrowser) Snapshot(ctx context.Context) (Page, error) {
	snapCtx, cancel := context.WithCancel(b.browserCtx)
	defer cancel()
	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	var snapshot Page
	tasks := chromedp.Tasks{
		chromedp.Location(&snapshot.URL),
		chromedp.Title(&snapshot.Title),
		chromedp.OuterHTML("html", &snapshot.HTML, chromedp.ByQuery),
	}
	if err := chromedp.Run(snapCtx, tasks); err != nil {
		return Page{}, fmt.Errorf("snapshot page: %w", err)
	}
	return snapshot, nil
}

// scrollRandomly performs 3-8 scrolls to random offsets with short pauses.
func (b *ChromedpBrowser) scrollRandomly() error {
	var height int
	if err := chromedp.Run(b.browserCtx, chromedp.Evaluate("document.body.scrollHeight", &height)); err != nil {
		return fmt.Errorf("read scroll height: %w", err)
	}
	if height <= 300 {
		return nil
	}
	scrolls := 3 + b.rng.Intn(6)
	for i := 0; i < scrolls; i++ {
		offset := 100 + b.rng.Intn(height-200)
		tasks := chromedp.Tasks{
			chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d)", offset), nil),
			chromedp.Sleep(b.randomDuration(500*time.Millisecond, 2*time.Second)),
		}
		if err := chromedp.Run(b.browserCtx, tasks); err != nil {
			return fmt.Errorf("scroll to %d: %w", offset, err)
		}
	}
	return nil
}

func (b *ChromedpBrowser) randomDuration(low, high time.Duration) time.Duration {
	if high <= low {
		return low
	}
	return low + time.Duration(b.rng.Int63n(int64(high-low)))
}

func (b *ChromedpBrowser) waitDomainBudget(ctx context.Context, rawURL string) error {
	if b.domainQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse load url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := b.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(b.domainQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}

// forwardCancel propagates cancellation of parent onto cancel until the
// returned stop function is called.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
