package scraper

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlast-data/propscrape/internal/fieldcfg"
)

// Post-failure pause bounds; the site gets extra breathing room after a
// property exhausts its retries.
const (
	failureBackoffMin = 15 * time.Second
	failureBackoffMax = 30 * time.Second
)

// propertyLoader is the slice of Loader the batch needs.
type propertyLoader interface {
	LoadProperty(ctx context.Context, url string, fields []fieldcfg.Descriptor) (PropertyRecord, error)
}

// Batch iterates the configured URL list sequentially, invoking the loader
// and mock generator per property and isolating per-property failures.
type Batch struct {
	loader       propertyLoader
	mocker       *MockGenerator
	clock        Clock
	pause        pauseController
	rng          *rand.Rand
	logger       *zap.Logger
	emitFailures bool
	runID        string
}

// NewBatch builds an orchestrator. With emitFailures set, properties that
// exhaust retries without an error are kept as degraded records instead of
// being omitted from the output.
func NewBatch(
	loader propertyLoader,
	mocker *MockGenerator,
	clock Clock,
	rng *rand.Rand,
	logger *zap.Logger,
	emitFailures bool,
) *Batch {
	return &Batch{
		loader:       loader,
		mocker:       mocker,
		clock:        clock,
		pause:        &timerPauseController{},
		rng:          rng,
		logger:       logger,
		emitFailures: emitFailures,
		runID:        uuid.NewString(),
	}
}

// RunID identifies this batch in logs and sink metadata.
func (b *Batch) RunID() string {
	return b.runID
}

// Run scrapes every URL in list order and returns the collected records.
// Output order matches input order minus fully-failed entries.
func (b *Batch) Run(ctx context.Context, urls []string, listingFields, mockFields []fieldcfg.Descriptor) []PropertyRecord {
	total := len(urls)
	b.logger.Info("Starting property batch",
		zap.String("run_id", b.runID),
		zap.Int("properties", total),
	)

	records := make([]PropertyRecord, 0, total)
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			b.logger.Warn("Batch canceled", zap.Int("completed", len(records)))
			break
		}
		b.logger.Info("Scraping property",
			zap.Int("index", i+1),
			zap.Int("total", total),
			zap.String("url", url),
		)

		record, err := b.loader.LoadProperty(ctx, url, listingFields)
		if err != nil {
			TotalFailures.Inc()
			b.logger.Error("Property failed after retries",
				zap.String("url", url),
				zap.Error(err),
			)
			b.sleepAfterFailure(ctx)
			continue
		}
		if !record.HasData() && !b.emitFailures {
			TotalFailures.Inc()
			b.logger.Warn("Property yielded no data, omitting",
				zap.String("url", url),
			)
			continue
		}

		record.Merge(b.mocker.Generate(mockFields))
		record[KeySourceURL] = url
		record[KeyScrapeTimestamp] = b.clock.Now().Format(TimestampLayout)
		records = append(records, record)
		TotalProperties.Inc()
		b.logger.Info("Property scraped",
			zap.Int("index", i+1),
			zap.Int("total", total),
			zap.Int("fields", len(record)),
		)
	}

	b.logger.Info("Batch finished",
		zap.String("run_id", b.runID),
		zap.Int("collected", len(records)),
		zap.Int("requested", total),
	)
	return records
}

func (b *Batch) sleepAfterFailure(ctx context.Context) {
	delay := failureBackoffMin + time.Duration(b.rng.Int63n(int64(failureBackoffMax-failureBackoffMin)))
	b.pause.Pause(ctx, delay)
}
