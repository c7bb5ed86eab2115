package scraper

import (
	"context"
	"math/rand"
	"time"
)

// pauseController abstracts how the pipeline sleeps, so tests can observe
// requested delays without real time passing.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Pacer enforces pacing between outbound page loads.
type Pacer interface {
	Wait(ctx context.Context)
}

// Throttler enforces a minimum randomized delay between page loads. The last
// request timestamp is owned by the instance, not shared globally, and is
// updated after every load attempt including retries.
type Throttler struct {
	minDelay time.Duration
	maxDelay time.Duration
	clock    Clock
	pause    pauseController
	rng      *rand.Rand
	last     time.Time
}

// NewThrottler builds a Throttler choosing uniformly over [minDelay, maxDelay].
func NewThrottler(minDelay, maxDelay time.Duration, clock Clock, rng *rand.Rand) *Throttler {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Throttler{
		minDelay: minDelay,
		maxDelay: maxDelay,
		clock:    clock,
		pause:    &timerPauseController{},
		rng:      rng,
	}
}

// Wait blocks until at least a randomly chosen delay has elapsed since the
// previous call, then records a new timestamp.
func (t *Throttler) Wait(ctx context.Context) {
	delay := t.minDelay
	if spread := t.maxDelay - t.minDelay; spread > 0 {
		delay += time.Duration(t.rng.Int63n(int64(spread)))
	}
	if !t.last.IsZero() {
		elapsed := t.clock.Now().Sub(t.last)
		if elapsed < delay {
			t.pause.Pause(ctx, delay-elapsed)
		}
	}
	t.last = t.clock.Now()
}
