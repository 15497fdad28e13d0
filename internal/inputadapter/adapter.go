// Package inputadapter is the bounded, rate-limited external producer
// that feeds event.LiveInput from any goroutine (a websocket handler, a
// webhook, a CLI). It never blocks the engine thread: a rejected or
// rate-limited payload is dropped, not queued.
package inputadapter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"clockwork/internal/event"
)

// Limits bounds how fast a single source may enqueue payloads and how
// fast all sources combined may, a global + per-source rate split.
type Limits struct {
	EventsPerSecond float64
	Burst           int
}

// limiterCleanupInterval is the cadence at which stale per-source
// limiter entries are swept.
const limiterCleanupInterval = 5 * time.Minute

// Adapter owns the per-source rate limiters and forwards accepted
// payloads into the LiveInput it was constructed with. It does not own
// the LiveInput.
type Adapter struct {
	sink   *event.LiveInput
	global *rate.Limiter
	limits Limits

	mu       sync.Mutex
	sources  map[string]*sourceLimiter
	stopChan chan struct{}
	stopOnce sync.Once

	dropped uint64
}

type sourceLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// globalMultiplier sizes the aggregate limiter relative to one source's
// limit: the global ceiling exists to cap total fan-in, not to
// second-guess a single well-behaved source.
const globalMultiplier = 20

// New creates an Adapter forwarding accepted payloads into sink, bound
// by limits both globally (aggregated across every source) and per
// source id.
func New(sink *event.LiveInput, limits Limits) *Adapter {
	a := &Adapter{
		sink:     sink,
		global:   rate.NewLimiter(rate.Limit(limits.EventsPerSecond*globalMultiplier), limits.Burst*globalMultiplier),
		limits:   limits,
		sources:  make(map[string]*sourceLimiter),
		stopChan: make(chan struct{}),
	}
	go a.cleanupLoop()
	return a
}

// Submit enqueues one payload on behalf of sourceID if both the global
// and that source's limiter allow it. Returns false if rate-limited or
// if the underlying LiveInput queue itself is full.
func (a *Adapter) Submit(sourceID string, timestamp int64, inputType string, params []any) bool {
	if !a.global.Allow() {
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		return false
	}
	if !a.limiterFor(sourceID).Allow() {
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		return false
	}
	if !a.sink.Enqueue(timestamp, inputType, params) {
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		return false
	}
	return true
}

func (a *Adapter) limiterFor(sourceID string) *rate.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()

	sl, ok := a.sources[sourceID]
	if !ok {
		sl = &sourceLimiter{limiter: rate.NewLimiter(rate.Limit(a.limits.EventsPerSecond), a.limits.Burst)}
		a.sources[sourceID] = sl
	}
	sl.lastUsed = time.Now()
	return sl.limiter
}

// DroppedCount returns how many Submit calls were rejected so far.
func (a *Adapter) DroppedCount() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

func (a *Adapter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopChan:
			return
		case <-ticker.C:
			a.cleanupStaleSources()
		}
	}
}

func (a *Adapter) cleanupStaleSources() {
	cutoff := time.Now().Add(-limiterCleanupInterval)
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, sl := range a.sources {
		if sl.lastUsed.Before(cutoff) {
			delete(a.sources, id)
		}
	}
}

// Stop halts the background cleanup goroutine.
func (a *Adapter) Stop() {
	a.stopOnce.Do(func() { close(a.stopChan) })
}
