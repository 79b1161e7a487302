package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/offerhub/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Budget is the static per-provider request ceiling. Zero fields mean
// no limit for that window.
type Budget struct {
	RequestsPerMinute int
	RequestsPerHour   int
	RequestsPerDay    int
	BurstLimit        int
}

type window struct {
	limit  int
	length time.Duration
	start  time.Time
	count  int
}

// admitAt returns the earliest time the window admits another request.
// A zero time means the request is admitted now.
func (w *window) admitAt(now time.Time) time.Time {
	if w.limit <= 0 {
		return time.Time{}
	}
	if now.Sub(w.start) >= w.length {
		w.start = now
		w.count = 0
	}
	if w.count < w.limit {
		return time.Time{}
	}
	return w.start.Add(w.length)
}

type providerState struct {
	windows []*window
	burst   chan struct{}
}

// Limiter enforces per-provider minute/hour/day budgets plus a concurrent
// in-flight ceiling. Counters are process-local: multi-instance deployments
// must divide the documented provider ceilings across instances in config.
type Limiter struct {
	mu     sync.Mutex
	states map[string]*providerState
	now    func() time.Time
}

func NewLimiter(budgets map[string]Budget) *Limiter {
	l := &Limiter{
		states: make(map[string]*providerState),
		now:    time.Now,
	}
	for provider, budget := range budgets {
		l.states[provider] = newProviderState(budget)
	}
	return l
}

func newProviderState(budget Budget) *providerState {
	state := &providerState{
		windows: []*window{
			{limit: budget.RequestsPerMinute, length: time.Minute},
			{limit: budget.RequestsPerHour, length: time.Hour},
			{limit: budget.RequestsPerDay, length: 24 * time.Hour},
		},
	}
	burst := budget.BurstLimit
	if burst <= 0 {
		burst = 10
	}
	state.burst = make(chan struct{}, burst)
	return state
}

func (l *Limiter) state(provider string) *providerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.states[provider]
	if !ok {
		state = newProviderState(Budget{})
		l.states[provider] = state
	}
	return state
}

// Acquire blocks until all of the provider's windows admit another request
// and a burst slot is free. It only fails on context cancellation; callers
// must not assume bounded latency. Release must be called once per
// successful Acquire.
func (l *Limiter) Acquire(ctx context.Context, provider, operation string) error {
	state := l.state(provider)
	started := l.now()

	for {
		wait := l.tryAdmit(state)
		if wait == 0 {
			break
		}

		log.Debugf("rate limit reached for %s (%s), waiting %v", provider, operation, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	select {
	case state.burst <- struct{}{}:
	case <-ctx.Done():
		l.rollback(state)
		return ctx.Err()
	}

	metrics.RateLimitWaitDuration.WithLabelValues(provider).Observe(l.now().Sub(started).Seconds())
	return nil
}

// Release frees the burst slot taken by Acquire.
func (l *Limiter) Release(provider string) {
	state := l.state(provider)
	select {
	case <-state.burst:
	default:
	}
}

// tryAdmit increments every window counter atomically under the limiter
// lock, or returns how long to wait for the most constrained window.
func (l *Limiter) tryAdmit(state *providerState) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var latest time.Time
	for _, w := range state.windows {
		if at := w.admitAt(now); !at.IsZero() && at.After(latest) {
			latest = at
		}
	}

	if !latest.IsZero() {
		return latest.Sub(now)
	}

	for _, w := range state.windows {
		if w.limit > 0 {
			w.count++
		}
	}
	return 0
}

// rollback undoes the window increments of an Acquire that was cancelled
// before taking a burst slot.
func (l *Limiter) rollback(state *providerState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range state.windows {
		if w.limit > 0 && w.count > 0 {
			w.count--
		}
	}
}
