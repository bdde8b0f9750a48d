package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/errors"
	"github.com/tomiwa-dev/naijapulse/internal/resilience"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// GuardedSource wraps a Source with a circuit breaker and retry. When the
// breaker is open, or every attempt fails, it serves the last good batch so
// charts degrade instead of erroring out.
type GuardedSource struct {
	inner   Source
	breaker *resilience.CircuitBreaker
	policy  resilience.RetryPolicy

	mu        sync.RWMutex
	lastGood  []types.Mention
	lastPull  time.Time
	staleness time.Duration
}

// NewGuardedSource wraps inner with default guard settings. Cached batches
// older than 30 minutes are considered too stale to serve.
func NewGuardedSource(inner Source) *GuardedSource {
	return &GuardedSource{
		inner: inner,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 2,
		}),
		policy:    resilience.FastRetryPolicy,
		staleness: 30 * time.Minute,
	}
}

// Pull fetches mentions through the breaker, retrying transient failures.
// On open breaker or exhausted retries it falls back to the cached batch.
func (g *GuardedSource) Pull(ctx context.Context, window Window) ([]types.Mention, error) {
	var batch []types.Mention

	err := g.breaker.Call(func() error {
		return g.policy.Execute(ctx, func() error {
			pulled, err := g.inner.Pull(ctx, window)
			if err != nil {
				return err
			}
			batch = pulled
			return nil
		})
	})

	if err == nil {
		// Keep a private copy: callers sort and filter the returned slice.
		g.mu.Lock()
		g.lastGood = append([]types.Mention(nil), batch...)
		g.lastPull = time.Now()
		g.mu.Unlock()
		return batch, nil
	}

	g.mu.RLock()
	var cached []types.Mention
	if g.lastGood != nil {
		cached = append([]types.Mention(nil), g.lastGood...)
	}
	cachedAt := g.lastPull
	g.mu.RUnlock()

	if cached != nil && time.Since(cachedAt) < g.staleness {
		slog.Warn("feed pull failed, serving cached batch",
			"error", err,
			"cached_records", len(cached),
			"cached_age", time.Since(cachedAt).String())
		return cached, nil
	}

	return nil, errors.NewFeedError("guarded", err)
}

// BreakerState exposes the current breaker state for stats endpoints.
func (g *GuardedSource) BreakerState() string {
	return g.breaker.State().String()
}
