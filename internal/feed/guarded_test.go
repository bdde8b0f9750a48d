package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-dev/naijapulse/internal/errors"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// flakySource fails for the first failUntil pulls, then delegates to a mock.
type flakySource struct {
	mu        sync.Mutex
	pulls     int
	failUntil int
	inner     Source
}

func (f *flakySource) Pull(ctx context.Context, window Window) ([]types.Mention, error) {
	f.mu.Lock()
	f.pulls++
	n := f.pulls
	f.mu.Unlock()

	if n <= f.failUntil {
		return nil, errors.NewFeedError("flaky", fmt.Errorf("pull %d failed", n))
	}
	return f.inner.Pull(ctx, window)
}

func TestGuardedSourceRetriesTransientFailure(t *testing.T) {
	flaky := &flakySource{failUntil: 2, inner: NewMockSource(7, 4)}
	guarded := NewGuardedSource(flaky)

	window := LastDays(3, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))

	mentions, err := guarded.Pull(context.Background(), window)
	require.NoError(t, err)
	assert.NotEmpty(t, mentions)
	assert.Equal(t, 3, flaky.pulls, "two failures then one success")
}

func TestGuardedSourceServesCachedBatchWhenDown(t *testing.T) {
	flaky := &flakySource{inner: NewMockSource(7, 4)}
	guarded := NewGuardedSource(flaky)

	window := LastDays(2, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))

	first, err := guarded.Pull(context.Background(), window)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Every subsequent pull fails; the cached batch keeps charts alive.
	flaky.failUntil = 1 << 30

	second, err := guarded.Pull(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}

func TestGuardedSourceCachedBatchIsIsolated(t *testing.T) {
	flaky := &flakySource{inner: NewMockSource(7, 4)}
	guarded := NewGuardedSource(flaky)

	window := LastDays(2, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))

	first, err := guarded.Pull(context.Background(), window)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Callers sort and rewrite the slice they were handed; that must not
	// leak into the fallback batch.
	original := first[0].Politician
	first[0].Politician = "mutated"

	flaky.failUntil = 1 << 30

	second, err := guarded.Pull(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, original, second[0].Politician)

	// Nor may one fallback caller's mutation reach the next.
	second[0].Politician = "mutated again"
	third, err := guarded.Pull(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, original, third[0].Politician)
}

func TestGuardedSourceErrorsWithoutCache(t *testing.T) {
	flaky := &flakySource{failUntil: 1 << 30, inner: NewMockSource(7, 4)}
	guarded := NewGuardedSource(flaky)

	window := LastDays(1, time.Now())

	_, err := guarded.Pull(context.Background(), window)
	require.Error(t, err)
	assert.True(t, errors.IsRetryableError(err))
}

func TestGuardedSourceBreakerState(t *testing.T) {
	guarded := NewGuardedSource(NewMockSource(7, 4))
	assert.Equal(t, "closed", guarded.BreakerState())
}
