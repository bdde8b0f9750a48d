package feed

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-dev/naijapulse/internal/types"
)

var testDay = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestMockSourceDeterministic(t *testing.T) {
	window := LastDays(7, testDay)

	first, err := NewMockSource(42, 6).Pull(context.Background(), window)
	require.NoError(t, err)
	second, err := NewMockSource(42, 6).Pull(context.Background(), window)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Politician, second[i].Politician)
		assert.Equal(t, first[i].State, second[i].State)
		if !math.IsNaN(first[i].Sentiment) {
			assert.Equal(t, first[i].Sentiment, second[i].Sentiment)
		}
	}
}

func TestMockSourceSeedChangesOutput(t *testing.T) {
	window := LastDays(3, testDay)

	a, err := NewMockSource(1, 6).Pull(context.Background(), window)
	require.NoError(t, err)
	b, err := NewMockSource(2, 6).Pull(context.Background(), window)
	require.NoError(t, err)

	differs := false
	for i := range a {
		if a[i].State != b[i].State || a[i].Platform != b[i].Platform {
			differs = true
			break
		}
	}
	assert.True(t, differs, "different seeds should produce different records")
}

func TestMockSourceLeavesGaps(t *testing.T) {
	mentions, err := NewMockSource(42, 6).Pull(context.Background(), LastDays(7, testDay))
	require.NoError(t, err)
	require.NotEmpty(t, mentions)

	missingState := 0
	nanSentiment := 0
	nanConfidence := 0
	for _, m := range mentions {
		if m.State == "" {
			missingState++
		}
		if math.IsNaN(m.Sentiment) {
			nanSentiment++
		}
		if math.IsNaN(m.Confidence) {
			nanConfidence++
		}
	}

	assert.Greater(t, missingState, 0, "generator should drop some states")
	assert.Greater(t, nanSentiment, 0, "generator should leave some sentiment unset")
	assert.Greater(t, nanConfidence, 0, "generator should leave some confidence unset")

	// Gaps are the exception, not the rule.
	assert.Less(t, missingState, len(mentions)/2)
}

func TestMockSourceRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockSource(42, 6).Pull(ctx, LastDays(7, testDay))
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	mentions := []types.Mention{
		{ID: "b", Timestamp: base.Add(2 * time.Hour), Sentiment: 1.7},
		{ID: "a", Timestamp: base, Sentiment: -3},
		{ID: "a", Timestamp: base.Add(time.Hour), Sentiment: 0.2},
		{ID: "bot", Timestamp: base.Add(3 * time.Hour), Metadata: map[string]any{"is_bot": true}},
		{ID: "c", Timestamp: base.Add(4 * time.Hour), Sentiment: 0.5},
	}

	cleaned := Sanitize(mentions)

	require.Len(t, cleaned, 3)
	assert.Equal(t, "a", cleaned[0].ID)
	assert.Equal(t, "b", cleaned[1].ID)
	assert.Equal(t, "c", cleaned[2].ID)

	// Chronological after sorting.
	for i := 1; i < len(cleaned); i++ {
		assert.False(t, cleaned[i].Timestamp.Before(cleaned[i-1].Timestamp))
	}

	// Sentiment clamped to [-1, 1].
	assert.Equal(t, -1.0, cleaned[0].Sentiment)
	assert.Equal(t, 1.0, cleaned[1].Sentiment)
}

func TestFixturesExposed(t *testing.T) {
	assert.NotEmpty(t, Politicians())
	assert.NotEmpty(t, Parties())

	// Returned slices are copies; mutating them must not leak back.
	ps := Politicians()
	ps[0].Name = "mutated"
	assert.NotEqual(t, "mutated", Politicians()[0].Name)
}
