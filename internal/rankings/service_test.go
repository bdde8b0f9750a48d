package rankings

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-dev/naijapulse/internal/database"
	"github.com/tomiwa-dev/naijapulse/internal/feed"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

func TestComputeOrdersByVolumeThenSentiment(t *testing.T) {
	mentions := []types.Mention{
		{Politician: "Peter Obi", Party: "LP", Sentiment: 0.5, Confidence: 0.8},
		{Politician: "Peter Obi", Party: "LP", Sentiment: 0.3, Confidence: 0.8},
		{Politician: "Bola Tinubu", Party: "APC", Sentiment: -0.2, Confidence: 0.7},
		{Politician: "Bola Tinubu", Party: "APC", Sentiment: 0.1, Confidence: 0.7},
		{Politician: "Bola Tinubu", Party: "APC", Sentiment: 0.0, Confidence: 0.7},
		{Politician: "Atiku Abubakar", Party: "PDP", Sentiment: 0.9, Confidence: 0.9},
	}

	entries := Compute(mentions, "weekly")
	require.Len(t, entries, 3)

	assert.Equal(t, "Bola Tinubu", entries[0].Politician)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[0].Mentions)

	assert.Equal(t, "Peter Obi", entries[1].Politician)
	assert.Equal(t, 2, entries[1].Rank)
	assert.InDelta(t, 0.4, entries[1].SentimentAvg, 1e-9)

	assert.Equal(t, "Atiku Abubakar", entries[2].Politician)
}

func TestComputeExcludesNaNFromAverages(t *testing.T) {
	mentions := []types.Mention{
		{Politician: "Peter Obi", Party: "LP", Sentiment: 0.6, Confidence: 0.9},
		{Politician: "Peter Obi", Party: "LP", Sentiment: math.NaN(), Confidence: math.NaN()},
	}

	entries := Compute(mentions, "daily")
	require.Len(t, entries, 1)

	// Both mentions count toward volume, only the numeric one toward averages.
	assert.Equal(t, 2, entries[0].Mentions)
	assert.InDelta(t, 0.6, entries[0].SentimentAvg, 1e-9)
	assert.InDelta(t, 0.9, entries[0].Confidence, 1e-9)
}

func TestComputeSkipsAnonymousMentions(t *testing.T) {
	mentions := []types.Mention{
		{Politician: "", Sentiment: 0.5},
		{Politician: "Peter Obi", Party: "LP", Sentiment: 0.5, Confidence: 0.8},
	}

	entries := Compute(mentions, "daily")
	require.Len(t, entries, 1)
	assert.Equal(t, "Peter Obi", entries[0].Politician)
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	return NewService(repo, feed.NewMockSource(42, 6))
}

func TestUpdateAndGetRankings(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.UpdateRankings(context.Background()))

	response, err := svc.GetRankings("weekly", 10)
	require.NoError(t, err)
	require.NotEmpty(t, response.Entries)
	assert.Equal(t, "weekly", response.Period)
	assert.LessOrEqual(t, len(response.Entries), 10)

	for i, entry := range response.Entries {
		assert.Equal(t, i+1, entry.Rank)
	}
	assert.WithinDuration(t, time.Now(), response.ComputedAt, time.Minute)
}

func TestGetRankingsRejectsUnknownPeriod(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetRankings("hourly", 10)
	assert.Error(t, err)
}

func TestGetRankingsServedFromCache(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.UpdateRankings(context.Background()))

	first, err := svc.GetRankings("daily", 10)
	require.NoError(t, err)

	stats := svc.GetCacheStats()
	assert.Positive(t, stats["total_items"])

	second, err := svc.GetRankings("daily", 10)
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
}
