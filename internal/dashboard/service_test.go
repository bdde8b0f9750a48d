package dashboard

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomiwa-dev/naijapulse/internal/feed"
	"github.com/tomiwa-dev/naijapulse/internal/monitoring"
	"github.com/tomiwa-dev/naijapulse/internal/quality"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestChartService(t *testing.T) *Service {
	t.Helper()

	svc := NewService(
		feed.NewMockSource(42, 6),
		quality.NewThresholdStore(t.TempDir()),
		monitoring.NewMetrics(),
		monitoring.NewLogger(),
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestMentionsAggregation(t *testing.T) {
	svc := newTestChartService(t)

	resp, err := svc.Mentions(context.Background(), MentionsQuery{Days: 7})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Summaries)

	for i := 1; i < len(resp.Summaries); i++ {
		assert.GreaterOrEqual(t, resp.Summaries[i-1].Mentions, resp.Summaries[i].Mentions,
			"summaries must be ordered by volume")
	}

	for _, s := range resp.Summaries {
		assert.NotEmpty(t, s.Politician)
		assert.NotEmpty(t, s.TopPlatform)
		assert.GreaterOrEqual(t, s.Mentions, s.Positive+s.Neutral+s.Negative)
	}

	assert.Greater(t, resp.Quality.TotalPoints, 0)
	assert.Greater(t, resp.Quality.ValidPoints, 0)
	assert.Equal(t, 7, resp.WindowDays)
}

func TestMentionsDegradedOnGaps(t *testing.T) {
	svc := newTestChartService(t)

	// The mock feed injects NaN sentiment into a slice of records, so the
	// dataset can never be fully complete.
	resp, err := svc.Mentions(context.Background(), MentionsQuery{Days: 7})
	require.NoError(t, err)

	assert.Equal(t, quality.ModeDegraded, resp.Presentation.Mode)
	assert.Greater(t, resp.Presentation.IncompletePercent, 0)
	assert.Less(t, resp.Quality.DataCompleteness, 1.0)
	assert.Greater(t, resp.RecordCompleteness, 0.0)
}

func TestMentionsPartyFilter(t *testing.T) {
	svc := newTestChartService(t)

	resp, err := svc.Mentions(context.Background(), MentionsQuery{Days: 7, Parties: []string{"LP"}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Summaries)

	for _, s := range resp.Summaries {
		assert.Equal(t, "LP", s.Party)
	}
}

func TestMentionsInsufficientData(t *testing.T) {
	svc := newTestChartService(t)

	resp, err := svc.Mentions(context.Background(), MentionsQuery{Days: 1, MinPoints: 1000000})
	require.NoError(t, err)

	assert.Equal(t, quality.ModeInsufficient, resp.Presentation.Mode)
	assert.Empty(t, resp.Summaries, "insufficient mode ships no chart data")
	assert.Equal(t, resp.Quality.ValidPoints, resp.Presentation.ValidPoints)
	assert.Equal(t, 1000000, resp.Presentation.MinPoints)
}

func TestMentionsDeterministic(t *testing.T) {
	svc := newTestChartService(t)

	first, err := svc.Mentions(context.Background(), MentionsQuery{Days: 7})
	require.NoError(t, err)
	second, err := svc.Mentions(context.Background(), MentionsQuery{Days: 7})
	require.NoError(t, err)

	assert.Equal(t, first.Summaries, second.Summaries)
	assert.Equal(t, first.Quality, second.Quality)
}

func TestTimelineOrderedByDate(t *testing.T) {
	svc := newTestChartService(t)

	resp, err := svc.Timeline(context.Background(), TimelineQuery{Days: 7})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Points)

	for i := 1; i < len(resp.Points); i++ {
		assert.Less(t, resp.Points[i-1].Date, resp.Points[i].Date)
	}
}

func TestTimelineSinglePolitician(t *testing.T) {
	svc := newTestChartService(t)

	all, err := svc.Timeline(context.Background(), TimelineQuery{Days: 7})
	require.NoError(t, err)
	one, err := svc.Timeline(context.Background(), TimelineQuery{Days: 7, Politician: "Peter Obi"})
	require.NoError(t, err)

	require.NotEmpty(t, one.Points)
	assert.Equal(t, "Peter Obi", one.Politician)
	assert.Less(t, one.Quality.TotalPoints, all.Quality.TotalPoints)
}

func TestDemographicsDimensions(t *testing.T) {
	svc := newTestChartService(t)

	for _, dimension := range []string{"age", "gender", "state"} {
		resp, err := svc.Demographics(context.Background(), dimension, 7)
		require.NoError(t, err, dimension)
		require.NotEmpty(t, resp.Buckets, dimension)

		for _, b := range resp.Buckets {
			assert.Equal(t, dimension, b.Dimension)
			assert.NotEmpty(t, b.Label)
			assert.Greater(t, b.Count, 0)
			assert.GreaterOrEqual(t, b.SentimentAvg, -1.0)
			assert.LessOrEqual(t, b.SentimentAvg, 1.0)
		}
	}
}

func TestDemographicsRejectsUnknownDimension(t *testing.T) {
	svc := newTestChartService(t)

	_, err := svc.Demographics(context.Background(), "religion", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown demographic dimension")
}

func TestComparePartiesShares(t *testing.T) {
	svc := newTestChartService(t)

	resp, err := svc.CompareParties(context.Background(), nil, 7)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Parties)

	shareSum := 0.0
	for _, p := range resp.Parties {
		assert.NotEmpty(t, p.Party)
		assert.Greater(t, p.Mentions, 0)
		shareSum += p.Share
	}
	assert.InDelta(t, 1.0, shareSum, 0.001)
}

func TestComparePartiesSubset(t *testing.T) {
	svc := newTestChartService(t)

	resp, err := svc.CompareParties(context.Background(), []string{"APC", "PDP"}, 7)
	require.NoError(t, err)
	require.Len(t, resp.Parties, 2)

	for _, p := range resp.Parties {
		assert.Contains(t, []string{"APC", "PDP"}, p.Party)
	}
}

func TestDampSpikes(t *testing.T) {
	flat := []float64{10, 10, 10, 10, 10}
	assert.Equal(t, flat, dampSpikes(flat))

	short := []float64{5, 500, 5}
	assert.Equal(t, short, dampSpikes(short))

	spiked := []float64{10, 11, 9, 10, 200, 10, 11}
	damped := dampSpikes(spiked)
	assert.Less(t, damped[4], 200.0, "spike day should be capped")
	assert.Equal(t, spiked[0], damped[0], "baseline days untouched")
}

func TestMentionRecordOmitsUnusableFields(t *testing.T) {
	m := types.Mention{
		Politician: "Peter Obi",
		Party:      "LP",
		Timestamp:  testNow,
		Sentiment:  0.4,
		Confidence: math.NaN(),
	}
	r := mentionRecord(m)

	assert.Contains(t, r, "politician")
	assert.Contains(t, r, "party")
	assert.Contains(t, r, "sentiment")
	assert.NotContains(t, r, "state", "empty strings are dropped")
	assert.NotContains(t, r, "confidence", "NaN values are dropped")
}
