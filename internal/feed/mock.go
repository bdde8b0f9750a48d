package feed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// MockSource is a seedable stand-in for a real ingestion backend. Output is
// deterministic for a given (seed, window) pair: each day derives its own
// PRNG from the base seed plus the day stamp, so pulling the same window
// twice or in overlapping requests yields identical records.
//
// The generator deliberately leaves gaps in the data - dropped states, NaN
// sentiment, missing demographics, unannotated confidence - so the quality
// layer downstream has realistic incompleteness to classify.
type MockSource struct {
	seed           int64
	mentionsPerDay int
}

// NewMockSource creates a mock feed. mentionsPerDay is the per-politician
// daily volume; values below 1 fall back to 6.
func NewMockSource(seed int64, mentionsPerDay int) *MockSource {
	if mentionsPerDay < 1 {
		mentionsPerDay = 6
	}
	return &MockSource{seed: seed, mentionsPerDay: mentionsPerDay}
}

// Pull generates mentions for the window.
func (s *MockSource) Pull(ctx context.Context, window Window) ([]types.Mention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	from := window.From.Truncate(24 * time.Hour)
	var mentions []types.Mention

	for day := from; day.Before(window.To); day = day.AddDate(0, 0, 1) {
		mentions = append(mentions, s.generateDay(day)...)
	}

	return mentions, nil
}

func (s *MockSource) generateDay(day time.Time) []types.Mention {
	rng := rand.New(rand.NewSource(s.seed + day.Unix()))
	out := make([]types.Mention, 0, len(politicians)*s.mentionsPerDay)

	n := 0
	for _, p := range politicians {
		for i := 0; i < s.mentionsPerDay; i++ {
			n++
			m := types.Mention{
				ID:         fmt.Sprintf("%s-%d", day.Format("20060102"), n),
				Politician: p.Name,
				Party:      p.Party,
				State:      states[rng.Intn(len(states))],
				Platform:   platforms[rng.Intn(len(platforms))],
				Topic:      topics[rng.Intn(len(topics))],
				Timestamp:  day.Add(time.Duration(rng.Intn(24*60)) * time.Minute),
				Sentiment:  rng.Float64()*2 - 1,
				Confidence: 0.55 + rng.Float64()*0.43,
				AgeBand:    ageBands[rng.Intn(len(ageBands))],
				Gender:     genders[rng.Intn(len(genders))],
			}

			// Patterned gaps, clustered like real ingestion failures.
			switch {
			case n%7 == 0:
				m.State = ""
			case n%11 == 0:
				m.Sentiment = math.NaN()
			case n%9 == 0:
				m.Confidence = math.NaN()
			case n%13 == 0:
				m.AgeBand = ""
				m.Gender = ""
			}

			// A thin slice of bot traffic for the sanitizer to drop.
			if n%29 == 0 {
				m.Metadata = map[string]any{"is_bot": true}
			}

			out = append(out, m)
		}
	}

	return out
}
