package feed

import (
	"context"
	"sort"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// Window bounds a pull request in time.
type Window struct {
	From time.Time
	To   time.Time
}

// LastDays builds a window covering the last n days ending now.
func LastDays(n int, now time.Time) Window {
	return Window{From: now.AddDate(0, 0, -n), To: now}
}

// Source produces raw mention records for a time window. Implementations
// must be safe for concurrent use; the dashboard pulls once per chart
// request.
type Source interface {
	Pull(ctx context.Context, window Window) ([]types.Mention, error)
}

// Sanitize applies basic hygiene to a pulled batch: chronological order,
// duplicate-ID collapse, bot exclusion and sentiment clamping. It never
// drops a record for incompleteness; that is the quality layer's call.
func Sanitize(mentions []types.Mention) []types.Mention {
	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].Timestamp.Before(mentions[j].Timestamp)
	})

	seen := make(map[string]bool, len(mentions))
	cleaned := make([]types.Mention, 0, len(mentions))

	for _, m := range mentions {
		if m.ID != "" && seen[m.ID] {
			continue
		}
		if m.ID != "" {
			seen[m.ID] = true
		}

		if m.Metadata != nil {
			if bot, ok := m.Metadata["is_bot"].(bool); ok && bot {
				continue
			}
		}

		if m.Sentiment > 1 {
			m.Sentiment = 1
		} else if m.Sentiment < -1 {
			m.Sentiment = -1
		}

		cleaned = append(cleaned, m)
	}

	return cleaned
}
