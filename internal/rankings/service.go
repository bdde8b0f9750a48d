package rankings

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/database"
	"github.com/tomiwa-dev/naijapulse/internal/feed"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// Response is the payload for a ranking query.
type Response struct {
	Entries    []*database.RankingEntry `json:"entries"`
	Total      int                      `json:"total"`
	Period     string                   `json:"period"`
	ComputedAt time.Time                `json:"computed_at,omitempty"`
}

// periodDays maps a ranking period to the feed window it covers.
var periodDays = map[string]int{
	"daily":    1,
	"weekly":   7,
	"monthly":  30,
	"all_time": 365,
}

// Service computes and serves per-period politician rankings.
type Service struct {
	repo   *database.Repository
	source feed.Source
	cache  *RankingCache
}

// NewService creates a ranking service with a default 15 minute cache.
func NewService(repo *database.Repository, source feed.Source) *Service {
	return &Service{
		repo:   repo,
		source: source,
		cache:  NewRankingCache(15 * time.Minute),
	}
}

// NewServiceWithCache creates a ranking service with a custom cache.
func NewServiceWithCache(repo *database.Repository, source feed.Source, cache *RankingCache) *Service {
	return &Service{repo: repo, source: source, cache: cache}
}

// UpdateRankings recomputes and stores rankings for every period.
func (s *Service) UpdateRankings(ctx context.Context) error {
	now := time.Now()

	for period, days := range periodDays {
		if err := s.updatePeriod(ctx, period, days, now); err != nil {
			slog.Error("Failed to update rankings", "period", period, "error", err)
			continue
		}
	}

	s.cache.InvalidateAll()
	return nil
}

func (s *Service) updatePeriod(ctx context.Context, period string, days int, now time.Time) error {
	mentions, err := s.source.Pull(ctx, feed.LastDays(days, now))
	if err != nil {
		return fmt.Errorf("failed to pull feed for %s rankings: %w", period, err)
	}
	mentions = feed.Sanitize(mentions)

	entries := Compute(mentions, period)
	if err := s.repo.SaveRankings(entries); err != nil {
		return err
	}

	slog.Info("Updated rankings", "period", period, "entries", len(entries))
	return nil
}

// Compute aggregates mentions into a ranked list for a period. Politicians
// are ordered by mention volume, ties broken by average sentiment. NaN
// sentiment and confidence values are excluded from the averages.
func Compute(mentions []types.Mention, period string) []*database.RankingEntry {
	type agg struct {
		party          string
		mentions       int
		sentimentSum   float64
		sentimentCount int
		confSum        float64
		confCount      int
	}

	byPolitician := make(map[string]*agg)
	for _, m := range mentions {
		if m.Politician == "" {
			continue
		}
		a, ok := byPolitician[m.Politician]
		if !ok {
			a = &agg{party: m.Party}
			byPolitician[m.Politician] = a
		}
		a.mentions++
		if !math.IsNaN(m.Sentiment) {
			a.sentimentSum += m.Sentiment
			a.sentimentCount++
		}
		if !math.IsNaN(m.Confidence) {
			a.confSum += m.Confidence
			a.confCount++
		}
	}

	type scored struct {
		politician string
		agg        *agg
		sentiment  float64
		confidence float64
	}

	rows := make([]scored, 0, len(byPolitician))
	for politician, a := range byPolitician {
		row := scored{politician: politician, agg: a}
		if a.sentimentCount > 0 {
			row.sentiment = a.sentimentSum / float64(a.sentimentCount)
		}
		if a.confCount > 0 {
			row.confidence = a.confSum / float64(a.confCount)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].agg.mentions != rows[j].agg.mentions {
			return rows[i].agg.mentions > rows[j].agg.mentions
		}
		if rows[i].sentiment != rows[j].sentiment {
			return rows[i].sentiment > rows[j].sentiment
		}
		return rows[i].politician < rows[j].politician
	})

	entries := make([]*database.RankingEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, database.NewRankingEntry(
			row.politician, row.agg.party, period, i+1,
			row.agg.mentions, row.sentiment, row.confidence,
		))
	}

	return entries
}

// GetRankings returns the stored ranking for a period, serving from cache
// when possible.
func (s *Service) GetRankings(period string, limit int) (*Response, error) {
	if _, ok := periodDays[period]; !ok {
		return nil, fmt.Errorf("invalid period: %s", period)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	if cached, found := s.cache.GetRankings(period, limit); found {
		return cached, nil
	}

	entries, err := s.repo.GetRankings(period, limit)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Entries: entries,
		Total:   len(entries),
		Period:  period,
	}
	if len(entries) > 0 {
		response.ComputedAt = entries[0].ComputedAt
	}

	s.cache.SetRankings(period, limit, response)

	return response, nil
}

// GetCacheStats returns ranking cache statistics.
func (s *Service) GetCacheStats() map[string]interface{} {
	return s.cache.GetStats()
}

// WarmCache pre-loads the cache with common ranking queries.
func (s *Service) WarmCache() {
	s.cache.WarmCache(s)
}

// StartAutoRefresh recomputes rankings and re-warms the cache on a timer
// until the context is cancelled.
func (s *Service) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.UpdateRankings(ctx); err != nil {
					slog.Error("Ranking refresh failed", "error", err)
					continue
				}
				s.cache.WarmCache(s)
			}
		}
	}()
}
