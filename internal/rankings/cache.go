package rankings

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/cache"
	"github.com/tomiwa-dev/naijapulse/internal/encoding"
)

// RankingCache provides caching for ranking responses.
type RankingCache struct {
	cache *cache.Cache
	codec *encoding.Codec
}

// NewRankingCache creates a new ranking cache
func NewRankingCache(ttl time.Duration) *RankingCache {
	return &RankingCache{
		cache: cache.NewCache(ttl),
		codec: encoding.NewCodec(),
	}
}

func (rc *RankingCache) generateCacheKey(period string, limit int) string {
	return fmt.Sprintf("rankings:%s:%d", period, limit)
}

// GetRankings retrieves a cached ranking response.
func (rc *RankingCache) GetRankings(period string, limit int) (*Response, bool) {
	cacheKey := rc.generateCacheKey(period, limit)

	data, found := rc.cache.Get(cacheKey)
	if !found {
		return nil, false
	}

	var response Response
	if err := rc.codec.Unmarshal(data, &response); err != nil {
		slog.Error("Failed to unmarshal cached ranking data", "error", err, "key", cacheKey)
		return nil, false
	}

	slog.Debug("Ranking cache hit", "period", period, "limit", limit)
	return &response, true
}

// SetRankings caches a ranking response.
func (rc *RankingCache) SetRankings(period string, limit int, response *Response) {
	cacheKey := rc.generateCacheKey(period, limit)

	data, err := rc.codec.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal ranking data for cache", "error", err, "period", period)
		return
	}

	rc.cache.Set(cacheKey, data)
	slog.Debug("Ranking cached", "period", period, "limit", limit, "entries", len(response.Entries))
}

// InvalidateAll drops every cached ranking response.
func (rc *RankingCache) InvalidateAll() {
	rc.cache.Clear()
	slog.Info("Ranking cache invalidated")
}

// GetStats returns cache statistics
func (rc *RankingCache) GetStats() map[string]interface{} {
	stats := rc.cache.Stats()
	stats["codec"] = rc.codec.GetStats()
	return stats
}

// WarmCache pre-populates the cache with the common ranking queries.
func (rc *RankingCache) WarmCache(service *Service) {
	popularConfigs := []struct {
		period string
		limit  int
	}{
		{"daily", 50},
		{"weekly", 50},
		{"monthly", 50},
		{"all_time", 50},
		{"daily", 10},
		{"weekly", 10},
		{"monthly", 10},
		{"all_time", 10},
	}

	for _, config := range popularConfigs {
		response, err := service.GetRankings(config.period, config.limit)
		if err != nil {
			slog.Error("Failed to warm ranking cache",
				"error", err, "period", config.period, "limit", config.limit)
			continue
		}

		rc.SetRankings(config.period, config.limit, response)
	}

	slog.Info("Ranking cache warming completed")
}
