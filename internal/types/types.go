package types

import "time"

// Mention is one raw social-media data point about a politician, as produced
// by a feed source. Fields may be missing or zero when the upstream record
// was incomplete; the quality layer decides what that means downstream.
type Mention struct {
	ID         string         `json:"id"`
	Politician string         `json:"politician"`
	Party      string         `json:"party"`
	State      string         `json:"state"`
	Platform   string         `json:"platform"`
	Topic      string         `json:"topic"`
	Timestamp  time.Time      `json:"timestamp"`
	Sentiment  float64        `json:"sentiment"` // -1 (negative) .. 1 (positive)
	Confidence float64        `json:"confidence"`
	AgeBand    string         `json:"age_band"`
	Gender     string         `json:"gender"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// MentionSummary aggregates mentions for one politician.
type MentionSummary struct {
	Politician  string  `json:"politician"`
	Party       string  `json:"party"`
	Mentions    int     `json:"mentions"`
	Positive    int     `json:"positive"`
	Neutral     int     `json:"neutral"`
	Negative    int     `json:"negative"`
	TopPlatform string  `json:"top_platform"`
	Confidence  float64 `json:"confidence"`
}

// TimelinePoint is one day of a sentiment timeline.
type TimelinePoint struct {
	Date       string  `json:"date"`
	Positive   float64 `json:"positive"`
	Neutral    float64 `json:"neutral"`
	Negative   float64 `json:"negative"`
	Confidence float64 `json:"confidence"`
}

// DemographicBucket is one slice of a demographic breakdown.
type DemographicBucket struct {
	Dimension    string  `json:"dimension"` // "age", "gender" or "state"
	Label        string  `json:"label"`
	Count        int     `json:"count"`
	SentimentAvg float64 `json:"sentiment_avg"`
	Confidence   float64 `json:"confidence"`
}

// PartyComparison is one party's aggregate in a cross-party chart.
type PartyComparison struct {
	Party        string  `json:"party"`
	Mentions     int     `json:"mentions"`
	Share        float64 `json:"share"` // fraction of all mentions in the window
	SentimentAvg float64 `json:"sentiment_avg"`
	Confidence   float64 `json:"confidence"`
}

// Preferences is the per-session dashboard state the UI persists.
type Preferences struct {
	Theme          string              `json:"theme"`
	DefaultPeriod  string              `json:"default_period"`
	Filters        map[string][]string `json:"filters"`
	RecentlyViewed []string            `json:"recently_viewed"`
}

// PreferencesRequest is the update payload for the preferences endpoint.
type PreferencesRequest struct {
	Theme         string              `json:"theme"`
	DefaultPeriod string              `json:"default_period"`
	Filters       map[string][]string `json:"filters"`
}
