package database

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an anonymous dashboard session.
type Session struct {
	ID         string    `json:"id" db:"id"`
	IPAddress  string    `json:"-" db:"ip_address"`
	UserAgent  string    `json:"-" db:"user_agent"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// RankingEntry is one row of a computed politician ranking.
type RankingEntry struct {
	ID           string    `json:"id" db:"id"`
	Politician   string    `json:"politician" db:"politician"`
	Party        string    `json:"party" db:"party"`
	Period       string    `json:"period" db:"period"` // daily, weekly, monthly, all_time
	Rank         int       `json:"rank" db:"rank"`
	Mentions     int       `json:"mentions" db:"mentions"`
	SentimentAvg float64   `json:"sentiment_avg" db:"sentiment_avg"`
	Confidence   float64   `json:"confidence" db:"confidence"`
	ComputedAt   time.Time `json:"computed_at" db:"computed_at"`
}

// NewSession creates a new session with a generated ID.
func NewSession(ipAddress, userAgent string) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New().String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// NewRankingEntry creates a ranking entry with a generated ID.
func NewRankingEntry(politician, party, period string, rank, mentions int, sentimentAvg, confidence float64) *RankingEntry {
	return &RankingEntry{
		ID:           uuid.New().String(),
		Politician:   politician,
		Party:        party,
		Period:       period,
		Rank:         rank,
		Mentions:     mentions,
		SentimentAvg: sentimentAvg,
		Confidence:   confidence,
		ComputedAt:   time.Now(),
	}
}
