package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tomiwa-dev/naijapulse/internal/filters"
	"github.com/tomiwa-dev/naijapulse/internal/types"
)

// Repository handles database operations for sessions, preferences and
// rankings.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a new session row.
func (r *Repository) CreateSession(session *Session) error {
	stmt, err := r.db.GetPreparedStatement("insert_session")
	if err != nil {
		return err
	}

	_, err = stmt.Exec(session.ID, session.IPAddress, session.UserAgent, session.CreatedAt, session.LastSeenAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession fetches a session by ID. Returns nil when the session does not
// exist.
func (r *Repository) GetSession(sessionID string) (*Session, error) {
	stmt, err := r.db.GetPreparedStatement("get_session")
	if err != nil {
		return nil, err
	}

	var session Session
	err = stmt.QueryRow(sessionID).Scan(
		&session.ID, &session.IPAddress, &session.UserAgent,
		&session.CreatedAt, &session.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &session, nil
}

// TouchSession bumps a session's last-seen timestamp.
func (r *Repository) TouchSession(sessionID string) error {
	stmt, err := r.db.GetPreparedStatement("touch_session")
	if err != nil {
		return err
	}

	_, err = stmt.Exec(time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// DeleteSession removes one session and, via cascade, its preferences and
// filter state. Deleting a session that does not exist is not an error.
func (r *Repository) DeleteSession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteStaleSessions removes sessions (and their preferences, via cascade)
// not seen for the retention window. Returns the number of rows removed.
func (r *Repository) DeleteStaleSessions(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result, err := r.db.Exec(`DELETE FROM sessions WHERE last_seen_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}

	return result.RowsAffected()
}

// GetPreferences loads a session's stored preferences. Returns defaults when
// the session has never saved any.
func (r *Repository) GetPreferences(sessionID string) (*types.Preferences, error) {
	stmt, err := r.db.GetPreparedStatement("get_preferences")
	if err != nil {
		return nil, err
	}

	var theme, period, filtersJSON, recentJSON string
	err = stmt.QueryRow(sessionID).Scan(&theme, &period, &filtersJSON, &recentJSON)
	if err == sql.ErrNoRows {
		return &types.Preferences{
			Theme:         "light",
			DefaultPeriod: "weekly",
			Filters:       map[string][]string{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}

	prefs := &types.Preferences{Theme: theme, DefaultPeriod: period}
	if err := json.Unmarshal([]byte(filtersJSON), &prefs.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode stored filters: %w", err)
	}
	if err := json.Unmarshal([]byte(recentJSON), &prefs.RecentlyViewed); err != nil {
		return nil, fmt.Errorf("failed to decode recently viewed: %w", err)
	}
	if prefs.Filters == nil {
		prefs.Filters = map[string][]string{}
	}

	return prefs, nil
}

// SavePreferences upserts a session's preferences.
func (r *Repository) SavePreferences(sessionID string, prefs *types.Preferences) error {
	stmt, err := r.db.GetPreparedStatement("upsert_preferences")
	if err != nil {
		return err
	}

	filtersJSON, err := json.Marshal(prefs.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	recent := prefs.RecentlyViewed
	if recent == nil {
		recent = []string{}
	}
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		return fmt.Errorf("failed to encode recently viewed: %w", err)
	}

	_, err = stmt.Exec(sessionID, prefs.Theme, prefs.DefaultPeriod, string(filtersJSON), string(recentJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}

// SaveFilterState persists a session's filter selections without touching
// theme or period. Satisfies the filter store's write-back interface.
func (r *Repository) SaveFilterState(sessionID string, state filters.State) error {
	stmt, err := r.db.GetPreparedStatement("upsert_filter_state")
	if err != nil {
		return err
	}

	filtersJSON, err := json.Marshal(state.Selections)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	recent := state.RecentlyViewed
	if recent == nil {
		recent = []string{}
	}
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		return fmt.Errorf("failed to encode recently viewed: %w", err)
	}

	_, err = stmt.Exec(sessionID, string(filtersJSON), string(recentJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save filter state: %w", err)
	}

	return nil
}

// SaveRankings replaces the stored ranking for a period.
func (r *Repository) SaveRankings(entries []*RankingEntry) error {
	stmt, err := r.db.GetPreparedStatement("insert_ranking_entry")
	if err != nil {
		return err
	}

	for _, e := range entries {
		_, err = stmt.Exec(e.ID, e.Politician, e.Party, e.Period, e.Rank, e.Mentions, e.SentimentAvg, e.Confidence, e.ComputedAt)
		if err != nil {
			return fmt.Errorf("failed to save ranking entry for %s: %w", e.Politician, err)
		}
	}

	return nil
}

// GetRankings returns the stored ranking for a period, best rank first.
func (r *Repository) GetRankings(period string, limit int) ([]*RankingEntry, error) {
	stmt, err := r.db.GetPreparedStatement("get_rankings")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(period, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()

	var entries []*RankingEntry
	for rows.Next() {
		var e RankingEntry
		err := rows.Scan(&e.ID, &e.Politician, &e.Party, &e.Period, &e.Rank,
			&e.Mentions, &e.SentimentAvg, &e.Confidence, &e.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
