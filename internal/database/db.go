package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection with pooling and prepared statements.
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling.
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool configures pooling on a sql.DB.
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics.
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB opens (creating if needed) the dashboard database under dataDir.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "naijapulse.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns)

	return database, nil
}

// migrate creates the necessary tables.
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			ip_address TEXT NOT NULL,
			user_agent TEXT,
			created_at DATETIME NOT NULL,
			last_seen_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS preferences (
			session_id TEXT PRIMARY KEY,
			theme TEXT NOT NULL DEFAULT 'light',
			default_period TEXT NOT NULL DEFAULT 'weekly',
			filters TEXT NOT NULL DEFAULT '{}', -- JSON group -> selections
			recently_viewed TEXT NOT NULL DEFAULT '[]', -- JSON list
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS ranking_entries (
			id TEXT PRIMARY KEY,
			politician TEXT NOT NULL,
			party TEXT NOT NULL,
			period TEXT NOT NULL, -- 'daily', 'weekly', 'monthly', 'all_time'
			rank INTEGER NOT NULL,
			mentions INTEGER NOT NULL,
			sentiment_avg REAL NOT NULL,
			confidence REAL NOT NULL,
			computed_at DATETIME NOT NULL,
			UNIQUE(politician, period)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen_at)`,
		`CREATE INDEX IF NOT EXISTS idx_ranking_entries_period ON ranking_entries(period, rank)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements.
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_session": `INSERT INTO sessions (id, ip_address, user_agent, created_at, last_seen_at)
			VALUES (?, ?, ?, ?, ?)`,

		"touch_session": `UPDATE sessions SET last_seen_at = ? WHERE id = ?`,

		"get_session": `SELECT id, ip_address, user_agent, created_at, last_seen_at
			FROM sessions WHERE id = ?`,

		"upsert_preferences": `INSERT INTO preferences (session_id, theme, default_period, filters, recently_viewed, updated_at)
			VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT(session_id) DO UPDATE SET
			theme = excluded.theme,
			default_period = excluded.default_period,
			filters = excluded.filters,
			recently_viewed = excluded.recently_viewed,
			updated_at = excluded.updated_at`,

		"get_preferences": `SELECT theme, default_period, filters, recently_viewed
			FROM preferences WHERE session_id = ?`,

		"upsert_filter_state": `INSERT INTO preferences (session_id, filters, recently_viewed, updated_at)
			VALUES (?, ?, ?, ?) ON CONFLICT(session_id) DO UPDATE SET
			filters = excluded.filters,
			recently_viewed = excluded.recently_viewed,
			updated_at = excluded.updated_at`,

		"insert_ranking_entry": `INSERT INTO ranking_entries (
			id, politician, party, period, rank, mentions, sentiment_avg, confidence, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(politician, period) DO UPDATE SET
			rank = excluded.rank,
			mentions = excluded.mentions,
			sentiment_avg = excluded.sentiment_avg,
			confidence = excluded.confidence,
			computed_at = excluded.computed_at`,

		"get_rankings": `SELECT id, politician, party, period, rank, mentions, sentiment_avg, confidence, computed_at
			FROM ranking_entries WHERE period = ? ORDER BY rank ASC LIMIT ?`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement by name.
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics.
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes prepared statements and the connection.
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
