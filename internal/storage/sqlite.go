package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cfle/mtg-oracle/internal/models"
)

// SQLiteCache implements ResolutionCache using SQLite.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteCache opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist. Entries older
// than ttl are treated as absent.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteCache{db: db, ttl: ttl}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS resolutions (
		query TEXT PRIMARY KEY,
		no_match INTEGER NOT NULL DEFAULT 0,
		payload TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_created_at ON resolutions(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// normalizeQuery lowercases and collapses whitespace so equivalent queries share
// one cache entry.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Get returns the cached resolution for query, or ErrNotFound when absent or
// expired.
func (s *SQLiteCache) Get(ctx context.Context, query string) (*Resolution, error) {
	var (
		noMatch   int
		payload   sql.NullString
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT no_match, payload, created_at FROM resolutions WHERE query = ?`,
		normalizeQuery(query),
	).Scan(&noMatch, &payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 && time.Since(createdAt) > s.ttl {
		return nil, ErrNotFound
	}

	res := &Resolution{
		Query:     normalizeQuery(query),
		NoMatch:   noMatch != 0,
		CreatedAt: createdAt,
	}
	if payload.Valid && payload.String != "" {
		var card models.Card
		if err := json.Unmarshal([]byte(payload.String), &card); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached card: %w", err)
		}
		res.Card = &card
	}
	return res, nil
}

// Put inserts or replaces the cached resolution for res.Query.
func (s *SQLiteCache) Put(ctx context.Context, res *Resolution) error {
	var payload string
	if res.Card != nil {
		data, err := json.Marshal(res.Card)
		if err != nil {
			return fmt.Errorf("failed to marshal card: %w", err)
		}
		payload = string(data)
	}
	noMatch := 0
	if res.NoMatch {
		noMatch = 1
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO resolutions (query, no_match, payload, created_at)
		 VALUES (?, ?, ?, ?)`,
		normalizeQuery(res.Query), noMatch, payload, res.CreatedAt,
	)
	return err
}

// Purge deletes entries created before olderThan.
func (s *SQLiteCache) Purge(ctx context.Context, olderThan time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE created_at < ?`, olderThan)
	return err
}

// Count returns the number of cached resolutions, expired ones included.
func (s *SQLiteCache) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resolutions`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
