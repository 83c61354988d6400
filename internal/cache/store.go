// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache keeps successful per-DOI upstream responses in a local
// SQLite database so repeated runs, and works sharing a DOI, skip the
// network. Failures are never cached.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
	"github.com/segmentio/encoding/json"

	"github.com/pdiddy/scholar-metrics/pkg/types"
)

const (
	appName = "scholar-metrics"
	dbFile  = "cache.db"
)

// Entry kinds.
const (
	KindCitation = "crossref"
	KindMentions = "eventdata"
)

// DefaultPath returns the cache database location under the user's XDG
// cache directory, creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.CacheFile(filepath.Join(appName, dbFile))
}

// Store is a TTL-bounded key/value table keyed by (kind, DOI).
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens or creates the cache database described by cfg. An empty path
// selects DefaultPath. A TTL of zero keeps entries forever.
func Open(cfg types.CacheConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving cache path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	s := &Store{db: db, ttl: cfg.TTL, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS doi_cache (
		kind TEXT NOT NULL,
		doi TEXT NOT NULL,
		payload TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (kind, doi)
	)`)
	return err
}

// key folds DOI case; DOIs are case-insensitive.
func key(doi string) string {
	return strings.ToLower(strings.TrimSpace(doi))
}

// Get decodes the cached payload for (kind, doi) into out. It reports
// false when there is no entry or the entry is older than the TTL.
func (s *Store) Get(ctx context.Context, kind, doi string, out any) (bool, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM doi_cache WHERE kind = ? AND doi = ?`,
		kind, key(doi),
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache entry %s/%s: %w", kind, doi, err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(fetchedAt, 0)) > s.ttl {
		return false, nil
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decoding cache entry %s/%s: %w", kind, doi, err)
	}
	return true, nil
}

// Put stores v for (kind, doi), replacing any previous entry.
func (s *Store) Put(ctx context.Context, kind, doi string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s/%s: %w", kind, doi, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO doi_cache (kind, doi, payload, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, doi) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		kind, key(doi), string(payload), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s/%s: %w", kind, doi, err)
	}
	return nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM doi_cache`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM doi_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
