// Package streamcache persists raw fetched activity streams in a SQLite
// database so repeated loads skip the upstream API. Only raw points are
// cached; normalized and classified state is always rebuilt in memory.
package streamcache

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/routeblend/routeblend/internal/source"
	"github.com/routeblend/routeblend/internal/types"
)

// Store is a SQLite-backed raw stream cache.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the cache database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS streams (
			activity_id TEXT PRIMARY KEY,
			fetched_at  INTEGER NOT NULL,
			point_count INTEGER NOT NULL,
			data        BLOB NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores the raw points of one activity, replacing any previous entry.
// Points are stored gzip-compressed JSON.
func (s *Store) Put(ctx context.Context, activityID string, points []types.RawPoint) error {
	data, err := encodePoints(points)
	if err != nil {
		return fmt.Errorf("encode stream %s: %w", activityID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO streams (activity_id, fetched_at, point_count, data) VALUES (?, ?, ?, ?)`,
		activityID, time.Now().Unix(), len(points), data,
	)
	if err != nil {
		return fmt.Errorf("store stream %s: %w", activityID, err)
	}
	return nil
}

// Get returns the cached points of one activity, or ok=false on a miss.
func (s *Store) Get(ctx context.Context, activityID string) ([]types.RawPoint, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM streams WHERE activity_id = ?`, activityID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read stream %s: %w", activityID, err)
	}

	points, err := decodePoints(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode stream %s: %w", activityID, err)
	}
	return points, true, nil
}

// Count returns the number of cached streams.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM streams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count streams: %w", err)
	}
	return n, nil
}

// Clear drops all cached streams.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM streams`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func encodePoints(points []types.RawPoint) ([]byte, error) {
	raw, err := json.Marshal(points)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodePoints(data []byte) ([]types.RawPoint, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, err
	}
	var points []types.RawPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// CachingSource wraps a StreamSource with the store: hits are served from
// SQLite, misses are fetched upstream and written back. Cache write failures
// are logged and otherwise ignored; the fetched stream is still returned.
type CachingSource struct {
	store    *Store
	upstream source.StreamSource
}

// NewCachingSource wraps upstream with the cache.
func NewCachingSource(store *Store, upstream source.StreamSource) *CachingSource {
	return &CachingSource{store: store, upstream: upstream}
}

// GetStream implements source.StreamSource.
func (c *CachingSource) GetStream(ctx context.Context, activityID string) ([]types.RawPoint, error) {
	points, ok, err := c.store.Get(ctx, activityID)
	if err != nil {
		c.store.logger.Warn("stream cache read failed", "activity_id", activityID, "error", err)
	} else if ok {
		return points, nil
	}

	points, err = c.upstream.GetStream(ctx, activityID)
	if err != nil {
		return nil, err
	}

	if err := c.store.Put(ctx, activityID, points); err != nil {
		c.store.logger.Warn("stream cache write failed", "activity_id", activityID, "error", err)
	}
	return points, nil
}
