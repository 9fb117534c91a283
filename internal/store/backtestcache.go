package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// BacktestCache is a local, file-backed sqlite cache of JSON values keyed
// by a (symbol, timeRange) replay window (see Key). It stands apart from
// the primary Store: Backtest does not consult it, so each backtest-lite
// run reads its events from Postgres again.
type BacktestCache struct {
	db *sql.DB
}

// OpenBacktestCache opens (creating if absent) a sqlite database at path.
func OpenBacktestCache(path string) (*BacktestCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open backtest cache: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS replay_cache (
		cache_key   TEXT PRIMARY KEY,
		payload     TEXT NOT NULL,
		cached_at   DATETIME NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create backtest cache schema: %w", err)
	}
	return &BacktestCache{db: db}, nil
}

// Close releases the sqlite file handle.
func (c *BacktestCache) Close() error {
	return c.db.Close()
}

// Key derives a deterministic cache key for a symbol/time-range replay
// window.
func Key(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s|%d|%d", symbol, from.Unix(), to.Unix())
}

// Get loads and decodes a cached value. ok is false on a cache miss.
func (c *BacktestCache) Get(key string, dest interface{}) (ok bool, err error) {
	var payload string
	err = c.db.QueryRow(`SELECT payload FROM replay_cache WHERE cache_key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("backtest cache get: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("backtest cache decode: %w", err)
	}
	return true, nil
}

// Put stores value under key, overwriting any prior entry.
func (c *BacktestCache) Put(key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("backtest cache encode: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO replay_cache (cache_key, payload, cached_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at`,
		key, payload, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("backtest cache put: %w", err)
	}
	return nil
}

// Purge removes cache entries older than maxAge, run periodically so the
// sqlite file doesn't grow unbounded across long-lived processes.
func (c *BacktestCache) Purge(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result, err := c.db.Exec(`DELETE FROM replay_cache WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("backtest cache purge: %w", err)
	}
	return result.RowsAffected()
}
