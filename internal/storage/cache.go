package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"facettes/internal/cache"
)

// Cache is the persistent cache.Store backed by the result_cache table
type Cache struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a persistent cache. A non-positive ttl uses cache.DefaultTTL.
func NewCache(db *DB, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Cache{db: db, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get implements cache.Store. Reading an expired entry deletes it.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fp := cache.Fingerprint(key)

	var value []byte
	var expiresAt string
	err := c.db.conn.QueryRowContext(ctx, `
		SELECT value, expires_at
		FROM result_cache
		WHERE fingerprint = ?
	`, fp).Scan(&value, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("result cache lookup failed: %w", err)
	}

	expiresAtTime, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil {
		return nil, false, fmt.Errorf("invalid expires_at format: %w", err)
	}

	if (cache.Entry{ExpiresAt: expiresAtTime}).Expired(c.now()) {
		if _, err := c.db.conn.ExecContext(ctx, "DELETE FROM result_cache WHERE fingerprint = ?", fp); err != nil {
			c.db.logger.Warn("failed to evict expired cache entry", "key", key, "error", err.Error())
		}
		return nil, false, nil
	}

	return value, true, nil
}

// Set implements cache.Store. An existing entry is fully replaced.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	now := c.now().UTC()
	expiresAt := now.Add(c.ttl)

	_, err := c.db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO result_cache (fingerprint, key, value, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, cache.Fingerprint(key), key, value, now.Format(time.RFC3339Nano), expiresAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set result cache: %w", err)
	}
	return nil
}

// Purge implements cache.Store.
func (c *Cache) Purge(ctx context.Context, prefix string) (int, error) {
	var (
		res sql.Result
		err error
	)
	if prefix == "" {
		res, err = c.db.conn.ExecContext(ctx, "DELETE FROM result_cache")
	} else {
		res, err = c.db.conn.ExecContext(ctx,
			`DELETE FROM result_cache WHERE key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to purge result cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CleanupExpired deletes every expired entry and returns how many were removed.
func (c *Cache) CleanupExpired(ctx context.Context) (int, error) {
	rows, err := c.db.conn.QueryContext(ctx, "SELECT fingerprint, expires_at FROM result_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to scan result cache: %w", err)
	}

	now := c.now()
	var expired []string
	for rows.Next() {
		var fp, expiresAt string
		if err := rows.Scan(&fp, &expiresAt); err != nil {
			rows.Close()
			return 0, err
		}
		t, err := time.Parse(time.RFC3339Nano, expiresAt)
		if err != nil || now.After(t) {
			expired = append(expired, fp)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	err = c.db.WithTx(func(tx *sql.Tx) error {
		for _, fp := range expired {
			if _, err := tx.ExecContext(ctx, "DELETE FROM result_cache WHERE fingerprint = ?", fp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}
	return len(expired), nil
}

// Stats implements cache.Store.
func (c *Cache) Stats(ctx context.Context) (cache.Stats, error) {
	var s cache.Stats
	err := c.db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM result_cache",
	).Scan(&s.EntryCount, &s.TotalSizeBytes)
	if err != nil {
		return cache.Stats{}, fmt.Errorf("failed to compute cache stats: %w", err)
	}
	return s, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
