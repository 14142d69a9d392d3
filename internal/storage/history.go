package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// RunRecord is one persisted analysis run. Payload holds the encoded result;
// it is compressed at rest.
type RunRecord struct {
	ID           string
	CategoryPath string
	Gender       string
	CreatedAt    time.Time
	Payload      []byte
}

// HistoryStore persists analysis runs per category path and gender
type HistoryStore struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewHistoryStore creates a history store on db
func NewHistoryStore(db *DB) (*HistoryStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &HistoryStore{db: db, enc: enc, dec: dec}, nil
}

// Close releases the codec resources
func (h *HistoryStore) Close() {
	h.dec.Close()
	_ = h.enc.Close()
}

// SaveRun stores rec and returns the stored record. A missing ID or
// timestamp is filled in.
func (h *HistoryStore) SaveRun(ctx context.Context, rec RunRecord) (RunRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	compressed := h.enc.EncodeAll(rec.Payload, nil)

	err := h.db.WithTx(func(tx *sql.Tx) error {
		var seq int64
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM runs").Scan(&seq); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, category_path, gender, created_at, seq, payload)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.CategoryPath, rec.Gender, rec.CreatedAt.Format(time.RFC3339Nano), seq, compressed)
		return err
	})
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to save run: %w", err)
	}

	h.db.logger.Debug("Run saved",
		"id", rec.ID,
		"path", rec.CategoryPath,
		"gender", rec.Gender,
		"raw_bytes", len(rec.Payload),
		"stored_bytes", len(compressed),
	)
	return rec, nil
}

// LatestRun returns the most recently saved run for path and gender, or nil
func (h *HistoryStore) LatestRun(ctx context.Context, categoryPath, gender string) (*RunRecord, error) {
	runs, err := h.ListRuns(ctx, categoryPath, gender, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ListRuns returns up to limit runs for path and gender, newest first.
// A non-positive limit returns all runs.
func (h *HistoryStore) ListRuns(ctx context.Context, categoryPath, gender string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.conn.QueryContext(ctx, `
		SELECT id, category_path, gender, created_at, payload
		FROM runs
		WHERE category_path = ? AND gender = ?
		ORDER BY seq DESC
		LIMIT ?
	`, categoryPath, gender, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return h.scanRuns(rows)
}

// LatestRuns returns the newest run of every path and gender pair, ordered
// by path then gender.
func (h *HistoryStore) LatestRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := h.db.conn.QueryContext(ctx, `
		SELECT r.id, r.category_path, r.gender, r.created_at, r.payload
		FROM runs r
		WHERE r.seq = (
			SELECT MAX(seq) FROM runs
			WHERE category_path = r.category_path AND gender = r.gender
		)
		ORDER BY r.category_path, r.gender
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest runs: %w", err)
	}
	defer rows.Close()

	return h.scanRuns(rows)
}

// Count returns the number of stored runs
func (h *HistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := h.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

func (h *HistoryStore) scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	var runs []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			createdAt  string
			compressed []byte
		)
		if err := rows.Scan(&rec.ID, &rec.CategoryPath, &rec.Gender, &createdAt, &compressed); err != nil {
			return nil, err
		}

		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at for run %s: %w", rec.ID, err)
		}
		rec.CreatedAt = t

		rec.Payload, err = h.dec.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress run %s: %w", rec.ID, err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}
