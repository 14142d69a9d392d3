package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	db, _ := setupTestDB(t)
	h, err := NewHistoryStore(db)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func TestHistory_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)

	latest, err := h.LatestRun(ctx, "Vêtements > Robes", "femme")
	require.NoError(t, err)
	assert.Nil(t, latest, "no run saved yet")

	first, err := h.SaveRun(ctx, RunRecord{
		CategoryPath: "Vêtements > Robes",
		Gender:       "femme",
		Payload:      []byte(`{"run":1}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	// identical timestamps must still order by insertion
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = h.SaveRun(ctx, RunRecord{ID: "a", CategoryPath: "Vêtements > Robes", Gender: "femme", CreatedAt: ts, Payload: []byte(`{"run":2}`)})
	require.NoError(t, err)
	_, err = h.SaveRun(ctx, RunRecord{ID: "b", CategoryPath: "Vêtements > Robes", Gender: "femme", CreatedAt: ts, Payload: []byte(`{"run":3}`)})
	require.NoError(t, err)

	latest, err = h.LatestRun(ctx, "Vêtements > Robes", "femme")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "b", latest.ID)
	assert.Equal(t, `{"run":3}`, string(latest.Payload))
	assert.True(t, latest.CreatedAt.Equal(ts))

	other, err := h.LatestRun(ctx, "Vêtements > Robes", "homme")
	require.NoError(t, err)
	assert.Nil(t, other, "runs are scoped by gender")
}

func TestHistory_ListAndCount(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)

	for i := 0; i < 3; i++ {
		_, err := h.SaveRun(ctx, RunRecord{CategoryPath: "Chaussures", Gender: "homme", Payload: []byte{byte('0' + i)}})
		require.NoError(t, err)
	}
	_, err := h.SaveRun(ctx, RunRecord{CategoryPath: "Accessoires", Gender: "femme", Payload: []byte("x")})
	require.NoError(t, err)

	runs, err := h.ListRuns(ctx, "Chaussures", "homme", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "2", string(runs[0].Payload), "newest first")
	assert.Equal(t, "1", string(runs[1].Payload))

	all, err := h.ListRuns(ctx, "Chaussures", "homme", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := h.LatestRuns(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Accessoires", latest[0].CategoryPath)
	assert.Equal(t, "2", string(latest[1].Payload))

	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestHistory_PayloadIsCompressed(t *testing.T) {
	ctx := context.Background()
	h := newTestHistory(t)

	payload := bytes.Repeat([]byte(`{"facet":"couleur","volume":1200}`), 200)
	_, err := h.SaveRun(ctx, RunRecord{ID: "big", CategoryPath: "Robes", Gender: "femme", Payload: payload})
	require.NoError(t, err)

	var stored int
	require.NoError(t, h.db.conn.QueryRow("SELECT LENGTH(payload) FROM runs WHERE id = 'big'").Scan(&stored))
	assert.Less(t, stored, len(payload)/4)

	rec, err := h.LatestRun(ctx, "Robes", "femme")
	require.NoError(t, err)
	assert.Equal(t, payload, rec.Payload)
}
