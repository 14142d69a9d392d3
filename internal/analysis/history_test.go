package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facettes/internal/cannibal"
	"facettes/internal/scoring"
	"facettes/internal/slogutil"
	"facettes/internal/storage"
	"facettes/internal/trend"
)

func newStoreHistory(t *testing.T) *StoreHistory {
	t.Helper()
	db, err := storage.Open(t.TempDir(), slogutil.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := storage.NewHistoryStore(db)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return NewStoreHistory(store)
}

func sampleResult(id string, at time.Time, volume int) *AnalysisResult {
	r := newResult("vetements > robes", "femme")
	r.RunID = id
	r.GeneratedAt = at
	o := outcome(61.2, scoring.Index, scoring.QuickWin, volume)
	o.Score = o.ScoreLabel()
	o.Details = []DetailRow{{Values: []string{"rouge"}, Query: "robe femme rouge", Volume: volume, Suggest: true}}
	o.Trend = &trend.Trend{Volume: trend.Variation{Pct: 12.5, Icon: trend.Up}, Score: trend.Variation{Icon: trend.Stable}}
	r.add(LevelSimple, "couleur", o)
	r.Alerts = []cannibal.Alert{{FacetA: "couleur", FacetB: "teinte", Similarity: 0.75, CommonQueries: []string{"robe femme rouge"}}}
	return r
}

func TestStoreHistory_SaveAndPrevious(t *testing.T) {
	ctx := context.Background()
	h := newStoreHistory(t)

	prev, err := h.Previous(ctx, "vetements > robes", "femme")
	require.NoError(t, err)
	assert.Nil(t, prev)

	t0 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, h.Save(ctx, sampleResult("run-1", t0, 100)))
	require.NoError(t, h.Save(ctx, sampleResult("run-2", t0.Add(time.Hour), 150)))

	prev, err = h.Previous(ctx, "vetements > robes", "femme")
	require.NoError(t, err)
	require.NotNil(t, prev)

	assert.Equal(t, "run-2", prev.RunID)
	assert.True(t, prev.GeneratedAt.Equal(t0.Add(time.Hour)))
	assert.Equal(t, []string{"couleur"}, prev.SimpleOrder)

	couleur := prev.SimpleFacets["couleur"]
	require.NotNil(t, couleur)
	assert.Equal(t, scoring.Index, couleur.Decision)
	assert.Equal(t, scoring.QuickWin, couleur.Zone)
	assert.Equal(t, "61.2/100", couleur.Score)
	assert.Equal(t, 150, couleur.Metrics.VolumeTotal)
	assert.Equal(t, trend.Up, couleur.Trend.Volume.Icon)
	assert.Len(t, prev.Alerts, 1)

	other, err := h.Previous(ctx, "vetements > robes", "homme")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestStoreHistory_RunsAndLatest(t *testing.T) {
	ctx := context.Background()
	h := newStoreHistory(t)

	t0 := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, h.Save(ctx, sampleResult(id, t0.Add(time.Duration(i)*time.Minute), 100*(i+1))))
	}
	men := sampleResult("m", t0, 10)
	men.Gender = "homme"
	require.NoError(t, h.Save(ctx, men))

	runs, err := h.Runs(ctx, "vetements > robes", "femme", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)

	latest, err := h.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "c", latest[0].RunID)
	assert.Equal(t, "m", latest[1].RunID)
}
