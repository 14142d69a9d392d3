package main

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facettes/internal/analysis"
	"facettes/internal/catalog"
	"facettes/internal/config"
	ferrors "facettes/internal/errors"
	"facettes/internal/slogutil"
	"facettes/internal/testutil"
	"facettes/internal/trend"
)

const robesCatalog = `{
  "robes": {
    "genres": ["femme"],
    "facets": {
      "couleur": ["rouge", "noire"]
    }
  }
}`

func newTestEnv(t *testing.T, semrushURL, suggestURL string) *environment {
	t.Helper()

	dataDir := testutil.DataDir(t, robesCatalog)
	cfg := config.DefaultConfig()
	cfg.CatalogPath = testutil.CatalogFile
	cfg.Semrush.APIKey = "test-key"
	cfg.Semrush.Endpoint = semrushURL
	cfg.Semrush.RequestsPerSecond = 1000
	cfg.Suggest.Endpoint = suggestURL
	cfg.Suggest.RequestsPerSecond = 1000
	cfg.Logging.File = ""
	require.NoError(t, cfg.Validate())

	env := &environment{
		dataDir: dataDir,
		cfg:     cfg,
		logger:  slogutil.NewDiscardLogger(),
		factory: slogutil.NewLoggerFactory(dataDir, cfg, slog.LevelError),
	}
	t.Cleanup(env.close)
	return env
}

func TestEnvironment_RunEndToEnd(t *testing.T) {
	semrushSrv := testutil.NewSemrushServer(t, map[string]testutil.PhraseRow{
		"robe femme rouge": {Volume: 3000, CPC: 1.2, KD: 30},
		"robe femme noire": {Volume: 2000, CPC: 0.8, KD: 20},
	})
	suggestSrv := testutil.NewSuggestServer(t, map[string][]string{
		"robe femme rouge": {"robe femme rouge", "robe femme rouge longue"},
	})
	env := newTestEnv(t, semrushSrv.URL, suggestSrv.URL)
	ctx := context.Background()

	runner, err := env.newRunner()
	require.NoError(t, err)

	first, err := runner.Run(ctx, analysis.Request{Path: "robes", Gender: "femme"})
	require.NoError(t, err)

	couleur := first.SimpleFacets["couleur"]
	require.NotNil(t, couleur)
	assert.Equal(t, 5000, couleur.Metrics.VolumeTotal)
	assert.Equal(t, 0.5, couleur.Metrics.SuggestRate)
	assert.Len(t, couleur.Details, 2)
	assert.True(t, strings.HasSuffix(couleur.Score, "/100"))
	assert.Nil(t, couleur.Trend, "first run has no previous run to compare with")
	assert.Equal(t, 1, semrushSrv.Calls("robe femme rouge"))
	assert.Equal(t, 2, suggestSrv.Calls())

	second, err := runner.Run(ctx, analysis.Request{Path: "robes", Gender: "femme"})
	require.NoError(t, err)

	assert.Equal(t, 2, semrushSrv.TotalCalls(), "second run must be served from the cache")
	assert.Equal(t, 2, suggestSrv.Calls(), "second run must be served from the cache")
	require.NotNil(t, second.SimpleFacets["couleur"].Trend)
	assert.Equal(t, trend.Stable, second.SimpleFacets["couleur"].Trend.Volume.Icon)
	assert.Equal(t, 0.0, second.SimpleFacets["couleur"].Trend.Volume.Pct)

	history, err := env.openHistory()
	require.NoError(t, err)
	runs, err := history.Runs(ctx, "robes", "femme", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.RunID, runs[0].RunID, "newest run first")
	assert.Equal(t, first.RunID, runs[1].RunID)

	count, err := env.history.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEnvironment_ValidationBeforeNetwork(t *testing.T) {
	semrushSrv := testutil.NewSemrushServer(t, nil)
	suggestSrv := testutil.NewSuggestServer(t, nil)
	env := newTestEnv(t, semrushSrv.URL, suggestSrv.URL)

	runner, err := env.newRunner()
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), analysis.Request{Path: "robes", Gender: "homme"})
	require.Error(t, err)
	assert.True(t, ferrors.IsCode(err, ferrors.ValidationError))

	_, err = runner.Run(context.Background(), analysis.Request{
		Path:      "robes",
		Gender:    "femme",
		Selection: catalog.Selection{"couleur": {"verte"}},
	})
	require.Error(t, err)
	assert.True(t, ferrors.IsCode(err, ferrors.ValidationError))

	assert.Equal(t, 0, semrushSrv.TotalCalls())
	assert.Equal(t, 0, suggestSrv.Calls())
}

func TestEnvironment_Discover(t *testing.T) {
	semrushSrv := testutil.NewSemrushServer(t, nil)
	suggestSrv := testutil.NewSuggestServer(t, map[string][]string{
		"robes femme": {"robes femme", "robes femme dentelle", "robes femme rouge"},
	})
	env := newTestEnv(t, semrushSrv.URL, suggestSrv.URL)

	cat, err := env.loadCatalog()
	require.NoError(t, err)
	facets, err := cat.Facets("robes")
	require.NoError(t, err)

	gw, err := env.newGateway()
	require.NoError(t, err)
	found, err := analysis.NewDiscoverer(gw, env.logger).Discover(context.Background(), "robes", "femme", facets)
	require.NoError(t, err)

	assert.Equal(t, []analysis.Discovery{{Suggestion: "robes femme dentelle", Source: "robes femme"}}, found)
	assert.Equal(t, 6, suggestSrv.Calls(), "one call per probe")
	assert.Equal(t, 0, semrushSrv.TotalCalls())
}

func TestEnvironment_SelectionsMissingFile(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", "http://127.0.0.1:1")

	selections, err := env.loadSelections()
	require.NoError(t, err)
	assert.Empty(t, selections)

	env.cfg.SelectionsPath = ""
	selections, err = env.loadSelections()
	require.NoError(t, err)
	assert.Empty(t, selections)
}
