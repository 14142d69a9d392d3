package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"facettes/internal/cannibal"
	"facettes/internal/catalog"
	ferrors "facettes/internal/errors"
	"facettes/internal/metrics"
)

// Request selects what a run analyses. A non-empty Selection replaces the
// stored selection of the path and gender.
type Request struct {
	Path      string
	Gender    string
	Selection catalog.Selection
}

// Target is one category and gender pair.
type Target struct {
	Path   string
	Gender string
}

// Settings are the per-run parameters taken from configuration.
type Settings struct {
	MaxCombinationDepth int
	Thresholds          Thresholds
}

// Runner validates requests and runs the pipeline end to end.
type Runner struct {
	catalog    *catalog.Catalog
	selections catalog.Selections
	qualifier  *Qualifier
	detector   *cannibal.Detector
	history    History
	settings   Settings
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner creates a runner. selections may be nil.
func NewRunner(cat *catalog.Catalog, selections catalog.Selections, qualifier *Qualifier, detector *cannibal.Detector, history History, settings Settings, logger *slog.Logger) *Runner {
	if selections == nil {
		selections = catalog.Selections{}
	}
	return &Runner{
		catalog:    cat,
		selections: selections,
		qualifier:  qualifier,
		detector:   detector,
		history:    history,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
}

// Targets lists every path and gender of the catalog in document order.
func (r *Runner) Targets() []Target {
	var targets []Target
	for _, path := range r.catalog.ListPaths() {
		genres, err := r.catalog.Genres(path)
		if err != nil {
			continue
		}
		for _, g := range genres {
			targets = append(targets, Target{Path: path, Gender: g})
		}
	}
	return targets
}

// Resolve validates req against the catalog and returns the facets to
// analyse. All failures are VALIDATION_ERROR.
func (r *Runner) Resolve(req Request) ([]catalog.Facet, error) {
	node, err := r.catalog.ResolveNode(req.Path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ValidationError, fmt.Sprintf("unknown category path %q", req.Path), err)
	}
	if !node.HasGenre(req.Gender) {
		return nil, ferrors.Newf(ferrors.ValidationError, "unknown gender %q for %q (expected one of: %s)",
			req.Gender, req.Path, strings.Join(node.Genres, ", ")).
			WithDetails(map[string]interface{}{"path": req.Path, "genres": node.Genres})
	}

	if len(req.Selection) > 0 {
		if err := catalog.ValidateSelection(node.Facets, req.Selection); err != nil {
			return nil, err
		}
		return req.Selection.Apply(node.Facets), nil
	}
	return r.selections.Filter(req.Path, req.Gender, node.Facets), nil
}

// Run analyses one category and gender. Validation happens before any
// provider call. History failures are logged: a failed read disables
// trends and a failed save still returns the result.
func (r *Runner) Run(ctx context.Context, req Request) (result *AnalysisResult, err error) {
	start := r.now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RunDuration.WithLabelValues(status).Observe(r.now().Sub(start).Seconds())
	}()

	facets, err := r.Resolve(req)
	if err != nil {
		return nil, err
	}

	previous, err := r.history.Previous(ctx, req.Path, req.Gender)
	if err != nil {
		r.logger.Warn("Previous run unavailable, trends disabled",
			"category", req.Path,
			"gender", req.Gender,
			"error", err.Error(),
		)
		previous = nil
	}

	result, err = r.qualifier.Analyze(ctx, req.Path, req.Gender, facets, r.settings.MaxCombinationDepth, r.settings.Thresholds)
	if err != nil {
		return nil, err
	}

	result.ApplyTrends(previous)
	indexed := result.IndexedFacets()
	r.logger.Debug("Checking cannibalisation", "indexed", len(indexed), "threshold", r.detector.Threshold())
	result.Alerts = r.detector.Detect(indexed)
	if result.Alerts == nil {
		result.Alerts = []cannibal.Alert{}
	}
	metrics.CannibalisationAlerts.Add(float64(len(result.Alerts)))

	result.RunID = uuid.NewString()
	result.GeneratedAt = r.now().UTC()

	if saveErr := r.history.Save(ctx, result); saveErr != nil {
		r.logger.Warn("Run not saved, next run will have no trends",
			"run", result.RunID,
			"category", req.Path,
			"gender", req.Gender,
			"error", saveErr.Error(),
		)
		return result, nil
	}

	r.logger.Info("Run saved",
		"run", result.RunID,
		"category", req.Path,
		"gender", req.Gender,
		"alerts", len(result.Alerts),
	)
	return result, nil
}

// RunAll runs every target in order and stops at the first error.
func (r *Runner) RunAll(ctx context.Context) ([]*AnalysisResult, error) {
	var results []*AnalysisResult
	for _, t := range r.Targets() {
		res, err := r.Run(ctx, Request{Path: t.Path, Gender: t.Gender})
		if err != nil {
			return results, fmt.Errorf("%s / %s: %w", t.Path, t.Gender, err)
		}
		results = append(results, res)
	}
	return results, nil
}
