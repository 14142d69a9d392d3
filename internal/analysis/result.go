// Package analysis runs the facet qualification pipeline for a category and
// gender: query generation, demand retrieval, aggregation, scoring, trends
// and cannibalisation alerts.
package analysis

import (
	"time"

	"facettes/internal/aggregate"
	"facettes/internal/cannibal"
	"facettes/internal/scoring"
	"facettes/internal/trend"
)

// StatusNoData marks a detail row whose demand request failed.
const StatusNoData = "no_data"

// Level distinguishes single facets from facet combinations.
type Level string

const (
	LevelSimple      Level = "simple"
	LevelCombination Level = "combination"
)

// DetailRow is the demand observed for one query.
type DetailRow struct {
	Values  []string `json:"values"`
	Query   string   `json:"query"`
	Volume  int      `json:"volume"`
	Suggest bool     `json:"suggest"`
	CPC     float64  `json:"cpc"`
	KD      int      `json:"kd"`
	Status  string   `json:"status,omitempty"`
}

// FacetOutcome is the verdict for one facet type or combination.
type FacetOutcome struct {
	scoring.Result

	// Score is ScoreContinuous formatted as "73.4/100".
	Score          string            `json:"score"`
	Metrics        aggregate.Metrics `json:"metrics"`
	Details        []DetailRow       `json:"details"`
	Trend          *trend.Trend      `json:"trend,omitempty"`
	Recommendation string            `json:"recommendation"`
}

// Snapshot returns the values trend comparison uses.
func (o *FacetOutcome) Snapshot() trend.Snapshot {
	return trend.Snapshot{VolumeTotal: o.Metrics.VolumeTotal, Score: o.ScoreContinuous}
}

// Queries returns the query texts of the detail rows.
func (o *FacetOutcome) Queries() []string {
	queries := make([]string, len(o.Details))
	for i, d := range o.Details {
		queries[i] = d.Query
	}
	return queries
}

// AnalysisResult is the outcome of one run. The order slices record the
// deterministic facet and combination order of the catalog.
type AnalysisResult struct {
	RunID            string                   `json:"runId"`
	CategoryPath     string                   `json:"categoryPath"`
	Gender           string                   `json:"gender"`
	GeneratedAt      time.Time                `json:"generatedAt"`
	SimpleFacets     map[string]*FacetOutcome `json:"simpleFacets"`
	Combinations     map[string]*FacetOutcome `json:"combinations"`
	SimpleOrder      []string                 `json:"simpleOrder"`
	CombinationOrder []string                 `json:"combinationOrder"`
	Alerts           []cannibal.Alert         `json:"alerts"`
}

func newResult(path, gender string) *AnalysisResult {
	return &AnalysisResult{
		CategoryPath: path,
		Gender:       gender,
		SimpleFacets: make(map[string]*FacetOutcome),
		Combinations: make(map[string]*FacetOutcome),
		Alerts:       []cannibal.Alert{},
	}
}

func (r *AnalysisResult) add(level Level, key string, o *FacetOutcome) {
	switch level {
	case LevelSimple:
		r.SimpleFacets[key] = o
		r.SimpleOrder = append(r.SimpleOrder, key)
	case LevelCombination:
		r.Combinations[key] = o
		r.CombinationOrder = append(r.CombinationOrder, key)
	}
}

// Each visits simple facets then combinations, in order. Returning false
// stops the walk.
func (r *AnalysisResult) Each(fn func(level Level, key string, o *FacetOutcome) bool) {
	for _, key := range r.SimpleOrder {
		if o, ok := r.SimpleFacets[key]; ok && !fn(LevelSimple, key, o) {
			return
		}
	}
	for _, key := range r.CombinationOrder {
		if o, ok := r.Combinations[key]; ok && !fn(LevelCombination, key, o) {
			return
		}
	}
}

// Snapshots returns the trend snapshots of one level, keyed like the result.
func (r *AnalysisResult) Snapshots(level Level) map[string]trend.Snapshot {
	outcomes := r.SimpleFacets
	if level == LevelCombination {
		outcomes = r.Combinations
	}
	snaps := make(map[string]trend.Snapshot, len(outcomes))
	for key, o := range outcomes {
		snaps[key] = o.Snapshot()
	}
	return snaps
}

// IndexedFacets lists the query sets of INDEX outcomes, simple facets first.
func (r *AnalysisResult) IndexedFacets() []cannibal.Facet {
	var facets []cannibal.Facet
	r.Each(func(_ Level, key string, o *FacetOutcome) bool {
		if o.Decision == scoring.Index {
			facets = append(facets, cannibal.Facet{Name: key, Queries: o.Queries()})
		}
		return true
	})
	return facets
}

// ApplyTrends annotates every outcome against previous. A nil previous run
// leaves trends unset.
func (r *AnalysisResult) ApplyTrends(previous *AnalysisResult) {
	if previous == nil {
		return
	}
	for _, level := range []Level{LevelSimple, LevelCombination} {
		trends := trend.Apply(r.Snapshots(level), previous.Snapshots(level))
		outcomes := r.SimpleFacets
		if level == LevelCombination {
			outcomes = r.Combinations
		}
		for key, t := range trends {
			t := t
			outcomes[key].Trend = &t
		}
	}
}
