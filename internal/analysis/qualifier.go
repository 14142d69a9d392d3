package analysis

import (
	"context"
	"log/slog"
	"runtime"

	"facettes/internal/aggregate"
	"facettes/internal/catalog"
	"facettes/internal/gateway"
	"facettes/internal/metrics"
	"facettes/internal/query"
	"facettes/internal/scoring"
)

// DefaultBatchSize is the number of queries processed between GC hints.
const DefaultBatchSize = 50

// MetricsSource provides per-query demand and suggest presence. Failures
// surface as a nil demand and false.
type MetricsSource interface {
	FetchDemand(ctx context.Context, query string) *gateway.Demand
	IsSuggested(ctx context.Context, query string) bool
}

// Thresholds are the legacy score thresholds of each level.
type Thresholds struct {
	Simple      scoring.LegacyThresholds
	Combination scoring.LegacyThresholds
}

// Qualifier scores the facets of one category.
type Qualifier struct {
	source     MetricsSource
	combinator *query.Combinator
	scorer     *scoring.Engine
	batchSize  int
	logger     *slog.Logger
}

// NewQualifier creates a qualifier. A non-positive batchSize selects
// DefaultBatchSize.
func NewQualifier(source MetricsSource, combinator *query.Combinator, scorer *scoring.Engine, batchSize int, logger *slog.Logger) *Qualifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Qualifier{
		source:     source,
		combinator: combinator,
		scorer:     scorer,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Analyze qualifies every facet type of facets, then every combination of
// 2 to maxDepth types. It fails only when ctx is cancelled.
func (q *Qualifier) Analyze(ctx context.Context, path, gender string, facets []catalog.Facet, maxDepth int, th Thresholds) (*AnalysisResult, error) {
	q.logger.Info("Analysis started", "category", path, "gender", gender)

	result := newResult(path, gender)
	for _, f := range facets {
		queries := q.combinator.SimpleQueries(path, gender, f.Type, f.Values)
		outcome, err := q.qualify(ctx, LevelSimple, queries, th.Simple)
		if err != nil {
			return nil, err
		}
		result.add(LevelSimple, f.Type, outcome)
	}

	for _, set := range q.combinator.CombinationQueries(path, gender, facets, maxDepth) {
		q.logger.Info("Analysing combination", "combination", set.Key, "queries", len(set.Queries))
		outcome, err := q.qualify(ctx, LevelCombination, set.Queries, th.Combination)
		if err != nil {
			return nil, err
		}
		result.add(LevelCombination, set.Key, outcome)
	}

	q.logger.Info("Analysis finished",
		"category", path,
		"gender", gender,
		"facets", len(result.SimpleOrder),
		"combinations", len(result.CombinationOrder),
	)
	return result, nil
}

func (q *Qualifier) qualify(ctx context.Context, level Level, queries []query.Query, th scoring.LegacyThresholds) (*FacetOutcome, error) {
	details := make([]DetailRow, 0, len(queries))
	samples := make([]aggregate.Sample, 0, len(queries))

	for start := 0; start < len(queries); start += q.batchSize {
		if start > 0 {
			runtime.GC()
		}
		end := start + q.batchSize
		if end > len(queries) {
			end = len(queries)
		}

		for _, qu := range queries[start:end] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			demand := q.source.FetchDemand(ctx, qu.Text)
			suggested := q.source.IsSuggested(ctx, qu.Text)

			row := DetailRow{Values: qu.SourceValues, Query: qu.Text, Suggest: suggested}
			if demand != nil {
				row.Volume, row.CPC, row.KD = demand.Volume, demand.CPC, demand.KD
			} else {
				row.Status = StatusNoData
			}
			details = append(details, row)
			samples = append(samples, aggregate.Sample{
				Volume:    row.Volume,
				CPC:       row.CPC,
				KD:        row.KD,
				InSuggest: suggested,
			})
		}
	}

	m := aggregate.Aggregate(samples)
	res := q.scorer.Score(m, th)
	metrics.FacetsScored.WithLabelValues(string(level), res.Decision.String()).Inc()

	return &FacetOutcome{
		Result:         res,
		Score:          res.ScoreLabel(),
		Metrics:        m,
		Details:        details,
		Recommendation: scoring.Recommend(res.Zone, m, res.ScoreContinuous),
	}, nil
}
