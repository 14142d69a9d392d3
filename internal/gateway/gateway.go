// Package gateway fronts the demand-metrics and autocomplete providers with
// the result cache and the rate limiter. Provider failures never propagate:
// they degrade to a missing sample or to "not suggested".
package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"facettes/internal/cache"
	"facettes/internal/metrics"
	"facettes/internal/providers/semrush"
)

// Endpoint names registered with the rate limiter.
const (
	EndpointDemand  = "semrush"
	EndpointSuggest = "google_suggest"
)

// Demand is the clamped demand measurement for one query.
type Demand struct {
	Volume int     `json:"volume"`
	CPC    float64 `json:"cpc"`
	KD     int     `json:"kd"`
}

// DemandProvider returns raw demand metrics for a phrase.
type DemandProvider interface {
	Phrase(ctx context.Context, phrase string) (*semrush.Metrics, error)
	Database() string
}

// SuggestProvider returns autocomplete suggestions for a query.
type SuggestProvider interface {
	Suggestions(ctx context.Context, query string) ([]string, error)
	Locale() (lang, country string)
}

// Pacer paces calls per named endpoint.
type Pacer interface {
	Register(name string, ratePerSecond float64) error
	Acquire(ctx context.Context, name string) error
}

// Rates holds the per-endpoint request rates.
type Rates struct {
	Demand  float64
	Suggest float64
}

// Gateway serves demand samples and suggest presence.
type Gateway struct {
	demand  DemandProvider
	suggest SuggestProvider
	store   cache.Store
	pacer   Pacer
	logger  *slog.Logger
}

// New creates a gateway and registers both endpoints with pacer.
func New(demand DemandProvider, suggest SuggestProvider, store cache.Store, pacer Pacer, rates Rates, logger *slog.Logger) (*Gateway, error) {
	if err := pacer.Register(EndpointDemand, rates.Demand); err != nil {
		return nil, err
	}
	if err := pacer.Register(EndpointSuggest, rates.Suggest); err != nil {
		return nil, err
	}
	return &Gateway{
		demand:  demand,
		suggest: suggest,
		store:   store,
		pacer:   pacer,
		logger:  logger,
	}, nil
}

// DemandKey is the cache key of a demand answer.
func DemandKey(database, query string) string {
	return "semrush:" + database + ":" + query
}

// SuggestKey is the cache key of a suggest-presence answer.
func SuggestKey(lang, country, query string) string {
	return "suggest:" + lang + ":" + country + ":" + query
}

// FetchDemand returns the demand of query, or nil when the provider failed.
// Failures are not cached.
func (g *Gateway) FetchDemand(ctx context.Context, query string) *Demand {
	key := DemandKey(g.demand.Database(), query)

	var cached Demand
	if g.cacheGet(ctx, EndpointDemand, key, &cached) {
		return &cached
	}

	if err := g.pacer.Acquire(ctx, EndpointDemand); err != nil {
		g.logger.Warn("demand pacing failed", "query", query, "error", err.Error())
		return nil
	}

	start := time.Now()
	m, err := g.demand.Phrase(ctx, query)
	metrics.ProviderLatency.WithLabelValues(EndpointDemand).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(EndpointDemand, "error").Inc()
		g.logger.Warn("demand provider failed", "query", query, "error", err.Error())
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(EndpointDemand, "ok").Inc()

	d := clampDemand(m)
	g.cacheSet(ctx, key, d)
	return &d
}

// IsSuggested reports whether query appears verbatim, after normalisation,
// among its own autocomplete suggestions. A provider failure yields false
// and is not cached.
func (g *Gateway) IsSuggested(ctx context.Context, query string) bool {
	lang, country := g.suggest.Locale()
	key := SuggestKey(lang, country, query)

	var cached bool
	if g.cacheGet(ctx, EndpointSuggest, key, &cached) {
		return cached
	}

	suggestions := g.FetchSuggestions(ctx, query)
	if suggestions == nil {
		return false
	}

	target := NormalizeQuery(query)
	found := false
	for _, s := range suggestions {
		if NormalizeQuery(s) == target {
			found = true
			break
		}
	}

	g.cacheSet(ctx, key, found)
	return found
}

// FetchSuggestions performs one paced autocomplete call. It returns nil on
// any failure and an empty slice when the provider has no suggestion.
func (g *Gateway) FetchSuggestions(ctx context.Context, query string) []string {
	if err := g.pacer.Acquire(ctx, EndpointSuggest); err != nil {
		g.logger.Warn("suggest pacing failed", "query", query, "error", err.Error())
		return nil
	}

	start := time.Now()
	suggestions, err := g.suggest.Suggestions(ctx, query)
	metrics.ProviderLatency.WithLabelValues(EndpointSuggest).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(EndpointSuggest, "error").Inc()
		g.logger.Warn("suggest provider failed", "query", query, "error", err.Error())
		return nil
	}
	metrics.ProviderRequests.WithLabelValues(EndpointSuggest, "ok").Inc()

	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions
}

// cacheGet decodes key into v. Store errors count as a miss.
func (g *Gateway) cacheGet(ctx context.Context, provider, key string, v interface{}) bool {
	ok, err := cache.GetJSON(ctx, g.store, key, v)
	switch {
	case err != nil:
		metrics.CacheRequests.WithLabelValues(provider, "error").Inc()
		g.logger.Warn("cache read failed", "key", key, "error", err.Error())
		return false
	case ok:
		metrics.CacheRequests.WithLabelValues(provider, "hit").Inc()
		g.logger.Debug("cache hit", "key", key)
		return true
	default:
		metrics.CacheRequests.WithLabelValues(provider, "miss").Inc()
		return false
	}
}

func (g *Gateway) cacheSet(ctx context.Context, key string, v interface{}) {
	if err := cache.SetJSON(ctx, g.store, key, v); err != nil {
		g.logger.Warn("cache write failed", "key", key, "error", err.Error())
	}
}

func clampDemand(m *semrush.Metrics) Demand {
	d := Demand{Volume: m.Volume, CPC: m.CPC, KD: m.KD}
	if d.Volume < 0 {
		d.Volume = 0
	}
	if d.CPC < 0 {
		d.CPC = 0
	}
	if d.KD < 0 {
		d.KD = 0
	}
	if d.KD > 100 {
		d.KD = 100
	}
	return d
}

// NormalizeQuery applies NFC, French lower-casing, trimming and whitespace
// collapsing so that "Robe  Été" and "robe été" compare equal.
func NormalizeQuery(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.French).String(s)
	return strings.Join(strings.Fields(s), " ")
}
