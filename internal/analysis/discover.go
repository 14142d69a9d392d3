package analysis

import (
	"context"
	"log/slog"
	"strings"

	"facettes/internal/catalog"
	"facettes/internal/query"
)

// discoveryProbes are appended to "<leaf> <gender>" to probe autocomplete.
var discoveryProbes = []string{"", " couleur", " taille", " style", " marque", " matière"}

// SuggestionSource returns raw autocomplete suggestions, nil on failure.
type SuggestionSource interface {
	FetchSuggestions(ctx context.Context, query string) []string
}

// Discovery is an autocomplete suggestion hinting at a facet value missing
// from the catalog.
type Discovery struct {
	Suggestion string `json:"suggestion"`
	Source     string `json:"source"`
}

// Discoverer mines autocomplete for facet values absent from the catalog.
type Discoverer struct {
	source SuggestionSource
	logger *slog.Logger
}

// NewDiscoverer creates a discoverer on source.
func NewDiscoverer(source SuggestionSource, logger *slog.Logger) *Discoverer {
	return &Discoverer{source: source, logger: logger}
}

// Discover probes autocomplete for path and gender and keeps suggestions
// whose extra words are all unknown to facets. Each suggestion is reported
// once, in probe order.
func (d *Discoverer) Discover(ctx context.Context, path, gender string, facets []catalog.Facet) ([]Discovery, error) {
	leaf := catalog.LeafName(path)
	d.logger.Info("Facet discovery started", "category", path, "gender", gender)

	known := make(map[string]bool)
	for _, f := range facets {
		for _, v := range f.Values {
			known[query.Lower(v)] = true
		}
	}

	drop := make(map[string]bool)
	for _, w := range strings.Split(query.Lower(leaf), " ") {
		drop[w] = true
	}
	for _, w := range strings.Split(query.Lower(gender), " ") {
		drop[w] = true
	}

	found := []Discovery{}
	seen := make(map[string]bool)
	for _, probe := range discoveryProbes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		source := leaf + " " + gender + probe

		for _, s := range d.source.FetchSuggestions(ctx, source) {
			normalized := query.Lower(strings.TrimSpace(s))
			if seen[normalized] || normalized == query.Lower(source) {
				continue
			}

			candidates := candidateWords(normalized, drop)
			if len(candidates) == 0 || anyKnown(candidates, known) {
				continue
			}
			seen[normalized] = true
			found = append(found, Discovery{Suggestion: s, Source: source})
		}
	}

	d.logger.Info("Facet discovery finished", "category", path, "gender", gender, "suggestions", len(found))
	return found, nil
}

func candidateWords(suggestion string, drop map[string]bool) []string {
	var words []string
	for _, w := range strings.Split(suggestion, " ") {
		w = strings.TrimSpace(w)
		if w != "" && !drop[w] {
			words = append(words, w)
		}
	}
	return words
}

func anyKnown(words []string, known map[string]bool) bool {
	for _, w := range words {
		if known[w] {
			return true
		}
	}
	return false
}
