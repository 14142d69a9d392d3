// Package query generates the search phrases analysed for each facet and
// facet combination of a category.
package query

import (
	"log/slog"
	"strings"

	"facettes/internal/catalog"
)

// DefaultTemplate is the phrase layout used when none is configured.
const DefaultTemplate = "{categorie} {genre} {facettes}"

// Query is one search phrase and the facet values it was built from.
type Query struct {
	SourceValues []string `json:"values"`
	Text         string   `json:"query"`
}

// CombinationSet holds the queries of one combination of facet types.
type CombinationSet struct {
	Key     string
	Types   []string
	Queries []Query
}

// Combinator builds queries from catalog facets.
type Combinator struct {
	template string
	logger   *slog.Logger
}

// NewCombinator creates a combinator for template. An empty template
// selects DefaultTemplate.
func NewCombinator(template string, logger *slog.Logger) *Combinator {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Combinator{template: template, logger: logger}
}

// Template returns the phrase template.
func (c *Combinator) Template() string {
	return c.template
}

// BuildPhrase renders the template for the leaf of path, gender and values.
func (c *Combinator) BuildPhrase(path, gender string, values []string) string {
	leaf := Singularize(lastSegment(path))
	r := strings.NewReplacer(
		"{categorie}", leaf,
		"{genre}", gender,
		"{facettes}", strings.Join(values, " "),
	)
	return strings.TrimSpace(r.Replace(c.template))
}

// SimpleQueries returns one query per value of a single facet type.
func (c *Combinator) SimpleQueries(path, gender, facetType string, values []string) []Query {
	queries := make([]Query, 0, len(values))
	for _, v := range values {
		vals := []string{v}
		queries = append(queries, Query{SourceValues: vals, Text: c.BuildPhrase(path, gender, vals)})
	}

	c.logger.Debug("Generated simple queries",
		"facet", facetType,
		"category", path,
		"gender", gender,
		"count", len(queries),
	)
	return queries
}

// CombinationQueries returns, for every combination of 2 up to maxDepth
// facet types, the queries of the Cartesian product of their values.
func (c *Combinator) CombinationQueries(path, gender string, facets []catalog.Facet, maxDepth int) []CombinationSet {
	types := make([]string, len(facets))
	byType := make(map[string][]string, len(facets))
	for i, f := range facets {
		types[i] = f.Type
		byType[f.Type] = f.Values
	}

	var sets []CombinationSet
	for _, combo := range Combinations(types, maxDepth) {
		lists := make([][]string, len(combo))
		for i, typ := range combo {
			lists[i] = byType[typ]
		}

		product := CartesianProduct(lists)
		queries := make([]Query, 0, len(product))
		for _, vals := range product {
			queries = append(queries, Query{SourceValues: vals, Text: c.BuildPhrase(path, gender, vals)})
		}

		key := CombinationKey(combo)
		sets = append(sets, CombinationSet{Key: key, Types: combo, Queries: queries})

		c.logger.Debug("Generated combination queries",
			"combination", key,
			"category", path,
			"gender", gender,
			"count", len(queries),
		)
	}
	return sets
}

// CombinationKey joins facet types with "+".
func CombinationKey(types []string) string {
	return strings.Join(types, "+")
}

// Combinations lists the subsets of types of size 2 to min(maxDepth,
// len(types)), by size then lexicographically by index.
func Combinations(types []string, maxDepth int) [][]string {
	n := len(types)
	maxSize := maxDepth
	if n < maxSize {
		maxSize = n
	}

	var out [][]string
	for k := 2; k <= maxSize; k++ {
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			combo := make([]string, k)
			for i, j := range idx {
				combo[i] = types[j]
			}
			out = append(out, combo)

			// rightmost index that can still advance
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				break
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
	return out
}

// CartesianProduct enumerates one value per list, last list fastest.
// Any empty list yields no tuples.
func CartesianProduct(lists [][]string) [][]string {
	if len(lists) == 0 {
		return nil
	}
	total := 1
	for _, l := range lists {
		if len(l) == 0 {
			return nil
		}
		total *= len(l)
	}

	out := make([][]string, 0, total)
	idx := make([]int, len(lists))
	for {
		tuple := make([]string, len(lists))
		for i, j := range idx {
			tuple[i] = lists[i][j]
		}
		out = append(out, tuple)

		i := len(lists) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(lists[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

func lastSegment(path string) string {
	segments := strings.Split(path, catalog.PathSeparator)
	return strings.TrimSpace(segments[len(segments)-1])
}
