// Package cannibal flags pairs of indexed facets whose query sets overlap
// enough to compete for the same searches.
package cannibal

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultThreshold is the minimum similarity reported.
const DefaultThreshold = 0.6

// MaxCommonQueries bounds the sample of shared queries in an alert.
const MaxCommonQueries = 5

// Facet is an indexed facet or combination and its query texts.
type Facet struct {
	Name    string
	Queries []string
}

// Alert reports an overlapping pair.
type Alert struct {
	FacetA         string   `json:"facetA"`
	FacetB         string   `json:"facetB"`
	Similarity     float64  `json:"similarity"`
	CommonQueries  []string `json:"commonQueries"`
	Recommendation string   `json:"recommendation"`
}

// Detector compares query sets pairwise.
type Detector struct {
	threshold float64
}

// NewDetector creates a detector reporting pairs at or above threshold.
func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Threshold returns the minimum reported similarity.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect compares every unordered pair of facets, in input order, and
// returns the alerts sorted by decreasing similarity. Queries are compared
// lowercased.
func (d *Detector) Detect(facets []Facet) []Alert {
	sets := make([]querySet, len(facets))
	for i, f := range facets {
		sets[i] = newQuerySet(f.Queries)
	}

	var alerts []Alert
	for i := 0; i < len(facets); i++ {
		for j := i + 1; j < len(facets); j++ {
			sim := sets[i].jaccard(sets[j])
			if sim < d.threshold {
				continue
			}
			alerts = append(alerts, Alert{
				FacetA:         facets[i].Name,
				FacetB:         facets[j].Name,
				Similarity:     scalar.Round(sim, 3),
				CommonQueries:  sets[i].common(sets[j], MaxCommonQueries),
				Recommendation: Recommendation(sim),
			})
		}
	}

	sort.SliceStable(alerts, func(a, b int) bool {
		return alerts[a].Similarity > alerts[b].Similarity
	})
	return alerts
}

// Recommendation returns the advice for a similarity level.
func Recommendation(similarity float64) string {
	switch {
	case similarity >= 0.8:
		return "Risque élevé de cannibalisation. Envisager de fusionner ces facettes ou de rediriger l'une vers l'autre."
	case similarity >= 0.6:
		return "Chevauchement significatif. Différencier le contenu ou filtrer les requêtes communes."
	default:
		return "Chevauchement modéré à surveiller."
	}
}

// Jaccard returns |a∩b| / |a∪b| over the distinct elements of a and b, or
// 0 when both are empty.
func Jaccard(a, b []string) float64 {
	return newQuerySet(a).jaccard(newQuerySet(b))
}

// querySet keeps distinct lowercased queries in first-seen order.
type querySet struct {
	order   []string
	members map[string]struct{}
}

func newQuerySet(queries []string) querySet {
	s := querySet{members: make(map[string]struct{}, len(queries))}
	for _, q := range queries {
		q = strings.ToLower(q)
		if _, ok := s.members[q]; ok {
			continue
		}
		s.members[q] = struct{}{}
		s.order = append(s.order, q)
	}
	return s
}

func (s querySet) jaccard(other querySet) float64 {
	inter := 0
	for q := range s.members {
		if _, ok := other.members[q]; ok {
			inter++
		}
	}
	union := len(s.members) + len(other.members) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func (s querySet) common(other querySet, limit int) []string {
	out := []string{}
	for _, q := range s.order {
		if len(out) == limit {
			break
		}
		if _, ok := other.members[q]; ok {
			out = append(out, q)
		}
	}
	return out
}
