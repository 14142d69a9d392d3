package analysis

import (
	"gonum.org/v1/gonum/floats/scalar"

	"facettes/internal/scoring"
)

// Overview summarises one run.
type Overview struct {
	CategoryPath string  `json:"categoryPath"`
	Gender       string  `json:"gender"`
	Facets       int     `json:"facets"`
	Indexed      int     `json:"indexed"`
	NotIndexed   int     `json:"notIndexed"`
	MeanScore    float64 `json:"meanScore"`
	VolumeTotal  int     `json:"volumeTotal"`
	// BestQuickWin is the highest scoring QUICK_WIN, first one on ties.
	BestQuickWin string `json:"bestQuickWin,omitempty"`
}

// Summarize counts decisions and totals over all outcomes of r.
func Summarize(r *AnalysisResult) Overview {
	o := Overview{CategoryPath: r.CategoryPath, Gender: r.Gender}

	var scoreSum, best float64
	r.Each(func(_ Level, key string, out *FacetOutcome) bool {
		o.Facets++
		switch out.Decision {
		case scoring.Index:
			o.Indexed++
		case scoring.NoIndex:
			o.NotIndexed++
		}
		scoreSum += out.ScoreContinuous
		o.VolumeTotal += out.Metrics.VolumeTotal
		if out.Zone == scoring.QuickWin && out.ScoreContinuous > best {
			best = out.ScoreContinuous
			o.BestQuickWin = key
		}
		return true
	})

	if o.Facets > 0 {
		o.MeanScore = scalar.Round(scoreSum/float64(o.Facets), 1)
	}
	return o
}

// SummarizeAll summarises each run.
func SummarizeAll(results []*AnalysisResult) []Overview {
	out := make([]Overview, len(results))
	for i, r := range results {
		out[i] = Summarize(r)
	}
	return out
}
