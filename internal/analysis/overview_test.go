package analysis

import (
	"testing"

	"facettes/internal/aggregate"
	"facettes/internal/scoring"
)

func outcome(score float64, decision scoring.Decision, zone scoring.Zone, volume int) *FacetOutcome {
	return &FacetOutcome{
		Result:  scoring.Result{ScoreContinuous: score, Decision: decision, Zone: zone},
		Metrics: aggregate.Metrics{VolumeTotal: volume},
	}
}

func TestSummarize(t *testing.T) {
	r := newResult("vetements > robes", "femme")
	r.add(LevelSimple, "couleur", outcome(72.5, scoring.Index, scoring.QuickWin, 4000))
	r.add(LevelSimple, "style", outcome(20, scoring.NoIndex, scoring.Ignorer, 100))
	r.add(LevelCombination, "couleur+style", outcome(80, scoring.Index, scoring.QuickWin, 900))
	r.add(LevelCombination, "couleur+coupe", outcome(80, scoring.Index, scoring.QuickWin, 10))

	got := Summarize(r)
	want := Overview{
		CategoryPath: "vetements > robes",
		Gender:       "femme",
		Facets:       4,
		Indexed:      3,
		NotIndexed:   1,
		MeanScore:    63.1,
		VolumeTotal:  5010,
		BestQuickWin: "couleur+style",
	}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(newResult("robes", "femme"))
	if got.Facets != 0 || got.MeanScore != 0 || got.BestQuickWin != "" {
		t.Errorf("Summarize(empty) = %+v", got)
	}
	if all := SummarizeAll(nil); len(all) != 0 {
		t.Errorf("SummarizeAll(nil) = %v", all)
	}
}
