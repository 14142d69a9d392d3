package analysis

import (
	"context"
	"reflect"
	"testing"

	"facettes/internal/catalog"
	"facettes/internal/slogutil"
)

type fakeSuggestions struct {
	answers map[string][]string
	probes  []string
}

func (f *fakeSuggestions) FetchSuggestions(_ context.Context, q string) []string {
	f.probes = append(f.probes, q)
	return f.answers[q]
}

func TestDiscover(t *testing.T) {
	source := &fakeSuggestions{answers: map[string][]string{
		"robes femme": {
			"robes femme",
			"robes femme rouge",
			"robes femme dentelle",
			"Robes Femme Dentelle",
		},
		"robes femme couleur": {"robes femme couleur", "robes femme couleur bordeaux"},
		"robes femme marque":  {"robes femme dentelle"},
	}}
	facets := []catalog.Facet{{Type: "couleur", Values: []string{"Rouge", "noire"}}}

	d := NewDiscoverer(source, slogutil.NewDiscardLogger())
	got, err := d.Discover(context.Background(), "vetements > robes", "femme", facets)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	wantSuggestions := []string{"robes femme dentelle", "robes femme couleur bordeaux"}
	var suggestions []string
	for _, g := range got {
		suggestions = append(suggestions, g.Suggestion)
	}
	if !reflect.DeepEqual(suggestions, wantSuggestions) {
		t.Errorf("suggestions = %v, want %v", suggestions, wantSuggestions)
	}
	if got[1].Source != "robes femme couleur" {
		t.Errorf("Source = %q", got[1].Source)
	}

	wantProbes := []string{
		"robes femme",
		"robes femme couleur",
		"robes femme taille",
		"robes femme style",
		"robes femme marque",
		"robes femme matière",
	}
	if !reflect.DeepEqual(source.probes, wantProbes) {
		t.Errorf("probes = %v", source.probes)
	}
}

func TestDiscover_NoSuggestions(t *testing.T) {
	d := NewDiscoverer(&fakeSuggestions{}, slogutil.NewDiscardLogger())
	got, err := d.Discover(context.Background(), "robes", "femme", nil)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Discover() = %v, want empty", got)
	}
}
