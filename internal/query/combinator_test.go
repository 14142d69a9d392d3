package query

import (
	"reflect"
	"testing"

	"facettes/internal/catalog"
	"facettes/internal/slogutil"
)

func newTestCombinator(template string) *Combinator {
	return NewCombinator(template, slogutil.NewDiscardLogger())
}

func TestBuildPhrase(t *testing.T) {
	c := newTestCombinator("")

	tests := []struct {
		path   string
		gender string
		values []string
		want   string
	}{
		{"vetements > pantalons > shorts", "homme", []string{"jean"}, "short homme jean"},
		{"vetements > chapeaux", "femme", []string{"paille", "noir"}, "chapeau femme paille noir"},
		{"robes", "femme", nil, "robe femme"},
		{"Robes", "", []string{"rouge"}, "robe  rouge"},
	}
	for _, tt := range tests {
		if got := c.BuildPhrase(tt.path, tt.gender, tt.values); got != tt.want {
			t.Errorf("BuildPhrase(%q, %q, %v) = %q, want %q", tt.path, tt.gender, tt.values, got, tt.want)
		}
	}
}

func TestBuildPhrase_CustomTemplate(t *testing.T) {
	c := newTestCombinator("{facettes} {categorie} pour {genre}")
	got := c.BuildPhrase("vetements > robes", "femme", []string{"rouge"})
	if got != "rouge robe pour femme" {
		t.Errorf("BuildPhrase() = %q", got)
	}
	if c.Template() != "{facettes} {categorie} pour {genre}" {
		t.Errorf("Template() = %q", c.Template())
	}
}

func TestSimpleQueries(t *testing.T) {
	c := newTestCombinator("")
	got := c.SimpleQueries("vetements > robes", "femme", "couleur", []string{"rouge", "noire"})
	want := []Query{
		{SourceValues: []string{"rouge"}, Text: "robe femme rouge"},
		{SourceValues: []string{"noire"}, Text: "robe femme noire"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SimpleQueries() = %v, want %v", got, want)
	}
}

func TestCombinations(t *testing.T) {
	types := []string{"couleur", "matiere", "style"}

	got := Combinations(types, 2)
	want := [][]string{
		{"couleur", "matiere"},
		{"couleur", "style"},
		{"matiere", "style"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Combinations(depth 2) = %v, want %v", got, want)
	}

	got = Combinations(types, 5)
	if len(got) != 4 || !reflect.DeepEqual(got[3], types) {
		t.Errorf("Combinations(depth 5) = %v, want 3 pairs then the triple", got)
	}

	if got := Combinations(types, 1); len(got) != 0 {
		t.Errorf("Combinations(depth 1) = %v, want none", got)
	}
	if got := Combinations([]string{"couleur"}, 3); len(got) != 0 {
		t.Errorf("Combinations(single type) = %v, want none", got)
	}
}

func TestCombinations_Count(t *testing.T) {
	types := []string{"a", "b", "c", "d", "e", "f"}
	// C(6,2)+C(6,3)+C(6,4)
	if got := len(Combinations(types, 4)); got != 15+20+15 {
		t.Errorf("len(Combinations) = %d, want 50", got)
	}
}

func TestCartesianProduct(t *testing.T) {
	got := CartesianProduct([][]string{{"noir", "bleu"}, {"jean", "lin", "coton"}})
	want := [][]string{
		{"noir", "jean"}, {"noir", "lin"}, {"noir", "coton"},
		{"bleu", "jean"}, {"bleu", "lin"}, {"bleu", "coton"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CartesianProduct() = %v, want %v", got, want)
	}

	if got := CartesianProduct([][]string{{"a"}, {}}); got != nil {
		t.Errorf("empty list should yield nothing, got %v", got)
	}
	if got := CartesianProduct(nil); got != nil {
		t.Errorf("no lists should yield nothing, got %v", got)
	}
}

func TestCombinationQueries(t *testing.T) {
	c := newTestCombinator("")
	facets := []catalog.Facet{
		{Type: "couleur", Values: []string{"noir", "bleu"}},
		{Type: "matiere", Values: []string{"jean"}},
		{Type: "style", Values: []string{"slim"}},
	}

	sets := c.CombinationQueries("vetements > pantalons", "homme", facets, 2)
	keys := make([]string, len(sets))
	for i, s := range sets {
		keys[i] = s.Key
	}
	if want := []string{"couleur+matiere", "couleur+style", "matiere+style"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}

	first := sets[0]
	if !reflect.DeepEqual(first.Types, []string{"couleur", "matiere"}) {
		t.Errorf("Types = %v", first.Types)
	}
	want := []Query{
		{SourceValues: []string{"noir", "jean"}, Text: "pantalon homme noir jean"},
		{SourceValues: []string{"bleu", "jean"}, Text: "pantalon homme bleu jean"},
	}
	if !reflect.DeepEqual(first.Queries, want) {
		t.Errorf("Queries = %v, want %v", first.Queries, want)
	}
}

func TestCombinationQueries_Deterministic(t *testing.T) {
	c := newTestCombinator("")
	facets := []catalog.Facet{
		{Type: "style", Values: []string{"chic", "casual"}},
		{Type: "couleur", Values: []string{"noir"}},
		{Type: "coupe", Values: []string{"slim", "droit"}},
	}
	a := c.CombinationQueries("pantalons", "homme", facets, 3)
	b := c.CombinationQueries("pantalons", "homme", facets, 3)
	if !reflect.DeepEqual(a, b) {
		t.Error("combination generation should be deterministic")
	}
	if a[0].Key != "style+couleur" || a[len(a)-1].Key != "style+couleur+coupe" {
		t.Errorf("keys should follow catalog order, got first %q last %q", a[0].Key, a[len(a)-1].Key)
	}
}
