package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	ferrors "facettes/internal/errors"
)

var dressFacets = []Facet{
	{Type: "couleur", Values: []string{"rouge", "noire", "bleue"}},
	{Type: "style", Values: []string{"boheme", "chic"}},
	{Type: "longueur", Values: []string{"courte", "longue"}},
}

func TestLoadSelections_MissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	s, err := LoadSelections(filepath.Join(dir, "missing.toml"))
	if err != nil || s == nil || len(s) != 0 {
		t.Fatalf("LoadSelections(missing) = %v, %v", s, err)
	}

	empty := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err = LoadSelections(empty)
	if err != nil || len(s) != 0 {
		t.Fatalf("LoadSelections(empty) = %v, %v", s, err)
	}
}

func TestLoadSelections_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSelections(path); !ferrors.IsCode(err, ferrors.ValidationError) {
		t.Errorf("LoadSelections(bad) error = %v, want VALIDATION_ERROR", err)
	}
}

func TestSelections_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selections.toml")

	s := Selections{}
	s.Set("vetements > robes", "femme", Selection{"couleur": {"rouge", "noire"}})
	s.Set("vetements", "homme", Selection{"matiere": {"lin"}})
	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, err := LoadSelections(path)
	if err != nil {
		t.Fatalf("LoadSelections failed: %v", err)
	}
	if !reflect.DeepEqual(back, s) {
		t.Errorf("round trip = %v, want %v", back, s)
	}
}

func TestSelections_SetEmptyRemoves(t *testing.T) {
	s := Selections{}
	s.Set("vetements > robes", "femme", Selection{"couleur": {"rouge"}})
	s.Set("vetements > robes", "femme", nil)

	if _, ok := s.Get("vetements > robes", "femme"); ok {
		t.Error("empty selection should remove the entry")
	}
	if len(s) != 0 {
		t.Errorf("path entry should be dropped, got %v", s)
	}
}

func TestSelections_Filter(t *testing.T) {
	s := Selections{}
	s.Set("vetements > robes", "femme", Selection{
		"couleur": {"bleue", "rouge"},
		"inconnu": {"x"},
	})

	got := s.Filter("vetements > robes", "femme", dressFacets)
	want := []Facet{{Type: "couleur", Values: []string{"rouge", "bleue"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}

	if got := s.Filter("vetements > robes", "homme", dressFacets); !reflect.DeepEqual(got, dressFacets) {
		t.Errorf("no selection should return all facets, got %v", got)
	}
}

func TestSelection_ApplyFallsBack(t *testing.T) {
	sel := Selection{"couleur": {"violette"}}
	if got := sel.Apply(dressFacets); !reflect.DeepEqual(got, dressFacets) {
		t.Errorf("empty intersection should fall back to all facets, got %v", got)
	}
}

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		wantErr bool
	}{
		{"valid", Selection{"couleur": {"rouge"}, "style": {"chic"}}, false},
		{"unknown type", Selection{"taille": {"m"}}, true},
		{"unknown value", Selection{"couleur": {"verte"}}, true},
		{"empty values", Selection{"style": {}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(dressFacets, tt.sel)
			if tt.wantErr && !ferrors.IsCode(err, ferrors.ValidationError) {
				t.Errorf("ValidateSelection() error = %v, want VALIDATION_ERROR", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSelection() unexpected error: %v", err)
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection([]string{"couleur=rouge, noire", "style=chic", "couleur=bleue"})
	if err != nil {
		t.Fatalf("ParseSelection failed: %v", err)
	}
	want := Selection{
		"couleur": {"rouge", "noire", "bleue"},
		"style":   {"chic"},
	}
	if !reflect.DeepEqual(sel, want) {
		t.Errorf("ParseSelection() = %v, want %v", sel, want)
	}

	for _, bad := range []string{"couleur", "=rouge", "couleur=,"} {
		if _, err := ParseSelection([]string{bad}); !ferrors.IsCode(err, ferrors.ValidationError) {
			t.Errorf("ParseSelection(%q) error = %v, want VALIDATION_ERROR", bad, err)
		}
	}
}
