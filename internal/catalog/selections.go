package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	ferrors "facettes/internal/errors"
)

// Selection maps a facet type to the values chosen for analysis.
type Selection map[string][]string

// Selections stores a Selection per category path and gender:
//
//	["vetements > robes".femme]
//	couleur = ["rouge", "noire"]
type Selections map[string]map[string]Selection

// LoadSelections reads a selections file. A missing or empty file yields no
// selections.
func LoadSelections(path string) (Selections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Selections{}, nil
		}
		return nil, fmt.Errorf("failed to read selections: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Selections{}, nil
	}

	var s Selections
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, ferrors.Wrap(ferrors.ValidationError, "selections file is not valid TOML", err)
	}
	if s == nil {
		s = Selections{}
	}
	return s, nil
}

// Save writes the selections as TOML.
func (s Selections) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode selections: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Set records sel for path and gender; an empty selection removes it.
func (s Selections) Set(path, gender string, sel Selection) {
	if len(sel) == 0 {
		if byGender, ok := s[path]; ok {
			delete(byGender, gender)
			if len(byGender) == 0 {
				delete(s, path)
			}
		}
		return
	}
	if s[path] == nil {
		s[path] = make(map[string]Selection)
	}
	s[path][gender] = sel
}

// Get returns the selection of path and gender.
func (s Selections) Get(path, gender string) (Selection, bool) {
	sel, ok := s[path][gender]
	return sel, ok
}

// Filter restricts facets to the selection of path and gender. Types absent
// from the selection are dropped, values are intersected in catalog order,
// and an empty outcome falls back to the full set.
func (s Selections) Filter(path, gender string, facets []Facet) []Facet {
	sel, ok := s.Get(path, gender)
	if !ok {
		return facets
	}
	return sel.Apply(facets)
}

// Apply restricts facets to sel; see Selections.Filter.
func (sel Selection) Apply(facets []Facet) []Facet {
	var filtered []Facet
	for _, f := range facets {
		chosen, ok := sel[f.Type]
		if !ok {
			continue
		}
		want := make(map[string]bool, len(chosen))
		for _, v := range chosen {
			want[v] = true
		}
		var values []string
		for _, v := range f.Values {
			if want[v] {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			filtered = append(filtered, Facet{Type: f.Type, Values: values})
		}
	}
	if len(filtered) == 0 {
		return facets
	}
	return filtered
}

// ValidateSelection rejects types and values unknown to facets.
func ValidateSelection(facets []Facet, sel Selection) error {
	types := make([]string, 0, len(sel))
	for typ := range sel {
		types = append(types, typ)
	}
	sort.Strings(types)

	for _, typ := range types {
		var facet *Facet
		for i := range facets {
			if facets[i].Type == typ {
				facet = &facets[i]
				break
			}
		}
		if facet == nil {
			return ferrors.Newf(ferrors.ValidationError, "unknown facet type %q", typ)
		}
		if len(sel[typ]) == 0 {
			return ferrors.Newf(ferrors.ValidationError, "facet %q: empty selection", typ)
		}
		for _, v := range sel[typ] {
			if !contains(facet.Values, v) {
				return ferrors.Newf(ferrors.ValidationError, "facet %q: unknown value %q", typ, v)
			}
		}
	}
	return nil
}

// ParseSelection parses command-line specs of the form type=v1,v2.
// Repeated types accumulate.
func ParseSelection(specs []string) (Selection, error) {
	sel := Selection{}
	for _, spec := range specs {
		typ, values, ok := strings.Cut(spec, "=")
		typ = strings.TrimSpace(typ)
		if !ok || typ == "" {
			return nil, ferrors.Newf(ferrors.ValidationError, "invalid facet selection %q (want type=v1,v2)", spec)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" {
				sel[typ] = append(sel[typ], v)
			}
		}
		if len(sel[typ]) == 0 {
			return nil, ferrors.Newf(ferrors.ValidationError, "facet selection %q has no values", spec)
		}
	}
	return sel, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
