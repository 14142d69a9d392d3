package query

import "testing"

func TestSingularize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chapeaux", "chapeau"},
		{"animaux", "animal"},
		{"journaux", "journal"},
		{"bijoux", "bijou"},
		{"genoux", "genou"},
		{"souris", "souris"},
		{"robes", "robe"},
		{"Pantalons", "pantalon"},
		{"  Robes  ", "robe"},
		{"tuyaux", "tuyaux"},
		{"joyaux", "joyaux"},
		{"jaloux", "jaloux"},
		{"succès", "succès"},
		{"Accès", "accès"},
		{"os", "os"},
		{"as", "as"},
		{"bas", "bas"},
		{"jean", "jean"},
		{"chaussures", "chaussure"},
		{"écharpes", "écharpe"},
		{"", ""},
		{"   ", "   "},
	}
	for _, tt := range tests {
		if got := Singularize(tt.in); got != tt.want {
			t.Errorf("Singularize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
