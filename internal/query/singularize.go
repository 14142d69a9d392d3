package query

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// invariable words end in s, x or z in the singular.
var invariable = setOf(
	"bras", "souris", "corps", "poids", "bois", "mois", "noix", "voix",
	"choix", "prix", "nez", "riz", "tapis", "avis", "brebis", "fois",
	"bas", "repas", "matelas", "tas", "verglas", "dos", "os", "repos",
	"fils", "radis", "paradis", "permis", "progrès", "succès", "accès",
	"excès", "décès", "palais", "marais", "relais", "engrais", "jus",
	"refus", "abus", "talus", "virus", "campus", "consensus", "processus",
)

// -aux plurals that do not come from -al
var auxExceptions = setOf("tuyaux", "noyaux", "boyaux", "joyaux")

// the only -oux plurals of -ou words
var ouxPlurals = setOf("bijoux", "cailloux", "choux", "genoux", "hiboux", "joujoux", "poux")

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func has(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// Lower applies French case folding.
func Lower(s string) string {
	return cases.Lower(language.French).String(s)
}

// Singularize returns the French singular of a lowercased, trimmed word.
// Empty input is returned unchanged.
func Singularize(word string) string {
	w := Lower(strings.TrimSpace(word))
	if w == "" {
		return word
	}

	switch {
	case has(invariable, w):
		return w
	case strings.HasSuffix(w, "eaux"):
		return strings.TrimSuffix(w, "x")
	case strings.HasSuffix(w, "aux") && !has(auxExceptions, w):
		return strings.TrimSuffix(w, "aux") + "al"
	case strings.HasSuffix(w, "oux") && has(ouxPlurals, w):
		return strings.TrimSuffix(w, "x")
	case strings.HasSuffix(w, "s") && utf8.RuneCountInString(w) > 2:
		return strings.TrimSuffix(w, "s")
	}
	return w
}
