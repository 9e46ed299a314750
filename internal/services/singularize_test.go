package services

import "testing"

func TestSingularizeSuffixRules(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"tigers", "tiger"},
		{"cats", "cat"},
		{"berries", "berry"},
		{"cities", "city"},
		{"wolves", "wolf"},
		{"boxes", "box"},
		{"churches", "church"},
		{"bushes", "bush"},
		{"buzzes", "buzz"},
		{"tomatoes", "tomato"},
		{"heroes", "hero"},
		{"classes", "class"},
	}
	for _, tc := range cases {
		if got := singularize(tc.in); got != tc.want {
			t.Errorf("singularize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSingularizeShortAndNonPlural(t *testing.T) {
	cases := []string{"bus", "gas", "is", "as", "a", "s", "dog", "running"}
	for _, in := range cases {
		if got := singularize(in); got != in {
			t.Errorf("singularize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestSingularizeIrregulars(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"children", "child"},
		{"people", "person"},
		{"men", "man"},
		{"women", "woman"},
		{"feet", "foot"},
		{"teeth", "tooth"},
		{"geese", "goose"},
		{"mice", "mouse"},
		{"sheep", "sheep"},
		{"species", "species"},
		{"Children", "Child"},
		{"People", "Person"},
	}
	for _, tc := range cases {
		if got := singularize(tc.in); got != tc.want {
			t.Errorf("singularize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSingularizePreservedPhrases(t *testing.T) {
	cases := []string{
		"wild goose chase",
		"red herring",
		"machine learning",
		"united states",
		"Wild Goose Chase",
		"United Nations",
	}
	for _, in := range cases {
		if got := singularize(in); got != in {
			t.Errorf("singularize(%q) = %q, want preserved unchanged", in, got)
		}
	}
}

func TestSingularizePhraseWordByWord(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"baseball cards", "baseball card"},
		{"birthday parties", "birthday party"},
	}
	for _, tc := range cases {
		if got := singularize(tc.in); got != tc.want {
			t.Errorf("singularize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSingularizeIdempotent(t *testing.T) {
	inputs := []string{
		"tigers", "berries", "wolves", "boxes", "children", "people",
		"wild goose chase", "baseball cards", "cat", "bus", "tomatoes",
	}
	for _, in := range inputs {
		once := singularize(in)
		twice := singularize(once)
		if once != twice {
			t.Errorf("singularize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
