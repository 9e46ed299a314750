package services

import (
	"math"
	"testing"
)

func TestCalculateSimilarityTiers(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"exact match", "Pizza Hut", "Pizza Hut", 1.0},
		{"case insensitive", "pizza hut", "PIZZA HUT", 1.0},
		{"whitespace trimmed", "  Mike  ", "Mike", 1.0},
		{"stripped separators", "Pizza Hut", "PizzaHut", 0.95},
		{"hyphen stripped", "Coca-Cola", "Coca Cola", 0.95},
		{"containment", "New York", "New York City", 0.85},
		{"containment reversed", "Central Park Cafe", "Central Park", 0.85},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("calculateSimilarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCalculateSimilarityLevenshteinFallback(t *testing.T) {
	// "Mike" vs "Mick": distance 2 over max length 4.
	if got := calculateSimilarity("Mike", "Mick"); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("calculateSimilarity(Mike, Mick) = %v, want 0.5", got)
	}
	if got := calculateSimilarity("Mike", "Michael"); got >= mergeThreshold {
		t.Errorf("calculateSimilarity(Mike, Michael) = %v, want below merge threshold %v", got, mergeThreshold)
	}
	if got := calculateSimilarity("Sarah", "Zurich"); got >= mergeThreshold {
		t.Errorf("calculateSimilarity(Sarah, Zurich) = %v, want below merge threshold", got)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a    string
		b    string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tc := range cases {
		got := levenshteinDistance([]rune(tc.a), []rune(tc.b))
		if got != tc.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
