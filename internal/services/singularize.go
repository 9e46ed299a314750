package services

import "strings"

// Phrases that must never be singularized, matched case-insensitively and
// returned byte-identical.
var preservedPhrases = map[string]struct{}{
	"red herring":              {},
	"wild goose chase":         {},
	"piece of cake":            {},
	"break the ice":            {},
	"hit the nail on the head": {},
	"once in a blue moon":      {},
	"blessing in disguise":     {},
	"devil's advocate":         {},
	"elephant in the room":     {},
	"silver lining":            {},
	"the last straw":           {},
	"best of both worlds":      {},
	"see eye to eye":           {},
	"united states":            {},
	"united nations":           {},
	"social media":             {},
	"climate change":           {},
	"machine learning":         {},
	"artificial intelligence":  {},
	"quantum computing":        {},
	"supply chain":             {},
	"status quo":               {},
	"modus operandi":           {},
	"per se":                   {},
}

var irregularPlurals = map[string]string{
	"children": "child",
	"people":   "person",
	"men":      "man",
	"women":    "woman",
	"feet":     "foot",
	"teeth":    "tooth",
	"geese":    "goose",
	"mice":     "mouse",
	"oxen":     "ox",
	"sheep":    "sheep",
	"deer":     "deer",
	"fish":     "fish",
	"series":   "series",
	"species":  "species",
}

// singularize normalizes a word or phrase to singular form. Preserved phrases
// pass through unchanged; other phrases are singularized word by word.
func singularize(word string) string {
	trimmed := strings.TrimSpace(word)

	if _, ok := preservedPhrases[strings.ToLower(trimmed)]; ok {
		return trimmed
	}

	if strings.Contains(trimmed, " ") {
		parts := strings.Split(trimmed, " ")
		for i, p := range parts {
			parts[i] = singularizeWord(p)
		}
		return strings.Join(parts, " ")
	}

	return singularizeWord(trimmed)
}

func singularizeWord(word string) string {
	lower := strings.ToLower(word)

	if singular, ok := irregularPlurals[lower]; ok {
		return preserveCase(word, singular)
	}

	if len(word) <= 3 || !strings.HasSuffix(lower, "s") {
		return word
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(word) > 4:
		// berries -> berry, cities -> city
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ves"):
		// wolves -> wolf, calves -> calf
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(lower, "ses"),
		strings.HasSuffix(lower, "xes"),
		strings.HasSuffix(lower, "zes"),
		strings.HasSuffix(lower, "ches"),
		strings.HasSuffix(lower, "shes"):
		// boxes -> box, churches -> church, bushes -> bush
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "oes"):
		// tomatoes -> tomato, heroes -> hero
		return word[:len(word)-2]
	default:
		// tigers -> tiger, cats -> cat
		return word[:len(word)-1]
	}
}

func preserveCase(original string, converted string) string {
	if original == "" || converted == "" {
		return converted
	}
	first := original[0]
	if first >= 'A' && first <= 'Z' {
		return strings.ToUpper(converted[:1]) + converted[1:]
	}
	return converted
}
