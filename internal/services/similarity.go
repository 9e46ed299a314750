package services

import "strings"

var similarityStripper = strings.NewReplacer(" ", "", "\t", "", "-", "", "_", "")

// calculateSimilarity scores two names in [0,1]: exact case-insensitive match
// 1.0, match after stripping whitespace/hyphens/underscores 0.95, containment
// 0.85, otherwise normalized Levenshtein distance.
func calculateSimilarity(str1 string, str2 string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(str1))
	s2 := strings.ToLower(strings.TrimSpace(str2))

	if s1 == s2 {
		return 1.0
	}

	if similarityStripper.Replace(s1) == similarityStripper.Replace(s2) {
		return 0.95
	}

	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return 0.85
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

func levenshteinDistance(a []rune, b []rune) int {
	matrix := make([][]int, len(b)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(a)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(a); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			m := matrix[i-1][j-1]
			if matrix[i][j-1] < m {
				m = matrix[i][j-1]
			}
			if matrix[i-1][j] < m {
				m = matrix[i-1][j]
			}
			matrix[i][j] = m + 1
		}
	}

	return matrix[len(b)][len(a)]
}
