package cmd

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestDistance is the largest edit distance still worth suggesting.
const maxSuggestDistance = 3

// suggest returns the candidate closest to input, or "" when nothing is close.
// Subsequence matches ("curent" in "current") are ranked by sahilm/fuzzy;
// typos that are not subsequences fall back to edit distance.
func suggest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || len(candidates) == 0 {
		return ""
	}

	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}
	if matches := fuzzy.Find(input, lowered); len(matches) > 0 {
		best := matches[0]
		if levenshtein(input, best.Str) <= maxSuggestDistance {
			return candidates[best.Index]
		}
	}

	bestDist := maxSuggestDistance + 1
	bestMatch := ""
	for i, c := range lowered {
		if d := levenshtein(input, c); d < bestDist {
			bestDist = d
			bestMatch = candidates[i]
		}
	}
	return bestMatch
}

// suggestFlag is suggest for flag names; leading dashes are ignored when
// comparing but kept in the result.
func suggestFlag(unknown string, flagNames []string) string {
	stripped := strings.TrimLeft(unknown, "-")
	if stripped == "" {
		return ""
	}
	bare := make([]string, len(flagNames))
	for i, f := range flagNames {
		bare[i] = strings.TrimLeft(f, "-")
	}
	match := suggest(stripped, bare)
	if match == "" {
		return ""
	}
	for i, b := range bare {
		if b == match {
			return flagNames[i]
		}
	}
	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[len(b)]
}
