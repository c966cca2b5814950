package answer

import (
	"sort"
	"strings"
)

// ratioThreshold is the minimum similarity ratio accepted for long options.
const ratioThreshold = 0.88

// Normalize lower-cases s and collapses runs of whitespace into single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func isSeparator(r rune) bool {
	return r == ';' || r == ',' || r == '/'
}

// optionSet splits every accepted translation on ';', ',' and '/' and
// returns the normalized, non-empty parts.
func optionSet(accepted []string) map[string]struct{} {
	options := make(map[string]struct{})
	for _, text := range accepted {
		for _, part := range strings.FieldsFunc(text, isSeparator) {
			if normalized := Normalize(part); normalized != "" {
				options[normalized] = struct{}{}
			}
		}
	}
	return options
}

// Options returns the sorted option set built from the accepted translations.
func Options(accepted []string) []string {
	set := optionSet(accepted)
	out := make([]string, 0, len(set))
	for opt := range set {
		out = append(out, opt)
	}
	sort.Strings(out)
	return out
}

// IsCorrect reports whether answer matches one of the accepted translations,
// either exactly after normalization or within the fuzzy tolerance.
func IsCorrect(answer string, accepted []string) bool {
	normalized := Normalize(answer)
	if normalized == "" {
		return false
	}
	options := optionSet(accepted)
	if _, ok := options[normalized]; ok {
		return true
	}
	for opt := range options {
		if FuzzyMatch(normalized, opt) {
			return true
		}
	}
	return false
}

// FuzzyMatch compares two already normalized strings.
//
// Lengths are measured in runes. A length difference above 2 is rejected
// outright; short words (<= 6) tolerate one edit, medium words (<= 8) two
// edits, and longer words must reach a similarity ratio of 0.88.
func FuzzyMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	diff := len(ra) - len(rb)
	if diff < 0 {
		diff = -diff
	}
	if diff > 2 {
		return false
	}
	minLen := min(len(ra), len(rb))
	switch {
	case minLen <= 6:
		return editDistance(ra, rb) <= 1
	case minLen <= 8:
		return editDistance(ra, rb) <= 2
	default:
		return Ratio(a, b) >= ratioThreshold
	}
}

// EditDistance returns the Levenshtein distance between a and b.
func EditDistance(a, b string) int {
	return editDistance([]rune(a), []rune(b))
}

func editDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}
	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := range previous {
		previous[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(current[j-1]+1, previous[j]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(b)]
}

// Ratio returns 2*M/T where T is the total rune count of both strings and M
// is the number of runes in matching blocks. Blocks are found by taking the
// longest common block and recursing into the unmatched parts on either side.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	i, j, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestBlock finds the longest common contiguous block, preferring the
// earliest start in a, then in b.
func longestBlock(a, b []rune) (int, int, int) {
	bestI, bestJ, bestSize := 0, 0, 0
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			above := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prevDiag + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prevDiag = above
		}
	}
	return bestI, bestJ, bestSize
}
