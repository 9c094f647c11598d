// Package similarity scores string similarity on a 0-100 scale.
//
// TokenSetRatio compares whitespace-delimited token sets so that word order
// and repeated words do not affect the score. Scores are truncated to whole
// numbers, matching the integer thresholds used by callers.
package similarity

import (
	"slices"
	"strings"
)

// TokenSetRatio returns the token set similarity of a and b in [0, 100].
//
// The shared tokens and the tokens unique to each side are sorted and joined,
// and the best of three normalized Indel similarities is returned: the two
// unique remainders against each other (each padded by the shared prefix), and
// the shared tokens against each side. When one token set contains the other
// and they share at least one token the score is 100. Empty input scores 0.
func TokenSetRatio(a, b string) int {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var intersect, diffAB, diffBA []string
	for t := range tokensA {
		if _, ok := tokensB[t]; ok {
			intersect = append(intersect, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range tokensB {
		if _, ok := tokensA[t]; !ok {
			diffBA = append(diffBA, t)
		}
	}

	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	slices.Sort(intersect)
	slices.Sort(diffAB)
	slices.Sort(diffBA)

	sect := []rune(strings.Join(intersect, " "))
	ab := []rune(strings.Join(diffAB, " "))
	ba := []rune(strings.Join(diffBA, " "))

	sectLen := len(sect)
	sep := 0
	if sectLen > 0 {
		sep = 1
	}

	sectABLen := sectLen + sep + len(ab)
	sectBALen := sectLen + sep + len(ba)

	best := normalized(indel(ab, ba), sectABLen+sectBALen)
	if sectLen == 0 {
		return best
	}

	best = max(best, normalized(sep+len(ab), sectLen+sectABLen))
	best = max(best, normalized(sep+len(ba), sectLen+sectBALen))
	return best
}

// Indel returns the insertion/deletion edit distance between a and b.
func Indel(a, b string) int {
	return indel([]rune(a), []rune(b))
}

func indel(a, b []rune) int {
	return len(a) + len(b) - 2*lcs(a, b)
}

// lcs is the longest common subsequence length using a single rolling row.
func lcs(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prev + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prev = cur
		}
	}
	return row[len(b)]
}

// normalized converts a distance over total length into a truncated score.
// Integer arithmetic keeps truncation exact.
func normalized(distance, total int) int {
	if total <= 0 {
		return 100
	}
	return 100 * (total - distance) / total
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
