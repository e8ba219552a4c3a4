package locate

import "sort"

// closeMatches returns up to n candidates whose similarity to input is at
// least cutoff, best first. Similarity is the ratio of the longest common
// subsequence to the combined length, in [0,1].
func closeMatches(input string, candidates []string, n int, cutoff float64) []string {
	type scored struct {
		word  string
		ratio float64
		index int
	}

	matches := make([]scored, 0, 8)
	for i, cand := range candidates {
		r := similarity(input, cand)
		if r >= cutoff {
			matches = append(matches, scored{cand, r, i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].ratio != matches[j].ratio {
			return matches[i].ratio > matches[j].ratio
		}
		return matches[i].index < matches[j].index
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.word
	}
	return out
}

func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lcs := longestCommonSubsequence(ra, rb)
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
