// Package matcher provides string similarity helpers used for fuzzy
// name resolution.
package matcher

// Distance returns the Levenshtein edit distance between a and b: the
// minimum number of single-rune insertions, deletions or substitutions
// needed to turn a into b. The full (len(a)+1) x (len(b)+1) table is
// computed.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	dp := make([][]int, len(ra)+1)
	for i := range dp {
		dp[i] = make([]int, len(rb)+1)
		dp[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = min(
				dp[i-1][j]+1,      // deletion
				dp[i][j-1]+1,      // insertion
				dp[i-1][j-1]+cost, // substitution
			)
		}
	}

	return dp[len(ra)][len(rb)]
}
