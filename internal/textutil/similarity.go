package textutil

// SimilarityRatio computes an edit-distance similarity between two strings on
// a 0-100 scale: 100 for identical input, 0 when every position differs.
// Comparison is rune-based, so folded multi-byte characters count once.
func SimilarityRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra := []rune(a)
	rb := []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 100
	}
	dist := levenshtein(ra, rb)
	return (1 - float64(dist)/float64(longest)) * 100
}

// levenshtein computes the edit distance with a two-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
