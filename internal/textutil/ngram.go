package textutil

// GramSet represents a string as a set of overlapping character n-grams.
type GramSet map[string]struct{}

// NewGramSet builds the n-gram set for text. Text shorter than n yields a
// single gram holding the whole string, so short titles still participate in
// overlap comparison. Empty text yields nil.
func NewGramSet(text string, n int) GramSet {
	if text == "" || n <= 0 {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= n {
		return GramSet{string(runes): {}}
	}
	grams := make(GramSet, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams[string(runes[i:i+n])] = struct{}{}
	}
	return grams
}

// Jaccard computes the set overlap between two gram sets on a 0-100 scale.
// Returns 0 when either set is empty.
func Jaccard(a, b GramSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersect := 0
	for gram := range small {
		if _, ok := large[gram]; ok {
			intersect++
		}
	}
	union := len(a) + len(b) - intersect
	if union == 0 {
		return 0
	}
	return float64(intersect) / float64(union) * 100
}
