package dedupe

import (
	"context"

	"sweeper/internal/catalog"
	"sweeper/internal/textutil"
)

// fuzzyStrategy clusters items whose normalized names agree above an
// edit-distance similarity threshold. Items are bucketed by the first rune of
// the normalized key to bound the pairwise comparison; near-identical names
// share a first rune after normalization, so the bucket split costs little
// recall while avoiding a full O(n^2) pass over large catalogs.
type fuzzyStrategy struct {
	threshold float64
	workers   int
}

func (fuzzyStrategy) name() string         { return "fuzzy" }
func (fuzzyStrategy) matchType() MatchType { return MatchFuzzy }

func (s fuzzyStrategy) claim(ctx context.Context, items []catalog.Item) ([]candidateGroup, error) {
	keys := make([]string, len(items))
	byPrefix := make(map[string][]int)
	for i, item := range items {
		key := textutil.NormalizeKey(item.DisplayName)
		if key == "" {
			// A name that is all punctuation carries no signal; grouping
			// empty keys together would cluster unrelated items.
			continue
		}
		keys[i] = key
		prefix := string([]rune(key)[0])
		byPrefix[prefix] = append(byPrefix[prefix], i)
	}

	edges, err := compareBuckets(ctx, sortedBuckets(byPrefix), s.workers, func(a, b int) (float64, bool) {
		score := textutil.SimilarityRatio(keys[a], keys[b])
		return score, score >= s.threshold
	})
	if err != nil {
		return nil, err
	}
	return connectedGroups(items, edges, MatchFuzzy), nil
}
