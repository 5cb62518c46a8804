package dedupe

import (
	"context"
	"strconv"

	"sweeper/internal/catalog"
	"sweeper/internal/textutil"
)

// ngramBandWidth controls the gram-count banding used to bound pairwise
// comparison. Titles with wildly different lengths cannot clear the overlap
// threshold anyway, so they never need comparing.
const ngramBandWidth = 8

// ngramStrategy catches title variants the fuzzy pass misses: reordered
// words, added or dropped artist credits, punctuation-heavy names. It
// represents each normalized key as a set of overlapping character n-grams
// and connects pairs whose Jaccard overlap clears the threshold.
//
// The overlap percentage is a different unit from the fuzzy edit-distance
// ratio; the two thresholds are configured independently and their scores
// must not be compared across match types.
type ngramStrategy struct {
	threshold float64
	size      int
	workers   int
}

func (ngramStrategy) name() string         { return "ngram" }
func (ngramStrategy) matchType() MatchType { return MatchNgram }

func (s ngramStrategy) claim(ctx context.Context, items []catalog.Item) ([]candidateGroup, error) {
	grams := make([]textutil.GramSet, len(items))
	byBand := make(map[string][]int)
	for i, item := range items {
		key := textutil.NormalizeKey(item.DisplayName)
		if key == "" {
			continue
		}
		set := textutil.NewGramSet(key, s.size)
		if len(set) == 0 {
			continue
		}
		grams[i] = set
		band := strconv.Itoa(len(set) / ngramBandWidth)
		byBand[band] = append(byBand[band], i)
	}

	edges, err := compareBuckets(ctx, sortedBuckets(byBand), s.workers, func(a, b int) (float64, bool) {
		score := textutil.Jaccard(grams[a], grams[b])
		// A zero overlap never matches, even under a zero threshold.
		return score, score > 0 && score >= s.threshold
	})
	if err != nil {
		return nil, err
	}
	return connectedGroups(items, edges, MatchNgram), nil
}
