package dedupe

import (
	"sort"

	"sweeper/internal/catalog"
)

// Scorer picks the member to keep from a duplicate group.
//
// The policy is an ordered tie-break chain: verified-provenance marker tags
// first, then larger size inside a plausibility band, then tag richness, and
// finally the lexicographically lowest id so repeated runs agree. The policy
// is a heuristic; marker tags and the outlier ratio come from configuration
// because quality judgments are domain-specific.
type Scorer struct {
	markerTags       []string
	sizeOutlierRatio float64
}

// NewScorer builds a scorer from the configured marker tags and outlier
// ratio. A ratio <= 1 falls back to the default.
func NewScorer(markerTags []string, sizeOutlierRatio float64) *Scorer {
	if sizeOutlierRatio <= 1 {
		sizeOutlierRatio = 20
	}
	return &Scorer{
		markerTags:       append([]string(nil), markerTags...),
		sizeOutlierRatio: sizeOutlierRatio,
	}
}

// PickKeeper returns the member to retain. The input must be non-empty;
// single-member input returns that member.
func (s *Scorer) PickKeeper(members []catalog.Item) catalog.Item {
	if len(members) == 1 {
		return members[0]
	}

	median := medianSize(members)
	ranked := make([]catalog.Item, len(members))
	copy(ranked, members)
	sort.Slice(ranked, func(a, b int) bool {
		ia, ib := ranked[a], ranked[b]
		ma, mb := s.hasMarker(ia), s.hasMarker(ib)
		if ma != mb {
			return ma
		}
		sa, sb := s.plausibleSize(ia, median), s.plausibleSize(ib, median)
		if sa != sb {
			return sa > sb
		}
		if len(ia.Tags) != len(ib.Tags) {
			return len(ia.Tags) > len(ib.Tags)
		}
		return ia.ID < ib.ID
	})
	return ranked[0]
}

func (s *Scorer) hasMarker(item catalog.Item) bool {
	for _, tag := range s.markerTags {
		if item.HasTag(tag) {
			return true
		}
	}
	return false
}

// plausibleSize returns the item's size, or 0 when the size is so far above
// the group median that it reads as a corrupt or mismatched file rather than
// a higher quality copy.
func (s *Scorer) plausibleSize(item catalog.Item, median int64) int64 {
	if median > 0 && float64(item.SizeBytes) > s.sizeOutlierRatio*float64(median) {
		return 0
	}
	return item.SizeBytes
}

func medianSize(members []catalog.Item) int64 {
	sizes := make([]int64, len(members))
	for i, m := range members {
		sizes[i] = m.SizeBytes
	}
	sort.Slice(sizes, func(a, b int) bool { return sizes[a] < sizes[b] })
	mid := len(sizes) / 2
	if len(sizes)%2 == 1 {
		return sizes[mid]
	}
	return (sizes[mid-1] + sizes[mid]) / 2
}
