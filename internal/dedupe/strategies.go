package dedupe

import (
	"context"
	"sort"

	"sweeper/internal/catalog"
)

// candidateGroup is a duplicate group before keeper selection.
type candidateGroup struct {
	matchType MatchType
	score     float64
	members   []catalog.Item
}

// strategy claims duplicate groups from the items no earlier strategy took.
// Implementations must be pure and must process input in a stable order so
// identical catalogs produce identical groupings.
type strategy interface {
	name() string
	matchType() MatchType
	claim(ctx context.Context, items []catalog.Item) ([]candidateGroup, error)
}

// fingerprintStrategy partitions items by exact fingerprint value. Items
// without a synced fingerprint fall through to the name-based strategies;
// a catalog with no fingerprints at all simply yields zero groups here,
// which is an expected condition, not a failure.
type fingerprintStrategy struct{}

func (fingerprintStrategy) name() string         { return "fingerprint" }
func (fingerprintStrategy) matchType() MatchType { return MatchFingerprint }

func (fingerprintStrategy) claim(ctx context.Context, items []catalog.Item) ([]candidateGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byPrint := make(map[string][]catalog.Item)
	for _, item := range items {
		if item.Fingerprint == "" {
			continue
		}
		byPrint[item.Fingerprint] = append(byPrint[item.Fingerprint], item)
	}

	prints := make([]string, 0, len(byPrint))
	for print, members := range byPrint {
		if len(members) >= 2 {
			prints = append(prints, print)
		}
	}
	sort.Strings(prints)

	groups := make([]candidateGroup, 0, len(prints))
	for _, print := range prints {
		members := byPrint[print]
		catalog.SortByID(members)
		groups = append(groups, candidateGroup{
			matchType: MatchFingerprint,
			score:     100,
			members:   members,
		})
	}
	return groups, nil
}

// similarityEdge records that items[a] and items[b] matched with the given
// score under one strategy's metric.
type similarityEdge struct {
	a, b  int
	score float64
}

// connectedGroups merges similarity edges into connected components and
// returns every component of size >= 2 as a candidate group. The group score
// is the minimum edge score inside the component, a conservative bound on how
// alike the least similar members are. Output is ordered by the smallest
// member id per group.
func connectedGroups(items []catalog.Item, edges []similarityEdge, matchType MatchType) []candidateGroup {
	if len(edges) == 0 {
		return nil
	}
	uf := newUnionFind(len(items))
	for _, e := range edges {
		uf.union(e.a, e.b)
	}

	minScore := make(map[int]float64, len(edges))
	for _, e := range edges {
		root := uf.find(e.a)
		if current, ok := minScore[root]; !ok || e.score < current {
			minScore[root] = e.score
		}
	}

	memberIdx := make(map[int][]int)
	for i := range items {
		root := uf.find(i)
		if _, ok := minScore[root]; ok {
			memberIdx[root] = append(memberIdx[root], i)
		}
	}

	roots := make([]int, 0, len(memberIdx))
	for root, idxs := range memberIdx {
		if len(idxs) >= 2 {
			roots = append(roots, root)
		}
	}
	// Items arrive sorted by id, so the smallest member index orders groups
	// by their lowest item id.
	sort.Slice(roots, func(a, b int) bool { return memberIdx[roots[a]][0] < memberIdx[roots[b]][0] })

	groups := make([]candidateGroup, 0, len(roots))
	for _, root := range roots {
		members := make([]catalog.Item, 0, len(memberIdx[root]))
		for _, idx := range memberIdx[root] {
			members = append(members, items[idx])
		}
		groups = append(groups, candidateGroup{
			matchType: matchType,
			score:     minScore[root],
			members:   members,
		})
	}
	return groups
}
