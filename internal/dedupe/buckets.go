package dedupe

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// compareBuckets runs the pairwise comparison inside each bucket across a
// bounded worker pool. Buckets share no state; workers append into a single
// collector behind a mutex, which is the only aggregation point. The edge
// order varies between runs but the downstream grouping is order-independent.
func compareBuckets(ctx context.Context, buckets [][]int, workers int, compare func(a, b int) (float64, bool)) ([]similarityEdge, error) {
	var (
		mu    sync.Mutex
		edges []similarityEdge
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		bucket := bucket
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var local []similarityEdge
			for i := 0; i < len(bucket); i++ {
				for j := i + 1; j < len(bucket); j++ {
					if score, ok := compare(bucket[i], bucket[j]); ok {
						local = append(local, similarityEdge{a: bucket[i], b: bucket[j], score: score})
					}
				}
			}
			mu.Lock()
			edges = append(edges, local...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return edges, nil
}

// sortedBuckets flattens a bucket map into slices ordered by bucket key, so
// bucket traversal is stable across runs. Item indices inside a bucket keep
// their insertion order, which follows ascending item id.
func sortedBuckets(byKey map[string][]int) [][]int {
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([][]int, 0, len(keys))
	for _, key := range keys {
		out = append(out, byKey[key])
	}
	return out
}
