// Package dedupe implements the duplicate detection core: the similarity
// index, the quality scorer, and the planner that assembles removal plans.
//
// Detection runs three strategies in a fixed order, each only seeing items no
// earlier strategy claimed: exact fingerprint partitioning, fuzzy
// edit-distance matching over normalized names, and character n-gram overlap
// for title variants the fuzzy pass misses. Groups are connected components
// over pairwise similarity edges, merged with a union-find structure.
//
// Everything in this package is pure computation over read-only item
// snapshots. Plans never mutate the catalog; that is the executor's job.
package dedupe
