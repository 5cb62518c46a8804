// Package executor applies a removal plan against a catalog adapter.
//
// Dry-run mode computes the outcome without any catalog mutation. Live mode
// walks the plan in order and moves each removal candidate to the trash,
// throttled against backend rate limits. One item's failure never aborts the
// batch; failures are classified and accumulated so operators can re-run
// against a fresh plan safely.
package executor
