package executor

import (
	"context"
	"testing"
	"time"

	"sweeper/internal/catalog"
	"sweeper/internal/dedupe"
	"sweeper/internal/services"
)

func buildPlan(t *testing.T, items []catalog.Item) *dedupe.Plan {
	t.Helper()
	opts := dedupe.DefaultOptions()
	opts.Workers = 2
	plan, err := dedupe.NewPlanner(opts, nil).BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func fingerprintTrio() []catalog.Item {
	return []catalog.Item{
		{ID: "a", DisplayName: "Song", SizeBytes: 10, Fingerprint: "fp"},
		{ID: "b", DisplayName: "Song", SizeBytes: 20, Fingerprint: "fp"},
		{ID: "c", DisplayName: "Song", SizeBytes: 30, Fingerprint: "fp"},
		{ID: "d", DisplayName: "Song", SizeBytes: 40, Fingerprint: "fp"},
	}
}

func TestDryRunMutatesNothing(t *testing.T) {
	items := fingerprintTrio()
	adapter := catalog.NewMemoryAdapter(items)
	plan := buildPlan(t, items)
	if plan.DuplicatesFound == 0 {
		t.Fatalf("scenario should produce duplicates")
	}

	result, err := New(adapter, 100, time.Second, nil).Execute(context.Background(), plan, ModeDryRun)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.ItemsRemoved != 0 {
		t.Errorf("ItemsRemoved = %d, want 0 in dry run", result.ItemsRemoved)
	}
	if adapter.TrashedCount() != 0 || adapter.LiveCount() != len(items) {
		t.Errorf("dry run mutated catalog: trashed=%d live=%d", adapter.TrashedCount(), adapter.LiveCount())
	}
	for _, removal := range result.Removals {
		if removal.Status != StatusWouldRemove {
			t.Errorf("removal status = %q, want would-remove", removal.Status)
		}
	}
}

func TestLiveExecutionRemovesAndRecovers(t *testing.T) {
	items := fingerprintTrio()
	adapter := catalog.NewMemoryAdapter(items)
	plan := buildPlan(t, items)

	result, err := New(adapter, 100, time.Second, nil).Execute(context.Background(), plan, ModeLive)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.ItemsRemoved != plan.DuplicatesFound {
		t.Errorf("ItemsRemoved = %d, want %d", result.ItemsRemoved, plan.DuplicatesFound)
	}
	if result.BytesRecovered != plan.SpaceRecoverableBytes {
		t.Errorf("BytesRecovered = %d, want %d", result.BytesRecovered, plan.SpaceRecoverableBytes)
	}
	if adapter.TrashedCount() != plan.DuplicatesFound {
		t.Errorf("TrashedCount = %d, want %d", adapter.TrashedCount(), plan.DuplicatesFound)
	}
	// The keeper survives.
	if adapter.LiveCount() != len(items)-plan.DuplicatesFound {
		t.Errorf("LiveCount = %d", adapter.LiveCount())
	}
}

func TestLivePartialFailureIsolation(t *testing.T) {
	items := fingerprintTrio()
	adapter := catalog.NewMemoryAdapter(items)
	adapter.FailTrash = func(itemID string) error {
		if itemID == "b" {
			return services.Wrap(services.ErrNotFound, "memory catalog", "move to trash", itemID, nil)
		}
		return nil
	}
	plan := buildPlan(t, items)
	if plan.DuplicatesFound != 3 {
		t.Fatalf("expected 3 duplicates, got %d", plan.DuplicatesFound)
	}

	result, err := New(adapter, 100, time.Second, nil).Execute(context.Background(), plan, ModeLive)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.ItemsRemoved != 2 {
		t.Errorf("ItemsRemoved = %d, want 2", result.ItemsRemoved)
	}
	if result.ItemsFailed != 1 {
		t.Errorf("ItemsFailed = %d, want 1", result.ItemsFailed)
	}
	var failed *Removal
	for i := range result.Removals {
		if result.Removals[i].Status == StatusFailed {
			failed = &result.Removals[i]
		}
	}
	if failed == nil {
		t.Fatalf("no failed removal recorded")
	}
	if failed.FailureKind != FailureNotFound {
		t.Errorf("FailureKind = %q, want not_found", failed.FailureKind)
	}
	if failed.Item.ID != "b" {
		t.Errorf("failed item = %q, want b", failed.Item.ID)
	}
}

func TestExecuteRejectsInconsistentPlan(t *testing.T) {
	item := catalog.Item{ID: "a", SizeBytes: 1}
	plan := &dedupe.Plan{
		RunID: "test",
		Groups: []dedupe.DuplicateGroup{{
			MatchType: dedupe.MatchFingerprint,
			Keeper:    item,
			Remove:    []catalog.Item{item},
		}},
	}
	adapter := catalog.NewMemoryAdapter([]catalog.Item{item})

	_, err := New(adapter, 100, time.Second, nil).Execute(context.Background(), plan, ModeLive)
	if err == nil {
		t.Fatalf("expected consistency error")
	}
	if adapter.TrashedCount() != 0 {
		t.Errorf("inconsistent plan must abort before any mutation")
	}
}

func TestExecuteRejectsUnknownMode(t *testing.T) {
	plan := &dedupe.Plan{RunID: "test"}
	_, err := New(catalog.NewMemoryAdapter(nil), 100, time.Second, nil).Execute(context.Background(), plan, Mode("maybe"))
	if err == nil {
		t.Fatalf("expected validation error for unknown mode")
	}
}

func TestExecuteCancellationReturnsPartialResult(t *testing.T) {
	items := fingerprintTrio()
	adapter := catalog.NewMemoryAdapter(items)
	plan := buildPlan(t, items)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	adapter.FailTrash = func(itemID string) error {
		calls++
		if calls == 1 {
			// Cancel mid-run; the current call still completes.
			cancel()
		}
		return nil
	}

	result, err := New(adapter, 100, time.Second, nil).Execute(ctx, plan, ModeLive)
	if err == nil {
		t.Fatalf("expected context error after cancellation")
	}
	if result == nil {
		t.Fatalf("cancellation must still return the partial result")
	}
	if result.ItemsRemoved != 1 {
		t.Errorf("ItemsRemoved = %d, want 1 completed before cancellation", result.ItemsRemoved)
	}
	skipped := 0
	for _, removal := range result.Removals {
		if removal.Status == StatusSkipped {
			skipped++
		}
	}
	if skipped != len(result.Removals)-1 {
		t.Errorf("remaining removals should be skipped, got %d of %d", skipped, len(result.Removals))
	}
}
