package dedupe

import (
	"context"
	"reflect"
	"testing"

	"sweeper/internal/catalog"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Workers = 2
	return opts
}

func TestBuildPlanEmptyCatalog(t *testing.T) {
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.ItemsScanned != 0 || plan.GroupsFound != 0 || len(plan.Groups) != 0 {
		t.Errorf("empty catalog should yield empty plan, got %+v", plan)
	}
	if plan.RunID == "" {
		t.Errorf("plan should carry a run id")
	}
}

func TestBuildPlanFingerprintGroup(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", DisplayName: "Power", SizeBytes: 10 << 20, Tags: []string{"rock"}, Fingerprint: "fp-1"},
		{ID: "b", DisplayName: "Power (Deluxe)", SizeBytes: 20 << 20, Tags: []string{"rock"}, Fingerprint: "fp-1"},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(plan.Groups))
	}
	group := plan.Groups[0]
	if group.MatchType != MatchFingerprint {
		t.Errorf("MatchType = %q, want fingerprint", group.MatchType)
	}
	if group.SimilarityScore != 100 {
		t.Errorf("SimilarityScore = %v, want 100", group.SimilarityScore)
	}
	// Tags tie, so the larger copy wins.
	if group.Keeper.ID != "b" {
		t.Errorf("keeper = %q, want the 20MB item", group.Keeper.ID)
	}
	if len(group.Remove) != 1 || group.Remove[0].ID != "a" {
		t.Errorf("remove set = %+v, want [a]", group.Remove)
	}
}

func TestBuildPlanUniqueFingerprintNeverGrouped(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", DisplayName: "Alpha Song", Fingerprint: "fp-unique"},
		{ID: "b", DisplayName: "Totally Different", Fingerprint: "fp-other"},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if got := plan.Breakdown[MatchFingerprint].Groups; got != 0 {
		t.Errorf("unique fingerprints formed %d groups, want 0", got)
	}
}

func TestBuildPlanFuzzyScenario(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", DisplayName: "Power", SizeBytes: 100},
		{ID: "b", DisplayName: "POWER", SizeBytes: 100},
		{ID: "c", DisplayName: "Powerful", SizeBytes: 100},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Groups) != 1 {
		t.Fatalf("expected exactly 1 group, got %d: %+v", len(plan.Groups), plan.Groups)
	}
	group := plan.Groups[0]
	if group.MatchType != MatchFuzzy {
		t.Errorf("MatchType = %q, want fuzzy", group.MatchType)
	}
	if group.SimilarityScore != 100 {
		t.Errorf("SimilarityScore = %v, want 100 for identical normalized names", group.SimilarityScore)
	}
	ids := map[string]bool{group.Keeper.ID: true}
	for _, item := range group.Remove {
		ids[item.ID] = true
	}
	if !ids["a"] || !ids["b"] || ids["c"] {
		t.Errorf("group should contain a and b only, got %v", ids)
	}
}

func TestBuildPlanStrategiesAreDisjoint(t *testing.T) {
	items := []catalog.Item{
		// Fingerprint pair whose names would also fuzzy-match.
		{ID: "a", DisplayName: "Night Drive", Fingerprint: "fp-1"},
		{ID: "b", DisplayName: "Night Drive", Fingerprint: "fp-1"},
		// Fuzzy pair.
		{ID: "c", DisplayName: "Sunrise"},
		{ID: "d", DisplayName: "Sunrise!"},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	seen := make(map[string]int)
	for _, group := range plan.Groups {
		for _, member := range group.Members() {
			seen[member.ID]++
		}
	}
	for id, count := range seen {
		if count > 1 {
			t.Errorf("item %s appears in %d groups, groups must be disjoint", id, count)
		}
	}
	if plan.Breakdown[MatchFingerprint].Groups != 1 {
		t.Errorf("fingerprint breakdown = %+v", plan.Breakdown[MatchFingerprint])
	}
	if plan.Breakdown[MatchFuzzy].Groups != 1 {
		t.Errorf("fuzzy breakdown = %+v", plan.Breakdown[MatchFuzzy])
	}
}

func TestBuildPlanNgramCatchesReorderedTitles(t *testing.T) {
	opts := testOptions()
	opts.FuzzyThreshold = 90 // keep the fuzzy pass out of the way
	items := []catalog.Item{
		{ID: "a", DisplayName: "Daft Punk - Around the World"},
		{ID: "b", DisplayName: "Around the World - Daft Punk"},
	}
	planner := NewPlanner(opts, nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Groups) != 1 {
		t.Fatalf("expected the reordered titles to group, got %d groups", len(plan.Groups))
	}
	if plan.Groups[0].MatchType != MatchNgram {
		t.Errorf("MatchType = %q, want ngram", plan.Groups[0].MatchType)
	}
}

func TestBuildPlanPunctuationOnlyNamesNeverCluster(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", DisplayName: "!!!"},
		{ID: "b", DisplayName: "???"},
		{ID: "c", DisplayName: "..."},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Groups) != 0 {
		t.Errorf("punctuation-only names must not cluster, got %+v", plan.Groups)
	}
}

func TestBuildPlanKeeperInvariant(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", DisplayName: "Echoes", SizeBytes: 10, Fingerprint: "fp"},
		{ID: "b", DisplayName: "Echoes", SizeBytes: 20, Fingerprint: "fp"},
		{ID: "c", DisplayName: "Echoes", SizeBytes: 30, Fingerprint: "fp"},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	for _, group := range plan.Groups {
		if len(group.Members()) < 2 {
			t.Errorf("group smaller than 2: %+v", group)
		}
		for _, item := range group.Remove {
			if item.ID == group.Keeper.ID {
				t.Errorf("keeper %s inside removal set", group.Keeper.ID)
			}
		}
	}
}

func TestBuildPlanSpaceRecoverableMatchesRemovals(t *testing.T) {
	items := []catalog.Item{
		{ID: "a", DisplayName: "Mirage", SizeBytes: 11, Fingerprint: "fp1"},
		{ID: "b", DisplayName: "Mirage", SizeBytes: 22, Fingerprint: "fp1"},
		{ID: "c", DisplayName: "Oasis", SizeBytes: 33},
		{ID: "d", DisplayName: "Oasis", SizeBytes: 44},
	}
	planner := NewPlanner(testOptions(), nil)
	plan, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	var want int64
	for _, group := range plan.Groups {
		for _, item := range group.Remove {
			want += item.SizeBytes
		}
	}
	if plan.SpaceRecoverableBytes != want {
		t.Errorf("SpaceRecoverableBytes = %d, want %d", plan.SpaceRecoverableBytes, want)
	}
	if want == 0 {
		t.Fatalf("scenario should produce removals")
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	items := []catalog.Item{
		{ID: "i1", DisplayName: "Blue Monday", SizeBytes: 5},
		{ID: "i2", DisplayName: "Blue Monday (Remastered)", SizeBytes: 9},
		{ID: "i3", DisplayName: "blue monday", SizeBytes: 7},
		{ID: "i4", DisplayName: "Bizarre Love Triangle", SizeBytes: 4},
		{ID: "i5", DisplayName: "Bizarre Love Triangle '94", SizeBytes: 6},
		{ID: "i6", DisplayName: "Temptation", SizeBytes: 3, Fingerprint: "fp-t"},
		{ID: "i7", DisplayName: "Temptation (Single Edit)", SizeBytes: 2, Fingerprint: "fp-t"},
	}
	planner := NewPlanner(testOptions(), nil)

	first, err := planner.BuildPlan(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := planner.BuildPlan(context.Background(), items)
		if err != nil {
			t.Fatalf("BuildPlan run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first.Groups, next.Groups) {
			t.Fatalf("groupings differ between runs:\nfirst: %+v\nnext:  %+v", first.Groups, next.Groups)
		}
	}
}

func TestBuildPlanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	planner := NewPlanner(testOptions(), nil)
	_, err := planner.BuildPlan(ctx, []catalog.Item{{ID: "a", DisplayName: "x", Fingerprint: "f"}})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
