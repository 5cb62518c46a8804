package dedupe

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sweeper/internal/catalog"
	"sweeper/internal/logging"
)

// Planner orchestrates the similarity index and the quality scorer into a
// removal plan. It is read-only: building a plan never touches the catalog.
type Planner struct {
	opts   Options
	scorer *Scorer
	logger *slog.Logger
}

// NewPlanner constructs a planner. A nil logger disables logging.
func NewPlanner(opts Options, logger *slog.Logger) *Planner {
	opts = opts.normalized()
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{
		opts:   opts,
		scorer: NewScorer(opts.QualityMarkerTags, opts.SizeOutlierRatio),
		logger: logger,
	}
}

// BuildPlan scans items and assembles the removal plan. It succeeds for any
// item slice, including empty, and only fails when the context is cancelled
// mid-scan. Strategies run in fixed order and each only sees items no
// earlier strategy claimed.
func (p *Planner) BuildPlan(ctx context.Context, items []catalog.Item) (*Plan, error) {
	start := time.Now()

	snapshot := make([]catalog.Item, len(items))
	copy(snapshot, items)
	catalog.SortByID(snapshot)

	strategies := []strategy{
		fingerprintStrategy{},
		fuzzyStrategy{threshold: p.opts.FuzzyThreshold, workers: p.opts.Workers},
		ngramStrategy{threshold: p.opts.NgramThreshold, size: p.opts.NgramSize, workers: p.opts.Workers},
	}

	plan := &Plan{
		RunID:        uuid.NewString(),
		GeneratedAt:  start.UTC(),
		ItemsScanned: len(snapshot),
		Breakdown:    make(map[MatchType]Breakdown, len(strategies)),
	}

	claimed := make(map[string]struct{})
	remaining := snapshot
	for _, strat := range strategies {
		groups, err := strat.claim(ctx, remaining)
		if err != nil {
			return nil, err
		}
		stats := Breakdown{}
		for _, cand := range groups {
			group := p.finalizeGroup(cand)
			plan.Groups = append(plan.Groups, group)
			stats.Groups++
			stats.Duplicates += len(group.Remove)
			stats.Bytes += group.RemovableBytes()
			for _, member := range cand.members {
				claimed[member.ID] = struct{}{}
			}
		}
		plan.Breakdown[strat.matchType()] = stats

		p.logger.Info("similarity strategy evaluated", logging.Args(
			logging.String("strategy", strat.name()),
			logging.Int("candidates", len(remaining)),
			logging.Int("groups", stats.Groups),
			logging.Int("duplicates", stats.Duplicates),
			logging.Int64("bytes", stats.Bytes),
		)...)

		remaining = unclaimedItems(remaining, claimed)
	}

	for _, stats := range plan.Breakdown {
		plan.GroupsFound += stats.Groups
		plan.DuplicatesFound += stats.Duplicates
		plan.SpaceRecoverableBytes += stats.Bytes
	}
	plan.ScanDuration = time.Since(start)

	p.logger.Info("plan assembled", logging.Args(
		logging.String("run_id", plan.RunID),
		logging.Int("items_scanned", plan.ItemsScanned),
		logging.Int("groups_found", plan.GroupsFound),
		logging.Int("duplicates_found", plan.DuplicatesFound),
		logging.Int64("space_recoverable_bytes", plan.SpaceRecoverableBytes),
		logging.Duration("scan_duration", plan.ScanDuration),
	)...)
	return plan, nil
}

// finalizeGroup assigns the keeper and splits the remaining members into the
// removal set, preserving ascending id order.
func (p *Planner) finalizeGroup(cand candidateGroup) DuplicateGroup {
	keeper := p.scorer.PickKeeper(cand.members)
	remove := make([]catalog.Item, 0, len(cand.members)-1)
	for _, member := range cand.members {
		if member.ID != keeper.ID {
			remove = append(remove, member)
		}
	}
	return DuplicateGroup{
		MatchType:       cand.matchType,
		SimilarityScore: cand.score,
		Keeper:          keeper,
		Remove:          remove,
	}
}

func unclaimedItems(items []catalog.Item, claimed map[string]struct{}) []catalog.Item {
	out := items[:0]
	for _, item := range items {
		if _, ok := claimed[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out
}
