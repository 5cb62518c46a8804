package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"sweeper/internal/catalog"
	"sweeper/internal/dedupe"
	"sweeper/internal/logging"
	"sweeper/internal/services"
)

// Mode selects between reporting and mutating execution.
type Mode string

const (
	ModeDryRun Mode = "dry-run"
	ModeLive   Mode = "live"
)

// RemovalStatus describes the outcome for one removal candidate.
type RemovalStatus string

const (
	StatusWouldRemove RemovalStatus = "would-remove"
	StatusRemoved     RemovalStatus = "removed"
	StatusFailed      RemovalStatus = "failed"
	StatusSkipped     RemovalStatus = "skipped"
)

// FailureKind classifies a failed removal.
type FailureKind string

const (
	FailureNotFound         FailureKind = "not_found"
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureTransient        FailureKind = "transient"
)

// Removal records the outcome for one removal candidate.
type Removal struct {
	Item        catalog.Item  `json:"item"`
	GroupIndex  int           `json:"group_index"`
	Status      RemovalStatus `json:"status"`
	FailureKind FailureKind   `json:"failure_kind,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Result aggregates the execution outcome for one plan.
type Result struct {
	RunID          string    `json:"run_id"`
	Mode           Mode      `json:"mode"`
	StartedAt      time.Time `json:"started_at"`
	ItemsRemoved   int       `json:"items_removed"`
	ItemsFailed    int       `json:"items_failed"`
	BytesRecovered int64     `json:"bytes_recovered"`
	Removals       []Removal `json:"removals"`
}

// ErrPlanInconsistent reports a plan whose keeper appears in its own removal
// set. The planner can never produce this; the check exists so a corrupted or
// hand-edited plan aborts before the first mutation.
var ErrPlanInconsistent = errors.New("plan inconsistent: keeper inside removal set")

// Executor applies plans against one catalog adapter.
type Executor struct {
	adapter        catalog.Adapter
	limiter        *rate.Limiter
	requestTimeout time.Duration
	logger         *slog.Logger
}

// New constructs an executor. requestsPerSecond bounds live trash calls;
// requestTimeout caps each individual adapter call.
func New(adapter catalog.Adapter, requestsPerSecond float64, requestTimeout time.Duration, logger *slog.Logger) *Executor {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		adapter:        adapter,
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// Execute applies the plan in the given mode.
//
// Cancellation stops new trash calls but lets the in-flight one finish; the
// partial result reflecting completed operations is returned alongside the
// context error. Execution against a stale plan is not idempotent, since
// items already trashed fail with not-found; callers must build a fresh plan
// before any repeat live run.
func (e *Executor) Execute(ctx context.Context, plan *dedupe.Plan, mode Mode) (*Result, error) {
	if plan == nil {
		return nil, services.Wrap(services.ErrValidation, "executor", "execute", "nil plan", nil)
	}
	if mode != ModeDryRun && mode != ModeLive {
		return nil, services.Wrap(services.ErrValidation, "executor", "execute", fmt.Sprintf("unknown mode %q", mode), nil)
	}
	if err := verifyPlan(plan); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     plan.RunID,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}

	for groupIdx, group := range plan.Groups {
		for _, item := range group.Remove {
			removal := Removal{Item: item, GroupIndex: groupIdx}
			switch {
			case mode == ModeDryRun:
				removal.Status = StatusWouldRemove
			case ctx.Err() != nil:
				removal.Status = StatusSkipped
			default:
				removal = e.trashOne(ctx, removal)
			}
			switch removal.Status {
			case StatusRemoved:
				result.ItemsRemoved++
				result.BytesRecovered += item.SizeBytes
			case StatusFailed:
				result.ItemsFailed++
			}
			result.Removals = append(result.Removals, removal)
		}
	}

	e.logger.Info("execution finished", logging.Args(
		logging.String("run_id", plan.RunID),
		logging.String("mode", string(mode)),
		logging.Int("items_removed", result.ItemsRemoved),
		logging.Int("items_failed", result.ItemsFailed),
		logging.Int64("bytes_recovered", result.BytesRecovered),
	)...)

	if err := ctx.Err(); err != nil && mode == ModeLive {
		return result, err
	}
	return result, nil
}

// trashOne performs one rate-limited, timeout-bounded trash call and
// classifies the outcome. Failures are recorded, never propagated; one bad
// item must not abort the batch.
func (e *Executor) trashOne(ctx context.Context, removal Removal) Removal {
	if err := e.limiter.Wait(ctx); err != nil {
		removal.Status = StatusSkipped
		return removal
	}

	callCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	err := e.adapter.MoveToTrash(callCtx, removal.Item.ID)
	cancel()
	if err == nil {
		removal.Status = StatusRemoved
		return removal
	}

	removal.Status = StatusFailed
	removal.FailureKind = classify(err)
	removal.Error = err.Error()
	e.logger.Warn("trash move failed", logging.Args(
		logging.String("item_id", removal.Item.ID),
		logging.String("item_name", removal.Item.DisplayName),
		logging.String("failure_kind", string(removal.FailureKind)),
		logging.Error(err),
	)...)
	return removal
}

// verifyPlan enforces the keeper-outside-removal-set invariant per group.
func verifyPlan(plan *dedupe.Plan) error {
	for i, group := range plan.Groups {
		for _, item := range group.Remove {
			if item.ID == group.Keeper.ID {
				return fmt.Errorf("%w: group %d keeper %s", ErrPlanInconsistent, i, group.Keeper.ID)
			}
		}
	}
	return nil
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return FailureNotFound
	case errors.Is(err, services.ErrPermissionDenied):
		return FailurePermissionDenied
	default:
		return FailureTransient
	}
}
