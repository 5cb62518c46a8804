package dedupe

import (
	"runtime"
	"time"

	"sweeper/internal/catalog"
	"sweeper/internal/config"
)

// MatchType identifies the strategy that formed a duplicate group.
type MatchType string

const (
	MatchFingerprint MatchType = "fingerprint"
	MatchFuzzy       MatchType = "fuzzy"
	MatchNgram       MatchType = "ngram"
)

// MatchTypes lists all strategies in evaluation order.
var MatchTypes = []MatchType{MatchFingerprint, MatchFuzzy, MatchNgram}

// DuplicateGroup is a set of items judged to represent the same asset.
// Keeper is the member retained; Remove holds every other member in
// ascending id order.
//
// SimilarityScore is the percentage agreement between the two least similar
// members under the strategy that formed the group. Fuzzy and n-gram scores
// are different metrics and are not comparable across match types.
type DuplicateGroup struct {
	MatchType       MatchType      `json:"match_type"`
	SimilarityScore float64        `json:"similarity_score"`
	Keeper          catalog.Item   `json:"keeper"`
	Remove          []catalog.Item `json:"remove"`
}

// Members returns keeper plus removals, keeper first.
func (g DuplicateGroup) Members() []catalog.Item {
	out := make([]catalog.Item, 0, len(g.Remove)+1)
	out = append(out, g.Keeper)
	out = append(out, g.Remove...)
	return out
}

// RemovableBytes sums the sizes of the members slated for removal.
func (g DuplicateGroup) RemovableBytes() int64 {
	var total int64
	for _, item := range g.Remove {
		total += item.SizeBytes
	}
	return total
}

// Breakdown aggregates plan statistics for one match type.
type Breakdown struct {
	Groups     int   `json:"groups"`
	Duplicates int   `json:"duplicates"`
	Bytes      int64 `json:"bytes"`
}

// Plan is the immutable result of one full scan. Plans are created fresh per
// run and never merged across runs; a repeat live execution requires a fresh
// plan because the catalog has changed underneath the old one.
type Plan struct {
	RunID                 string                  `json:"run_id"`
	GeneratedAt           time.Time               `json:"generated_at"`
	ItemsScanned          int                     `json:"items_scanned"`
	GroupsFound           int                     `json:"groups_found"`
	DuplicatesFound       int                     `json:"duplicates_found"`
	SpaceRecoverableBytes int64                   `json:"space_recoverable_bytes"`
	ScanDuration          time.Duration           `json:"scan_duration"`
	Breakdown             map[MatchType]Breakdown `json:"breakdown"`
	Groups                []DuplicateGroup        `json:"groups"`
}

// Options carries the thresholds the similarity index and scorer consult.
type Options struct {
	FuzzyThreshold    float64
	NgramThreshold    float64
	NgramSize         int
	QualityMarkerTags []string
	SizeOutlierRatio  float64
	Workers           int
}

// DefaultOptions mirrors the config package defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Dedupe)
}

// OptionsFromConfig converts the config section into planner options.
func OptionsFromConfig(cfg config.Dedupe) Options {
	return Options{
		FuzzyThreshold:    cfg.FuzzyThreshold,
		NgramThreshold:    cfg.NgramThreshold,
		NgramSize:         cfg.NgramSize,
		QualityMarkerTags: append([]string(nil), cfg.QualityMarkerTags...),
		SizeOutlierRatio:  cfg.SizeOutlierRatio,
		Workers:           cfg.Workers,
	}
}

func (o Options) normalized() Options {
	if o.NgramSize < 2 {
		o.NgramSize = 3
	}
	if o.SizeOutlierRatio <= 1 {
		o.SizeOutlierRatio = 20
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}
