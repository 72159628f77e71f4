package lifecycle

import (
	"fmt"
	"math"
	"time"
)

// StageWeight is one row of the demo stage table.
type StageWeight struct {
	Stage  Stage   `yaml:"stage" json:"stage"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// DemoTuning holds the constants used to simulate a lifecycle for demo cases.
// The values are product tuning, not derived from real case data.
type DemoTuning struct {
	// Weights is walked in order; the first stage whose running total reaches
	// the normalised hash wins.
	Weights []StageWeight `yaml:"weights" json:"weights"`

	// MinProgress and ProgressBuckets place a deadline stage between
	// MinProgress and MinProgress+(ProgressBuckets-1)/100 of the way through.
	MinProgress     float64 `yaml:"minProgress" json:"minProgress"`
	ProgressBuckets uint32  `yaml:"progressBuckets" json:"progressBuckets"`

	// StartWindow bounds how long ago a no-deadline stage started.
	StartWindow time.Duration `yaml:"startWindow" json:"startWindow"`

	// ShowDeletedSlots out of ten hash buckets let a deleted demo case stay in
	// the explore feed.
	ShowDeletedSlots uint32 `yaml:"showDeletedSlots" json:"showDeletedSlots"`

	// AnchorDivisor splits a deadline stage into that many windows; inside a
	// window the derived timestamps do not move. No-deadline stages use
	// NoDeadlineAnchor instead.
	AnchorDivisor    int64         `yaml:"anchorDivisor" json:"anchorDivisor"`
	NoDeadlineAnchor time.Duration `yaml:"noDeadlineAnchor" json:"noDeadlineAnchor"`
}

// DefaultDemoTuning returns the stock demo table.
func DefaultDemoTuning() DemoTuning {
	return DemoTuning{
		Weights: []StageWeight{
			{Stage: StageAIVerification, Weight: 0.10},
			{Stage: StagePartiesNotified, Weight: 0.10},
			{Stage: StagePublished, Weight: 0.20},
			{Stage: StageEvidenceArguments, Weight: 0.20},
			{Stage: StageCooling, Weight: 0.10},
			{Stage: StageVoting, Weight: 0.15},
			{Stage: StageVerdictKept, Weight: 0.10},
			{Stage: StageVerdictDeleted, Weight: 0.05},
		},
		MinProgress:      0.10,
		ProgressBuckets:  70,
		StartWindow:      7 * 24 * time.Hour,
		ShowDeletedSlots: 3,
		AnchorDivisor:    10,
		NoDeadlineAnchor: 24 * time.Hour,
	}
}

const weightEpsilon = 1e-9

// Validate checks that the weight table covers the unit interval exactly once
// and that the other constants keep derived timestamps sane.
func (t DemoTuning) Validate() error {
	if len(t.Weights) == 0 {
		return fmt.Errorf("%w: empty weight table", ErrInvalidTuning)
	}
	var sum float64
	for _, w := range t.Weights {
		if !w.Stage.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidTuning, ErrUnknownStage, string(w.Stage))
		}
		if w.Weight < 0 {
			return fmt.Errorf("%w: negative weight for %s", ErrInvalidTuning, w.Stage)
		}
		sum += w.Weight
	}
	if math.Abs(sum-1) > weightEpsilon {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidTuning, sum)
	}
	if t.ProgressBuckets == 0 {
		return fmt.Errorf("%w: progressBuckets must be positive", ErrInvalidTuning)
	}
	if t.MinProgress < 0 || t.MinProgress+float64(t.ProgressBuckets-1)/100 >= 1 {
		return fmt.Errorf("%w: progress range must stay inside [0, 1)", ErrInvalidTuning)
	}
	if t.StartWindow <= 0 || t.NoDeadlineAnchor <= 0 {
		return fmt.Errorf("%w: startWindow and noDeadlineAnchor must be positive", ErrInvalidTuning)
	}
	if t.AnchorDivisor <= 0 {
		return fmt.Errorf("%w: anchorDivisor must be positive", ErrInvalidTuning)
	}
	if t.ShowDeletedSlots > 10 {
		return fmt.Errorf("%w: showDeletedSlots is out of 10", ErrInvalidTuning)
	}
	return nil
}
