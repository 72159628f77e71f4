package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// Record is the canonical case shape the engine reads. Storage adapters build
// it once at their boundary; the engine never sees raw stored documents.
type Record struct {
	CaseID    string
	CreatedAt time.Time
	// Lifecycle holds explicit, already-resolved lifecycle fields, typically
	// written by the scheduler. Nil when the case has none.
	Lifecycle *State
	// DemoRandomized marks seeded cases without a real lifecycle behind them.
	DemoRandomized bool
}

// State is a case's lifecycle position at one evaluation time. It is derived,
// not stored, except when the scheduler owns the lifecycle and persists it.
type State struct {
	Stage                    Stage      `json:"stage" bson:"stage"`
	StageStartedAt           time.Time  `json:"stageStartedAt" bson:"stageStartedAt"`
	StageEndsAt              *time.Time `json:"stageEndsAt,omitempty" bson:"stageEndsAt,omitempty"`
	ScheduledPublicationAt   *time.Time `json:"scheduledPublicationAt,omitempty" bson:"scheduledPublicationAt,omitempty"`
	IsDemoRandomized         bool       `json:"isDemoRandomized" bson:"isDemoRandomized"`
	ShowDeletedInExploreDemo bool       `json:"showDeletedInExploreDemo" bson:"showDeletedInExploreDemo"`
}

func (s State) clone() State {
	out := s
	if s.StageEndsAt != nil {
		t := *s.StageEndsAt
		out.StageEndsAt = &t
	}
	if s.ScheduledPublicationAt != nil {
		t := *s.ScheduledPublicationAt
		out.ScheduledPublicationAt = &t
	}
	return out
}

// Engine classifies cases. It is immutable after New and safe for concurrent use.
type Engine struct {
	tuning     DemoTuning
	cumulative []float64
}

// New builds an engine around a demo tuning table.
func New(tuning DemoTuning) (*Engine, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	t := tuning
	t.Weights = append([]StageWeight(nil), tuning.Weights...)

	cumulative := make([]float64, len(t.Weights))
	var running float64
	for i, w := range t.Weights {
		running += w.Weight
		cumulative[i] = running
	}
	return &Engine{tuning: t, cumulative: cumulative}, nil
}

var defaultEngine = func() *Engine {
	e, err := New(DefaultDemoTuning())
	if err != nil {
		panic(err)
	}
	return e
}()

// Default returns the engine built from DefaultDemoTuning.
func Default() *Engine {
	return defaultEngine
}

// Classify is Default().Classify.
func Classify(rec Record, now time.Time) (State, error) {
	return defaultEngine.Classify(rec, now)
}

// Tuning returns a copy of the engine's demo tuning.
func (e *Engine) Tuning() DemoTuning {
	t := e.tuning
	t.Weights = append([]StageWeight(nil), e.tuning.Weights...)
	return t
}

// Classify returns the lifecycle state of rec at now.
//
// Explicit lifecycle fields win and are returned as stored. Otherwise a real case
// is PUBLISHED since its creation, and a demo case gets a stage derived from its
// identifier.
func (e *Engine) Classify(rec Record, now time.Time) (State, error) {
	if strings.TrimSpace(rec.CaseID) == "" {
		return State{}, fmt.Errorf("%w: missing case id", ErrInvalidInput)
	}

	if rec.Lifecycle != nil {
		if !rec.Lifecycle.Stage.Valid() {
			return State{}, fmt.Errorf("case %s: %w: %q", rec.CaseID, ErrUnknownStage, string(rec.Lifecycle.Stage))
		}
		return rec.Lifecycle.clone(), nil
	}

	if !rec.DemoRandomized {
		if rec.CreatedAt.IsZero() {
			return State{}, fmt.Errorf("%w: case %s has no creation time", ErrInvalidInput, rec.CaseID)
		}
		return State{
			Stage:          StagePublished,
			StageStartedAt: rec.CreatedAt,
		}, nil
	}

	return e.demoState(rec.CaseID, now), nil
}

// selectStage walks the weight table with the normalised hash.
func (e *Engine) selectStage(h uint32) Stage {
	v := unitValue(h)
	for i, total := range e.cumulative {
		if v <= total {
			return e.tuning.Weights[i].Stage
		}
	}
	return e.tuning.Weights[len(e.tuning.Weights)-1].Stage
}

func (e *Engine) demoState(caseID string, now time.Time) State {
	h := Hash(caseID)
	stage := e.selectStage(h)
	cfg := MustPermissions(stage)

	st := State{
		Stage:            stage,
		IsDemoRandomized: true,
		// A deleted demo case may stay in the explore feed. This is deliberate
		// demo behaviour, not a visibility bug.
		ShowDeletedInExploreDemo: stage == StageVerdictDeleted && h%10 < e.tuning.ShowDeletedSlots,
	}

	if cfg.HasDeadline && cfg.Duration > 0 {
		stageMs := cfg.Duration.Milliseconds()
		anchor := anchorMillis(now, cfg.Duration/time.Duration(e.tuning.AnchorDivisor))
		progress := e.tuning.MinProgress + float64(h%e.tuning.ProgressBuckets)/100
		elapsed := int64(float64(stageMs) * progress)

		started := time.UnixMilli(anchor - elapsed).UTC()
		ends := time.UnixMilli(anchor - elapsed + stageMs).UTC()
		st.StageStartedAt = started
		st.StageEndsAt = &ends
		if stage.IsPrePublication() {
			pub := ends
			st.ScheduledPublicationAt = &pub
		}
		return st
	}

	anchor := anchorMillis(now, e.tuning.NoDeadlineAnchor)
	st.StageStartedAt = time.UnixMilli(anchor - int64(h)%e.tuning.StartWindow.Milliseconds()).UTC()
	return st
}

// anchorMillis truncates now to a multiple of window counted from the Unix epoch.
func anchorMillis(now time.Time, window time.Duration) int64 {
	ms := now.UnixMilli()
	w := window.Milliseconds()
	if w <= 0 {
		return ms
	}
	return ms - ((ms%w)+w)%w
}
