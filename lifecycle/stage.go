// Package lifecycle classifies a case into one of the eight lifecycle stages and
// answers what each stage allows. It performs no I/O: every function takes the
// current time from its caller, so results are reproducible in tests.
package lifecycle

import (
	"fmt"
	"strings"
)

// Stage is one discrete phase of a case's lifecycle.
type Stage string

// The stages, in forward order.
const (
	StageAIVerification    Stage = "AI_VERIFICATION"
	StagePartiesNotified   Stage = "PARTIES_NOTIFIED"
	StagePublished         Stage = "PUBLISHED"
	StageEvidenceArguments Stage = "EVIDENCE_ARGUMENTS"
	StageCooling           Stage = "COOLING"
	StageVoting            Stage = "VOTING"
	StageVerdictKept       Stage = "VERDICT_KEPT"
	StageVerdictDeleted    Stage = "VERDICT_DELETED"
)

// Stages lists every stage in forward order.
var Stages = []Stage{
	StageAIVerification,
	StagePartiesNotified,
	StagePublished,
	StageEvidenceArguments,
	StageCooling,
	StageVoting,
	StageVerdictKept,
	StageVerdictDeleted,
}

// Valid reports whether s is one of the eight known stages.
func (s Stage) Valid() bool {
	_, ok := stageConfigs[s]
	return ok
}

// IsTerminal reports whether s is a verdict.
func (s Stage) IsTerminal() bool {
	return s == StageVerdictKept || s == StageVerdictDeleted
}

// IsPrePublication reports whether the case is not public yet in stage s.
func (s Stage) IsPrePublication() bool {
	return s == StageAIVerification || s == StagePartiesNotified
}

// ParseStage converts a stored or user supplied label into a Stage. Matching is
// case-insensitive and accepts spaces or dashes in place of underscores.
func ParseStage(v string) (Stage, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	s := Stage(norm)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, v)
	}
	return s, nil
}
