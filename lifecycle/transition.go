package lifecycle

import (
	"fmt"
	"time"
)

// Begin builds the explicit state of a case entering stage at the given time.
// The scheduler persists this on the case; Classify then returns it as is.
func Begin(stage Stage, at time.Time) (State, error) {
	cfg, err := PermissionsFor(stage)
	if err != nil {
		return State{}, err
	}
	st := State{Stage: stage, StageStartedAt: at.UTC()}
	if cfg.HasDeadline {
		ends := at.Add(cfg.Duration).UTC()
		st.StageEndsAt = &ends
		if stage.IsPrePublication() {
			pub := ends
			st.ScheduledPublicationAt = &pub
		}
	}
	return st, nil
}

var successors = map[Stage]Stage{
	StageAIVerification:    StagePartiesNotified,
	StagePartiesNotified:   StagePublished,
	StagePublished:         StageEvidenceArguments,
	StageEvidenceArguments: StageCooling,
	StageCooling:           StageVoting,
}

// Next returns the stage that follows stage on the timed path. VOTING has no
// single successor, the tally decides it (see Verdict). Verdicts are final.
func Next(stage Stage) (Stage, bool) {
	next, ok := successors[stage]
	return next, ok
}

// Verdict resolves a closed vote. Only a strict majority to delete removes a
// case; a tie or an empty ballot keeps it.
func Verdict(keep, remove int) (Stage, error) {
	if keep < 0 || remove < 0 {
		return "", fmt.Errorf("%w: negative vote count", ErrInvalidInput)
	}
	if remove > keep {
		return StageVerdictDeleted, nil
	}
	return StageVerdictKept, nil
}
