package lifecycle

import "fmt"

// StepStatus is the rendering state of one tracker step.
type StepStatus string

const (
	StepComplete StepStatus = "complete"
	StepActive   StepStatus = "active"
	StepUpcoming StepStatus = "upcoming"
)

// TrackerStep is one position on the seven-step progress tracker.
type TrackerStep struct {
	Position int        `json:"position"`
	Stage    Stage      `json:"stage"`
	Label    string     `json:"label"`
	Status   StepStatus `json:"status"`
}

// trackerStages are the tracker positions; the last one stands for whichever
// verdict the case reaches.
var trackerStages = []Stage{
	StageAIVerification,
	StagePartiesNotified,
	StagePublished,
	StageEvidenceArguments,
	StageCooling,
	StageVoting,
	StageVerdictKept,
}

// Tracker lays out the progress tracker for s. Once a verdict is reached every
// step is complete and the last step carries the verdict actually reached.
func Tracker(s State) ([]TrackerStep, error) {
	if !s.Stage.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, string(s.Stage))
	}

	current := len(trackerStages) - 1
	for i, st := range trackerStages {
		if st == s.Stage {
			current = i
			break
		}
	}

	steps := make([]TrackerStep, 0, len(trackerStages))
	for i, st := range trackerStages {
		if i == len(trackerStages)-1 && s.Stage.IsTerminal() {
			st = s.Stage
		}
		step := TrackerStep{
			Position: i + 1,
			Stage:    st,
			Label:    stageConfigs[st].TrackerLabel,
			Status:   StepUpcoming,
		}
		switch {
		case i < current, s.Stage.IsTerminal():
			step.Status = StepComplete
		case i == current:
			step.Status = StepActive
		}
		steps = append(steps, step)
	}
	return steps, nil
}
