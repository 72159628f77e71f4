package lifecycle

import (
	"fmt"
	"time"
)

// StageConfig is the static policy attached to a stage.
type StageConfig struct {
	Stage        Stage         `json:"stage"`
	TrackerLabel string        `json:"trackerLabel"`
	Duration     time.Duration `json:"-"`
	HasDeadline  bool          `json:"hasDeadline"`

	CommentsEnabled        bool `json:"commentsEnabled"`
	CommentsReadOnly       bool `json:"commentsReadOnly"`
	ReactionsEnabled       bool `json:"reactionsEnabled"`
	FollowPinEnabled       bool `json:"followPinEnabled"`
	ShowInDefendantProfile bool `json:"showInDefendantProfile"`

	// statusFormat takes the time left (or statusFallback) as its only verb.
	// Stages without a deadline use a fixed string.
	statusFormat   string
	statusFallback string
}

// DurationHours is the nominal stage length in whole hours, zero without a deadline.
func (c StageConfig) DurationHours() int {
	return int(c.Duration / time.Hour)
}

// StatusText renders the status line shown under the tracker. timeLeft is the
// output of RemainingTime and may be empty.
func (c StageConfig) StatusText(timeLeft string) string {
	if c.statusFallback == "" {
		return c.statusFormat
	}
	if timeLeft == "" {
		timeLeft = c.statusFallback
	}
	return fmt.Sprintf(c.statusFormat, timeLeft)
}

var stageConfigs = map[Stage]StageConfig{
	StageAIVerification: {
		Stage:            StageAIVerification,
		TrackerLabel:     "AI Verification",
		Duration:         72 * time.Hour,
		HasDeadline:      true,
		ReactionsEnabled: true,
		FollowPinEnabled: true,
		statusFormat:     "Status: AI Verification — %s left for case to be published",
		statusFallback:   "processing",
	},
	StagePartiesNotified: {
		Stage:            StagePartiesNotified,
		TrackerLabel:     "Parties Notified",
		Duration:         24 * time.Hour,
		HasDeadline:      true,
		ReactionsEnabled: true,
		FollowPinEnabled: true,
		statusFormat:     "Status: Plaintiff & Defendant Notified — case scheduled for publication — %s left",
		statusFallback:   "soon",
	},
	StagePublished: {
		Stage:                  StagePublished,
		TrackerLabel:           "Published",
		CommentsEnabled:        true,
		ReactionsEnabled:       true,
		FollowPinEnabled:       true,
		ShowInDefendantProfile: true,
		statusFormat:           "Status: Published",
	},
	StageEvidenceArguments: {
		Stage:                  StageEvidenceArguments,
		TrackerLabel:           "Evidence & Arguments",
		Duration:               72 * time.Hour,
		HasDeadline:            true,
		CommentsEnabled:        true,
		ReactionsEnabled:       true,
		FollowPinEnabled:       true,
		ShowInDefendantProfile: true,
		statusFormat:           "Status: Evidence & Arguments — %s left before Cooling Period",
		statusFallback:         "time remaining",
	},
	StageCooling: {
		Stage:                  StageCooling,
		TrackerLabel:           "Cooling Period",
		Duration:               24 * time.Hour,
		HasDeadline:            true,
		CommentsReadOnly:       true,
		ReactionsEnabled:       true,
		FollowPinEnabled:       true,
		ShowInDefendantProfile: true,
		statusFormat:           "Status: Cooling Period — %s left before Community Voting",
		statusFallback:         "time remaining",
	},
	StageVoting: {
		Stage:                  StageVoting,
		TrackerLabel:           "Community Voting",
		Duration:               72 * time.Hour,
		HasDeadline:            true,
		CommentsReadOnly:       true,
		ReactionsEnabled:       true,
		FollowPinEnabled:       true,
		ShowInDefendantProfile: true,
		statusFormat:           "Status: Voting in Progress — %s left",
		statusFallback:         "time remaining",
	},
	StageVerdictKept: {
		Stage:                  StageVerdictKept,
		TrackerLabel:           "Case Kept",
		CommentsEnabled:        true,
		ReactionsEnabled:       true,
		FollowPinEnabled:       true,
		ShowInDefendantProfile: true,
		statusFormat:           "Status: Case Kept",
	},
	StageVerdictDeleted: {
		Stage:            StageVerdictDeleted,
		TrackerLabel:     "Case Deleted",
		CommentsReadOnly: true,
		statusFormat:     "Status: Case Deleted",
	},
}

// PermissionsFor returns the static configuration for stage.
func PermissionsFor(stage Stage) (StageConfig, error) {
	c, ok := stageConfigs[stage]
	if !ok {
		return StageConfig{}, fmt.Errorf("%w: %q", ErrUnknownStage, string(stage))
	}
	return c, nil
}

// MustPermissions is PermissionsFor for stages that already passed validation,
// such as the output of Classify. It panics on an unknown stage.
func MustPermissions(stage Stage) StageConfig {
	c, err := PermissionsFor(stage)
	if err != nil {
		panic(err)
	}
	return c
}
