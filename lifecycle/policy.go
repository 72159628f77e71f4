package lifecycle

import "fmt"

// Role is the viewer's relation to a case.
type Role string

const (
	RolePlaintiff Role = "plaintiff"
	RoleDefendant Role = "defendant"
	RoleVoter     Role = "voter"
	RoleCommunity Role = "community"
)

// ParseRole maps a request value to a Role. Empty means community.
func ParseRole(v string) (Role, error) {
	switch r := Role(v); r {
	case "":
		return RoleCommunity, nil
	case RolePlaintiff, RoleDefendant, RoleVoter, RoleCommunity:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, v)
}

// Action is something a viewer may try to do on a case page.
type Action string

const (
	ActionComment        Action = "comment"
	ActionSubmitEvidence Action = "submit_evidence"
	ActionVote           Action = "vote"
	ActionReact          Action = "react"
	ActionFollowPin      Action = "follow_pin"
	ActionViewTally      Action = "view_tally"
)

// Actions lists every action, in the order the case page renders them.
var Actions = []Action{
	ActionComment,
	ActionSubmitEvidence,
	ActionVote,
	ActionReact,
	ActionFollowPin,
	ActionViewTally,
}

// Allowed reports whether role may perform action while a case is in stage.
func Allowed(stage Stage, role Role, action Action) (bool, error) {
	cfg, err := PermissionsFor(stage)
	if err != nil {
		return false, err
	}

	switch action {
	case ActionComment:
		return cfg.CommentsEnabled && !cfg.CommentsReadOnly, nil
	case ActionSubmitEvidence:
		return stage == StageEvidenceArguments && (role == RolePlaintiff || role == RoleDefendant), nil
	case ActionVote:
		return stage == StageVoting && role == RoleVoter, nil
	case ActionReact:
		return cfg.ReactionsEnabled, nil
	case ActionFollowPin:
		return cfg.FollowPinEnabled, nil
	case ActionViewTally:
		// Counts stay hidden from everyone, voters included, until a verdict.
		return stage.IsTerminal(), nil
	}
	return false, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, string(action))
}

// Permissions evaluates every action for role in stage.
func Permissions(stage Stage, role Role) (map[Action]bool, error) {
	out := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		ok, err := Allowed(stage, role, a)
		if err != nil {
			return nil, err
		}
		out[a] = ok
	}
	return out, nil
}

// VisibleOnDefendantProfile reports whether the case is listed on the
// defendant's public profile.
func VisibleOnDefendantProfile(s State) bool {
	cfg, ok := stageConfigs[s.Stage]
	return ok && cfg.ShowInDefendantProfile
}

// VisibleInExplore reports whether the case appears in the explore feed.
// Deleted cases are suppressed, except demo cases flagged
// ShowDeletedInExploreDemo, which stay listed on purpose.
func VisibleInExplore(s State) bool {
	if s.Stage == StageVerdictDeleted {
		return s.ShowDeletedInExploreDemo
	}
	return s.Stage.Valid()
}
