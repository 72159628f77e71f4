package lifecycle

import (
	"fmt"
	"time"
)

// TimeExpired is returned by RemainingTime once a deadline has passed.
const TimeExpired = "Time expired"

// RemainingTime renders the time left until endsAt using the two largest units:
// "2d 5h", "5h 12m" or "12m". A positive remainder under a minute renders as
// "<1m" so that only an actual expiry produces TimeExpired.
func RemainingTime(endsAt, now time.Time) string {
	diff := endsAt.Sub(now)
	if diff <= 0 {
		return TimeExpired
	}

	days := int64(diff / (24 * time.Hour))
	hours := int64(diff%(24*time.Hour)) / int64(time.Hour)
	minutes := int64(diff%time.Hour) / int64(time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "<1m"
	}
}

// Expired reports whether a state with a deadline has run past it at now.
func (s State) Expired(now time.Time) bool {
	return s.StageEndsAt != nil && !now.Before(*s.StageEndsAt)
}

// TimeLeft is RemainingTime for the state's deadline, or "" without one.
func (s State) TimeLeft(now time.Time) string {
	if s.StageEndsAt == nil {
		return ""
	}
	return RemainingTime(*s.StageEndsAt, now)
}

// StatusLine is the status text for s at now.
func StatusLine(s State, now time.Time) (string, error) {
	cfg, err := PermissionsFor(s.Stage)
	if err != nil {
		return "", err
	}
	timeLeft := ""
	if cfg.HasDeadline {
		timeLeft = s.TimeLeft(now)
	}
	return cfg.StatusText(timeLeft), nil
}
