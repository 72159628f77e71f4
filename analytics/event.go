package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dnounce/dnounce-api/lifecycle"
)

// Event names.
const (
	EventPageViewed        = "page_viewed"
	EventCTAClicked        = "cta_clicked"
	EventCaseFormViewed    = "case_form_viewed"
	EventCaseFormStarted   = "case_form_started"
	EventCaseFormCompleted = "case_form_completed"
	EventSurveyShown       = "survey_shown"
	EventSurveySubmitted   = "survey_submitted"
	EventPrelaunchOptIn    = "prelaunch_opt_in"
	EventCaseInteraction   = "case_interaction"
)

var knownEvents = map[string]bool{
	EventPageViewed:        true,
	EventCTAClicked:        true,
	EventCaseFormViewed:    true,
	EventCaseFormStarted:   true,
	EventCaseFormCompleted: true,
	EventSurveyShown:       true,
	EventSurveySubmitted:   true,
	EventPrelaunchOptIn:    true,
	EventCaseInteraction:   true,
}

// Known reports whether name is an event the product emits.
func Known(name string) bool {
	return knownEvents[name]
}

// Event is one tracked occurrence.
type Event struct {
	Name       string                 `json:"event"`
	AnonID     string                 `json:"anon_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Timestamp  time.Time              `json:"ts"`
}

// NewAnonID returns a fresh anonymous visitor id.
func NewAnonID() string {
	return "anon_" + uuid.NewString()
}

// HashEmail is the privacy-preserving identity sent in place of an address:
// "hash_" followed by the base-36 identifier hash of email.
func HashEmail(email string) string {
	return "hash_" + strconv.FormatUint(uint64(lifecycle.Hash(email)), 36)
}

// EmailDomain returns the part after the first "@", or "".
func EmailDomain(email string) string {
	parts := strings.SplitN(email, "@", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// scrub replaces a raw "email" property with its hash and domain. Addresses
// never reach a sink.
func scrub(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	if raw, ok := out["email"]; ok {
		delete(out, "email")
		if email, ok := raw.(string); ok && email != "" {
			out["email_hash"] = HashEmail(email)
			out["email_domain"] = EmailDomain(email)
		}
	}
	return out
}
