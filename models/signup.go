package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// WaitlistSignup holds the structure for the waitlist_signups table. Signups
// are unique by lower-cased email.
type WaitlistSignup struct {
	Email       string    `json:"email" bson:"email"`
	Consent     bool      `json:"consent" bson:"consent"`
	Source      string    `json:"source" bson:"source"`
	CaseID      string    `json:"case_id,omitempty" bson:"caseId,omitempty"`
	UTMSource   string    `json:"utm_source,omitempty" bson:"utmSource,omitempty"`
	UTMMedium   string    `json:"utm_medium,omitempty" bson:"utmMedium,omitempty"`
	UTMCampaign string    `json:"utm_campaign,omitempty" bson:"utmCampaign,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
}

// Normalize lower-cases the email and stamps the creation time.
func (s *WaitlistSignup) Normalize(now time.Time) {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.CreatedAt = now.UTC()
}

// Validate checks the signup has a usable email.
func (s WaitlistSignup) Validate() error {
	return validateEmail("email", s.Email)
}

// Survey answers
const (
	AnswerYes        = "Yes"
	AnswerSomewhat   = "Somewhat"
	AnswerNo         = "No"
	AnswerVeryLikely = "Very Likely"
	AnswerMaybe      = "Maybe"
)

// SurveyResponse holds the structure for the post_submit_surveys table.
type SurveyResponse struct {
	Email             string    `json:"email" bson:"email"`
	CaseID            string    `json:"case_id,omitempty" bson:"caseId,omitempty"`
	EaseOfUse         string    `json:"ease_of_use" bson:"easeOfUse"`
	UnderstoodPurpose string    `json:"understood_purpose" bson:"understoodPurpose"`
	FutureUse         string    `json:"future_use" bson:"futureUse"`
	LikedMost         string    `json:"liked_most,omitempty" bson:"likedMost,omitempty"`
	ImproveOneThing   string    `json:"improve_one_thing,omitempty" bson:"improveOneThing,omitempty"`
	Consent           bool      `json:"consent" bson:"consent"`
	CreatedAt         time.Time `json:"created_at" bson:"createdAt"`
}

// Normalize lower-cases the email and stamps the creation time.
func (s *SurveyResponse) Normalize(now time.Time) {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.CreatedAt = now.UTC()
}

// Validate checks the email and that every multiple choice answer is one the
// form offers.
func (s SurveyResponse) Validate() error {
	if err := validateEmail("email", s.Email); err != nil {
		return err
	}
	choices := []struct {
		name, value string
		allowed     []string
	}{
		{"ease_of_use", s.EaseOfUse, []string{AnswerYes, AnswerSomewhat, AnswerNo}},
		{"understood_purpose", s.UnderstoodPurpose, []string{AnswerYes, AnswerSomewhat, AnswerNo}},
		{"future_use", s.FutureUse, []string{AnswerVeryLikely, AnswerMaybe, AnswerNo}},
	}
	for _, c := range choices {
		if c.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, c.name)
		}
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("%w: %s", ErrInvalidField, c.name)
		}
	}
	return nil
}

func validateEmail(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	if _, err := mail.ParseAddress(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidField, name)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
