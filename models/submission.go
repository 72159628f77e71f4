package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ErrMissingField is wrapped by Validate when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidField is wrapped by Validate when a field has a bad value.
var ErrInvalidField = errors.New("invalid field")

// CaseSubmission is the case form payload, in the snake_case shape the front
// end posts and the Make scenario expects.
type CaseSubmission struct {
	CaseID                string   `json:"case_id"`
	PlaintiffFirstName    string   `json:"plaintiff_first_name"`
	PlaintiffLastName     string   `json:"plaintiff_last_name"`
	PlaintiffEmail        string   `json:"plaintiff_email"`
	DefendantFirstName    string   `json:"defendant_first_name"`
	DefendantLastName     string   `json:"defendant_last_name"`
	DefendantAlias        string   `json:"defendant_alias"`
	DefendantOrganization string   `json:"defendant_organization"`
	DefendantCity         string   `json:"defendant_city"`
	DefendantState        string   `json:"defendant_state"`
	DefendantEmail        string   `json:"defendant_email"`
	DefendantPhone        string   `json:"defendant_phone"`
	CaseTitle             string   `json:"case_title"`
	CaseSummary           string   `json:"case_summary"`
	Relationship          string   `json:"relationship"`
	CaseType              CaseType `json:"case_type"`
	FilesCount            int      `json:"files_count"`
	EvidenceURLs          []string `json:"evidence_urls,omitempty"`
	SubmittedAt           string   `json:"submitted_at"`
}

// Validate checks the fields the form marks as required.
func (s CaseSubmission) Validate() error {
	required := []struct{ name, value string }{
		{"plaintiff_first_name", s.PlaintiffFirstName},
		{"plaintiff_last_name", s.PlaintiffLastName},
		{"plaintiff_email", s.PlaintiffEmail},
		{"case_title", s.CaseTitle},
		{"case_summary", s.CaseSummary},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if _, err := mail.ParseAddress(s.PlaintiffEmail); err != nil {
		return fmt.Errorf("%w: plaintiff_email", ErrInvalidField)
	}
	if s.DefendantEmail != "" {
		if _, err := mail.ParseAddress(s.DefendantEmail); err != nil {
			return fmt.Errorf("%w: defendant_email", ErrInvalidField)
		}
	}
	if s.FilesCount < 0 {
		return fmt.Errorf("%w: files_count", ErrInvalidField)
	}
	return nil
}

// ToCase builds the stored case. The type follows the attachments, whatever
// the form claimed.
func (s CaseSubmission) ToCase(caseID string, now time.Time) Case {
	now = now.UTC()
	files := s.FilesCount
	if n := len(s.EvidenceURLs); n > files {
		files = n
	}
	return Case{
		CaseID: caseID,
		Type:   CaseTypeFor(files),
		Plaintiff: Party{
			FirstName: strings.TrimSpace(s.PlaintiffFirstName),
			LastName:  strings.TrimSpace(s.PlaintiffLastName),
			Email:     strings.ToLower(strings.TrimSpace(s.PlaintiffEmail)),
		},
		Defendant: Party{
			FirstName:    strings.TrimSpace(s.DefendantFirstName),
			LastName:     strings.TrimSpace(s.DefendantLastName),
			Alias:        s.DefendantAlias,
			Organization: s.DefendantOrganization,
			City:         s.DefendantCity,
			State:        s.DefendantState,
			Email:        strings.ToLower(strings.TrimSpace(s.DefendantEmail)),
			Phone:        s.DefendantPhone,
		},
		Title:        strings.TrimSpace(s.CaseTitle),
		Summary:      strings.TrimSpace(s.CaseSummary),
		Relationship: s.Relationship,
		FilesCount:   files,
		EvidenceURLs: s.EvidenceURLs,
		CreatedAt:    now,
		UpdatedAt:    now,
		Source:       SourceSubmission,
	}
}

// SubmissionFromCase rebuilds the webhook payload for a stored case.
func SubmissionFromCase(c Case) CaseSubmission {
	return CaseSubmission{
		CaseID:                c.CaseID,
		PlaintiffFirstName:    c.Plaintiff.FirstName,
		PlaintiffLastName:     c.Plaintiff.LastName,
		PlaintiffEmail:        c.Plaintiff.Email,
		DefendantFirstName:    c.Defendant.FirstName,
		DefendantLastName:     c.Defendant.LastName,
		DefendantAlias:        c.Defendant.Alias,
		DefendantOrganization: c.Defendant.Organization,
		DefendantCity:         c.Defendant.City,
		DefendantState:        c.Defendant.State,
		DefendantEmail:        c.Defendant.Email,
		DefendantPhone:        c.Defendant.Phone,
		CaseTitle:             c.Title,
		CaseSummary:           c.Summary,
		Relationship:          c.Relationship,
		CaseType:              c.Type,
		FilesCount:            c.FilesCount,
		EvidenceURLs:          c.EvidenceURLs,
		SubmittedAt:           c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
