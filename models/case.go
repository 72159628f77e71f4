package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dnounce/dnounce-api/lifecycle"
)

// CaseType says whether a case was filed with supporting files. It is fixed at
// submission.
type CaseType string

const (
	CaseTypeEvidence   CaseType = "evidence"
	CaseTypeExperience CaseType = "experience"
)

// CaseTypeFor returns the type of a case filed with filesCount attachments.
func CaseTypeFor(filesCount int) CaseType {
	if filesCount > 0 {
		return CaseTypeEvidence
	}
	return CaseTypeExperience
}

// Prefix is the case id prefix for the type.
func (t CaseType) Prefix() string {
	if t == CaseTypeEvidence {
		return "EVB"
	}
	return "OPB"
}

// Label is the public name of the type.
func (t CaseType) Label() string {
	if t == CaseTypeEvidence {
		return "Evidence-Based"
	}
	return "Opinion-Based"
}

// Case sources
const (
	SourceSubmission = "submission"
	SourceSeed       = "seed"
	SourceAirtable   = "airtable"
)

// Party is one side of a case. Contact details are stored for notifications
// but never rendered publicly.
type Party struct {
	FirstName    string `json:"firstName" bson:"firstName"`
	LastName     string `json:"lastName" bson:"lastName"`
	Alias        string `json:"alias,omitempty" bson:"alias,omitempty"`
	Organization string `json:"organization,omitempty" bson:"organization,omitempty"`
	City         string `json:"city,omitempty" bson:"city,omitempty"`
	State        string `json:"state,omitempty" bson:"state,omitempty"`
	Email        string `json:"-" bson:"email,omitempty"`
	Phone        string `json:"-" bson:"phone,omitempty"`
}

// FullName joins the first and last name.
func (p Party) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Case holds the structure for the cases collection in mongo. Every source
// (mongo, airtable, seed data) is normalised into this shape before use.
type Case struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	CaseID       string             `json:"caseId" bson:"caseId"`
	Type         CaseType           `json:"type" bson:"type"`
	Plaintiff    Party              `json:"plaintiff" bson:"plaintiff"`
	Defendant    Party              `json:"defendant" bson:"defendant"`
	Title        string             `json:"title" bson:"title"`
	Summary      string             `json:"summary" bson:"summary"`
	Relationship string             `json:"relationship,omitempty" bson:"relationship,omitempty"`
	FilesCount   int                `json:"filesCount" bson:"filesCount"`
	EvidenceURLs []string           `json:"evidenceUrls,omitempty" bson:"evidenceUrls,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`

	// Lifecycle is set only when the scheduler owns this case.
	Lifecycle        *lifecycle.State `json:"-" bson:"lifecycle,omitempty"`
	IsDemoRandomized bool             `json:"isDemoRandomized" bson:"isDemoRandomized"`
	Source           string           `json:"source,omitempty" bson:"source,omitempty"`
}

// LifecycleRecord is the engine's view of the case.
func (c Case) LifecycleRecord() lifecycle.Record {
	return lifecycle.Record{
		CaseID:         c.CaseID,
		CreatedAt:      c.CreatedAt,
		Lifecycle:      c.Lifecycle,
		DemoRandomized: c.IsDemoRandomized,
	}
}

// DefendantID is the profile slug of the defendant.
func (c Case) DefendantID() string {
	return DefendantID(c.Defendant.FirstName, c.Defendant.LastName)
}

// DisplayNameLine is the "plaintiff vs defendant" headline.
func (c Case) DisplayNameLine() string {
	return fmt.Sprintf("%s vs %s", c.Plaintiff.FirstName, c.Defendant.FullName())
}

// SummaryOneLine shortens the summary for feed cards.
func (c Case) SummaryOneLine() string {
	r := []rune(c.Summary)
	if len(r) <= 120 {
		return c.Summary
	}
	return string(r[:120]) + "..."
}

var whitespace = regexp.MustCompile(`\s+`)

// DefendantID builds a profile slug: "first-last", lower case, whitespace
// replaced by dashes.
func DefendantID(firstName, lastName string) string {
	id := firstName
	if lastName != "" {
		id += "-" + lastName
	}
	return whitespace.ReplaceAllString(strings.ToLower(id), "-")
}
