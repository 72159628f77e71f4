package airtable

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/models"
)

// caseFields are the columns of the case table, as the Make scenario writes them.
type caseFields struct {
	CaseID             string `json:"case_id"`
	CaseType           string `json:"case_type"`
	PlaintiffFirstName string `json:"plaintiff_first_name"`
	PlaintiffLastName  string `json:"plaintiff_last_name"`
	DefendantFirstName string `json:"defendant_first_name"`
	DefendantLastName  string `json:"defendant_last_name"`
	DefendantCity      string `json:"defendant_city"`
	DefendantState     string `json:"defendant_state"`
	CaseTitle          string `json:"case_title"`
	CaseSummary        string `json:"case_summary"`
	Relationship       string `json:"relationship"`
	SubmittedAt        string `json:"submitted_at"`
	FilesCount         int    `json:"files_count"`
}

type caseRecord struct {
	ID          string     `json:"id"`
	CreatedTime string     `json:"createdTime"`
	Fields      caseFields `json:"fields"`
}

// ListCases returns the mirrored case table, newest submission first. Rows
// without a case id are skipped.
func (c *Client) ListCases(ctx context.Context) ([]models.Case, error) {
	q := url.Values{}
	q.Set("sort[0][field]", "submitted_at")
	q.Set("sort[0][direction]", "desc")

	cases := []models.Case{}
	err := c.list(ctx, c.caseTable, q, func(raw json.RawMessage) error {
		var rec caseRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if rec.Fields.CaseID == "" {
			zap.S().Debugw("skipping airtable case without id", "record", rec.ID)
			return nil
		}
		cases = append(cases, rec.toCase())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// toCase normalises a row into the stored case shape. Rows carry no lifecycle,
// so they classify as published from their submission time.
func (r caseRecord) toCase() models.Case {
	f := r.Fields
	created := parseTime(f.SubmittedAt)
	if created.IsZero() {
		created = parseTime(r.CreatedTime)
	}

	caseType := models.CaseType(strings.ToLower(f.CaseType))
	if caseType != models.CaseTypeEvidence && caseType != models.CaseTypeExperience {
		caseType = models.CaseTypeFor(f.FilesCount)
	}

	return models.Case{
		CaseID: f.CaseID,
		Type:   caseType,
		Plaintiff: models.Party{
			FirstName: f.PlaintiffFirstName,
			LastName:  f.PlaintiffLastName,
		},
		Defendant: models.Party{
			FirstName: f.DefendantFirstName,
			LastName:  f.DefendantLastName,
			City:      f.DefendantCity,
			State:     f.DefendantState,
		},
		Title:        f.CaseTitle,
		Summary:      f.CaseSummary,
		Relationship: f.Relationship,
		FilesCount:   f.FilesCount,
		CreatedAt:    created,
		UpdatedAt:    created,
		Source:       models.SourceAirtable,
	}
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
