// Package testhelpers builds fixtures shared by the handler tests.
package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

// Now is the fixed clock every handler test runs at.
var Now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

// Clock returns Now.
func Clock() time.Time { return Now }

// PublishedCase is a real case without scheduler fields, created age ago.
// The engine classifies it as PUBLISHED.
func PublishedCase(caseID string, age time.Duration) models.Case {
	return models.Case{
		CaseID:       caseID,
		Type:         models.CaseTypeEvidence,
		Plaintiff:    models.Party{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com"},
		Defendant:    models.Party{FirstName: "Bo", LastName: "Smith", City: "Austin", State: "TX"},
		Title:        "Deposit never returned",
		Summary:      "Landlord kept the full deposit after move out.",
		Relationship: "Landlord",
		FilesCount:   2,
		CreatedAt:    Now.Add(-age),
		UpdatedAt:    Now.Add(-age),
		Source:       models.SourceSubmission,
	}
}

// ScheduledCase is a case whose lifecycle is owned by the scheduler and
// entered stage at startedAt.
func ScheduledCase(caseID string, stage lifecycle.Stage, startedAt time.Time) models.Case {
	c := PublishedCase(caseID, Now.Sub(startedAt))
	st, err := lifecycle.Begin(stage, startedAt)
	if err != nil {
		panic(err)
	}
	c.Lifecycle = &st
	return c
}

// JSONBody marshals v for a request body.
func JSONBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(b)
}

// FakeAirtable is an in-memory Airtable stand-in.
type FakeAirtable struct {
	mu      sync.Mutex
	Enabled bool
	Cases   []models.Case
	Records map[string][]airtable.Record
	Emails  map[string]bool
	Err     error
	Created map[string][]interface{}
}

// Configured reports Enabled.
func (f *FakeAirtable) Configured() bool { return f.Enabled }

// CaseTable is the default case table.
func (f *FakeAirtable) CaseTable() string { return airtable.DefaultCaseTable }

// ListCases returns Cases.
func (f *FakeAirtable) ListCases(context.Context) ([]models.Case, error) {
	return f.Cases, f.Err
}

// ListRecords returns the records stored for table.
func (f *FakeAirtable) ListRecords(_ context.Context, table string, _ url.Values) ([]airtable.Record, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Records[table], nil
}

// CountRecords counts the records stored for table.
func (f *FakeAirtable) CountRecords(_ context.Context, table string) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return len(f.Records[table]), nil
}

// CreateRecords remembers fields under table.
func (f *FakeAirtable) CreateRecords(_ context.Context, table string, fields ...interface{}) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Created == nil {
		f.Created = map[string][]interface{}{}
	}
	f.Created[table] = append(f.Created[table], fields...)
	return nil
}

// EmailExists looks email up in Emails.
func (f *FakeAirtable) EmailExists(_ context.Context, email string) (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	return f.Emails[email], nil
}

// FakeForwarder records forwarded submissions.
type FakeForwarder struct {
	Enabled   bool
	Err       error
	Forwarded []models.CaseSubmission
}

// Configured reports Enabled.
func (f *FakeForwarder) Configured() bool { return f.Enabled }

// SubmitCase records s and returns Err.
func (f *FakeForwarder) SubmitCase(_ context.Context, s models.CaseSubmission) error {
	f.Forwarded = append(f.Forwarded, s)
	return f.Err
}
