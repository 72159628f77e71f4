package airtable_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *airtable.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return airtable.NewClient("key-123", "appBase", "", airtable.WithBaseURL(srv.URL), airtable.WithRateLimit(rate.Inf, 1))
}

func TestClient_NotConfigured(t *testing.T) {
	c := airtable.NewClient("", "", "")
	assert.False(t, c.Configured())
	assert.Equal(t, airtable.DefaultCaseTable, c.CaseTable())

	_, err := c.ListCases(context.Background())
	assert.ErrorIs(t, err, airtable.ErrNotConfigured)

	err = c.CreateRecords(context.Background(), airtable.TableWaitlist, map[string]string{"email": "a@b.co"})
	assert.ErrorIs(t, err, airtable.ErrNotConfigured)
}

func TestClient_ListCases(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/appBase/case_submissions", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "submitted_at", r.URL.Query().Get("sort[0][field]"))
		assert.Equal(t, "desc", r.URL.Query().Get("sort[0][direction]"))

		switch r.URL.Query().Get("offset") {
		case "":
			_, _ = w.Write([]byte(`{"records":[
				{"id":"rec1","fields":{"case_id":"EVB123456","case_type":"evidence","plaintiff_first_name":"Ana","defendant_first_name":"Bo","defendant_last_name":"Lee","case_title":"Late deposit","submitted_at":"2024-05-01T10:00:00.000Z","files_count":2}},
				{"id":"rec2","fields":{"case_title":"no id"}}
			],"offset":"page2"}`))
		case "page2":
			_, _ = w.Write([]byte(`{"records":[
				{"id":"rec3","createdTime":"2024-04-01T08:00:00.000Z","fields":{"case_id":"OPB654321","defendant_first_name":"Cy"}}
			]}`))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})

	cases, err := c.ListCases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, cases, 2)

	first := cases[0]
	assert.Equal(t, "EVB123456", first.CaseID)
	assert.Equal(t, models.CaseTypeEvidence, first.Type)
	assert.Equal(t, "bo-lee", first.DefendantID())
	assert.Equal(t, models.SourceAirtable, first.Source)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt)
	assert.Nil(t, first.Lifecycle)

	second := cases[1]
	assert.Equal(t, models.CaseTypeExperience, second.Type)
	assert.Equal(t, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), second.CreatedAt)
}

func TestClient_CreateRecordsBatches(t *testing.T) {
	var sizes []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appBase/waitlist_signups", r.URL.Path)
		var body struct {
			Records []struct {
				Fields map[string]interface{} `json:"fields"`
			} `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sizes = append(sizes, len(body.Records))
		assert.Equal(t, "a@b.co", body.Records[0].Fields["email"])
		_, _ = w.Write([]byte(`{"records":[]}`))
	})

	rows := make([]interface{}, 12)
	for i := range rows {
		rows[i] = models.WaitlistSignup{Email: "a@b.co", Source: "landing"}
	}
	require.NoError(t, c.CreateRecords(context.Background(), airtable.TableWaitlist, rows...))
	assert.Equal(t, []int{10, 2}, sizes)
}

func TestClient_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"INVALID_VALUE"}`))
	})

	_, err := c.CountRecords(context.Background(), airtable.TableSurveys)
	var se *airtable.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.Contains(t, se.Body, "INVALID_VALUE")
}

func TestClient_CountRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			_, _ = w.Write([]byte(`{"records":[{"id":"a","fields":{}},{"id":"b","fields":{}}],"offset":"next"}`))
			return
		}
		_, _ = w.Write([]byte(`{"records":[{"id":"c","fields":{}}]}`))
	})

	n, err := c.CountRecords(context.Background(), airtable.TableSurveys)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestClient_EmailExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		formula := r.URL.Query().Get("filterByFormula")
		if formula == `{email}="known@example.com"` {
			_, _ = w.Write([]byte(`{"records":[{"id":"a","fields":{"email":"known@example.com"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"records":[]}`))
	})

	ok, err := c.EmailExists(context.Background(), " Known@Example.com ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.EmailExists(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_ListRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":[{"id":"a","createdTime":"2024-01-01T00:00:00.000Z","fields":{"email":"x@y.z","consent":true}}]}`))
	})

	records, err := c.ListRecords(context.Background(), airtable.TableWaitlist, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x@y.z", records[0].Fields["email"])
	assert.Equal(t, true, records[0].Fields["consent"])
}
