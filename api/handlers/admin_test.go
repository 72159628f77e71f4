package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/api/handlers"
	"github.com/dnounce/dnounce-api/api/testhelpers"
	mocksdb "github.com/dnounce/dnounce-api/databases/mocks"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

func TestAdmin_StatsHandlerAirtable(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true, Records: map[string][]airtable.Record{
		airtable.TableWaitlist:    {{ID: "rec1"}, {ID: "rec2"}, {ID: "rec3"}},
		airtable.TableSurveys:     {{ID: "rec4"}},
		airtable.DefaultCaseTable: {{ID: "rec5"}, {ID: "rec6"}},
	}}
	a := handlers.Admin{Airtable: at}

	rr := serve(a.StatsHandler, httptest.NewRequest("GET", "/api/v1/admin/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.StatsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatsResponse{Waitlist: 3, Surveys: 1, Cases: 2, Source: handlers.SourceAirtable}, got)
}

func TestAdmin_StatsHandlerMongo(t *testing.T) {
	waitlist := mocksdb.NewWaitlistDatabase(t)
	surveys := mocksdb.NewSurveyDatabase(t)
	cases := mocksdb.NewCaseDatabase(t)
	waitlist.On("CountDocuments", mock.Anything).Return(int64(10), nil)
	surveys.On("CountDocuments", mock.Anything).Return(int64(4), nil)
	cases.On("CountDocuments", mock.Anything, bson.M{}).Return(int64(7), nil)

	a := handlers.Admin{CaseDB: cases, WaitlistDB: waitlist, SurveyDB: surveys}
	rr := serve(a.StatsHandler, httptest.NewRequest("GET", "/api/v1/admin/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.StatsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatsResponse{Waitlist: 10, Surveys: 4, Cases: 7, Source: handlers.SourceMongo}, got)
}

func TestAdmin_StatsHandlerUpstreamError(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true, Err: errors.New("airtable API error 401: bad key")}
	a := handlers.Admin{Airtable: at}

	rr := serve(a.StatsHandler, httptest.NewRequest("GET", "/api/v1/admin/stats", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestAdmin_ExportHandlerAirtable(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true, Records: map[string][]airtable.Record{
		airtable.TableWaitlist: {{
			ID:          "rec1",
			CreatedTime: "2026-05-01T00:00:00.000Z",
			Fields: map[string]interface{}{
				"email":   "ana@example.com",
				"consent": true,
				"source":  "=HYPERLINK(\"x\")",
			},
		}},
	}}
	a := handlers.Admin{Airtable: at, Now: testhelpers.Clock}

	rr := serve(a.ExportHandler, httptest.NewRequest("GET", "/api/v1/admin/export?table=waitlist", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="waitlist-2026-05-10.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t,
		"id,createdTime,email,consent,source\n"+
			"rec1,2026-05-01T00:00:00.000Z,ana@example.com,true,\"'=HYPERLINK(\"\"x\"\")\"\n",
		rr.Body.String())
}

func TestAdmin_ExportHandlerMongoCases(t *testing.T) {
	cases := mocksdb.NewCaseDatabase(t)
	stored := testhelpers.PublishedCase("EVB123456", 0)
	cases.On("Find", mock.Anything, bson.M{}, mock.Anything).Return([]models.Case{stored}, nil)

	a := handlers.Admin{CaseDB: cases, Now: testhelpers.Clock}
	rr := serve(a.ExportHandler, httptest.NewRequest("GET", "/api/v1/admin/export?table=cases", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "caseId,")
	assert.Contains(t, body, "EVB123456")
	assert.Contains(t, body, "Deposit never returned")
	assert.NotContains(t, body, "ana@example.com")
}

func TestAdmin_ExportHandlerUnknownTable(t *testing.T) {
	a := handlers.Admin{}

	rr := serve(a.ExportHandler, httptest.NewRequest("GET", "/api/v1/admin/export?table=users", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdmin_CasesHandler(t *testing.T) {
	cases := mocksdb.NewCaseDatabase(t)
	pending := testhelpers.ScheduledCase("EVB000001", lifecycle.StageAIVerification, testhelpers.Now.Add(-time.Hour))
	broken := testhelpers.PublishedCase("EVB000002", time.Hour)
	broken.Lifecycle = &lifecycle.State{Stage: "ARCHIVED"}
	cases.On("FindPage", mock.Anything, bson.M{}, 20, 2).Return([]models.Case{pending, broken}, nil)

	a := handlers.Admin{CaseDB: cases, Now: testhelpers.Clock}
	rr := serve(a.CasesHandler, httptest.NewRequest("GET", "/api/v1/admin/cases?limit=20&page=2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.CaseListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "EVB000001", got.Cases[0].Case.CaseID)
	assert.Equal(t, lifecycle.StageAIVerification, got.Cases[0].Lifecycle.State.Stage)
	assert.Equal(t, "2d 23h", got.Cases[0].Lifecycle.TimeLeft)
}
