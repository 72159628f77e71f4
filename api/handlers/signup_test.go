package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/api/handlers"
	"github.com/dnounce/dnounce-api/api/testhelpers"
	mocksdb "github.com/dnounce/dnounce-api/databases/mocks"
	"github.com/dnounce/dnounce-api/models"
)

func decodeStore(t *testing.T, rr *httptest.ResponseRecorder) models.StoreResponse {
	t.Helper()
	var resp models.StoreResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestSignup_WaitlistHandlerAirtable(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true}
	s := handlers.Signup{Airtable: at, WaitlistDB: mocksdb.NewWaitlistDatabase(t), Now: testhelpers.Clock}

	req := httptest.NewRequest("POST", "/api/v1/waitlist", testhelpers.JSONBody(t, models.WaitlistSignup{
		Email:   " Ana@Example.com ",
		Consent: true,
	}))
	rr := serve(s.WaitlistHandler, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "You're on the list!", decodeStore(t, rr).Message)

	require.Len(t, at.Created[airtable.TableWaitlist], 1)
	b, err := json.Marshal(at.Created[airtable.TableWaitlist][0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"email": "ana@example.com",
		"consent": true,
		"source": "website",
		"created_at": "2026-05-10T12:00:00Z"
	}`, string(b))
}

func TestSignup_WaitlistHandlerAlreadyListed(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true, Emails: map[string]bool{"ana@example.com": true}}
	s := handlers.Signup{Airtable: at, Now: testhelpers.Clock}

	req := httptest.NewRequest("POST", "/api/v1/waitlist", testhelpers.JSONBody(t, models.WaitlistSignup{Email: "ana@example.com"}))
	rr := serve(s.WaitlistHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "You're already on the list.", decodeStore(t, rr).Message)
	assert.Empty(t, at.Created)
}

func TestSignup_WaitlistHandlerFallsBackToMongo(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true, Err: errors.New("airtable API error 503: unavailable")}
	db := mocksdb.NewWaitlistDatabase(t)
	db.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.WaitlistSignup) bool {
		return s.Email == "ana@example.com" && s.Source == "case_page" && s.CreatedAt.Equal(testhelpers.Now)
	})).Return(true, nil)

	s := handlers.Signup{Airtable: at, WaitlistDB: db, Now: testhelpers.Clock}
	req := httptest.NewRequest("POST", "/api/v1/waitlist", testhelpers.JSONBody(t, models.WaitlistSignup{
		Email:  "ana@example.com",
		Source: "case_page",
	}))
	rr := serve(s.WaitlistHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "You're on the list!", decodeStore(t, rr).Message)
}

func TestSignup_WaitlistHandlerMongoOnly(t *testing.T) {
	db := mocksdb.NewWaitlistDatabase(t)
	db.On("Upsert", mock.Anything, mock.Anything).Return(false, nil)

	s := handlers.Signup{WaitlistDB: db, Now: testhelpers.Clock}
	req := httptest.NewRequest("POST", "/api/v1/waitlist", testhelpers.JSONBody(t, models.WaitlistSignup{Email: "ana@example.com"}))
	rr := serve(s.WaitlistHandler, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "You're already on the list.", decodeStore(t, rr).Message)
}

func TestSignup_WaitlistHandlerInvalidEmail(t *testing.T) {
	s := handlers.Signup{Now: testhelpers.Clock}

	req := httptest.NewRequest("POST", "/api/v1/waitlist", testhelpers.JSONBody(t, models.WaitlistSignup{Email: "not-an-email"}))
	rr := serve(s.WaitlistHandler, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func validSurvey() models.SurveyResponse {
	return models.SurveyResponse{
		Email:             "ana@example.com",
		CaseID:            "EVB123456",
		EaseOfUse:         models.AnswerYes,
		UnderstoodPurpose: models.AnswerSomewhat,
		FutureUse:         models.AnswerVeryLikely,
		Consent:           true,
	}
}

func TestSignup_SurveyHandlerAirtable(t *testing.T) {
	at := &testhelpers.FakeAirtable{Enabled: true}
	s := handlers.Signup{Airtable: at, SurveyDB: mocksdb.NewSurveyDatabase(t), Now: testhelpers.Clock}

	rr := serve(s.SurveyHandler, httptest.NewRequest("POST", "/api/v1/survey", testhelpers.JSONBody(t, validSurvey())))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Thanks for your feedback!", decodeStore(t, rr).Message)
	assert.Len(t, at.Created[airtable.TableSurveys], 1)
}

func TestSignup_SurveyHandlerFallsBackToMongo(t *testing.T) {
	db := mocksdb.NewSurveyDatabase(t)
	db.On("InsertOne", mock.Anything, mock.MatchedBy(func(r *models.SurveyResponse) bool {
		return r.CaseID == "EVB123456" && r.FutureUse == models.AnswerVeryLikely
	})).Return(nil)
	at := &testhelpers.FakeAirtable{Enabled: true, Err: errors.New("timeout")}

	s := handlers.Signup{Airtable: at, SurveyDB: db, Now: testhelpers.Clock}
	rr := serve(s.SurveyHandler, httptest.NewRequest("POST", "/api/v1/survey", testhelpers.JSONBody(t, validSurvey())))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSignup_SurveyHandlerInvalidAnswer(t *testing.T) {
	survey := validSurvey()
	survey.FutureUse = "Never"
	s := handlers.Signup{Now: testhelpers.Clock}

	rr := serve(s.SurveyHandler, httptest.NewRequest("POST", "/api/v1/survey", testhelpers.JSONBody(t, survey)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "future_use")
}

func TestEvents_TrackEventHandler(t *testing.T) {
	e := handlers.Events{}

	t.Run("known event", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/events", testhelpers.JSONBody(t, map[string]interface{}{
			"event":      "case_form_started",
			"properties": map[string]interface{}{"step": 1},
		}))
		rr := serve(e.TrackEventHandler, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})
	t.Run("unknown event", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/events", testhelpers.JSONBody(t, map[string]interface{}{"event": "clicked_everything"}))
		rr := serve(e.TrackEventHandler, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
