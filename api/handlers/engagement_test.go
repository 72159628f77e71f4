package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dnounce/dnounce-api/analytics"
	"github.com/dnounce/dnounce-api/api/handlers"
	"github.com/dnounce/dnounce-api/api/testhelpers"
	"github.com/dnounce/dnounce-api/databases"
	mocksdb "github.com/dnounce/dnounce-api/databases/mocks"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

type engagementFixture struct {
	cases    *mocksdb.CaseDatabase
	votes    *mocksdb.VoteDatabase
	comments *mocksdb.CommentDatabase
	handler  handlers.Engagement
}

func newEngagement(t *testing.T, stored models.Case) engagementFixture {
	f := engagementFixture{
		cases:    mocksdb.NewCaseDatabase(t),
		votes:    mocksdb.NewVoteDatabase(t),
		comments: mocksdb.NewCommentDatabase(t),
	}
	f.cases.On("FindByCaseID", mock.Anything, stored.CaseID).Return(&stored, nil).Maybe()
	f.handler = handlers.Engagement{
		Case:      handlers.Case{DB: f.cases, Now: testhelpers.Clock},
		VoteDB:    f.votes,
		CommentDB: f.comments,
	}
	return f
}

func engagementRequest(t *testing.T, method, target, caseID string, body interface{}) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, testhelpers.JSONBody(t, body))
	}
	return mux.SetURLVars(req, map[string]string{"case_id": caseID})
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestEngagement_CommentsHandler(t *testing.T) {
	f := newEngagement(t, testhelpers.PublishedCase("EVB123456", time.Hour))
	f.comments.On("FindByCaseID", mock.Anything, "EVB123456", 200).Return([]models.Comment{
		{ID: "c1", CaseID: "EVB123456", Author: "Anonymous", Body: "same thing happened to me"},
	}, nil)

	rr := serve(f.handler.CommentsHandler, engagementRequest(t, "GET", "/api/v1/cases/EVB123456/comments", "EVB123456", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestEngagement_CreateCommentHandler(t *testing.T) {
	f := newEngagement(t, testhelpers.PublishedCase("EVB123456", time.Hour))
	var stored *models.Comment
	f.comments.On("InsertOne", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.Comment) }).
		Return(nil)

	req := engagementRequest(t, "POST", "/api/v1/cases/EVB123456/comments?role=defendant", "EVB123456",
		models.CommentRequest{Body: "  This is not what happened.  "})
	rr := serve(f.handler.CreateCommentHandler, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.NotNil(t, stored)
	assert.Equal(t, "EVB123456", stored.CaseID)
	assert.Equal(t, "Anonymous", stored.Author)
	assert.Equal(t, lifecycle.RoleDefendant, stored.Role)
	assert.Equal(t, "This is not what happened.", stored.Body)
	assert.Equal(t, testhelpers.Now, stored.CreatedAt)
	assert.NotEmpty(t, stored.ID)
}

func TestEngagement_CreateCommentHandlerGatedByStage(t *testing.T) {
	tests := []struct {
		name  string
		stage lifecycle.Stage
		want  int
	}{
		{"evidence open", lifecycle.StageEvidenceArguments, http.StatusCreated},
		{"cooling read only", lifecycle.StageCooling, http.StatusForbidden},
		{"voting read only", lifecycle.StageVoting, http.StatusForbidden},
		{"kept reopens", lifecycle.StageVerdictKept, http.StatusCreated},
		{"deleted", lifecycle.StageVerdictDeleted, http.StatusForbidden},
		{"before publication", lifecycle.StageAIVerification, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", tt.stage, testhelpers.Now.Add(-time.Hour)))
			if tt.want == http.StatusCreated {
				f.comments.On("InsertOne", mock.Anything, mock.Anything).Return(nil)
			}

			req := engagementRequest(t, "POST", "/api/v1/cases/EVB123456/comments", "EVB123456",
				models.CommentRequest{Author: "Cy", Body: "hello"})
			rr := serve(f.handler.CreateCommentHandler, req)

			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestEngagement_CreateCommentHandlerValidation(t *testing.T) {
	f := newEngagement(t, testhelpers.PublishedCase("EVB123456", time.Hour))

	tests := []struct {
		name string
		body string
	}{
		{"empty", "   "},
		{"too long", strings.Repeat("x", 2001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := engagementRequest(t, "POST", "/api/v1/cases/EVB123456/comments", "EVB123456",
				models.CommentRequest{Body: tt.body})
			rr := serve(f.handler.CreateCommentHandler, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func voteRequest(t *testing.T, role string, v models.VoteRequest) *http.Request {
	target := "/api/v1/cases/EVB123456/votes"
	if role != "" {
		target += "?role=" + role
	}
	return engagementRequest(t, "POST", target, "EVB123456", v)
}

var validVote = models.VoteRequest{VoterID: "voter-1", Choice: models.VoteKeep, Reason: "Receipts are convincing."}

func TestEngagement_CastVoteHandler(t *testing.T) {
	f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVoting, testhelpers.Now.Add(-time.Hour)))
	var stored *models.Vote
	f.votes.On("InsertOne", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.Vote) }).
		Return(nil)

	rr := serve(f.handler.CastVoteHandler, voteRequest(t, "voter", validVote))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.NotNil(t, stored)
	assert.Equal(t, "EVB123456", stored.CaseID)
	assert.Equal(t, "voter-1", stored.VoterID)
	assert.Equal(t, models.VoteKeep, stored.Choice)
}

func TestEngagement_CastVoteHandlerDuplicate(t *testing.T) {
	f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVoting, testhelpers.Now.Add(-time.Hour)))
	f.votes.On("InsertOne", mock.Anything, mock.Anything).Return(databases.ErrDuplicate)

	rr := serve(f.handler.CastVoteHandler, voteRequest(t, "voter", validVote))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestEngagement_CastVoteHandlerStoreError(t *testing.T) {
	f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVoting, testhelpers.Now.Add(-time.Hour)))
	f.votes.On("InsertOne", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	rr := serve(f.handler.CastVoteHandler, voteRequest(t, "voter", validVote))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestEngagement_CastVoteHandlerForbidden(t *testing.T) {
	tests := []struct {
		name  string
		stage lifecycle.Stage
		role  string
	}{
		{"community during voting", lifecycle.StageVoting, ""},
		{"plaintiff during voting", lifecycle.StageVoting, "plaintiff"},
		{"voter during cooling", lifecycle.StageCooling, "voter"},
		{"voter after verdict", lifecycle.StageVerdictKept, "voter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", tt.stage, testhelpers.Now.Add(-time.Hour)))

			rr := serve(f.handler.CastVoteHandler, voteRequest(t, tt.role, validVote))

			assert.Equal(t, http.StatusForbidden, rr.Code)
		})
	}
}

func TestEngagement_CastVoteHandlerValidation(t *testing.T) {
	f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVoting, testhelpers.Now.Add(-time.Hour)))

	tests := []struct {
		name string
		vote models.VoteRequest
	}{
		{"bad choice", models.VoteRequest{VoterID: "v", Choice: "maybe", Reason: "r"}},
		{"no voter", models.VoteRequest{Choice: models.VoteDelete, Reason: "r"}},
		{"no reason", models.VoteRequest{VoterID: "v", Choice: models.VoteDelete}},
		{"reason too long", models.VoteRequest{VoterID: "v", Choice: models.VoteDelete, Reason: strings.Repeat("r", 1001)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(f.handler.CastVoteHandler, voteRequest(t, "voter", tt.vote))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestEngagement_VoteTallyHandler(t *testing.T) {
	f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVerdictKept, testhelpers.Now.Add(-time.Hour)))
	f.votes.On("Tally", mock.Anything, "EVB123456").Return(7, 2, nil)

	rr := serve(f.handler.VoteTallyHandler, engagementRequest(t, "GET", "/api/v1/cases/EVB123456/votes/tally", "EVB123456", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got models.VoteTally
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.VoteTally{CaseID: "EVB123456", Keep: 7, Delete: 2, Verdict: lifecycle.StageVerdictKept}, got)
}

func TestEngagement_VoteTallyHandlerHiddenDuringVoting(t *testing.T) {
	f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVoting, testhelpers.Now.Add(-time.Hour)))

	rr := serve(f.handler.VoteTallyHandler, engagementRequest(t, "GET", "/api/v1/cases/EVB123456/votes/tally?role=voter", "EVB123456", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	f.votes.AssertNotCalled(t, "Tally", mock.Anything, mock.Anything)
}

type recordingSink struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (s *recordingSink) Write(_ context.Context, e analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func TestEngagement_InteractionHandler(t *testing.T) {
	sink := &recordingSink{}
	svc := analytics.New(sink, 10)
	svc.Init()

	f := newEngagement(t, testhelpers.PublishedCase("EVB123456", time.Hour))
	f.handler.Analytics = svc

	req := engagementRequest(t, "POST", "/api/v1/cases/EVB123456/interactions", "EVB123456",
		models.InteractionRequest{Kind: models.InteractionInformative, AnonID: "anon-1"})
	rr := serve(f.handler.InteractionHandler, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.NoError(t, svc.Close(context.Background()))
	require.Len(t, sink.events, 1)
	e := sink.events[0]
	assert.Equal(t, analytics.EventCaseInteraction, e.Name)
	assert.Equal(t, "anon-1", e.AnonID)
	assert.Equal(t, "EVB123456", e.Properties["case_id"])
	assert.Equal(t, "PUBLISHED", e.Properties["stage"])
	assert.Equal(t, "community", e.Properties["role"])
}

func TestEngagement_InteractionHandlerRejected(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		f := newEngagement(t, testhelpers.PublishedCase("EVB123456", time.Hour))
		req := engagementRequest(t, "POST", "/x", "EVB123456", models.InteractionRequest{Kind: "share"})

		rr := serve(f.handler.InteractionHandler, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
	t.Run("reactions closed on deleted case", func(t *testing.T) {
		f := newEngagement(t, testhelpers.ScheduledCase("EVB123456", lifecycle.StageVerdictDeleted, testhelpers.Now.Add(-time.Hour)))
		req := engagementRequest(t, "POST", "/x", "EVB123456", models.InteractionRequest{Kind: models.InteractionFollow})

		rr := serve(f.handler.InteractionHandler, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
