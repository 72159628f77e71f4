package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dnounce/dnounce-api/analytics"
	"github.com/dnounce/dnounce-api/api"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

const (
	maxCommentLength = 2000
	maxReasonLength  = 1000
	commentPageSize  = 200
)

// Engagement serves comments, votes and reactions on a case. Every write is
// checked against the stage policy for the caller's role.
type Engagement struct {
	Case
	VoteDB    databases.VoteDatabase
	CommentDB databases.CommentDatabase
}

// classify loads the case and its current state, writing the error response
// itself on failure.
func (e Engagement) classify(w http.ResponseWriter, r *http.Request) (*models.Case, lifecycle.State, bool) {
	found, ok := e.loadCase(w, r)
	if !ok {
		return nil, lifecycle.State{}, false
	}
	state, err := e.engine().Classify(found.LifecycleRecord(), e.now())
	if err != nil {
		config.ErrorStatus("failed to classify case", lifecycleErrorStatus(err), w, err)
		return nil, lifecycle.State{}, false
	}
	return found, state, true
}

// allow writes 403 unless role may perform action in state.
func allow(w http.ResponseWriter, state lifecycle.State, role lifecycle.Role, action lifecycle.Action) bool {
	ok, err := lifecycle.Allowed(state.Stage, role, action)
	if err != nil {
		config.ErrorStatus("failed to check permissions", lifecycleErrorStatus(err), w, err)
		return false
	}
	if !ok {
		config.ErrorStatus(string(action)+" not allowed in "+string(state.Stage), http.StatusForbidden, w, nil)
		return false
	}
	return true
}

// CommentsHandler lists a case's comments, oldest first
func (e Engagement) CommentsHandler(w http.ResponseWriter, r *http.Request) {
	found, ok := e.loadCase(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	comments, err := e.CommentDB.FindByCaseID(ctx, found.CaseID, commentPageSize)
	if err != nil {
		config.ErrorStatus("failed to get comments", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// CreateCommentHandler adds a comment when the stage takes new ones
func (e Engagement) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" || utf8.RuneCountInString(body) > maxCommentLength {
		config.ErrorStatus("comment body must be between 1 and 2000 characters", http.StatusBadRequest, w, nil)
		return
	}

	found, state, ok := e.classify(w, r)
	if !ok || !allow(w, state, role, lifecycle.ActionComment) {
		return
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = "Anonymous"
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		CaseID:    found.CaseID,
		Author:    author,
		Role:      role,
		Body:      body,
		CreatedAt: e.now().UTC(),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := e.CommentDB.InsertOne(ctx, &comment); err != nil {
		config.ErrorStatus("failed to store comment", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// CastVoteHandler records a community vote. Only voters may vote, only while
// voting is open, and only once per case.
func (e Engagement) CastVoteHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	var req models.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if req.Choice != models.VoteKeep && req.Choice != models.VoteDelete {
		config.ErrorStatus("choice must be keep or delete", http.StatusBadRequest, w, nil)
		return
	}
	voterID := strings.TrimSpace(req.VoterID)
	if voterID == "" {
		config.ErrorStatus("missing voter id", http.StatusBadRequest, w, nil)
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" || utf8.RuneCountInString(reason) > maxReasonLength {
		config.ErrorStatus("a reason between 1 and 1000 characters is required", http.StatusBadRequest, w, nil)
		return
	}

	found, state, ok := e.classify(w, r)
	if !ok || !allow(w, state, role, lifecycle.ActionVote) {
		return
	}

	vote := models.Vote{
		ID:        uuid.NewString(),
		CaseID:    found.CaseID,
		VoterID:   voterID,
		Choice:    req.Choice,
		Reason:    reason,
		CreatedAt: e.now().UTC(),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := e.VoteDB.InsertOne(ctx, &vote); err != nil {
		if errors.Is(err, databases.ErrDuplicate) {
			config.ErrorStatus("voter has already voted on this case", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to store vote", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.StoreResponse{Success: true, Message: "Vote recorded"})
}

// VoteTallyHandler returns the vote counts once a verdict exists. Before
// that the tally stays hidden from every role.
func (e Engagement) VoteTallyHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	found, state, ok := e.classify(w, r)
	if !ok || !allow(w, state, role, lifecycle.ActionViewTally) {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	keep, remove, err := e.VoteDB.Tally(ctx, found.CaseID)
	if err != nil {
		config.ErrorStatus("failed to tally votes", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.VoteTally{
		CaseID:  found.CaseID,
		Keep:    keep,
		Delete:  remove,
		Verdict: state.Stage,
	})
}

var interactionActions = map[string]lifecycle.Action{
	models.InteractionInformative: lifecycle.ActionReact,
	models.InteractionNotUseful:   lifecycle.ActionReact,
	models.InteractionFollow:      lifecycle.ActionFollowPin,
	models.InteractionPin:         lifecycle.ActionFollowPin,
}

// InteractionHandler records a reaction, follow or pin as an analytics event
func (e Engagement) InteractionHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	var req models.InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	action, known := interactionActions[req.Kind]
	if !known {
		config.ErrorStatus("unknown interaction kind", http.StatusBadRequest, w, nil)
		return
	}

	found, state, ok := e.classify(w, r)
	if !ok || !allow(w, state, role, action) {
		return
	}

	id := req.AnonID
	if id == "" {
		id = anonID(r)
	}
	e.Analytics.Track(analytics.EventCaseInteraction, id, map[string]interface{}{
		"case_id": found.CaseID,
		"kind":    req.Kind,
		"stage":   string(state.Stage),
		"role":    string(role),
	})
	writeJSON(w, http.StatusAccepted, models.StoreResponse{Success: true, Message: "Interaction recorded"})
}
