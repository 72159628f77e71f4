package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/analytics"
	"github.com/dnounce/dnounce-api/api"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

// AnonIDHeader carries the browser's anonymous analytics id.
const AnonIDHeader = "X-Anon-ID"

// Case exported for testing purposes
type Case struct {
	DB        databases.CaseDatabase
	Airtable  AirtableClient
	Webhook   CaseForwarder
	Analytics *analytics.Service
	Engine    *lifecycle.Engine
	// Scheduling starts new cases at AI_VERIFICATION under the scheduler.
	Scheduling bool
	Now        func() time.Time
}

func (c Case) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Case) engine() *lifecycle.Engine {
	if c.Engine != nil {
		return c.Engine
	}
	return lifecycle.Default()
}

func (c Case) store() caseStore {
	return caseStore{DB: c.DB, Airtable: c.Airtable}
}

func anonID(r *http.Request) string {
	if id := r.Header.Get(AnonIDHeader); id != "" {
		return id
	}
	return analytics.NewAnonID()
}

// SubmitCaseHandler files a new case
func (c Case) SubmitCaseHandler(w http.ResponseWriter, r *http.Request) {
	var sub models.CaseSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := sub.Validate(); err != nil {
		config.ErrorStatus("invalid case submission", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := c.now()
	draft := sub.ToCase("", now)
	caseID, err := newCaseID(ctx, c.DB, draft.Type)
	if err != nil {
		config.ErrorStatus("failed to allocate case id", http.StatusInternalServerError, w, err)
		return
	}
	draft.CaseID = caseID

	if c.Scheduling {
		st, err := lifecycle.Begin(lifecycle.StageAIVerification, now)
		if err != nil {
			config.ErrorStatus("failed to start case lifecycle", http.StatusInternalServerError, w, err)
			return
		}
		draft.Lifecycle = &st
	}

	if err := c.DB.InsertOne(ctx, &draft); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, databases.ErrDuplicate) {
			status = http.StatusConflict
		}
		config.ErrorStatus("failed to store case", status, w, err)
		return
	}

	forwarded := false
	if c.Webhook != nil && c.Webhook.Configured() {
		if err := c.Webhook.SubmitCase(ctx, models.SubmissionFromCase(draft)); err != nil {
			// the case is stored; intake can be replayed from mongo
			zap.S().Errorw("failed to forward case to make", "caseId", caseID, "error", err)
		} else {
			forwarded = true
		}
	}

	c.Analytics.TrackCaseFormCompleted(anonID(r), caseID, draft.Relationship,
		draft.Defendant.City != "", draft.Defendant.State != "")

	writeJSON(w, http.StatusCreated, models.SubmitCaseResponse{
		CaseID:    caseID,
		Type:      draft.Type,
		Forwarded: forwarded,
		Message:   "Case submitted successfully",
	})
}

// loadCase resolves the case_id route var, writing the error response itself
// when the case cannot be served.
func (c Case) loadCase(w http.ResponseWriter, r *http.Request) (*models.Case, bool) {
	caseID := mux.Vars(r)["case_id"]
	if caseID == "" {
		config.ErrorStatus("missing case id", http.StatusBadRequest, w, nil)
		return nil, false
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := c.store().find(ctx, caseID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, databases.ErrNotFound) {
			status = http.StatusNotFound
		}
		config.ErrorStatus("failed to get case by ID", status, w, err)
		return nil, false
	}
	return found, true
}

// CaseByIDHandler returns a case and its lifecycle as seen by ?role=
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	found, ok := c.loadCase(w, r)
	if !ok {
		return
	}

	resp, err := caseResponse(c.engine(), *found, role, c.now())
	if err != nil {
		config.ErrorStatus("failed to classify case", lifecycleErrorStatus(err), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CaseLifecycleHandler returns only the lifecycle block of a case
func (c Case) CaseLifecycleHandler(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		return
	}
	found, ok := c.loadCase(w, r)
	if !ok {
		return
	}

	view, err := buildLifecycleView(c.engine(), *found, role, c.now())
	if err != nil {
		config.ErrorStatus("failed to classify case", lifecycleErrorStatus(err), w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type exploreFilter struct {
	query        string
	hasMedia     bool
	relationship string
	limit        int
}

func parseExploreFilter(r *http.Request) exploreFilter {
	q := r.URL.Query()
	f := exploreFilter{
		query:        strings.ToLower(strings.TrimSpace(q.Get("q"))),
		relationship: strings.TrimSpace(q.Get("relationship")),
		limit:        50,
	}
	f.hasMedia, _ = strconv.ParseBool(q.Get("hasMedia"))
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= feedLimit {
		f.limit = n
	}
	return f
}

func (f exploreFilter) match(c models.Case) bool {
	if f.hasMedia && c.FilesCount == 0 {
		return false
	}
	if f.relationship != "" && !strings.EqualFold(f.relationship, c.Relationship) {
		return false
	}
	if f.query == "" {
		return true
	}
	for _, field := range []string{c.Title, c.Summary, c.Defendant.FullName(), c.Defendant.Alias, c.Defendant.Organization, c.CaseID} {
		if strings.Contains(strings.ToLower(field), f.query) {
			return true
		}
	}
	return false
}

// ExploreHandler returns the public case feed, newest first
func (c Case) ExploreHandler(w http.ResponseWriter, r *http.Request) {
	if sort := r.URL.Query().Get("sort"); sort != "" && sort != "recent" {
		config.ErrorStatus("unsupported sort", http.StatusBadRequest, w, nil)
		return
	}
	f := parseExploreFilter(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.store().list(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}

	now := c.now()
	out := []models.CaseResponse{}
	for _, cs := range cases {
		if !f.match(cs) {
			continue
		}
		state, err := c.engine().Classify(cs.LifecycleRecord(), now)
		if err != nil {
			zap.S().Warnw("skipping unclassifiable case", "caseId", cs.CaseID, "error", err)
			continue
		}
		if !lifecycle.VisibleInExplore(state) {
			continue
		}
		resp, err := caseResponseFor(cs, state, lifecycle.RoleCommunity, now)
		if err != nil {
			zap.S().Warnw("skipping case", "caseId", cs.CaseID, "error", err)
			continue
		}
		out = append(out, resp)
		if len(out) == f.limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, models.CaseListResponse{Cases: out, Count: len(out)})
}

// DefendantHandler returns the cases shown on a defendant's profile
func (c Case) DefendantHandler(w http.ResponseWriter, r *http.Request) {
	defendantID := strings.ToLower(mux.Vars(r)["defendant_id"])
	if defendantID == "" {
		config.ErrorStatus("missing defendant id", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.store().list(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}

	now := c.now()
	out := []models.CaseResponse{}
	for _, cs := range cases {
		if cs.DefendantID() != defendantID {
			continue
		}
		state, err := c.engine().Classify(cs.LifecycleRecord(), now)
		if err != nil {
			zap.S().Warnw("skipping unclassifiable case", "caseId", cs.CaseID, "error", err)
			continue
		}
		if !lifecycle.VisibleOnDefendantProfile(state) {
			continue
		}
		resp, err := caseResponseFor(cs, state, lifecycle.RoleCommunity, now)
		if err != nil {
			zap.S().Warnw("skipping case", "caseId", cs.CaseID, "error", err)
			continue
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, models.CaseListResponse{Cases: out, Count: len(out)})
}
