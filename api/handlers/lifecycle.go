package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dnounce/dnounce-api/api"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

// buildLifecycleView classifies c at now and gathers everything a case
// surface renders for role.
func buildLifecycleView(engine *lifecycle.Engine, c models.Case, role lifecycle.Role, now time.Time) (models.LifecycleView, error) {
	state, err := engine.Classify(c.LifecycleRecord(), now)
	if err != nil {
		return models.LifecycleView{}, err
	}
	return lifecycleViewFor(state, role, now)
}

func lifecycleViewFor(state lifecycle.State, role lifecycle.Role, now time.Time) (models.LifecycleView, error) {
	cfg, err := lifecycle.PermissionsFor(state.Stage)
	if err != nil {
		return models.LifecycleView{}, err
	}
	status, err := lifecycle.StatusLine(state, now)
	if err != nil {
		return models.LifecycleView{}, err
	}
	tracker, err := lifecycle.Tracker(state)
	if err != nil {
		return models.LifecycleView{}, err
	}
	perms, err := lifecycle.Permissions(state.Stage, role)
	if err != nil {
		return models.LifecycleView{}, err
	}

	view := models.LifecycleView{
		State:         state,
		Config:        cfg,
		DurationHours: cfg.DurationHours(),
		StatusText:    status,
		Tracker:       tracker,
		Permissions:   perms,
	}
	if cfg.HasDeadline && state.StageEndsAt != nil {
		view.TimeLeft = state.TimeLeft(now)
	}
	api.ObserveStage(string(state.Stage))
	return view, nil
}

func caseResponse(engine *lifecycle.Engine, c models.Case, role lifecycle.Role, now time.Time) (models.CaseResponse, error) {
	state, err := engine.Classify(c.LifecycleRecord(), now)
	if err != nil {
		return models.CaseResponse{}, err
	}
	return caseResponseFor(c, state, role, now)
}

func caseResponseFor(c models.Case, state lifecycle.State, role lifecycle.Role, now time.Time) (models.CaseResponse, error) {
	view, err := lifecycleViewFor(state, role, now)
	if err != nil {
		return models.CaseResponse{}, err
	}
	return models.CaseResponse{
		Case:            c,
		TypeLabel:       c.Type.Label(),
		DisplayNameLine: c.DisplayNameLine(),
		SummaryOneLine:  c.SummaryOneLine(),
		DefendantID:     c.DefendantID(),
		Role:            role,
		Lifecycle:       view,
	}, nil
}

// roleParam reads ?role=, defaulting to community.
func roleParam(r *http.Request) (lifecycle.Role, error) {
	return lifecycle.ParseRole(r.URL.Query().Get("role"))
}

// lifecycleErrorStatus maps engine errors onto HTTP: bad records are the
// caller's problem, unknown stored stages are ours.
func lifecycleErrorStatus(err error) int {
	if errors.Is(err, lifecycle.ErrInvalidInput) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
