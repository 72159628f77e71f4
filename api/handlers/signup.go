package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/airtable"
	"github.com/dnounce/dnounce-api/analytics"
	"github.com/dnounce/dnounce-api/api"
	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/models"
)

// Signup stores waitlist and survey entries. Airtable is the primary store;
// mongo takes over when Airtable is unconfigured or failing.
type Signup struct {
	Airtable   AirtableClient
	WaitlistDB databases.WaitlistDatabase
	SurveyDB   databases.SurveyDatabase
	Analytics  *analytics.Service
	Now        func() time.Time
}

func (s Signup) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Signup) airtableEnabled() bool {
	return s.Airtable != nil && s.Airtable.Configured()
}

func airtableTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

type waitlistFields struct {
	Email       string `json:"email"`
	Consent     bool   `json:"consent"`
	Source      string `json:"source"`
	CaseID      string `json:"case_id,omitempty"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type surveyFields struct {
	Email             string `json:"email"`
	CaseID            string `json:"case_id,omitempty"`
	EaseOfUse         string `json:"ease_of_use"`
	UnderstoodPurpose string `json:"understood_purpose"`
	FutureUse         string `json:"future_use"`
	LikedMost         string `json:"liked_most,omitempty"`
	ImproveOneThing   string `json:"improve_one_thing,omitempty"`
	Consent           bool   `json:"consent"`
	CreatedAt         string `json:"created_at"`
}

// WaitlistHandler adds an email to the prelaunch waitlist. Signing up twice
// is not an error.
func (s Signup) WaitlistHandler(w http.ResponseWriter, r *http.Request) {
	var signup models.WaitlistSignup
	if err := json.NewDecoder(r.Body).Decode(&signup); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	signup.Normalize(s.now())
	if err := signup.Validate(); err != nil {
		config.ErrorStatus("invalid waitlist signup", http.StatusBadRequest, w, err)
		return
	}
	if signup.Source == "" {
		signup.Source = "website"
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := s.storeWaitlist(ctx, signup)
	if err != nil {
		config.ErrorStatus("failed to store waitlist signup", http.StatusInternalServerError, w, err)
		return
	}

	msg := "You're already on the list."
	if created {
		msg = "You're on the list!"
		s.Analytics.TrackPrelaunchOptIn(anonID(r), signup.Email, signup.Source, signup.CaseID)
	}
	writeJSON(w, http.StatusOK, models.StoreResponse{Success: true, Message: msg})
}

func (s Signup) storeWaitlist(ctx context.Context, signup models.WaitlistSignup) (bool, error) {
	if s.airtableEnabled() {
		created, err := s.storeWaitlistAirtable(ctx, signup)
		if err == nil {
			return created, nil
		}
		zap.S().Warnw("airtable waitlist write failed, falling back to mongo", "error", err)
	}
	return s.WaitlistDB.Upsert(ctx, &signup)
}

func (s Signup) storeWaitlistAirtable(ctx context.Context, signup models.WaitlistSignup) (bool, error) {
	exists, err := s.Airtable.EmailExists(ctx, signup.Email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	err = s.Airtable.CreateRecords(ctx, airtable.TableWaitlist, waitlistFields{
		Email:       signup.Email,
		Consent:     signup.Consent,
		Source:      signup.Source,
		CaseID:      signup.CaseID,
		UTMSource:   signup.UTMSource,
		UTMMedium:   signup.UTMMedium,
		UTMCampaign: signup.UTMCampaign,
		CreatedAt:   airtableTime(signup.CreatedAt),
	})
	return err == nil, err
}

// SurveyHandler stores a post-submit survey response
func (s Signup) SurveyHandler(w http.ResponseWriter, r *http.Request) {
	var resp models.SurveyResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	resp.Normalize(s.now())
	if err := resp.Validate(); err != nil {
		config.ErrorStatus("invalid survey response", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := s.storeSurvey(ctx, resp); err != nil {
		config.ErrorStatus("failed to store survey response", http.StatusInternalServerError, w, err)
		return
	}
	s.Analytics.Track(analytics.EventSurveySubmitted, anonID(r), map[string]interface{}{
		"case_id":    resp.CaseID,
		"future_use": resp.FutureUse,
	})
	writeJSON(w, http.StatusOK, models.StoreResponse{Success: true, Message: "Thanks for your feedback!"})
}

func (s Signup) storeSurvey(ctx context.Context, resp models.SurveyResponse) error {
	if s.airtableEnabled() {
		err := s.Airtable.CreateRecords(ctx, airtable.TableSurveys, surveyFields{
			Email:             resp.Email,
			CaseID:            resp.CaseID,
			EaseOfUse:         resp.EaseOfUse,
			UnderstoodPurpose: resp.UnderstoodPurpose,
			FutureUse:         resp.FutureUse,
			LikedMost:         resp.LikedMost,
			ImproveOneThing:   resp.ImproveOneThing,
			Consent:           resp.Consent,
			CreatedAt:         airtableTime(resp.CreatedAt),
		})
		if err == nil {
			return nil
		}
		zap.S().Warnw("airtable survey write failed, falling back to mongo", "error", err)
	}
	return s.SurveyDB.InsertOne(ctx, &resp)
}
