// Package scheduler runs the background jobs that move scheduler-owned cases
// through their lifecycle.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
	templates "github.com/dnounce/dnounce-api/templates/html"
)

const (
	sweepLockName = "lifecycle_sweep"
	sweepLockTTL  = 10 * time.Minute
	sweepTimeout  = 5 * time.Minute
	sweepBatch    = 500
)

var transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dnounce_lifecycle_transitions_total",
	Help: "Lifecycle stage transitions applied by the scheduler.",
}, []string{"from", "to"})

// stages the sweep can move a case out of
var activeStages = bson.A{
	lifecycle.StageAIVerification,
	lifecycle.StagePartiesNotified,
	lifecycle.StagePublished,
	lifecycle.StageEvidenceArguments,
	lifecycle.StageCooling,
	lifecycle.StageVoting,
}

// Scheduler handles periodic lifecycle jobs
type Scheduler struct {
	cron       *cron.Cron
	CaseDB     databases.CaseDatabase
	VoteDB     databases.VoteDatabase
	LockDB     databases.SchedulerLockDatabase
	Mailer     Mailer
	spec       string
	hold       time.Duration
	baseURL    string
	instanceID string
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance. A nil mailer disables e-mail.
func NewScheduler(
	conf *config.Config,
	caseDB databases.CaseDatabase,
	voteDB databases.VoteDatabase,
	lockDB databases.SchedulerLockDatabase,
	mailer Mailer,
) *Scheduler {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	spec := conf.LifecycleSweep
	if spec == "" {
		spec = config.DefaultLifecycleSweep
	}
	hold := conf.PublishedHold
	if hold <= 0 {
		hold = config.DefaultPublishedHold
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		CaseDB:     caseDB,
		VoteDB:     voteDB,
		LockDB:     lockDB,
		Mailer:     mailer,
		spec:       spec,
		hold:       hold,
		baseURL:    strings.TrimRight(conf.BaseURL, "/"),
		instanceID: instanceID,
		now:        time.Now,
	}
}

// Start registers the sweep and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return fmt.Errorf("register lifecycle sweep %q: %w", s.spec, err)
	}
	s.cron.Start()
	zap.S().Infow("lifecycle scheduler started", "schedule", s.spec, "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("lifecycle scheduler stopped")
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.RunSweep(ctx); err != nil {
		zap.S().Errorw("lifecycle sweep failed", "error", err)
	}
}

// RunSweep advances every due case once the distributed lock is held. It
// returns the number of transitions applied. Another instance holding the
// lock is not an error.
func (s *Scheduler) RunSweep(ctx context.Context) (int, error) {
	acquired, err := s.LockDB.TryAcquireLock(ctx, sweepLockName, s.instanceID, sweepLockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !acquired {
		zap.S().Debug("lifecycle sweep already running on another instance, skipping")
		return 0, nil
	}
	defer func() {
		if err := s.LockDB.ReleaseLock(context.Background(), sweepLockName, s.instanceID); err != nil {
			zap.S().Warnw("failed to release sweep lock", "error", err)
		}
	}()

	now := s.now().UTC()
	cases, err := s.CaseDB.Find(ctx, s.dueFilter(now), options.Find().
		SetSort(bson.D{{Key: "lifecycle.stageEndsAt", Value: 1}}).
		SetLimit(sweepBatch))
	if err != nil {
		return 0, fmt.Errorf("find due cases: %w", err)
	}

	applied := 0
	for _, c := range cases {
		n, err := s.advanceCase(ctx, c, now)
		applied += n
		if err != nil {
			zap.S().Errorw("failed to advance case", "caseId", c.CaseID, "error", err)
		}
	}
	zap.S().Infow("lifecycle sweep finished", "due", len(cases), "transitions", applied, "instance", s.instanceID)
	return applied, nil
}

// dueFilter matches scheduler-owned cases whose stage deadline has passed, or
// published cases past the hold.
func (s *Scheduler) dueFilter(now time.Time) bson.M {
	return bson.M{
		"lifecycle.stage": bson.M{"$in": activeStages},
		"$or": bson.A{
			bson.M{"lifecycle.stageEndsAt": bson.M{"$lte": now}},
			bson.M{
				"lifecycle.stage":          lifecycle.StagePublished,
				"lifecycle.stageStartedAt": bson.M{"$lte": now.Add(-s.hold)},
			},
		},
	}
}

// advanceCase applies transitions until the case reaches a stage that is not
// due yet. A case that missed several deadlines catches up in one sweep.
func (s *Scheduler) advanceCase(ctx context.Context, c models.Case, now time.Time) (int, error) {
	if c.Lifecycle == nil {
		return 0, nil
	}
	state := *c.Lifecycle
	applied := 0
	for range lifecycle.Stages {
		next, ok, err := s.nextState(ctx, c.CaseID, state, now)
		if err != nil || !ok {
			return applied, err
		}

		moved, err := s.CaseDB.AdvanceLifecycle(ctx, c.CaseID, state.Stage, next)
		if err != nil {
			return applied, err
		}
		if !moved {
			// someone else advanced it first
			return applied, nil
		}
		transitions.WithLabelValues(string(state.Stage), string(next.Stage)).Inc()
		zap.S().Infow("case advanced", "caseId", c.CaseID, "from", state.Stage, "to", next.Stage)
		applied++

		s.notify(ctx, c, next)
		state = next
	}
	return applied, nil
}

// nextState returns the state a case in st should move to at now, or false
// when it is not due.
func (s *Scheduler) nextState(ctx context.Context, caseID string, st lifecycle.State, now time.Time) (lifecycle.State, bool, error) {
	var (
		to lifecycle.Stage
		at time.Time
	)
	switch {
	case st.Stage.IsTerminal():
		return lifecycle.State{}, false, nil
	case st.Stage == lifecycle.StagePublished:
		at = st.StageStartedAt.Add(s.hold)
		if now.Before(at) {
			return lifecycle.State{}, false, nil
		}
		to = lifecycle.StageEvidenceArguments
	case st.StageEndsAt == nil || now.Before(*st.StageEndsAt):
		return lifecycle.State{}, false, nil
	case st.Stage == lifecycle.StageVoting:
		keep, remove, err := s.VoteDB.Tally(ctx, caseID)
		if err != nil {
			return lifecycle.State{}, false, fmt.Errorf("tally votes: %w", err)
		}
		if to, err = lifecycle.Verdict(keep, remove); err != nil {
			return lifecycle.State{}, false, err
		}
		at = *st.StageEndsAt
	default:
		var ok bool
		if to, ok = lifecycle.Next(st.Stage); !ok {
			return lifecycle.State{}, false, nil
		}
		at = *st.StageEndsAt
	}

	next, err := lifecycle.Begin(to, at)
	if err != nil {
		return lifecycle.State{}, false, err
	}
	return next, true, nil
}

func (s *Scheduler) caseURL(caseID string) string {
	return s.baseURL + "/case/" + caseID
}

// notify sends the e-mails tied to entering next. Failures are logged only.
func (s *Scheduler) notify(ctx context.Context, c models.Case, next lifecycle.State) {
	if s.Mailer == nil {
		return
	}
	data := templates.CaseEmailData{CaseID: c.CaseID, CaseTitle: c.Title, CaseURL: s.caseURL(c.CaseID)}

	switch {
	case next.Stage == lifecycle.StagePartiesNotified:
		publishAt := next.StageStartedAt
		if next.ScheduledPublicationAt != nil {
			publishAt = *next.ScheduledPublicationAt
		}
		if c.Plaintiff.Email != "" {
			d := data
			d.RecipientName = c.Plaintiff.FirstName
			s.send(c.CaseID, c.Plaintiff, templates.RenderPlaintiffNotifiedEmail(d, publishAt))
		}
		if c.Defendant.Email != "" {
			d := data
			d.RecipientName = c.Defendant.FirstName
			s.send(c.CaseID, c.Defendant, templates.RenderDefendantNotifiedEmail(d, publishAt))
		}
	case next.Stage.IsTerminal():
		if c.Plaintiff.Email == "" {
			return
		}
		// counts are re-read so the e-mail matches the stored ballot
		keep, remove, err := s.VoteDB.Tally(ctx, c.CaseID)
		if err != nil {
			zap.S().Warnw("failed to tally votes for verdict email", "caseId", c.CaseID, "error", err)
		}
		d := data
		d.RecipientName = c.Plaintiff.FirstName
		s.send(c.CaseID, c.Plaintiff, templates.RenderVerdictEmail(d, next.Stage == lifecycle.StageVerdictKept, keep, remove))
	}
}

func (s *Scheduler) send(caseID string, to models.Party, msg templates.Message) {
	if err := s.Mailer.Send(to.Email, to.FullName(), msg); err != nil {
		zap.S().Errorw("failed to send lifecycle email", "caseId", caseID, "subject", msg.Subject, "error", err)
	}
}
