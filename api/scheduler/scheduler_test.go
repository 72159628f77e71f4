package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/goleak"

	"github.com/dnounce/dnounce-api/config"
	"github.com/dnounce/dnounce-api/databases/mocks"
	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
	templates "github.com/dnounce/dnounce-api/templates/html"
)

type sentMail struct {
	to  string
	msg templates.Message
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(toEmail, _ string, msg templates.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: toEmail, msg: msg})
	return nil
}

var sweepNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	s      *Scheduler
	caseDB *mocks.CaseDatabase
	voteDB *mocks.VoteDatabase
	lockDB *mocks.SchedulerLockDatabase
	mailer *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		caseDB: mocks.NewCaseDatabase(t),
		voteDB: mocks.NewVoteDatabase(t),
		lockDB: mocks.NewSchedulerLockDatabase(t),
		mailer: &fakeMailer{},
	}
	conf := &config.Config{BaseURL: "https://dnounce.com/", PublishedHold: 24 * time.Hour}
	f.s = NewScheduler(conf, f.caseDB, f.voteDB, f.lockDB, f.mailer)
	f.s.now = func() time.Time { return sweepNow }
	return f
}

func (f *fixture) expectLock() {
	f.lockDB.On("TryAcquireLock", mock.Anything, sweepLockName, f.s.instanceID, sweepLockTTL).Return(true, nil)
	f.lockDB.On("ReleaseLock", mock.Anything, sweepLockName, f.s.instanceID).Return(nil)
}

func scheduledCase(stage lifecycle.Stage, startedAt time.Time) models.Case {
	st, err := lifecycle.Begin(stage, startedAt)
	if err != nil {
		panic(err)
	}
	return models.Case{
		CaseID:    "EVB123456",
		Title:     "Unpaid invoice",
		Plaintiff: models.Party{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com"},
		Defendant: models.Party{FirstName: "Bo", LastName: "Smith", Email: "bo@example.com"},
		Lifecycle: &st,
	}
}

func TestRunSweep_LockHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	f.lockDB.On("TryAcquireLock", mock.Anything, sweepLockName, mock.Anything, sweepLockTTL).Return(false, nil)

	n, err := f.s.RunSweep(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunSweep_LockError(t *testing.T) {
	f := newFixture(t)
	f.lockDB.On("TryAcquireLock", mock.Anything, sweepLockName, mock.Anything, sweepLockTTL).Return(false, errors.New("mongo down"))

	_, err := f.s.RunSweep(context.Background())

	assert.ErrorContains(t, err, "mongo down")
}

func TestRunSweep_CoolingToVoting(t *testing.T) {
	f := newFixture(t)
	f.expectLock()
	c := scheduledCase(lifecycle.StageCooling, sweepNow.Add(-25*time.Hour))
	f.caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Case{c}, nil)

	var got lifecycle.State
	f.caseDB.On("AdvanceLifecycle", mock.Anything, "EVB123456", lifecycle.StageCooling, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(3).(lifecycle.State) }).
		Return(true, nil).Once()

	n, err := f.s.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, lifecycle.StageVoting, got.Stage)
	assert.Equal(t, *c.Lifecycle.StageEndsAt, got.StageStartedAt)
	require.NotNil(t, got.StageEndsAt)
	assert.Equal(t, got.StageStartedAt.Add(72*time.Hour), *got.StageEndsAt)
	assert.Empty(t, f.mailer.sent)
}

func TestRunSweep_VotingVerdict(t *testing.T) {
	f := newFixture(t)
	f.expectLock()
	c := scheduledCase(lifecycle.StageVoting, sweepNow.Add(-73*time.Hour))
	f.caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Case{c}, nil)
	f.voteDB.On("Tally", mock.Anything, "EVB123456").Return(3, 5, nil)
	f.caseDB.On("AdvanceLifecycle", mock.Anything, "EVB123456", lifecycle.StageVoting,
		mock.MatchedBy(func(s lifecycle.State) bool { return s.Stage == lifecycle.StageVerdictDeleted })).
		Return(true, nil).Once()

	n, err := f.s.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "ana@example.com", f.mailer.sent[0].to)
	assert.Equal(t, "Verdict for case EVB123456: deleted", f.mailer.sent[0].msg.Subject)
	assert.Contains(t, f.mailer.sent[0].msg.Text, "https://dnounce.com/case/EVB123456")
}

func TestRunSweep_CatchesUpMissedDeadlines(t *testing.T) {
	f := newFixture(t)
	f.expectLock()
	// AI 72h, notified 24h, published hold 24h, evidence 72h: 192h to COOLING
	c := scheduledCase(lifecycle.StageAIVerification, sweepNow.Add(-200*time.Hour))
	f.caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Case{c}, nil)

	var stages []lifecycle.Stage
	f.caseDB.On("AdvanceLifecycle", mock.Anything, "EVB123456", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stages = append(stages, args.Get(3).(lifecycle.State).Stage) }).
		Return(true, nil)

	n, err := f.s.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []lifecycle.Stage{
		lifecycle.StagePartiesNotified,
		lifecycle.StagePublished,
		lifecycle.StageEvidenceArguments,
		lifecycle.StageCooling,
	}, stages)

	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "ana@example.com", f.mailer.sent[0].to)
	assert.Equal(t, "Case EVB123456 verified", f.mailer.sent[0].msg.Subject)
	assert.Equal(t, "bo@example.com", f.mailer.sent[1].to)
}

func TestRunSweep_PublishedWithinHold(t *testing.T) {
	f := newFixture(t)
	f.expectLock()
	c := scheduledCase(lifecycle.StagePublished, sweepNow.Add(-time.Hour))
	f.caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Case{c}, nil)

	n, err := f.s.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunSweep_LostRace(t *testing.T) {
	f := newFixture(t)
	f.expectLock()
	c := scheduledCase(lifecycle.StageEvidenceArguments, sweepNow.Add(-80*time.Hour))
	f.caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Case{c}, nil)
	f.caseDB.On("AdvanceLifecycle", mock.Anything, "EVB123456", lifecycle.StageEvidenceArguments, mock.Anything).
		Return(false, nil).Once()

	n, err := f.s.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunSweep_FindError(t *testing.T) {
	f := newFixture(t)
	f.expectLock()
	f.caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := f.s.RunSweep(context.Background())

	assert.ErrorContains(t, err, "find due cases")
}

func TestDueFilter(t *testing.T) {
	f := newFixture(t)

	filter := f.s.dueFilter(sweepNow)

	or := filter["$or"].(bson.A)
	require.Len(t, or, 2)
	published := or[1].(bson.M)
	assert.Equal(t, lifecycle.StagePublished, published["lifecycle.stage"])
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	f := newFixture(t)

	require.NoError(t, f.s.Start())
	f.s.Stop()
}

func TestStart_BadSchedule(t *testing.T) {
	f := newFixture(t)
	f.s.spec = "not a schedule"

	assert.Error(t, f.s.Start())
}

func TestNewSendGridMailer_Disabled(t *testing.T) {
	assert.Nil(t, NewSendGridMailer("", ""))
	assert.NotNil(t, NewSendGridMailer("key", ""))
}
