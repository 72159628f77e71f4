package lifecycle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnounce/dnounce-api/lifecycle"
)

func TestBegin(t *testing.T) {
	st, err := lifecycle.Begin(lifecycle.StagePartiesNotified, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StagePartiesNotified, st.Stage)
	assert.Equal(t, fixedNow, st.StageStartedAt)
	require.NotNil(t, st.StageEndsAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *st.StageEndsAt)
	require.NotNil(t, st.ScheduledPublicationAt)
	assert.Equal(t, *st.StageEndsAt, *st.ScheduledPublicationAt)
	assert.False(t, st.IsDemoRandomized)

	st, err = lifecycle.Begin(lifecycle.StageEvidenceArguments, fixedNow)
	require.NoError(t, err)
	require.NotNil(t, st.StageEndsAt)
	assert.Equal(t, fixedNow.Add(72*time.Hour), *st.StageEndsAt)
	assert.Nil(t, st.ScheduledPublicationAt)

	st, err = lifecycle.Begin(lifecycle.StageVerdictKept, fixedNow)
	require.NoError(t, err)
	assert.Nil(t, st.StageEndsAt)

	_, err = lifecycle.Begin("ARCHIVED", fixedNow)
	assert.ErrorIs(t, err, lifecycle.ErrUnknownStage)
}

func TestBegin_ClassifiedVerbatim(t *testing.T) {
	st, err := lifecycle.Begin(lifecycle.StageCooling, fixedNow)
	require.NoError(t, err)

	got, err := lifecycle.Classify(lifecycle.Record{CaseID: "EVB123456", Lifecycle: &st}, fixedNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, st, got)
	assert.Equal(t, lifecycle.TimeExpired, got.TimeLeft(fixedNow.Add(48*time.Hour)))
}

func TestNext(t *testing.T) {
	path := []lifecycle.Stage{lifecycle.StageAIVerification}
	for {
		next, ok := lifecycle.Next(path[len(path)-1])
		if !ok {
			break
		}
		path = append(path, next)
	}
	assert.Equal(t, []lifecycle.Stage{
		lifecycle.StageAIVerification,
		lifecycle.StagePartiesNotified,
		lifecycle.StagePublished,
		lifecycle.StageEvidenceArguments,
		lifecycle.StageCooling,
		lifecycle.StageVoting,
	}, path)

	for _, s := range []lifecycle.Stage{lifecycle.StageVerdictKept, lifecycle.StageVerdictDeleted} {
		_, ok := lifecycle.Next(s)
		assert.False(t, ok, s)
	}
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		keep, remove int
		want         lifecycle.Stage
	}{
		{0, 0, lifecycle.StageVerdictKept},
		{3, 3, lifecycle.StageVerdictKept},
		{5, 2, lifecycle.StageVerdictKept},
		{2, 3, lifecycle.StageVerdictDeleted},
	}
	for _, tt := range tests {
		got, err := lifecycle.Verdict(tt.keep, tt.remove)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d keep / %d delete", tt.keep, tt.remove)
	}

	_, err := lifecycle.Verdict(-1, 0)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidInput)
}

func TestTracker(t *testing.T) {
	steps, err := lifecycle.Tracker(lifecycle.State{Stage: lifecycle.StageCooling})
	require.NoError(t, err)
	require.Len(t, steps, 7)
	assert.Equal(t, lifecycle.StepComplete, steps[3].Status)
	assert.Equal(t, lifecycle.StepActive, steps[4].Status)
	assert.Equal(t, "Cooling Period", steps[4].Label)
	assert.Equal(t, lifecycle.StepUpcoming, steps[5].Status)
	assert.Equal(t, 7, steps[6].Position)

	steps, err = lifecycle.Tracker(lifecycle.State{Stage: lifecycle.StageVerdictDeleted})
	require.NoError(t, err)
	require.Len(t, steps, 7)
	for _, s := range steps {
		assert.Equal(t, lifecycle.StepComplete, s.Status)
	}
	assert.Equal(t, lifecycle.StageVerdictDeleted, steps[6].Stage)
	assert.Equal(t, "Case Deleted", steps[6].Label)

	_, err = lifecycle.Tracker(lifecycle.State{Stage: "ARCHIVED"})
	assert.ErrorIs(t, err, lifecycle.ErrUnknownStage)
}
