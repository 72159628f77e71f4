package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnounce/dnounce-api/lifecycle"
	"github.com/dnounce/dnounce-api/models"
)

func TestNew(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("DB_NAME", "test")
	t.Setenv("LIFECYCLE_SCHEDULING", "true")
	t.Setenv("PUBLISHED_HOLD", "36h")
	t.Setenv("LIFECYCLE_SWEEP", "")
	conf := New()

	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
	assert.True(t, conf.LifecycleScheduling)
	assert.Equal(t, 36*time.Hour, conf.PublishedHold)
	assert.Equal(t, DefaultLifecycleSweep, conf.LifecycleSweep)
}

func TestNewIgnoresInvalidValues(t *testing.T) {
	t.Setenv("LIFECYCLE_SCHEDULING", "maybe")
	t.Setenv("PUBLISHED_HOLD", "a while")
	conf := New()

	assert.False(t, conf.LifecycleScheduling)
	assert.Equal(t, DefaultPublishedHold, conf.PublishedHold)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestErrorStatusNilError(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("not found", http.StatusNotFound, rr, nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not found")
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(0))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestLoadDemoTuningDefaults(t *testing.T) {
	got, err := LoadDemoTuning("")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.DefaultDemoTuning(), got)
}

func TestLoadDemoTuningOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weights:
  - stage: PUBLISHED
    weight: 0.5
  - stage: VOTING
    weight: 0.5
showDeletedSlots: 0
startWindow: 48h
`), 0o600))

	got, err := LoadDemoTuning(path)
	require.NoError(t, err)
	assert.Len(t, got.Weights, 2)
	assert.Equal(t, lifecycle.StageVoting, got.Weights[1].Stage)
	assert.Equal(t, uint32(0), got.ShowDeletedSlots)
	assert.Equal(t, 48*time.Hour, got.StartWindow)
	assert.Equal(t, lifecycle.DefaultDemoTuning().ProgressBuckets, got.ProgressBuckets)
}

func TestLoadDemoTuningRejectsBadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weights:
  - stage: PUBLISHED
    weight: 0.7
`), 0o600))

	_, err := LoadDemoTuning(path)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTuning)

	require.NoError(t, os.WriteFile(path, []byte("startWindow: soon\n"), 0o600))
	_, err = LoadDemoTuning(path)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTuning)

	_, err = LoadDemoTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
