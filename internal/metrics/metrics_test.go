package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder("", nil)

	r.ObserveRun(models.RunSuccess, 1500*time.Millisecond, 12)
	r.ObserveRun(models.RunFailure, 2*time.Second, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.duration))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.questions))

	r.ObserveRun(models.RunSuccess, time.Second, 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(r.questions))
}

func TestRecorder_Push(t *testing.T) {
	var hits int32
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&hits, 1)
		path = req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder(srv.URL, nil)
	r.ObserveRun(models.RunSuccess, time.Second, 3)
	require.NoError(t, r.Push())
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	assert.Equal(t, "/metrics/job/"+DefaultJob, path)
}

func TestRecorder_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRecorder(srv.URL, nil)
	assert.Error(t, r.Push())
}

func TestRecorder_PushDisabled(t *testing.T) {
	assert.NoError(t, NewRecorder("", nil).Push())
}
