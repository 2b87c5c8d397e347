package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-export/pkg/logger"
)

func TestReportFlush(t *testing.T) {
	var gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, RunInfo{
		RunID:      "run-42",
		InstanceID: "instance-1",
		State:      "Massachusetts",
		Population: 1000,
	}, logger.NewLogger(nil))

	c.ReportFlush(context.Background(), map[string]int{"patient": 10, "encounter": 31})

	assert.Equal(t, "/v1/runs/run-42/updates", gotPath)

	var u struct {
		Counts     map[string]int `json:"counts"`
		Instance   string         `json:"instance"`
		State      string         `json:"state"`
		StateTotal int            `json:"state_total"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &u))
	assert.Equal(t, map[string]int{"patient": 10, "encounter": 31}, u.Counts)
	assert.Equal(t, "instance-1", u.Instance)
	assert.Equal(t, "Massachusetts", u.State)
	assert.Equal(t, 1000, u.StateTotal)
}

func TestReportFlushServerErrorDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, RunInfo{RunID: "run-42"}, logger.NewLogger(nil))
	c.ReportFlush(context.Background(), map[string]int{"patient": 1})
}
