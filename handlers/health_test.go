package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newOpsRouter(h *OpsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestHealth(t *testing.T) {
	h := NewOpsHandler(func() worker.State { return worker.State{} }, prometheus.NewRegistry())
	w := get(newOpsRouter(h), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())
}

func TestReady(t *testing.T) {
	var redisErr error
	h := NewOpsHandler(func() worker.State { return worker.State{RefreshingOne: 1} }, prometheus.NewRegistry())
	h.AddCheck("mongo", func(ctx context.Context) error { return nil })
	h.AddCheck("redis", func(ctx context.Context) error { return redisErr })
	r := newOpsRouter(h)

	w := get(r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
		Worker worker.State    `json:"worker"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ready", body.Status)
	require.Equal(t, map[string]bool{"mongo": true, "redis": true}, body.Deps)
	require.Equal(t, 1, body.Worker.RefreshingOne)

	redisErr = errors.New("connection refused")
	w = get(r, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "not_ready", body.Status)
	require.False(t, body.Deps["redis"])
	require.True(t, body.Deps["mongo"])
}

func TestState(t *testing.T) {
	last := time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC)
	h := NewOpsHandler(func() worker.State { return worker.State{Populating: 1, LastPopulated: last} }, prometheus.NewRegistry())
	w := get(newOpsRouter(h), "/state")
	require.Equal(t, http.StatusOK, w.Code)

	var st worker.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, 1, st.Populating)
	require.True(t, last.Equal(st.LastPopulated))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "newswatcher_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	h := NewOpsHandler(func() worker.State { return worker.State{} }, reg)
	w := get(newOpsRouter(h), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "newswatcher_test_total 1")
}
