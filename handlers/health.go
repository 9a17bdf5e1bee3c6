package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newswatcher/newswatcher/backend/news-worker/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check pings one dependency; a nil error means it is usable.
type Check func(ctx context.Context) error

// OpsHandler serves the worker's liveness, readiness, state and metrics endpoints.
type OpsHandler struct {
	state    func() worker.State
	checks   map[string]Check
	gatherer prometheus.Gatherer
	started  time.Time
	timeout  time.Duration
}

// NewOpsHandler reports the state returned by state. A nil gatherer means
// the default prometheus registry.
func NewOpsHandler(state func() worker.State, gatherer prometheus.Gatherer) *OpsHandler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &OpsHandler{
		state:    state,
		checks:   map[string]Check{},
		gatherer: gatherer,
		started:  time.Now(),
		timeout:  2 * time.Second,
	}
}

// AddCheck registers a readiness dependency.
func (h *OpsHandler) AddCheck(name string, c Check) { h.checks[name] = c }

// Register mounts the endpoints on r.
func (h *OpsHandler) Register(r gin.IRoutes) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", h.ready)
	r.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.state())
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}

// ready returns 200 only when every registered dependency answers.
func (h *OpsHandler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	deps := map[string]bool{}
	for _, name := range names {
		ok := h.checks[name](ctx) == nil
		deps[name] = ok
		ready = ready && ok
	}

	body := gin.H{"deps": deps, "worker": h.state(), "uptime": time.Since(h.started).String()}
	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}
