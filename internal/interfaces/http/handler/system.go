package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/agencydesk/backend/internal/infrastructure/logger"
	"github.com/agencydesk/backend/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout bounds each readiness check
const readyTimeout = 2 * time.Second

// Check reports whether a dependency is usable
type Check func(ctx context.Context) error

// SystemHandler serves the unversioned system endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]Check
	jobs      *scheduler.Scheduler
}

// NewSystemHandler creates a SystemHandler. checks are run by /ready;
// jobs may be nil.
func NewSystemHandler(name, version string, checks map[string]Check, jobs *scheduler.Scheduler) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		jobs:      jobs,
	}
}

// SystemInfoResponse is the /health payload
type SystemInfoResponse struct {
	Name      string               `json:"name"`
	Version   string               `json:"version"`
	GoVersion string               `json:"go_version"`
	Uptime    string               `json:"uptime"`
	Jobs      []scheduler.JobState `json:"jobs,omitempty"`
}

// ReadyResponse is the /ready payload
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Time   string            `json:"time"`
}

// RegisterRoutes mounts /health and /ready on the engine root
func (h *SystemHandler) RegisterRoutes(engine gin.IRoutes) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}

// Health reports liveness; it never touches dependencies
func (h *SystemHandler) Health(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.jobs != nil {
		info.Jobs = h.jobs.States()
	}
	h.Success(c, info)
}

// Ready runs every check and answers 503 when any fails
func (h *SystemHandler) Ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			logger.L(c.Request.Context()).Warn("Readiness check failed",
				zap.String("check", name),
				zap.Error(err),
			)
			resp.Status = "unavailable"
			resp.Checks[name] = "error"
			continue
		}
		resp.Checks[name] = "ok"
	}
	resp.Time = time.Now().UTC().Format(time.RFC3339)

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
