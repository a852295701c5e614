// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"shamewizard/internal/core/version"
	"shamewizard/internal/modkit/httpkit"
	ptime "shamewizard/internal/platform/time"
)

// Pinger is satisfied by anything that can report readiness
type Pinger interface {
	Ping(stdctx.Context) error
}

// Check is one named readiness dependency; nil Pinger reports skipped
type Check struct {
	Name   string
	Pinger Pinger
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	Clock       ptime.Clock
	// ReadyTimeout bounds all checks together, default 2s
	ReadyTimeout time.Duration
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Clock == nil {
		d.Clock = ptime.System{}
	}
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := &handlers{deps: d}

	httpkit.GetJSON(r, "/health", h.health)
	httpkit.GetJSON(r, "/ready", h.ready)
	httpkit.GetJSON(r, "/version", h.version)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
	Uptime  int64  `json:"uptime"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	now := h.deps.Clock.Now()
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     now.UTC().Format(time.RFC3339),
		Uptime:  int64(now.Sub(h.deps.StartedAt) / time.Second),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), h.deps.ReadyTimeout)
	defer cancel()

	overall := "ok"
	checks := make([]ReadyCheck, 0, len(h.deps.Checks))
	for _, c := range h.deps.Checks {
		rc := ReadyCheck{Name: c.Name, Status: "skipped"}
		if c.Pinger != nil {
			rc.Status = "ok"
			if err := c.Pinger.Ping(ctx); err != nil {
				rc.Status, rc.Error = "fail", err.Error()
				overall = "fail"
			}
		}
		checks = append(checks, rc)
	}

	return ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    h.deps.Clock.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}
