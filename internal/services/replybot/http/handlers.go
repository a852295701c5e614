// Package http exposes the read-only bot status endpoints
package http

import (
	"net/http"
	"strings"

	"shamewizard/internal/modkit/httpkit"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/services/replybot/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Status  domain.StatusPort
	Preview domain.PreviewPort
}

type handlers struct {
	deps Deps
}

// QueueResponse is the pending jobs payload, head first
type QueueResponse struct {
	Depth int               `json:"depth"`
	Jobs  []domain.ReplyJob `json:"jobs"`
}

// PreviewResponse lists the reply each matching rule would produce
type PreviewResponse struct {
	User    string   `json:"user"`
	Replies []string `json:"replies"`
}

// Register mounts the bot routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.GetJSON(r, "/stats", h.stats)
	httpkit.GetJSON(r, "/queue", h.queue)
	if d.Preview != nil {
		httpkit.GetJSON(r, "/preview", h.preview)
	}
}

func (h *handlers) stats(_ *http.Request) (any, error) {
	return h.deps.Status.Stats(), nil
}

func (h *handlers) queue(_ *http.Request) (any, error) {
	jobs := h.deps.Status.Pending()
	if jobs == nil {
		jobs = []domain.ReplyJob{}
	}
	return QueueResponse{Depth: len(jobs), Jobs: jobs}, nil
}

func (h *handlers) preview(r *http.Request) (any, error) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		return nil, perr.WithField(perr.InvalidArgf("user is required"), "user")
	}
	replies := h.deps.Preview.Preview(user)
	if len(replies) == 0 {
		return nil, perr.NotFoundf("no tracked rules for %s", user)
	}
	return PreviewResponse{User: user, Replies: replies}, nil
}
