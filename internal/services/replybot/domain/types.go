// Package domain defines the reply bot types and the ports it depends on
package domain

import (
	"time"

	"shamewizard/internal/core/rules"
)

// Comment is a platform comment as seen by the bot. Read-only to the core
type Comment struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	Subreddit  string    `json:"subreddit"`
	Permalink  string    `json:"permalink"`
	CreatedUTC time.Time `json:"created_utc"`
}

// Thing returns the reply target, deriving it from ID when FullName is unset
func (c Comment) Thing() string {
	if c.FullName != "" {
		return c.FullName
	}
	return "t1_" + c.ID
}

// ReplyJob is one pending reply. Jobs drain FIFO and leave the queue only on success
type ReplyJob struct {
	ID         string            `json:"id"`
	Comment    Comment           `json:"comment"`
	Rule       rules.TrackedRule `json:"rule"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
	Attempts   int               `json:"attempts"`
}

// State is the persisted snapshot: {"users":{},"comments":[...]}.
// Users is carried through untouched
type State struct {
	Users    map[string]any `json:"users"`
	Comments []string       `json:"comments"`
}

// Normalize replaces nil collections so the document always has both keys
func (s State) Normalize() State {
	if s.Users == nil {
		s.Users = map[string]any{}
	}
	if s.Comments == nil {
		s.Comments = []string{}
	}
	return s
}

// Stats is the read-only status view of a running bot
type Stats struct {
	DryRun         bool      `json:"dry_run"`
	QueueDepth     int       `json:"queue_depth"`
	LedgerSize     int       `json:"ledger_size"`
	LedgerDirty    bool      `json:"ledger_dirty"`
	RulesLoaded    int       `json:"rules_loaded"`
	TrackedUsers   int       `json:"tracked_users"`
	Cooldown       string    `json:"cooldown"`
	LastReply      time.Time `json:"last_reply,omitzero"`
	LastFailure    time.Time `json:"last_failure,omitzero"`
	NextReplyAfter time.Time `json:"next_reply_after,omitzero"`
	StateBackend   string    `json:"state_backend"`
}
