package domain

import (
	"context"

	"shamewizard/internal/core/rules"
)

// Event is one delivery from a comment source: a comment or a listening error
type Event struct {
	Comment Comment
	Err     error
}

// CommentSource delivers comments in platform order. The channel closes when ctx ends
type CommentSource interface {
	Events(ctx context.Context) <-chan Event
}

// RuleSource loads the current tracked rule set
type RuleSource interface {
	Load(ctx context.Context) (*rules.Set, error)
}

// StateStore persists the dedup ledger snapshot. Load of a missing
// document returns an empty State and no error
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Ping(ctx context.Context) error
	Name() string
}

// Replier posts a reply to a comment
type Replier interface {
	Reply(ctx context.Context, c Comment, text string) error
}

// WorkerPort runs the long-lived bot loops until ctx ends
type WorkerPort interface {
	Run(ctx context.Context) error
}

// StatusPort is the read side used by the status endpoints
type StatusPort interface {
	Stats() Stats
	Pending() []ReplyJob
}

// PreviewPort renders what the bot would send for an author without side effects
type PreviewPort interface {
	Preview(author string) []string
}
