package reddit

import (
	"context"
	"time"

	"shamewizard/internal/platform/logger"
)

const (
	defaultPollEvery = time.Second
	defaultWindow    = 1000
)

// Lister is the slice of Client a Stream polls
type Lister interface {
	NewComments(ctx context.Context, subreddit string, limit int) ([]Comment, error)
}

// StreamOptions configures a polling comment stream
type StreamOptions struct {
	Subreddit string
	Limit     int
	Every     time.Duration

	// Window bounds how many recent ids are remembered for de-duplication across polls
	Window int
}

// Event is one stream delivery: a comment or a listening error
type Event struct {
	Comment Comment
	Err     error
}

// Stream polls the newest comments and emits each unseen one once, oldest first
type Stream struct {
	src  Lister
	opts StreamOptions
	log  logger.Logger

	seen  map[string]struct{}
	order []string
	next  int
}

// NewStream builds a Stream over src
func NewStream(src Lister, o StreamOptions) *Stream {
	if o.Subreddit == "" {
		o.Subreddit = "all"
	}
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Every <= 0 {
		o.Every = defaultPollEvery
	}
	if o.Window < o.Limit*2 {
		o.Window = max(defaultWindow, o.Limit*2)
	}
	return &Stream{
		src:   src,
		opts:  o,
		log:   *logger.Named("stream"),
		seen:  make(map[string]struct{}, o.Window),
		order: make([]string, 0, o.Window),
	}
}

// Subreddit returns the subreddit being listened on
func (s *Stream) Subreddit() string { return s.opts.Subreddit }

// Poll fetches one page and returns comments not seen before, oldest first.
// Not safe for concurrent use; Events drives it from a single goroutine
func (s *Stream) Poll(ctx context.Context) ([]Comment, error) {
	page, err := s.src.NewComments(ctx, s.opts.Subreddit, s.opts.Limit)
	if err != nil {
		return nil, err
	}
	var fresh []Comment
	for i := len(page) - 1; i >= 0; i-- {
		c := page[i]
		if c.ID == "" {
			continue
		}
		if _, ok := s.seen[c.ID]; ok {
			continue
		}
		s.remember(c.ID)
		fresh = append(fresh, c)
	}
	return fresh, nil
}

// Events starts polling and returns the delivery channel. The channel is
// closed once ctx is done
func (s *Stream) Events(ctx context.Context) <-chan Event {
	out := make(chan Event, s.opts.Limit)
	go func() {
		defer close(out)
		s.log.Info().Str("subreddit", s.opts.Subreddit).Dur("every", s.opts.Every).Msg("listening for comments")

		t := time.NewTicker(s.opts.Every)
		defer t.Stop()
		for {
			if !s.pollOnce(ctx, out) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()
	return out
}

// pollOnce emits one poll's results; false means ctx ended mid-delivery
func (s *Stream) pollOnce(ctx context.Context, out chan<- Event) bool {
	cs, err := s.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		return send(ctx, out, Event{Err: err})
	}
	for _, c := range cs {
		if !send(ctx, out, Event{Comment: c}) {
			return false
		}
	}
	return true
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- ev:
		return true
	}
}

func (s *Stream) remember(id string) {
	if len(s.order) < s.opts.Window {
		s.order = append(s.order, id)
	} else {
		delete(s.seen, s.order[s.next])
		s.order[s.next] = id
		s.next = (s.next + 1) % s.opts.Window
	}
	s.seen[id] = struct{}{}
}
