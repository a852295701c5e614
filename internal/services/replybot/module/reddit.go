package module

import (
	"context"

	"shamewizard/internal/adapters/reddit"
	"shamewizard/internal/services/replybot/domain"
)

// redditSource adapts the polling stream to domain.CommentSource
type redditSource struct {
	stream *reddit.Stream
}

func (s redditSource) Events(ctx context.Context) <-chan domain.Event {
	in := s.stream.Events(ctx)
	out := make(chan domain.Event)
	go func() {
		defer close(out)
		for ev := range in {
			d := domain.Event{Err: ev.Err}
			if ev.Err == nil {
				d.Comment = toDomain(ev.Comment)
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// redditReplier posts through the API client
type redditReplier struct {
	client *reddit.Client
}

func (r redditReplier) Reply(ctx context.Context, c domain.Comment, text string) error {
	_, err := r.client.Reply(ctx, c.Thing(), text)
	return err
}

func toDomain(c reddit.Comment) domain.Comment {
	return domain.Comment{
		ID:         c.ID,
		FullName:   c.FullName(),
		Author:     c.Author,
		Body:       c.Body,
		Subreddit:  c.Subreddit,
		Permalink:  c.Permalink,
		CreatedUTC: c.Created(),
	}
}
