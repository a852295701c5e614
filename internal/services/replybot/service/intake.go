package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shamewizard/internal/core/rules"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/logger"
	pstrings "shamewizard/internal/platform/strings"
	"shamewizard/internal/services/replybot/domain"
)

// OnComment applies the intake pipeline to one comment:
// self filter, dedup, match, pick, record, enqueue
func (s *Svc) OnComment(ctx context.Context, c domain.Comment) {
	log := logger.C(logger.WithComment(ctx, c.ID))
	s.m.received.Inc()

	if s.config.Debug {
		log.Debug().
			Str("subreddit", c.Subreddit).
			Str("author", c.Author).
			Str("body", c.Body).
			Msg("comment received")
	}

	if s.self != "" && pstrings.Fold(c.Author) == s.self {
		s.m.skipped.WithLabelValues(skipSelf).Inc()
		log.Debug().Msg("skipping own comment")
		return
	}
	if s.ledger.Seen(c.ID) {
		s.m.skipped.WithLabelValues(skipSeen).Inc()
		return
	}

	matches := s.rules.Current().Match(c.Author)
	rule, ok := rules.Pick(matches, s.rng)
	if !ok {
		s.m.skipped.WithLabelValues(skipUnmatched).Inc()
		return
	}

	if !s.ledger.Record(c.ID) {
		s.m.skipped.WithLabelValues(skipSeen).Inc()
		return
	}
	s.m.ledgerSize.Set(float64(s.ledger.Len()))

	job := domain.ReplyJob{
		ID:         uuid.NewString(),
		Comment:    c,
		Rule:       rule,
		EnqueuedAt: s.clock.Now().UTC(),
	}
	s.queue.Push(job)
	s.m.matched.Inc()
	s.m.queueDepth.Set(float64(s.queue.Len()))

	log.Info().
		Str("job_id", job.ID).
		Str("author", c.Author).
		Str("subreddit", c.Subreddit).
		Int("candidates", len(matches)).
		Msg("queued reply")
}

// runIntake consumes the comment source in delivery order until ctx ends
func (s *Svc) runIntake(ctx context.Context) error {
	log := logger.Named("intake")
	events := s.source.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return perr.Unavailablef("comment source closed")
			}
			if ev.Err != nil {
				log.Error().Err(ev.Err).Msg("error encountered listening")
				continue
			}
			s.OnComment(ctx, ev.Comment)
		}
	}
}

// sinceEnqueue is the queue wait of a job at t
func sinceEnqueue(j domain.ReplyJob, t time.Time) time.Duration { return t.Sub(j.EnqueuedAt) }
