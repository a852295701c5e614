package service

import (
	"context"

	"shamewizard/internal/core/message"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/logger"
	"shamewizard/internal/services/replybot/domain"
)

// Render builds the reply text for a job from the configured message lines
func (s *Svc) Render(job domain.ReplyJob) string {
	return message.Render(s.config.Message, message.Vars{
		User:    job.Rule.User,
		URL:     job.Rule.URL,
		Comment: job.Rule.Comment,
	})
}

// runDispatcher drains the queue head first, one attempt per cooldown interval
func (s *Svc) runDispatcher(ctx context.Context) error {
	for {
		job, ok := s.queue.Peek()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.queue.Wait():
				continue
			}
		}

		if wait := s.cooldown.Until(s.clock.Now()); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.clock.After(wait):
			}
			continue
		}

		s.attempt(ctx, job)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// attempt makes one reply attempt for job. The cooldown timestamp is the
// instant the attempt started, not when the platform answered
func (s *Svc) attempt(ctx context.Context, job domain.ReplyJob) {
	ctx = logger.WithJob(ctx, job.ID, job.Comment.ID)
	log := logger.C(ctx)
	started := s.clock.Now()
	text := s.Render(job)

	if s.config.DryRun {
		s.queue.Remove(job.ID)
		s.cooldown.MarkSuccess(started)
		s.m.replies.WithLabelValues(outcomeDryRun).Inc()
		s.m.queueDepth.Set(float64(s.queue.Len()))
		log.Info().
			Str("subreddit", job.Comment.Subreddit).
			Str("author", job.Comment.Author).
			Str("message", job.Comment.Body).
			Str("reply", text).
			Dur("queued_for", sinceEnqueue(job, started)).
			Msg("would have replied")
		return
	}

	err := s.replier.Reply(ctx, job.Comment, text)
	took := s.clock.Now().Sub(started)
	if err != nil {
		if ctx.Err() != nil {
			// shutdown mid-call; the job stays for the next run
			return
		}
		s.m.replyLatency.WithLabelValues(outcomeFailed).Observe(took.Seconds())
		s.queue.Bump(job.ID)
		s.cooldown.MarkFailure(started)
		s.m.replies.WithLabelValues(outcomeFailed).Inc()
		log.Error().
			Err(err).
			Int("attempts", job.Attempts+1).
			Bool("retryable", perr.Retryable(err)).
			Msg("failed to reply to comment")
		return
	}

	s.m.replyLatency.WithLabelValues(outcomeSent).Observe(took.Seconds())
	s.queue.Remove(job.ID)
	s.cooldown.MarkSuccess(started)
	s.m.replies.WithLabelValues(outcomeSent).Inc()
	s.m.queueDepth.Set(float64(s.queue.Len()))
	log.Info().
		Str("author", job.Comment.Author).
		Str("message", job.Comment.Body).
		Str("reply", text).
		Dur("queued_for", sinceEnqueue(job, started)).
		Msg("replied to comment")
}
