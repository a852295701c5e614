package service

import (
	"context"
	"sync/atomic"
	"time"

	"shamewizard/internal/core/rules"
	"shamewizard/internal/platform/logger"
	"shamewizard/internal/services/replybot/domain"
)

// RuleStore holds the active rule set and swaps it wholesale on reload
type RuleStore struct {
	src domain.RuleSource
	cur atomic.Pointer[rules.Set]
}

// NewRuleStore returns a store that starts with an empty set
func NewRuleStore(src domain.RuleSource) *RuleStore {
	rs := &RuleStore{src: src}
	rs.cur.Store(rules.Empty())
	return rs
}

// Current returns the active set; never nil
func (r *RuleStore) Current() *rules.Set { return r.cur.Load() }

// Refresh loads from the source and swaps the set. The previous set stays on error
func (r *RuleStore) Refresh(ctx context.Context) (*rules.Set, error) {
	set, err := r.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if set == nil {
		set = rules.Empty()
	}
	r.cur.Store(set)
	return set, nil
}

// runRuleRefresher reloads rules every tick until ctx ends
func (s *Svc) runRuleRefresher(ctx context.Context) error {
	log := logger.Named("rules")
	t := time.NewTicker(s.config.RulesRefresh)
	defer t.Stop()

	prev := s.rules.Current().Len()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			set, err := s.rules.Refresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.m.ruleErrors.Inc()
				log.Warn().Err(err).Int("kept", s.rules.Current().Len()).Msg("rule reload failed keeping previous set")
				continue
			}
			s.m.rulesLoaded.Set(float64(set.Len()))
			if n := set.Len(); n != prev {
				log.Info().Int("rules", n).Int("users", set.Users()).Msg("tracked rules changed")
				prev = n
			}
		}
	}
}
