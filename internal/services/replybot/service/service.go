// Package service contains the reply bot workflows: intake, rule refresh,
// the cooldown-gated dispatcher and ledger persistence
package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"shamewizard/internal/core/rules"
	"shamewizard/internal/modkit"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/logger"
	pstrings "shamewizard/internal/platform/strings"
	ptime "shamewizard/internal/platform/time"
	"shamewizard/internal/services/replybot/domain"
)

// Service defines the reply bot service contract
type Service interface {
	domain.WorkerPort
	domain.StatusPort
	domain.PreviewPort
}

// Config carries runtime knobs for the bot loops
type Config struct {
	BotUsername  string
	Message      []string
	Cooldown     time.Duration
	DryRun       bool
	Debug        bool
	RulesRefresh time.Duration
	StateFlush   time.Duration

	// FinalFlushTimeout bounds the shutdown save
	FinalFlushTimeout time.Duration
}

// IO bundles the collaborators the bot talks to
type IO struct {
	Source  domain.CommentSource
	Rules   domain.RuleSource
	State   domain.StateStore
	Replier domain.Replier

	// optional seams; zero values use the wall clock and a random seed
	Clock ptime.Clock
	Rand  rules.Intn
}

// Svc owns the bot state: rule store, ledger, queue and cooldown
type Svc struct {
	config Config
	deps   modkit.Deps

	source  domain.CommentSource
	state   domain.StateStore
	replier domain.Replier
	clock   ptime.Clock
	rng     rules.Intn
	self    string

	rules    *RuleStore
	ledger   *Ledger
	queue    *Queue
	cooldown *Cooldown
	m        *instruments

	booted atomic.Bool
}

var _ Service = (*Svc)(nil)

// New constructs the reply bot service. Call Boot (or Run) before use
func New(deps modkit.Deps, cfg Config, io IO) *Svc {
	if io.Rules == nil || io.State == nil {
		panic("replybot.Service requires a rule source and a state store")
	}
	cfg = withDefaults(cfg)
	if io.Clock == nil {
		io.Clock = ptime.System{}
	}
	if io.Rand == nil {
		io.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	self := ""
	if cfg.BotUsername != "" {
		self = pstrings.Fold(cfg.BotUsername)
	}

	return &Svc{
		config:   cfg,
		deps:     deps,
		source:   io.Source,
		state:    io.State,
		replier:  io.Replier,
		clock:    io.Clock,
		rng:      io.Rand,
		self:     self,
		rules:    NewRuleStore(io.Rules),
		ledger:   NewLedger(domain.State{}),
		queue:    NewQueue(),
		cooldown: NewCooldown(cfg.Cooldown),
		m:        newInstruments(deps.Registry()),
	}
}

func withDefaults(cfg Config) Config {
	if cfg.RulesRefresh <= 0 {
		cfg.RulesRefresh = time.Second
	}
	if cfg.StateFlush <= 0 {
		cfg.StateFlush = time.Second
	}
	if cfg.FinalFlushTimeout <= 0 {
		cfg.FinalFlushTimeout = 5 * time.Second
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	return cfg
}

// Boot performs the startup loads. Any failure here is fatal to the process
func (s *Svc) Boot(ctx context.Context) error {
	log := logger.Named("replybot")

	st, err := s.state.Load(ctx)
	if err != nil {
		return perr.WithOp(perr.Wrapf(err, perr.CodeOf(err), "load state from %s", s.state.Name()), "boot")
	}
	s.ledger.Replace(st)
	s.m.ledgerSize.Set(float64(s.ledger.Len()))
	log.Info().Str("backend", s.state.Name()).Int("comments", s.ledger.Len()).Msg("state loaded")

	set, err := s.rules.Refresh(ctx)
	if err != nil {
		return perr.WithOp(perr.Wrapf(err, perr.CodeOf(err), "load tracked rules"), "boot")
	}
	s.m.rulesLoaded.Set(float64(set.Len()))
	log.Info().Int("rules", set.Len()).Int("users", set.Users()).Msg("tracked rules loaded")

	s.booted.Store(true)
	return nil
}

// Run boots if needed and supervises the bot loops until ctx ends.
// One final flush runs on the way out
func (s *Svc) Run(ctx context.Context) error {
	if !s.booted.Load() {
		if err := s.Boot(ctx); err != nil {
			return err
		}
	}
	if s.source == nil {
		return perr.InvalidArgf("replybot: no comment source configured")
	}
	if s.replier == nil && !s.config.DryRun {
		return perr.InvalidArgf("replybot: no replier configured for live mode")
	}

	log := logger.Named("replybot")
	log.Info().
		Bool("dry_run", s.config.DryRun).
		Dur("cooldown", s.config.Cooldown).
		Str("state", s.state.Name()).
		Msg("starting reply bot")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.runIntake(gctx) })
	g.Go(func() error { return s.runDispatcher(gctx) })
	g.Go(func() error { return s.runRuleRefresher(gctx) })
	g.Go(func() error { return s.runFlusher(gctx) })
	err := g.Wait()

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.FinalFlushTimeout)
	defer cancel()
	s.flush(fctx, logger.Named("ledger"))

	log.Info().Int("pending", s.queue.Len()).Msg("reply bot stopped")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stats returns the status snapshot
func (s *Svc) Stats() domain.Stats {
	last, fail := s.cooldown.Last()
	set := s.rules.Current()
	return domain.Stats{
		DryRun:         s.config.DryRun,
		QueueDepth:     s.queue.Len(),
		LedgerSize:     s.ledger.Len(),
		LedgerDirty:    s.ledger.Dirty(),
		RulesLoaded:    set.Len(),
		TrackedUsers:   set.Users(),
		Cooldown:       s.config.Cooldown.String(),
		LastReply:      last,
		LastFailure:    fail,
		NextReplyAfter: s.cooldown.Earliest(),
		StateBackend:   s.state.Name(),
	}
}

// Pending returns the queued jobs, head first
func (s *Svc) Pending() []domain.ReplyJob { return s.queue.Snapshot() }

// Preview renders the reply each rule for author would produce
func (s *Svc) Preview(author string) []string {
	matches := s.rules.Current().Match(author)
	out := make([]string, 0, len(matches))
	for _, r := range matches {
		out = append(out, s.Render(domain.ReplyJob{Comment: domain.Comment{Author: author}, Rule: r}))
	}
	return out
}

// Rules exposes the active rule set
func (s *Svc) Rules() *rules.Set { return s.rules.Current() }

// Ledger exposes the dedup ledger
func (s *Svc) Ledger() *Ledger { return s.ledger }
