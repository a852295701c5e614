package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shamewizard/internal/core/rules"
	"shamewizard/internal/modkit"
	"shamewizard/internal/platform/metrics"
	ptime "shamewizard/internal/platform/time"
	"shamewizard/internal/services/replybot/domain"
)

var t0 = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type chanSource struct{ ch chan domain.Event }

func newChanSource() *chanSource { return &chanSource{ch: make(chan domain.Event, 16)} }

func (c *chanSource) Events(context.Context) <-chan domain.Event { return c.ch }

type staticRules struct {
	mu  sync.Mutex
	set *rules.Set
	err error
}

func (s *staticRules) Load(context.Context) (*rules.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set, s.err
}

func (s *staticRules) put(set *rules.Set, err error) {
	s.mu.Lock()
	s.set, s.err = set, err
	s.mu.Unlock()
}

// memState is an in-memory StateStore; onSave runs inside Save before it returns
type memState struct {
	mu      sync.Mutex
	state   domain.State
	loadErr error
	saveErr error
	saves   int
	onSave  func()
}

func (m *memState) Load(context.Context) (domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Normalize(), m.loadErr
}

func (m *memState) Save(_ context.Context, s domain.State) error {
	if m.onSave != nil {
		m.onSave()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.state = s
	return nil
}

func (m *memState) Ping(context.Context) error { return nil }
func (m *memState) Name() string               { return "memory" }

func (m *memState) snapshot() (domain.State, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.saves
}

type reply struct {
	commentID string
	text      string
	at        time.Time
}

// scriptedReplier fails while errs has entries, then succeeds
type scriptedReplier struct {
	mu     sync.Mutex
	clock  *ptime.Manual
	errs   []error
	during time.Duration
	sent   []reply
	calls  int
}

func (r *scriptedReplier) Reply(_ context.Context, c domain.Comment, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	at := r.clock.Now()
	if r.during > 0 {
		r.clock.Advance(r.during)
	}
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	r.sent = append(r.sent, reply{commentID: c.ID, text: text, at: at})
	return nil
}

func (r *scriptedReplier) snapshot() ([]reply, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]reply(nil), r.sent...), r.calls
}

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

var errBoom = errors.New("boom")

type harness struct {
	svc     *Svc
	clock   *ptime.Manual
	source  *chanSource
	rules   *staticRules
	state   *memState
	replier *scriptedReplier
	reg     *metrics.Registry
}

func trackedSet(rs ...rules.TrackedRule) *rules.Set { return rules.NewSet(rs) }

func newHarness(t *testing.T, cfg Config, set *rules.Set) *harness {
	t.Helper()
	clk := ptime.NewManual(t0)
	h := &harness{
		clock:   clk,
		source:  newChanSource(),
		rules:   &staticRules{set: set},
		state:   &memState{},
		replier: &scriptedReplier{clock: clk},
		reg:     metrics.NewBare(),
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = "ShameWizard"
	}
	if cfg.Message == nil {
		cfg.Message = []string{"Hey {{USERNAME}}", "Remember: {{URL}}", "You said: {{COMMENT}}"}
	}
	h.svc = New(modkit.Deps{Metrics: h.reg}, cfg, IO{
		Source:  h.source,
		Rules:   h.rules,
		State:   h.state,
		Replier: h.replier,
		Clock:   clk,
		Rand:    fixedRand(0),
	})
	return h
}

func (h *harness) boot(t *testing.T) {
	t.Helper()
	if err := h.svc.Boot(context.Background()); err != nil {
		t.Fatalf("boot: %v", err)
	}
}

// dispatch runs the dispatcher until the returned stop is called
func (h *harness) dispatch(t *testing.T) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.svc.runDispatcher(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func comment(id, author string) domain.Comment {
	return domain.Comment{ID: id, Author: author, Body: "body of " + id, Subreddit: "all"}
}

const timeout = 2 * time.Second

func eventOf(c domain.Comment) domain.Event { return domain.Event{Comment: c} }

func eventErr(err error) domain.Event { return domain.Event{Err: err} }
