package service

import (
	"context"
	"sync"
	"time"

	"shamewizard/internal/platform/logger"
	"shamewizard/internal/services/replybot/domain"
)

// Ledger is the in-memory dedup set of handled comment ids plus the
// dirty flag that drives persistence. Ids are only ever appended
type Ledger struct {
	mu      sync.Mutex
	users   map[string]any
	ids     []string
	set     map[string]struct{}
	dirty   bool
	version uint64
}

// NewLedger seeds a ledger from a loaded snapshot, dropping duplicate ids
func NewLedger(st domain.State) *Ledger {
	l := &Ledger{}
	l.Replace(st)
	return l
}

// Replace swaps the ledger contents for a loaded snapshot and clears dirty
func (l *Ledger) Replace(st domain.State) {
	st = st.Normalize()
	ids := make([]string, 0, len(st.Comments))
	set := make(map[string]struct{}, len(st.Comments))
	for _, id := range st.Comments {
		if _, ok := set[id]; ok || id == "" {
			continue
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.users, l.ids, l.set = st.Users, ids, set
	l.dirty = false
	l.version++
}

// Seen reports whether id was already recorded
func (l *Ledger) Seen(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[id]
	return ok
}

// Record appends id and marks the ledger dirty. False when id was already present
func (l *Ledger) Record(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.set[id]; ok {
		return false
	}
	l.set[id] = struct{}{}
	l.ids = append(l.ids, id)
	l.dirty = true
	l.version++
	return true
}

// Len returns the number of recorded ids
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// Dirty reports whether there are records not yet persisted
func (l *Ledger) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// Snapshot copies the persistable state and the version it reflects
func (l *Ledger) Snapshot() (domain.State, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	users := make(map[string]any, len(l.users))
	for k, v := range l.users {
		users[k] = v
	}
	return domain.State{
		Users:    users,
		Comments: append([]string(nil), l.ids...),
	}.Normalize(), l.version
}

// Flush writes a snapshot when dirty. The dirty flag clears only if nothing
// was recorded while the write was in flight
func (l *Ledger) Flush(ctx context.Context, store domain.StateStore) (bool, error) {
	if !l.Dirty() {
		return false, nil
	}
	snap, ver := l.Snapshot()
	if err := store.Save(ctx, snap); err != nil {
		return false, err
	}
	l.mu.Lock()
	if l.version == ver {
		l.dirty = false
	}
	l.mu.Unlock()
	return true, nil
}

// runFlusher flushes every tick until ctx ends. Failures keep the ledger dirty
func (s *Svc) runFlusher(ctx context.Context) error {
	log := logger.Named("ledger")
	t := time.NewTicker(s.config.StateFlush)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.flush(ctx, log)
		}
	}
}

func (s *Svc) flush(ctx context.Context, log *logger.Logger) {
	wrote, err := s.ledger.Flush(ctx, s.state)
	if err != nil {
		s.m.flushes.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("backend", s.state.Name()).Msg("failed to save state")
		return
	}
	if wrote {
		s.m.flushes.WithLabelValues("ok").Inc()
		log.Debug().Str("backend", s.state.Name()).Int("comments", s.ledger.Len()).Msg("state saved")
	}
}
