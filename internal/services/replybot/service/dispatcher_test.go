package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"shamewizard/internal/core/rules"
	kit "shamewizard/internal/platform/testkit"
)

func TestDispatcher_RendersRuleUserAndHoldsSecondMatch(t *testing.T) {
	t.Parallel()

	alice := rules.TrackedRule{User: "alice", URL: "r/x/123", Comment: "gotcha"}
	h := newHarness(t, Config{
		Cooldown: 5 * time.Second,
		Message:  []string{"Hi {{USERNAME}}", "See {{URL}}: {{COMMENT}}"},
	}, trackedSet(alice))
	h.boot(t)

	stop := h.dispatch(t)
	defer stop()

	ctx := context.Background()
	h.svc.OnComment(ctx, comment("c1", "Alice"))
	kit.Eventually(t, timeout, func() bool { return h.svc.queue.Len() == 0 }, "first reply sent")

	h.clock.Advance(time.Second)
	h.svc.OnComment(ctx, comment("c1", "Alice"))
	h.svc.OnComment(ctx, comment("c2", "bob"))
	kit.Equal(t, h.svc.queue.Len(), 0)

	h.clock.Advance(time.Second)
	h.svc.OnComment(ctx, comment("c3", "alice"))
	h.clock.BlockUntil(1)
	kit.Equal(t, h.svc.queue.Len(), 1)

	h.clock.Advance(3 * time.Second)
	kit.Eventually(t, timeout, func() bool {
		sent, _ := h.replier.snapshot()
		return len(sent) == 2
	}, "second reply sent")

	sent, calls := h.replier.snapshot()
	kit.Equal(t, calls, 2)
	want := "Hi /u/alice\n\nSee https://reddit.com/r/x/123: gotcha"
	kit.Equal(t, sent[0].commentID, "c1")
	kit.Equal(t, sent[0].text, want)
	kit.Equal(t, sent[0].at, t0)
	kit.Equal(t, sent[1].commentID, "c3")
	kit.Equal(t, sent[1].text, want)
	kit.Equal(t, sent[1].at, t0.Add(5*time.Second))
}

func TestDispatcher_DryRunHonoursCooldown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{DryRun: true, Cooldown: time.Minute}, trackedSet(spezRule))
	h.boot(t)
	h.svc.OnComment(context.Background(), comment("c1", "spez"))
	h.svc.OnComment(context.Background(), comment("c2", "spez"))

	stop := h.dispatch(t)
	defer stop()

	// first job goes at once, second waits a full interval
	h.clock.BlockUntil(1)
	kit.Equal(t, h.svc.queue.Len(), 1)
	last, _ := h.svc.cooldown.Last()
	kit.Equal(t, last, t0)

	h.clock.Advance(59 * time.Second)
	kit.Equal(t, h.svc.queue.Len(), 1)

	h.clock.Advance(time.Second)
	kit.Eventually(t, timeout, func() bool { return h.svc.queue.Len() == 0 }, "second job dispatched")
	last, _ = h.svc.cooldown.Last()
	kit.Equal(t, last, t0.Add(time.Minute))

	_, calls := h.replier.snapshot()
	kit.Equal(t, calls, 0)
	kit.Equal(t, testutil.ToFloat64(h.svc.m.replies.WithLabelValues(outcomeDryRun)), 2.0)
}

func TestDispatcher_FIFOWithoutCooldown(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{}, trackedSet(spezRule))
	h.boot(t)
	for _, id := range []string{"c1", "c2", "c3"} {
		h.svc.OnComment(context.Background(), comment(id, "spez"))
	}

	stop := h.dispatch(t)
	defer stop()

	kit.Eventually(t, timeout, func() bool { return h.svc.queue.Len() == 0 }, "queue drained")
	sent, _ := h.replier.snapshot()
	kit.Equal(t, len(sent), 3)
	for i, id := range []string{"c1", "c2", "c3"} {
		kit.Equal(t, sent[i].commentID, id)
	}
	kit.MustContain(t, sent[0].text, "/u/spez")
}

func TestDispatcher_FailureKeepsJobForOneInterval(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{Cooldown: time.Minute}, trackedSet(spezRule))
	h.replier.errs = []error{errBoom}
	h.boot(t)
	h.svc.OnComment(context.Background(), comment("c1", "spez"))
	h.svc.OnComment(context.Background(), comment("c2", "spez"))

	stop := h.dispatch(t)
	defer stop()

	h.clock.BlockUntil(1)
	_, calls := h.replier.snapshot()
	kit.Equal(t, calls, 1)
	head, _ := h.svc.queue.Peek()
	kit.Equal(t, head.Comment.ID, "c1")
	kit.Equal(t, head.Attempts, 1)
	kit.Equal(t, h.svc.queue.Len(), 2)
	_, fail := h.svc.cooldown.Last()
	kit.Equal(t, fail, t0)

	// retried after one interval, still ahead of c2
	h.clock.Advance(time.Minute)
	h.clock.BlockUntil(1)
	sent, calls := h.replier.snapshot()
	kit.Equal(t, calls, 2)
	kit.Equal(t, len(sent), 1)
	kit.Equal(t, sent[0].commentID, "c1")
	kit.Equal(t, sent[0].at, t0.Add(time.Minute))
	kit.Equal(t, testutil.ToFloat64(h.svc.m.replies.WithLabelValues(outcomeFailed)), 1.0)
}

func TestDispatcher_CooldownMeasuredFromAttemptStart(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{Cooldown: time.Minute}, trackedSet(spezRule))
	h.replier.during = 5 * time.Second
	h.boot(t)
	h.svc.OnComment(context.Background(), comment("c1", "spez"))
	h.svc.OnComment(context.Background(), comment("c2", "spez"))

	stop := h.dispatch(t)
	defer stop()

	h.clock.BlockUntil(1)
	// the platform took 5s but the interval started when the attempt did
	kit.Equal(t, h.svc.cooldown.Until(h.clock.Now()), 55*time.Second)

	h.clock.Advance(55 * time.Second)
	kit.Eventually(t, timeout, func() bool {
		sent, _ := h.replier.snapshot()
		return len(sent) == 2
	}, "second reply sent")
	sent, _ := h.replier.snapshot()
	kit.Equal(t, sent[1].at, t0.Add(time.Minute))

	kit.Eventually(t, timeout, func() bool { return h.svc.queue.Len() == 0 }, "queue drained")
	// latency comes from the injected clock, labelled by outcome
	count, sum := latency(t, h, outcomeSent)
	kit.Equal(t, count, uint64(2))
	kit.Equal(t, sum, 10.0)
	count, _ = latency(t, h, outcomeFailed)
	kit.Equal(t, count, uint64(0))
}

// latency reads the reply_duration_seconds series for outcome
func latency(t *testing.T, h *harness, outcome string) (uint64, float64) {
	t.Helper()
	mfs, err := h.reg.Gatherer().Gather()
	kit.NoErr(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "shamewizard_reply_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" && lp.GetValue() == outcome {
					return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
				}
			}
		}
	}
	return 0, 0
}

func TestDispatcher_WakesOnPush(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{}, trackedSet(spezRule))
	h.boot(t)

	stop := h.dispatch(t)
	defer stop()

	h.svc.OnComment(context.Background(), comment("c1", "spez"))
	kit.Eventually(t, timeout, func() bool { return h.svc.queue.Len() == 0 }, "dispatcher woke on push")
}
