package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"shamewizard/internal/core/rules"
	kit "shamewizard/internal/platform/testkit"
)

func TestRuleStore_RefreshSwapsAndKeepsOnError(t *testing.T) {
	t.Parallel()

	src := &staticRules{set: trackedSet(spezRule)}
	rs := NewRuleStore(src)
	kit.Equal(t, rs.Current().Len(), 0)

	_, err := rs.Refresh(context.Background())
	kit.NoErr(t, err)
	kit.Equal(t, rs.Current().Len(), 1)

	src.put(nil, errBoom)
	if _, err := rs.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	kit.Equal(t, rs.Current().Len(), 1)

	src.put(nil, nil)
	_, err = rs.Refresh(context.Background())
	kit.NoErr(t, err)
	kit.Equal(t, rs.Current().Len(), 0)
}

func TestRuleRefresher_PicksUpEditsAndSurvivesErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Config{RulesRefresh: 5 * time.Millisecond}, trackedSet(spezRule))
	h.boot(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.svc.runRuleRefresher(ctx)
	}()

	h.rules.put(nil, errBoom)
	kit.Eventually(t, timeout, func() bool { return testutil.ToFloat64(h.svc.m.ruleErrors) >= 1 }, "refresh error counted")
	kit.Equal(t, h.svc.rules.Current().Len(), 1)

	h.rules.put(trackedSet(spezRule, rules.TrackedRule{User: "new", URL: "u", Comment: "c"}), nil)
	kit.Eventually(t, timeout, func() bool { return h.svc.rules.Current().Len() == 2 }, "edited rules picked up")

	cancel()
	<-done
}
