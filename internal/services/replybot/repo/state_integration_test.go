//go:build integration_pg || integration_redis

package repo

import (
	"context"
	"testing"
	"time"

	kit "shamewizard/internal/platform/testkit"
	"shamewizard/internal/services/replybot/domain"
)

func roundtrip(t *testing.T, st domain.StateStore) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kit.NoErr(t, st.Ping(ctx))

	s, err := st.Load(ctx)
	kit.NoErr(t, err)
	kit.Equal(t, len(s.Comments), 0)

	kit.NoErr(t, st.Save(ctx, domain.State{Comments: []string{"c1"}}))
	kit.NoErr(t, st.Save(ctx, domain.State{Comments: []string{"c1", "c2"}}))

	s, err = st.Load(ctx)
	kit.NoErr(t, err)
	kit.Equal(t, len(s.Comments), 2)
	kit.Equal(t, s.Comments[1], "c2")
}
