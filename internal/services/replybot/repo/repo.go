// Package repo provides the reply bot persistence: the rule file reader and
// the state backends (file, postgres, redis)
package repo

import (
	"context"
	"encoding/json"

	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/services/replybot/domain"
)

// Backend names accepted by BOT_STATE_BACKEND
const (
	BackendFile  = "file"
	BackendPG    = "pg"
	BackendRedis = "redis"
)

// Backends lists the accepted state backends
var Backends = []string{BackendFile, BackendPG, BackendRedis}

var (
	_ domain.StateStore = (*FileState)(nil)
	_ domain.StateStore = (*PGState)(nil)
	_ domain.StateStore = (*RedisState)(nil)
	_ domain.RuleSource = (*RuleFile)(nil)
)

// encodeState renders the document with a two-space indent, matching db.json files written by hand
func encodeState(s domain.State) ([]byte, error) {
	b, err := json.MarshalIndent(s.Normalize(), "", "  ")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "encode state")
	}
	return b, nil
}

func decodeState(b []byte, where string) (domain.State, error) {
	var s domain.State
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.State{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode state from %s", where)
	}
	return s.Normalize(), nil
}

type pinger interface{ Ping(context.Context) error }
