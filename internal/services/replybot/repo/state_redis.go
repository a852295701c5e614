package repo

import (
	"context"

	"shamewizard/internal/modkit/repokit"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/services/replybot/domain"
)

// RedisState keeps the snapshot as one JSON value under key
type RedisState struct {
	kv  repokit.KV
	key string
}

// NewRedisState returns a redis backend at key
func NewRedisState(kv repokit.KV, key string) *RedisState {
	if key == "" {
		key = "shamewizard:state"
	}
	return &RedisState{kv: kv, key: key}
}

// Name implements domain.StateStore
func (r *RedisState) Name() string { return "redis:" + r.key }

// Load reads the key; a missing key is an empty state
func (r *RedisState) Load(ctx context.Context) (domain.State, error) {
	b, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.State{}.Normalize(), nil
		}
		return domain.State{}, err
	}
	return decodeState(b, r.Name())
}

// Save overwrites the key with the whole document
func (r *RedisState) Save(ctx context.Context, s domain.State) error {
	b, err := encodeState(s)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.key, b)
}

// Ping checks the connection when the client supports it
func (r *RedisState) Ping(ctx context.Context) error {
	if p, ok := r.kv.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
