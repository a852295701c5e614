package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shamewizard/internal/modkit/repokit"
	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/services/replybot/domain"
)

const (
	sqlStateSchema = `
		CREATE TABLE IF NOT EXISTS replybot_state (
			name       text PRIMARY KEY,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`

	sqlStateGet = `SELECT doc FROM replybot_state WHERE name = $1`

	sqlStateUpsert = `
		INSERT INTO replybot_state (name, doc, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
)

// PGState keeps the snapshot as one jsonb row in replybot_state
type PGState struct {
	db   repokit.TxRunner
	name string
}

type stateQueries struct{ q repokit.Queryer }

var bindState = repokit.BindFunc[stateQueries](func(q repokit.Queryer) stateQueries { return stateQueries{q: q} })

// NewPGState returns a postgres backend storing the row keyed by name
func NewPGState(db repokit.TxRunner, name string) *PGState {
	if name == "" {
		name = "default"
	}
	return &PGState{db: db, name: name}
}

// Name implements domain.StateStore
func (p *PGState) Name() string { return "pg:" + p.name }

// EnsureSchema creates the state table when missing
func (p *PGState) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, sqlStateSchema); err != nil {
		return perr.FromPostgres(err, "create replybot_state")
	}
	return nil
}

// Load reads the row; no row or no table yet is an empty state
func (p *PGState) Load(ctx context.Context) (domain.State, error) {
	doc, err := repokit.MustBind(bindState, p.db).get(ctx, p.name)
	switch {
	case err == nil:
		return decodeState(doc, p.Name())
	case errors.Is(err, pgx.ErrNoRows), perr.IsUndefinedTable(err):
		return domain.State{}.Normalize(), nil
	default:
		return domain.State{}, perr.FromPostgresf(err, "load state %s", p.name)
	}
}

// Save upserts the whole document in one statement
func (p *PGState) Save(ctx context.Context, s domain.State) error {
	doc, err := encodeState(s)
	if err != nil {
		return err
	}
	err = repokit.WithTx(ctx, p.db, func(q repokit.Queryer) error {
		return bindState.Bind(q).put(ctx, p.name, doc)
	})
	if err != nil {
		return perr.FromPostgresf(err, "save state %s", p.name)
	}
	return nil
}

// Ping checks the connection
func (p *PGState) Ping(ctx context.Context) error {
	if pg, ok := p.db.(pinger); ok {
		return pg.Ping(ctx)
	}
	var one int
	return p.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (s stateQueries) get(ctx context.Context, name string) ([]byte, error) {
	var doc []byte
	if err := s.q.QueryRow(ctx, sqlStateGet, name).Scan(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s stateQueries) put(ctx context.Context, name string, doc []byte) error {
	_, err := s.q.Exec(ctx, sqlStateUpsert, name, string(doc))
	return err
}
