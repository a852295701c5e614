// Package module wires the reply bot: Reddit adapter, state backend,
// rule file and the bot service, plus its status routes
package module

import (
	"context"
	"net/http"

	"shamewizard/internal/adapters/reddit"
	"shamewizard/internal/modkit"
	"shamewizard/internal/modkit/httpkit"
	perr "shamewizard/internal/platform/errors"
	str "shamewizard/internal/platform/strings"
	bothttp "shamewizard/internal/services/replybot/http"
	"shamewizard/internal/services/replybot/domain"
	"shamewizard/internal/services/replybot/repo"
	"shamewizard/internal/services/replybot/service"
)

// Ports exposed by the reply bot module
type Ports struct {
	Worker  domain.WorkerPort
	Status  domain.StatusPort
	Preview domain.PreviewPort
}

// Module implements modkit.Module for the reply bot
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	opts  Options

	settings Settings
	client   *reddit.Client
	state    domain.StateStore
	rules    *repo.RuleFile
	svc      *service.Svc
	ports    Ports
}

// New builds the module. No network calls happen here except the
// schema check for the postgres state backend
func New(ctx context.Context, deps modkit.Deps, s Settings, o Options, opts ...modkit.Option) (*Module, error) {
	state, err := newStateStore(ctx, deps, o)
	if err != nil {
		return nil, err
	}

	client := reddit.NewClient(reddit.Options{
		UserAgent:  s.Credentials.UserAgent,
		AppID:      s.Credentials.AppID,
		AppSecret:  s.Credentials.AppSecret,
		Username:   s.Credentials.Username,
		Password:   s.Credentials.Password,
		RPS:        o.RedditRPS,
		Burst:      o.RedditBurst,
		MaxRetries: o.RedditMaxRetries,
		RetryBase:  o.RedditRetryBase,
	})
	stream := reddit.NewStream(client, reddit.StreamOptions{
		Subreddit: o.Subreddit,
		Limit:     o.PollLimit,
		Every:     o.PollEvery,
	})
	rules := repo.NewRuleFile(o.RulesPath)

	svc := service.New(deps, service.Config{
		BotUsername:  s.Credentials.Username,
		Message:      s.Bot.Message,
		Cooldown:     s.CooldownDuration(),
		DryRun:       s.DebugMode || o.DryRun,
		Debug:        s.DebugMode,
		RulesRefresh: o.RulesRefresh,
		StateFlush:   o.StateFlush,
	}, service.IO{
		Source:  redditSource{stream: stream},
		Rules:   rules,
		State:   state,
		Replier: redditReplier{client: client},
	})

	m := &Module{
		deps:     deps,
		opts:     o,
		settings: s,
		client:   client,
		state:    state,
		rules:    rules,
		svc:      svc,
		ports:    Ports{Worker: svc, Status: svc, Preview: svc},
	}
	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("replybot"),
		modkit.WithPrefix("/bot"),
		modkit.WithRegister(func(r httpkit.Router) {
			bothttp.Register(r, bothttp.Deps{Status: svc, Preview: svc})
		}),
	}, opts...)...)
	return m, nil
}

func newStateStore(ctx context.Context, deps modkit.Deps, o Options) (domain.StateStore, error) {
	switch o.StateBackend {
	case repo.BackendPG:
		if deps.PG == nil {
			return nil, perr.InvalidArgf("state backend pg needs SERVICE_PGSQL_DBURL")
		}
		st := repo.NewPGState(deps.PG, o.StateKey)
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case repo.BackendRedis:
		if deps.RDS == nil {
			return nil, perr.InvalidArgf("state backend redis needs SERVICE_REDIS_ADDR")
		}
		return repo.NewRedisState(deps.RDS, o.StateKey), nil
	case repo.BackendFile, "":
		return repo.NewFileState(o.StatePath), nil
	default:
		return nil, perr.WithField(perr.InvalidArgf("unknown state backend %q", o.StateBackend), "BOT_STATE_BACKEND")
	}
}

// Service returns the bot service
func (m *Module) Service() *service.Svc { return m.svc }

// Client returns the Reddit API client
func (m *Module) Client() *reddit.Client { return m.client }

// State returns the configured state backend
func (m *Module) State() domain.StateStore { return m.state }

// RulesPath returns the tracked rules file path
func (m *Module) RulesPath() string { return m.rules.Path() }

// Settings returns the loaded bot config
func (m *Module) Settings() Settings { return m.settings }

// Name satisfies modkit.Module
func (m *Module) Name() string { return str.MustString(m.built.Name, "replybot") }

// Prefix returns the mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Middlewares returns the per-module middleware
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.built.Mw }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }
