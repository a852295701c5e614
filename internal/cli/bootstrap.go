package cli

import (
	"context"

	"shamewizard/internal/modkit"
	"shamewizard/internal/platform/config"
	"shamewizard/internal/platform/logger"
	"shamewizard/internal/platform/metrics"
	"shamewizard/internal/platform/store"
	"shamewizard/internal/services/replybot/module"
	"shamewizard/internal/services/replybot/repo"
)

// bot is everything a command needs once config is loaded
type bot struct {
	opts     module.Options
	settings module.Settings
	store    *store.Store
	deps     modkit.Deps
	mod      *module.Module
}

// loadOptions reads the env and applies flag overrides
func loadOptions(cfg config.Conf, ro *RootOptions) module.Options {
	o := module.FromConfig(cfg)
	if ro.ConfigPath != "" {
		o.SettingsPath = ro.ConfigPath
	}
	if ro.RulesPath != "" {
		o.RulesPath = ro.RulesPath
	}
	return o
}

// storeConfig enables only the backend the state store needs
func storeConfig(cfg config.Conf, backend string) store.Config {
	pg := cfg.Prefix("SERVICE_PGSQL_")
	rd := cfg.Prefix("SERVICE_REDIS_")
	sc := store.Config{AppName: "shamewizard"}
	switch backend {
	case repo.BackendPG:
		sc.PG = store.PGConfig{
			Enabled:     true,
			URL:         pg.MustString("DBURL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pg.MayInt("SLOW_MS", 500),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		}
	case repo.BackendRedis:
		sc.RDS = store.RedisConfig{
			Enabled:  true,
			Addr:     rd.MustString("ADDR"),
			Password: rd.MayString("PASSWORD", ""),
			DB:       rd.MayInt("DB", 0),
		}
	}
	return sc
}

// openBot loads settings, opens the state backend connection and builds the module
func openBot(ctx context.Context, ro *RootOptions, reg *metrics.Registry) (*bot, error) {
	cfg := config.New()
	o := loadOptions(cfg, ro)

	s, err := module.LoadSettings(o.SettingsPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, storeConfig(cfg, o.StateBackend), store.WithLogger(*logger.Named("store")))
	if err != nil {
		return nil, err
	}

	deps := modkit.Deps{
		Log:     *logger.Get(),
		Cfg:     cfg,
		PG:      st.PG,
		RDS:     st.RDS,
		Metrics: reg,
	}
	m, err := module.New(ctx, deps, s, o)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return &bot{opts: o, settings: s, store: st, deps: deps, mod: m}, nil
}

func (b *bot) close(ctx context.Context) {
	if err := b.store.Close(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
