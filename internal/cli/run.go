package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shamewizard/internal/modkit"
	"shamewizard/internal/modkit/module"
	"shamewizard/internal/platform/logger"
	"shamewizard/internal/platform/metrics"
	phttp "shamewizard/internal/platform/net/http"
	"shamewizard/internal/platform/net/middleware"
	metahttp "shamewizard/internal/services/meta/http"
	metamod "shamewizard/internal/services/meta/module"
	"shamewizard/internal/services/replybot/domain"
	botmod "shamewizard/internal/services/replybot/module"
)

// NewRunCommand creates the run command, the long-lived bot process
func NewRunCommand(ro *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "run",
		Short:        "Listen for comments and reply to tracked users",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx, ro)
		},
	}
}

func runBot(ctx context.Context, ro *RootOptions) error {
	logger.Init(logger.FromEnvFile("bot.log"))
	defer func() { _ = logger.Close() }()
	log := logger.Named("main")

	reg := metrics.New()
	b, err := openBot(ctx, ro, reg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	defer b.close(context.WithoutCancel(ctx))

	if b.settings.DebugMode {
		logger.SetLevel("debug")
		log.Debug().Msg("debug mode on: replies are logged, not sent")
	}

	if err := b.mod.Service().Boot(ctx); err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	worker := module.MustPortsOf[domain.WorkerPort](b.mod)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })

	if b.opts.StatusEnabled {
		srv := statusServer(b.opts.StatusPort, b.deps, reg, b.mod)
		g.Go(func() error { return srv.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("bot stopped with error")
		return err
	}
	return nil
}

// statusServer mounts meta, bot status and /metrics behind the default middleware
func statusServer(addr string, deps modkit.Deps, reg *metrics.Registry, bot *botmod.Module) *phttp.Server {
	srv := phttp.NewServer(addr, func(m *chi.Mux) {
		m.Use(middleware.Defaults(middleware.CORSOptions{})...)
		m.Handle("/metrics", reg.Handler())
	})

	meta := metamod.New(deps, []metahttp.Check{{Name: "state", Pinger: bot.State()}})
	r := srv.Router()
	for _, m := range []modkit.Module{meta, bot} {
		m.MountRoutes(r)
	}
	return srv
}
