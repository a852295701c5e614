// Package module wires meta endpoints using a tiny module
package module

import (
	"net/http"
	"time"

	"shamewizard/internal/core/version"
	modkit "shamewizard/internal/modkit"
	"shamewizard/internal/modkit/httpkit"
	str "shamewizard/internal/platform/strings"

	metahttp "shamewizard/internal/services/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built

	startedAt time.Time
}

// New constructs a meta module. checks feed /meta/ready; the pg and redis
// seams from deps are added when present
func New(deps modkit.Deps, checks []metahttp.Check, opts ...modkit.Option) *Module {
	m := &Module{deps: deps, startedAt: time.Now()}

	all := append([]metahttp.Check(nil), checks...)
	if p, ok := deps.PG.(metahttp.Pinger); ok {
		all = append(all, metahttp.Check{Name: "pg", Pinger: p})
	}
	if p, ok := deps.RDS.(metahttp.Pinger); ok {
		all = append(all, metahttp.Check{Name: "redis", Pinger: p})
	}

	m.built = modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
		modkit.WithRegister(func(r httpkit.Router) {
			metahttp.Register(r, metahttp.Deps{
				ServiceName: version.Info().Service,
				StartedAt:   m.startedAt,
				Checks:      all,
			})
		}),
	}, opts...)...)
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix returns the mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Middlewares returns the per-module middleware
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.built.Mw }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
