// Package modkit provides module wiring and core deps
package modkit

import (
	"shamewizard/internal/modkit/repokit"
	"shamewizard/internal/platform/config"
	"shamewizard/internal/platform/logger"
	"shamewizard/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	RDS     repokit.KV
	Metrics *metrics.Registry
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }

// Registry returns the metrics registry, creating a bare one when unset
// so tests can build modules without a process-wide registry
func (d Deps) Registry() *metrics.Registry {
	if d.Metrics == nil {
		return metrics.NewBare()
	}
	return d.Metrics
}
