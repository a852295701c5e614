package pg

import (
	"context"
	"fmt"
	"strings"

	"shamewizard/internal/platform/logger"

	"github.com/rs/zerolog"
)

// maxArgLen caps how much of a single bind argument reaches the log.
// State documents are bound as one large jsonb argument
const maxArgLen = 64

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that always prints SQL when LogSQL=true,
// independent of the process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow || ev.Err != nil {
		evt = z.log.Warn()
	}

	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Strs("args", summarize(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// summarize renders bind args for logs, truncating long values and
// replacing byte payloads with their size
func summarize(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		var s string
		switch v := a.(type) {
		case []byte:
			s = fmt.Sprintf("<%d bytes>", len(v))
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		if len(s) > maxArgLen {
			s = s[:maxArgLen] + "…"
		}
		out[i] = s
	}
	return out
}

// compact squashes runs of whitespace so multi-line SQL logs on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
