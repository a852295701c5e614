// Package logger provides a zerolog wrapper with opinionated defaults and
// context-scoped logging support
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shamewizard/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// TimeLayout is the console timestamp layout, e.g. 6/4/2024 17:02:11.
// Go has no unpadded 24h token, so the hour is always two digits
const TimeLayout = "1/2/2006 15:04:05"

// Options configures the logger
type Options struct {
	Level     string
	Format    string
	Service   string
	Component string
	// File mirrors every line to this path (appended). Empty disables
	File         string
	Writer       io.Writer
	WithCaller   bool
	StaticFields map[string]string
}

// FromEnv builds Options using the logging-free raw config view (no cycles)
func FromEnv() Options { return FromEnvFile("") }

// FromEnvFile is FromEnv with a default mirror file used when LOG_FILE is unset.
// Setting LOG_FILE to an empty value disables the mirror
func FromEnvFile(defFile string) Options {
	rc := raw.New().Prefix("LOG_")
	file, ok := rc.Lookup("FILE")
	if !ok {
		file = defFile
	}
	return Options{
		Level:      strings.ToLower(rc.Get("LEVEL", "info")),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", ""),
		Component:  rc.Get("COMPONENT", ""),
		File:       strings.TrimSpace(file),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

var (
	once   sync.Once
	root   atomic.Pointer[zerolog.Logger] // internal storage of the root logger
	inited atomic.Bool
	mirror atomic.Pointer[os.File]
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Get returns the process-wide root logger as a pointer
func Get() *Logger {
	if !inited.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Init configures zerolog and builds the root logger, safe to call once
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		lvl := parseLevel(opt.Level)

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}

		var f *os.File
		if opt.File != "" {
			var err error
			f, err = os.OpenFile(opt.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				// stdout still works; report once and carry on
				_, _ = io.WriteString(w, "logger: cannot open "+opt.File+": "+err.Error()+"\n")
				f = nil
			}
		}

		if opt.Format == "console" {
			if f != nil {
				// color codes would end up in the file, so both sides are plain
				w = io.MultiWriter(
					zerolog.ConsoleWriter{Out: w, TimeFormat: TimeLayout, NoColor: true},
					zerolog.ConsoleWriter{Out: f, TimeFormat: TimeLayout, NoColor: true},
				)
			} else {
				w = zerolog.ConsoleWriter{Out: w, TimeFormat: TimeLayout}
			}
		} else if f != nil {
			w = zerolog.MultiLevelWriter(w, f)
		}
		if f != nil {
			mirror.Store(f)
		}

		ctx := zerolog.New(w).Level(lvl).With().Timestamp()
		if opt.Service != "" {
			ctx = ctx.Str("service", opt.Service)
		}
		if opt.Component != "" {
			ctx = ctx.Str("component", opt.Component)
		}
		for k, v := range opt.StaticFields {
			ctx = ctx.Str(k, v)
		}

		log := ctx.Logger()
		if opt.WithCaller {
			log = log.With().Caller().Logger()
		}

		root.Store(&log)
		inited.Store(true)
	})
}

// SetLevel swaps the root logger level, used when debug mode is switched on
// by the bot config after the logger is already running
func SetLevel(level string) {
	l := Get().Level(parseLevel(level))
	root.Store(&l)
}

// Close releases the mirror file, if any
func Close() error {
	if f := mirror.Swap(nil); f != nil {
		return f.Close()
	}
	return nil
}

// parseLevel supports string-only levels
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

type ctxKey struct{ name string }

var (
	keyRequestID = ctxKey{"req_id"}
	keyJobID     = ctxKey{"job_id"}
	keyCommentID = ctxKey{"comment_id"}
)

// WithRequest annotates ctx with the http request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	return ctx
}

// WithJob annotates ctx with a reply job and the comment it targets
func WithJob(ctx context.Context, jobID, commentID string) context.Context {
	if jobID != "" {
		ctx = context.WithValue(ctx, keyJobID, jobID)
	}
	return WithComment(ctx, commentID)
}

// WithComment annotates ctx with a comment id
func WithComment(ctx context.Context, commentID string) context.Context {
	if commentID != "" {
		ctx = context.WithValue(ctx, keyCommentID, commentID)
	}
	return ctx
}

// C returns a child logger enriched from ctx (request_id, job_id, comment_id)
func C(ctx context.Context) *Logger {
	builder := Get().With()
	for _, k := range []struct {
		key   ctxKey
		field string
	}{
		{keyRequestID, "request_id"},
		{keyJobID, "job_id"},
		{keyCommentID, "comment_id"},
	} {
		if s, ok := ctx.Value(k.key).(string); ok && s != "" {
			builder = builder.Str(k.field, s)
		}
	}
	ll := builder.Logger()
	return &ll
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}
