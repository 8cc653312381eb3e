package compose

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while a collaborator goroutine is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for compose and all its sub-packages.
// By default, compose produces no log output. Pass nil to restore the
// default silent behavior.
//
// Log levels used by compose:
//   - [slog.LevelDebug]: per-pass statistics (mutations, regenerated outlines, flushed records)
//   - [slog.LevelWarn]: dropped mutations (stale references), sink rejections, text layout failures
//   - [slog.LevelError]: engine-internal ordering bugs caught before they reach a sink
//
// Example:
//
//	compose.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by compose.
// Sub-packages (scene, svgdom, engine) call this to share one configuration
// without introducing import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
