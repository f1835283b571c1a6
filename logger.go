package textbehind

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely,
// making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so SetLogger can
// be called concurrently with logging from timer goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for textbehind and its sub-packages.
// By default the engine produces no log output. Pass nil to restore the
// silent default. Internal diagnostic detail (segmentation failures,
// fallback decisions, resource pressure) goes through this logger and is
// never surfaced in user-facing messages.
//
// Log levels used:
//   - [slog.LevelDebug]: per-composite diagnostics (pool stats, timings)
//   - [slog.LevelInfo]: lifecycle events (profile resolved, image loaded)
//   - [slog.LevelWarn]: recovered issues (segmentation fallback taken)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages call this to share the
// same configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
